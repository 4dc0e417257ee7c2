package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/instituto-admin-api/internal/models"
	appErrors "github.com/noah-isme/instituto-admin-api/pkg/errors"
)

var studentCreatedAt = time.Date(2024, time.February, 1, 9, 0, 0, 0, time.UTC)

type mockStudentRepo struct {
	students  map[string]models.Student
	listCalls int
	deleted   []string
	err       error
	findErr   error
}

func (m *mockStudentRepo) List(ctx context.Context) ([]models.Student, error) {
	m.listCalls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	return out, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	student, ok := m.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &student, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if m.err != nil {
		return m.err
	}
	if m.students == nil {
		m.students = make(map[string]models.Student)
	}
	student.ID = "generated"
	student.FechaCreacion = time.Now()
	student.FechaActualizacion = student.FechaCreacion
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	if m.err != nil {
		return m.err
	}
	current, ok := m.students[student.ID]
	if !ok {
		return sql.ErrNoRows
	}
	student.FechaActualizacion = time.Now()
	updated := *student
	updated.FechaCreacion = current.FechaCreacion
	m.students[student.ID] = updated
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	delete(m.students, id)
	return nil
}

type memoryCacheRepo struct {
	values map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{values: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	for key := range m.values {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.values, key)
		}
	}
	return nil
}

func newStudentFixture(cacheEnabled bool) (*StudentService, *mockStudentRepo) {
	repo := &mockStudentRepo{students: map[string]models.Student{
		"a1": {ID: "a1", Nombre: "Ana", Apellido: "Paz", DNI: "30111222", Telefono: "555", FechaCreacion: studentCreatedAt, FechaActualizacion: studentCreatedAt},
	}}
	cache := NewCacheService(newMemoryCacheRepo(), NewMetricsService(), time.Minute, zap.NewNop(), cacheEnabled)
	return NewStudentService(repo, cache, validator.New(), zap.NewNop()), repo
}

func TestStudentServiceCreate(t *testing.T) {
	svc, repo := newStudentFixture(false)

	student, err := svc.Create(context.Background(), models.StudentPayload{Nombre: " Luis ", Apellido: "Gil", DNI: "2"})
	require.NoError(t, err)
	assert.Equal(t, "generated", student.ID)
	assert.Equal(t, "Luis", student.Nombre)
	assert.False(t, student.FechaCreacion.IsZero())
	assert.Contains(t, repo.students, "generated")
}

func TestStudentServiceCreateRequiresNombreApellidoDNI(t *testing.T) {
	svc, repo := newStudentFixture(false)

	for _, payload := range []models.StudentPayload{
		{Apellido: "Gil", DNI: "2"},
		{Nombre: "Luis", DNI: "2"},
		{Nombre: "Luis", Apellido: "Gil", DNI: "   "},
	} {
		_, err := svc.Create(context.Background(), payload)
		assert.ErrorIs(t, err, appErrors.ErrValidation)
	}
	assert.Len(t, repo.students, 1)
}

func TestStudentServiceUpdateReplacesRecord(t *testing.T) {
	svc, repo := newStudentFixture(false)

	student, err := svc.Update(context.Background(), "a1", models.StudentPayload{Nombre: "Ana", Apellido: "Paz", DNI: "30111222"})
	require.NoError(t, err)
	assert.Equal(t, "a1", student.ID)
	assert.Empty(t, repo.students["a1"].Telefono)
	assert.True(t, student.FechaCreacion.Equal(studentCreatedAt))
	assert.True(t, student.FechaActualizacion.After(studentCreatedAt))
}

func TestStudentServiceUpdateReloadFailure(t *testing.T) {
	svc, repo := newStudentFixture(false)
	repo.findErr = errors.New("db down")

	_, err := svc.Update(context.Background(), "a1", models.StudentPayload{Nombre: "Ana", Apellido: "Paz", DNI: "30111222"})
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestStudentServiceUpdateMissing(t *testing.T) {
	svc, _ := newStudentFixture(false)

	_, err := svc.Update(context.Background(), "nope", models.StudentPayload{Nombre: "A", Apellido: "B", DNI: "1"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestStudentServiceDeleteIsUnconditional(t *testing.T) {
	svc, repo := newStudentFixture(false)

	require.NoError(t, svc.Delete(context.Background(), "never-existed"))
	assert.Equal(t, []string{"never-existed"}, repo.deleted)
}

func TestStudentServicePersistenceErrorsAreInternal(t *testing.T) {
	svc, repo := newStudentFixture(false)
	repo.err = errors.New("db down")

	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrInternal)
	_, err = svc.Create(context.Background(), models.StudentPayload{Nombre: "A", Apellido: "B", DNI: "1"})
	assert.ErrorIs(t, err, appErrors.ErrInternal)
	assert.ErrorIs(t, svc.Delete(context.Background(), "a1"), appErrors.ErrInternal)
}

func TestStudentServiceListUsesCacheUntilWrite(t *testing.T) {
	svc, repo := newStudentFixture(true)
	ctx := context.Background()

	first, err := svc.List(ctx)
	require.NoError(t, err)
	_, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, first, 1)
	assert.Equal(t, 1, repo.listCalls)

	_, err = svc.Create(ctx, models.StudentPayload{Nombre: "Luis", Apellido: "Gil", DNI: "2"})
	require.NoError(t, err)

	after, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, after, 2)
	assert.Equal(t, 2, repo.listCalls)
}
