package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/instituto-admin-api/pkg/storage"
)

var fixedNow = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

func openTestStore(t *testing.T, backend storage.Backend) *Store {
	t.Helper()
	s, err := Open(context.Background(), backend, Options{Clock: func() time.Time { return fixedNow }})
	require.NoError(t, err)
	return s
}

type failingBackend struct {
	*storage.MemoryBackend
	fail bool
}

func (b *failingBackend) Set(ctx context.Context, key string, value []byte) error {
	if b.fail {
		return errors.New("disk full")
	}
	return b.MemoryBackend.Set(ctx, key, value)
}

func TestOpenEmptyBackendStartsWithDefaults(t *testing.T) {
	s := openTestStore(t, storage.NewMemoryBackend())

	snap := s.Snapshot()
	assert.Empty(t, snap.Students)
	assert.NotNil(t, snap.CajaMovimientos)
	assert.NotNil(t, snap.Personal)
}

func TestOpenMergesPartialSnapshot(t *testing.T) {
	backend := storage.NewMemoryBackend()
	require.NoError(t, backend.Set(context.Background(), DefaultKey,
		[]byte(`{"students":[{"id":4,"nombre":"Ana","apellido":"Paz","dni":"1","estado":"Activo"}]}`)))

	s := openTestStore(t, backend)

	students := s.Students.List()
	require.Len(t, students, 1)
	assert.Equal(t, "Ana Paz", students[0].FullName())
	assert.NotNil(t, s.Snapshot().Becas)

	added, err := s.Students.Add(context.Background(), Student{Nombre: "Luis", Apellido: "Gil", DNI: "2"})
	require.NoError(t, err)
	assert.Equal(t, 5, added.ID)
}

func TestOpenRejectsCorruptSnapshot(t *testing.T) {
	backend := storage.NewMemoryBackend()
	require.NoError(t, backend.Set(context.Background(), DefaultKey, []byte(`{"students":`)))

	_, err := Open(context.Background(), backend, Options{})
	assert.Error(t, err)
}

func TestAddAssignsIDsAndPersists(t *testing.T) {
	backend := storage.NewMemoryBackend()
	s := openTestStore(t, backend)
	ctx := context.Background()

	first, err := s.Students.Add(ctx, Student{ID: 99, Nombre: "Ana", Apellido: "Paz", DNI: "1"})
	require.NoError(t, err)
	second, err := s.Students.Add(ctx, Student{Nombre: "Luis", Apellido: "Gil", DNI: "2"})
	require.NoError(t, err)

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)
	assert.Equal(t, StudentActive, first.Estado)
	assert.Equal(t, 2, backend.Writes())

	reopened := openTestStore(t, backend)
	assert.Len(t, reopened.Students.List(), 2)
}

func TestAddRejectsInvalidRecord(t *testing.T) {
	backend := storage.NewMemoryBackend()
	s := openTestStore(t, backend)

	_, err := s.Students.Add(context.Background(), Student{Nombre: "Ana"})
	require.ErrorIs(t, err, ErrInvalidRecord)
	assert.Empty(t, s.Students.List())
	assert.Equal(t, 0, backend.Writes())
}

func TestIDsAreNotReusedAfterRemovingNewest(t *testing.T) {
	s := openTestStore(t, storage.NewMemoryBackend())
	ctx := context.Background()

	_, err := s.Becas.Add(ctx, Beca{Tipo: BecaHalf, Monto: 100})
	require.NoError(t, err)
	second, err := s.Becas.Add(ctx, Beca{Tipo: BecaFull, Monto: 200})
	require.NoError(t, err)

	found, err := s.Becas.Remove(ctx, second.ID)
	require.NoError(t, err)
	require.True(t, found)

	third, err := s.Becas.Add(ctx, Beca{Tipo: BecaHalf, Monto: 50})
	require.NoError(t, err)
	assert.Equal(t, 3, third.ID)
}

func TestUpdateAndMerge(t *testing.T) {
	s := openTestStore(t, storage.NewMemoryBackend())
	ctx := context.Background()

	course, err := s.Courses.Add(ctx, Course{Nombre: "Inglés", TotalEfectivo: 1000, TotalTarjeta: 1200, Cuotas: 4})
	require.NoError(t, err)

	updated, found, err := s.Courses.Update(ctx, course.ID, func(c *Course) {
		c.Vacantes = 20
		c.ID = 77
	})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, course.ID, updated.ID)
	assert.Equal(t, 20, updated.Vacantes)

	merged, found, err := s.Courses.Merge(ctx, course.ID, json.RawMessage(`{"totalTarjeta":1500,"id":9}`))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, course.ID, merged.ID)
	assert.Equal(t, 1500.0, merged.TotalTarjeta)
	assert.Equal(t, 1000.0, merged.TotalEfectivo)
	assert.Equal(t, 20, merged.Vacantes)

	_, found, err = s.Courses.Merge(ctx, 404, json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.False(t, found)

	_, _, err = s.Courses.Merge(ctx, course.ID, json.RawMessage(`{"totalEfectivo":-1}`))
	assert.ErrorIs(t, err, ErrInvalidRecord)
	got, _ := s.FindCourse(course.ID)
	assert.Equal(t, 1000.0, got.TotalEfectivo)
}

func TestMergeReplacesTopLevelFieldsWhole(t *testing.T) {
	s := openTestStore(t, storage.NewMemoryBackend())
	ctx := context.Background()

	course, err := s.Courses.Add(ctx, Course{
		Nombre:            "Inglés",
		TiposCertificado:  []string{"Digital", "Impreso"},
		CostosCertificado: map[string]float64{"Digital": 100, "Impreso": 200},
		Horarios:          []Schedule{{Dia: "Lunes", Desde: "18:00", Hasta: "20:00"}},
	})
	require.NoError(t, err)

	merged, found, err := s.Courses.Merge(ctx, course.ID, json.RawMessage(`{"costosCertificado":{"Digital":150}}`))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, map[string]float64{"Digital": 150}, merged.CostosCertificado)
	assert.Equal(t, []string{"Digital", "Impreso"}, merged.TiposCertificado)
	assert.Len(t, merged.Horarios, 1)

	merged, _, err = s.Courses.Merge(ctx, course.ID, json.RawMessage(`{"horarios":[],"tiposCertificado":null}`))
	require.NoError(t, err)
	assert.Empty(t, merged.Horarios)
	assert.NotNil(t, merged.TiposCertificado)
	assert.Empty(t, merged.TiposCertificado)
	assert.Equal(t, "Inglés", merged.Nombre)

	_, _, err = s.Courses.Merge(ctx, course.ID, json.RawMessage(`[1,2]`))
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestMissingCollectionsStoredAsEmpty(t *testing.T) {
	s := openTestStore(t, storage.NewMemoryBackend())
	ctx := context.Background()

	prof, err := s.Professors.Add(ctx, Professor{Nombre: "Marta", Apellido: "Ruiz"})
	require.NoError(t, err)
	course, err := s.Courses.Add(ctx, Course{Nombre: "Piano"})
	require.NoError(t, err)
	in, err := s.CreateInscription(ctx, Inscription{StudentID: 1, CourseID: course.ID, PaymentType: PaymentCash})
	require.NoError(t, err)

	raw, err := json.Marshal(s.Snapshot())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "null")

	assert.NotNil(t, prof.Materias)
	assert.NotNil(t, prof.Horarios)
	assert.NotNil(t, course.Profesores)
	assert.NotNil(t, course.CostosCertificado)
	assert.NotNil(t, in.Installments)

	updated, _, err := s.Professors.Update(ctx, prof.ID, func(p *Professor) { p.Materias = nil })
	require.NoError(t, err)
	assert.NotNil(t, updated.Materias)
	assert.Empty(t, updated.Materias)
}

func TestUpdateInscriptionWithMovement(t *testing.T) {
	backend := &failingBackend{MemoryBackend: storage.NewMemoryBackend()}
	s := openTestStore(t, backend)
	ctx := context.Background()

	in, err := s.CreateInscription(ctx, Inscription{
		StudentID: 1, CourseID: 2, PaymentType: PaymentCash,
		Installments: []Installment{{Number: 1, Status: InstallmentPending, Amount: 250}},
	})
	require.NoError(t, err)

	pay := func(v *Inscription) error {
		v.Installments[0].Status = InstallmentPaid
		return nil
	}
	movement := func(v Inscription) *CashMovementInput {
		return &CashMovementInput{StudentID: v.StudentID, CourseID: v.CourseID, InscriptionID: v.ID, FormaPago: MethodCard, Monto: v.Installments[0].Amount}
	}

	backend.fail = true
	_, _, found, err := s.UpdateInscriptionWithMovement(ctx, in.ID, pay, movement)
	require.True(t, found)
	require.ErrorIs(t, err, ErrPersist)
	got, _ := s.Inscriptions.Get(in.ID)
	assert.Equal(t, InstallmentPending, got.Installments[0].Status)
	assert.Empty(t, s.Movements.List())
	assert.NotContains(t, s.Snapshot().Sequences, CollectionMovements)

	backend.fail = false
	updated, mv, found, err := s.UpdateInscriptionWithMovement(ctx, in.ID, pay, movement)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, InstallmentPaid, updated.Installments[0].Status)
	require.NotNil(t, mv)
	assert.Equal(t, 1, mv.ID)
	assert.Equal(t, 250.0, mv.Monto)
	assert.Equal(t, DefaultMovementState, mv.Estado)
	assert.True(t, mv.FechaHora.Equal(fixedNow))

	reopened := openTestStore(t, backend.MemoryBackend)
	persisted, _ := reopened.Inscriptions.Get(in.ID)
	assert.Equal(t, InstallmentPaid, persisted.Installments[0].Status)
	assert.Len(t, reopened.Movements.List(), 1)

	_, mv, _, err = s.UpdateInscriptionWithMovement(ctx, in.ID, func(v *Inscription) error { v.TipoCertificado = "Digital"; return nil }, nil)
	require.NoError(t, err)
	assert.Nil(t, mv)
	assert.Len(t, s.Movements.List(), 1)

	boom := errors.New("boom")
	_, _, found, err = s.UpdateInscriptionWithMovement(ctx, in.ID, func(*Inscription) error { return boom }, movement)
	assert.True(t, found)
	assert.ErrorIs(t, err, boom)

	_, _, found, err = s.UpdateInscriptionWithMovement(ctx, 404, pay, movement)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	s := openTestStore(t, storage.NewMemoryBackend())
	ctx := context.Background()

	prof, err := s.Professors.Add(ctx, Professor{Nombre: "Marta", Apellido: "Ruiz", Materias: []string{"Piano"}})
	require.NoError(t, err)

	prof.Materias[0] = "Guitarra"
	listed := s.Professors.List()
	listed[0].Nombre = "Otra"

	stored, ok := s.FindProfessor(prof.ID)
	require.True(t, ok)
	assert.Equal(t, "Marta", stored.Nombre)
	assert.Equal(t, []string{"Piano"}, stored.Materias)
}

func TestFailedPersistRollsBack(t *testing.T) {
	backend := &failingBackend{MemoryBackend: storage.NewMemoryBackend()}
	s := openTestStore(t, backend)
	ctx := context.Background()

	staff, err := s.Personal.Add(ctx, Staff{Nombre: "Carla", Rol: "Caja", Activo: true})
	require.NoError(t, err)

	backend.fail = true
	_, err = s.Personal.Add(ctx, Staff{Nombre: "Pedro"})
	require.ErrorIs(t, err, ErrPersist)

	_, _, err = s.Personal.Update(ctx, staff.ID, func(v *Staff) { v.Nombre = "Otra" })
	require.ErrorIs(t, err, ErrPersist)

	_, err = s.Personal.Remove(ctx, staff.ID)
	require.ErrorIs(t, err, ErrPersist)

	list := s.Personal.List()
	require.Len(t, list, 1)
	assert.Equal(t, "Carla", list[0].Nombre)

	backend.fail = false
	next, err := s.Personal.Add(ctx, Staff{Nombre: "Pedro"})
	require.NoError(t, err)
	assert.Equal(t, 2, next.ID)
}

func TestRecordCashMovementDefaults(t *testing.T) {
	s := openTestStore(t, storage.NewMemoryBackend())

	mv, err := s.RecordCashMovement(context.Background(), CashMovementInput{
		StudentID: 1, CourseID: 2, InscriptionID: 3, FormaPago: MethodTransfer, Monto: 900, Personal: "Carla",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, mv.ID)
	assert.Equal(t, DefaultMovementState, mv.Estado)
	assert.Equal(t, DefaultMovementPayment, mv.Pago)
	assert.True(t, mv.Activo)
	assert.True(t, mv.FechaHora.Equal(fixedNow))

	inactive := false
	mv, err = s.RecordCashMovement(context.Background(), CashMovementInput{
		StudentID: 1, CourseID: 2, FormaPago: MethodCash, Activo: &inactive, Estado: "Baja",
	})
	require.NoError(t, err)
	assert.False(t, mv.Activo)
	assert.Equal(t, "Baja", mv.Estado)
}

func TestMovementQueries(t *testing.T) {
	s := openTestStore(t, storage.NewMemoryBackend())
	ctx := context.Background()

	day := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	times := []time.Time{
		day,
		day.Add(23*time.Hour + 59*time.Minute + 59*time.Second + 999*time.Millisecond),
		day.Add(24 * time.Hour),
		day.Add(-time.Millisecond),
	}
	methods := []PaymentMethod{MethodCash, MethodCard, MethodCash, MethodTransfer}
	for i, at := range times {
		_, err := s.RecordCashMovement(ctx, CashMovementInput{
			StudentID: 1, CourseID: 1, FormaPago: methods[i], Monto: 10, FechaHora: at,
		})
		require.NoError(t, err)
	}

	onDay := s.MovementsByDate(day.Add(15 * time.Hour))
	require.Len(t, onDay, 2)
	assert.Equal(t, 1, onDay[0].ID)
	assert.Equal(t, 2, onDay[1].ID)

	cash := s.MovementsByPaymentMethod(MethodCash)
	require.Len(t, cash, 2)
	assert.Equal(t, 3, cash[1].ID)

	assert.Empty(t, s.MovementsByPaymentMethod("Cheque"))
}

func TestRemoveInscription(t *testing.T) {
	s := openTestStore(t, storage.NewMemoryBackend())
	ctx := context.Background()

	in, err := s.CreateInscription(ctx, Inscription{StudentID: 1, CourseID: 1, PaymentType: PaymentCash})
	require.NoError(t, err)
	assert.True(t, in.FechaInscripcion.Equal(fixedNow))

	other, err := s.CreateInscription(ctx, Inscription{StudentID: 2, CourseID: 1, PaymentType: PaymentCard})
	require.NoError(t, err)

	for _, id := range []int{in.ID, in.ID, other.ID} {
		_, err := s.RecordCashMovement(ctx, CashMovementInput{StudentID: 1, CourseID: 1, InscriptionID: id, FormaPago: MethodCash})
		require.NoError(t, err)
	}

	removed, retracted, err := s.RemoveInscription(ctx, other.ID, false)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Zero(t, retracted)
	assert.Len(t, s.Movements.List(), 3)

	removed, retracted, err = s.RemoveInscription(ctx, in.ID, true)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 2, retracted)
	assert.Len(t, s.Movements.List(), 1)
	assert.Empty(t, s.Inscriptions.List())

	removed, _, err = s.RemoveInscription(ctx, in.ID, true)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestReset(t *testing.T) {
	backend := storage.NewMemoryBackend()
	s := openTestStore(t, backend)
	ctx := context.Background()

	_, err := s.Becas.Add(ctx, Beca{Tipo: BecaFull, Monto: 500})
	require.NoError(t, err)
	require.NoError(t, s.Reset(ctx))

	assert.Empty(t, s.Becas.List())
	reopened := openTestStore(t, backend)
	assert.Empty(t, reopened.Becas.List())

	added, err := s.Becas.Add(ctx, Beca{Tipo: BecaFull, Monto: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, added.ID)
}
