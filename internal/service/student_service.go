package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/instituto-admin-api/internal/models"
	appErrors "github.com/noah-isme/instituto-admin-api/pkg/errors"
)

const (
	studentListCacheKey = "alumnos:list"
	studentCachePattern = "alumnos:*"
)

type studentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

// StudentService handles the server copy of student records.
type StudentService struct {
	repo      studentRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service. cache may be nil.
func NewStudentService(repo studentRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns the whole collection.
func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	students, err := Remember(ctx, s.cache, studentListCacheKey, s.repo.List)
	if err != nil {
		s.logger.Error("list students failed", zap.Error(err))
		return nil, appErrors.Internal(err, "failed to list students")
	}
	return students, nil
}

// Create validates and stores a new student.
func (s *StudentService) Create(ctx context.Context, payload models.StudentPayload) (*models.Student, error) {
	student, err := s.fromPayload(payload)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, student); err != nil {
		s.logger.Error("create student failed", zap.Error(err))
		return nil, appErrors.Internal(err, "failed to create student")
	}
	s.cache.Invalidate(ctx, studentCachePattern)
	return student, nil
}

// Update replaces every mutable field of the student with the payload and
// returns the stored row, so fecha_creacion comes back as persisted.
func (s *StudentService) Update(ctx context.Context, id string, payload models.StudentPayload) (*models.Student, error) {
	student, err := s.fromPayload(payload)
	if err != nil {
		return nil, err
	}
	student.ID = id
	if err := s.repo.Update(ctx, student); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Alumno no encontrado")
		}
		s.logger.Error("update student failed", zap.String("id", id), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to update student")
	}
	s.cache.Invalidate(ctx, studentCachePattern)

	stored, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Alumno no encontrado")
		}
		s.logger.Error("reload student failed", zap.String("id", id), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to load student")
	}
	return stored, nil
}

// Delete removes the student without checking it exists.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("delete student failed", zap.String("id", id), zap.Error(err))
		return appErrors.Internal(err, "failed to delete student")
	}
	s.cache.Invalidate(ctx, studentCachePattern)
	return nil
}

func (s *StudentService) fromPayload(p models.StudentPayload) (*models.Student, error) {
	p.Nombre = strings.TrimSpace(p.Nombre)
	p.Apellido = strings.TrimSpace(p.Apellido)
	p.DNI = strings.TrimSpace(p.DNI)
	p.Email = strings.TrimSpace(p.Email)
	if err := s.validator.Struct(p); err != nil {
		return nil, appErrors.Validation(err, "Nombre, apellido y DNI son requeridos")
	}
	return &models.Student{
		Nombre:          p.Nombre,
		Apellido:        p.Apellido,
		DNI:             p.DNI,
		Telefono:        p.Telefono,
		Email:           p.Email,
		Direccion:       p.Direccion,
		Localidad:       p.Localidad,
		Estado:          p.Estado,
		FechaNacimiento: p.FechaNacimiento,
		PadreTutor:      p.PadreTutor,
		Observaciones:   p.Observaciones,
	}, nil
}
