package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/instituto-admin-api/internal/models"
)

const studentColumns = `id, nombre, apellido, dni, telefono, email, direccion, localidad, estado, fecha_nacimiento, padre_tutor, observaciones, fecha_creacion, fecha_actualizacion`

// StudentRepository manages persistence for the alumnos table.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns every student. Order is by creation time only for stable
// output; callers must not rely on it.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM alumnos ORDER BY fecha_creacion`
	students := make([]models.Student, 0)
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID returns a student by identifier.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM alumnos WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// Create inserts a student, generating its id and both timestamps.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	student.FechaCreacion = now
	student.FechaActualizacion = now

	const query = `INSERT INTO alumnos (id, nombre, apellido, dni, telefono, email, direccion, localidad, estado, fecha_nacimiento, padre_tutor, observaciones, fecha_creacion, fecha_actualizacion)
VALUES (:id, :nombre, :apellido, :dni, :telefono, :email, :direccion, :localidad, :estado, :fecha_nacimiento, :padre_tutor, :observaciones, :fecha_creacion, :fecha_actualizacion)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update replaces every mutable column and stamps fecha_actualizacion.
// sql.ErrNoRows is returned when no row has the id.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.FechaActualizacion = time.Now().UTC()
	const query = `UPDATE alumnos SET nombre = :nombre, apellido = :apellido, dni = :dni, telefono = :telefono, email = :email, direccion = :direccion, localidad = :localidad, estado = :estado, fecha_nacimiento = :fecha_nacimiento, padre_tutor = :padre_tutor, observaciones = :observaciones, fecha_actualizacion = :fecha_actualizacion WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, student)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update student rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the row. Deleting a missing id is not an error.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM alumnos WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}
