package models

import "time"

// Student is the server copy of a student, stored in the alumnos table.
// Only nombre, apellido and dni are required.
type Student struct {
	ID                 string    `db:"id" json:"id"`
	Nombre             string    `db:"nombre" json:"nombre"`
	Apellido           string    `db:"apellido" json:"apellido"`
	DNI                string    `db:"dni" json:"dni"`
	Telefono           string    `db:"telefono" json:"telefono"`
	Email              string    `db:"email" json:"email"`
	Direccion          string    `db:"direccion" json:"direccion"`
	Localidad          string    `db:"localidad" json:"localidad"`
	Estado             string    `db:"estado" json:"estado"`
	FechaNacimiento    string    `db:"fecha_nacimiento" json:"fechaNacimiento"`
	PadreTutor         string    `db:"padre_tutor" json:"padreTutor"`
	Observaciones      string    `db:"observaciones" json:"observaciones"`
	FechaCreacion      time.Time `db:"fecha_creacion" json:"fechaCreacion"`
	FechaActualizacion time.Time `db:"fecha_actualizacion" json:"fechaActualizacion"`
}

// StudentPayload is the body of create and update requests. Update
// replaces every column, so omitted fields are stored empty.
type StudentPayload struct {
	Nombre          string `json:"nombre" validate:"required"`
	Apellido        string `json:"apellido" validate:"required"`
	DNI             string `json:"dni" validate:"required"`
	Telefono        string `json:"telefono"`
	Email           string `json:"email" validate:"omitempty,email"`
	Direccion       string `json:"direccion"`
	Localidad       string `json:"localidad"`
	Estado          string `json:"estado" validate:"omitempty,oneof=Activo Inactivo"`
	FechaNacimiento string `json:"fechaNacimiento"`
	PadreTutor      string `json:"padreTutor"`
	Observaciones   string `json:"observaciones"`
}
