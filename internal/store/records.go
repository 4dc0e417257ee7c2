package store

import "time"

// StudentStatus is the enrollment state of a student in the institute.
type StudentStatus string

const (
	StudentActive   StudentStatus = "Activo"
	StudentInactive StudentStatus = "Inactivo"
)

// PaymentType is how a course is priced for an enrollment.
type PaymentType string

const (
	PaymentCash PaymentType = "Efectivo"
	PaymentCard PaymentType = "Tarjeta"
)

// PaymentMethod is how money actually moved at the cash register.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "Efectivo"
	MethodTransfer PaymentMethod = "Transferencia"
	MethodCard     PaymentMethod = "Tarjeta"
)

// InstallmentStatus moves Pendiente -> Pagado and never back.
type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "Pendiente"
	InstallmentPaid    InstallmentStatus = "Pagado"
)

// BecaType is the scholarship category.
type BecaType string

const (
	BecaHalf BecaType = "Media"
	BecaFull BecaType = "Completa"
)

// Defaults applied to cash movements recorded without explicit values.
const (
	DefaultMovementState   = "Cursando"
	DefaultMovementPayment = "Completada"
)

// Student is the locally kept student record.
type Student struct {
	ID              int           `json:"id"`
	Nombre          string        `json:"nombre" validate:"required"`
	Apellido        string        `json:"apellido" validate:"required"`
	DNI             string        `json:"dni" validate:"required"`
	Telefono        string        `json:"telefono"`
	Email           string        `json:"email" validate:"omitempty,email"`
	Direccion       string        `json:"direccion"`
	Localidad       string        `json:"localidad"`
	Estado          StudentStatus `json:"estado" validate:"oneof=Activo Inactivo"`
	FechaNacimiento string        `json:"fechaNacimiento"`
	PadreTutor      string        `json:"padreTutor"`
	Observaciones   string        `json:"observaciones"`
	Foto            string        `json:"foto"`
}

// Schedule is one weekly time slot.
type Schedule struct {
	Dia   string `json:"dia" validate:"required"`
	Desde string `json:"desde" validate:"required"`
	Hasta string `json:"hasta" validate:"required"`
}

// Professor teaches one or more subjects.
type Professor struct {
	ID       int        `json:"id"`
	Nombre   string     `json:"nombre" validate:"required"`
	Apellido string     `json:"apellido" validate:"required"`
	Materias []string   `json:"materias"`
	Horarios []Schedule `json:"horarios" validate:"dive"`
}

// Course carries the template prices copied into each enrollment.
type Course struct {
	ID                int                `json:"id"`
	Nombre            string             `json:"nombre" validate:"required"`
	Profesores        []int              `json:"profesores"`
	Inicio            string             `json:"inicio"`
	Fin               string             `json:"fin"`
	Vacantes          int                `json:"vacantes" validate:"gte=0"`
	TotalEfectivo     float64            `json:"totalEfectivo" validate:"gte=0"`
	TotalTarjeta      float64            `json:"totalTarjeta" validate:"gte=0"`
	Cuotas            int                `json:"cuotas" validate:"gte=0"`
	TiposCertificado  []string           `json:"tiposCertificado"`
	CostosCertificado map[string]float64 `json:"costosCertificado"`
	Horarios          []Schedule         `json:"horarios" validate:"dive"`
}

// Installment is one scheduled partial payment of an enrollment.
type Installment struct {
	Number      int               `json:"number" validate:"gt=0"`
	DueDate     time.Time         `json:"dueDate"`
	Status      InstallmentStatus `json:"status" validate:"oneof=Pendiente Pagado"`
	PaymentDate *time.Time        `json:"paymentDate"`
	Amount      float64           `json:"amount" validate:"gte=0"`
}

// Inscription is a student's registration in a course with its own
// payment plan.
type Inscription struct {
	ID               int           `json:"id"`
	StudentID        int           `json:"studentId" validate:"gt=0"`
	CourseID         int           `json:"courseId" validate:"gt=0"`
	ProfessorID      int           `json:"professorId" validate:"gte=0"`
	PaymentType      PaymentType   `json:"paymentType" validate:"oneof=Efectivo Tarjeta"`
	FullPayment      bool          `json:"fullPayment"`
	TotalEfectivo    float64       `json:"totalEfectivo" validate:"gte=0"`
	TotalTarjeta     float64       `json:"totalTarjeta" validate:"gte=0"`
	Cuotas           int           `json:"cuotas" validate:"gte=0"`
	TipoCertificado  string        `json:"tipoCertificado"`
	CostoCertificado float64       `json:"costoCertificado" validate:"gte=0"`
	HasBonus         bool          `json:"hasBonus"`
	BonusAmount      float64       `json:"bonusAmount" validate:"gte=0"`
	BecaID           int           `json:"becaId,omitempty" validate:"gte=0"`
	FormaPago        PaymentMethod `json:"formaPago,omitempty" validate:"omitempty,oneof=Efectivo Transferencia Tarjeta"`
	FechaInscripcion time.Time     `json:"fechaInscripcion"`
	Installments     []Installment `json:"installments" validate:"dive"`
}

// Beca is a named discount with a fixed amount.
type Beca struct {
	ID     int      `json:"id"`
	Nombre string   `json:"nombre,omitempty"`
	Tipo   BecaType `json:"tipo" validate:"oneof=Media Completa"`
	Monto  float64  `json:"monto" validate:"gte=0"`
	Activa bool     `json:"activa"`
}

// CashMovement is the audit record of one payment at the register.
type CashMovement struct {
	ID            int           `json:"id"`
	StudentID     int           `json:"studentId" validate:"gt=0"`
	CourseID      int           `json:"courseId" validate:"gt=0"`
	InscriptionID int           `json:"inscriptionId,omitempty"`
	FormaPago     PaymentMethod `json:"formaPago" validate:"oneof=Efectivo Transferencia Tarjeta"`
	FechaHora     time.Time     `json:"fechaHora"`
	Personal      string        `json:"personal"`
	Estado        string        `json:"estado"`
	Activo        bool          `json:"activo"`
	Pago          string        `json:"pago"`
	Monto         float64       `json:"monto" validate:"gte=0"`
	Concepto      string        `json:"concepto,omitempty"`
}

// Staff is a member of the institute's personnel. Cash movements carry the
// name of whoever was at the register.
type Staff struct {
	ID     int    `json:"id"`
	Nombre string `json:"nombre" validate:"required"`
	Rol    string `json:"rol"`
	Email  string `json:"email,omitempty" validate:"omitempty,email"`
	Activo bool   `json:"activo"`
}

// FullName joins nombre and apellido.
func (s Student) FullName() string { return joinName(s.Nombre, s.Apellido) }

// FullName joins nombre and apellido.
func (p Professor) FullName() string { return joinName(p.Nombre, p.Apellido) }

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	}
	return first + " " + last
}
