package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/instituto-admin-api/internal/billing"
	"github.com/noah-isme/instituto-admin-api/internal/store"
	"github.com/noah-isme/instituto-admin-api/pkg/config"
	appErrors "github.com/noah-isme/instituto-admin-api/pkg/errors"
)

const courseDateLayout = "2006-01-02"

// EnrollRequest is the body of a new enrollment. Prices are taken from
// the course; Cuotas overrides the course's installment count when set.
type EnrollRequest struct {
	StudentID       int                 `json:"studentId" validate:"required,gt=0"`
	CourseID        int                 `json:"courseId" validate:"required,gt=0"`
	ProfessorID     int                 `json:"professorId" validate:"gte=0"`
	PaymentType     store.PaymentType   `json:"paymentType" validate:"required,oneof=Efectivo Tarjeta"`
	FullPayment     bool                `json:"fullPayment"`
	Cuotas          int                 `json:"cuotas" validate:"gte=0,lte=36"`
	TipoCertificado string              `json:"tipoCertificado"`
	BecaID          int                 `json:"becaId" validate:"gte=0"`
	HasBonus        bool                `json:"hasBonus"`
	BonusAmount     float64             `json:"bonusAmount" validate:"gte=0"`
	FormaPago       store.PaymentMethod `json:"formaPago" validate:"omitempty,oneof=Efectivo Transferencia Tarjeta"`
	Estado          string              `json:"estado"`
	Activo          *bool               `json:"activo"`
	Pago            string              `json:"pago"`
}

// QuoteRequest asks for the total and plan an enrollment would get.
type QuoteRequest struct {
	CourseID        int               `json:"courseId" validate:"required,gt=0"`
	PaymentType     store.PaymentType `json:"paymentType" validate:"required,oneof=Efectivo Tarjeta"`
	FullPayment     bool              `json:"fullPayment"`
	Cuotas          int               `json:"cuotas" validate:"gte=0,lte=36"`
	TipoCertificado string            `json:"tipoCertificado"`
	BecaID          int               `json:"becaId" validate:"gte=0"`
	HasBonus        bool              `json:"hasBonus"`
	BonusAmount     float64           `json:"bonusAmount" validate:"gte=0"`
}

// Quote is the priced plan for a QuoteRequest.
type Quote struct {
	Base             float64             `json:"base"`
	CostoCertificado float64             `json:"costoCertificado"`
	BonusAmount      float64             `json:"bonusAmount"`
	Total            float64             `json:"total"`
	Installments     []store.Installment `json:"installments"`
}

// PayInstallmentRequest optionally records the payment at the register.
type PayInstallmentRequest struct {
	FormaPago store.PaymentMethod `json:"formaPago" validate:"omitempty,oneof=Efectivo Transferencia Tarjeta"`
}

// EnrollResult carries the created enrollment and, when a payment method
// was given, the cash movement recorded for it.
type EnrollResult struct {
	Inscription store.Inscription   `json:"inscription"`
	Movement    *store.CashMovement `json:"movimiento,omitempty"`
}

// PaymentResult is the enrollment after a paid installment.
type PaymentResult struct {
	Summary  billing.Summary     `json:"summary"`
	Movement *store.CashMovement `json:"movimiento,omitempty"`
}

// RemovalResult reports what a deletion touched.
type RemovalResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Retracted int    `json:"movimientosRetirados"`
}

// MovementRequest is a cash movement entered directly at the register.
type MovementRequest struct {
	StudentID     int                 `json:"studentId" validate:"required,gt=0"`
	CourseID      int                 `json:"courseId" validate:"required,gt=0"`
	InscriptionID int                 `json:"inscriptionId" validate:"gte=0"`
	FormaPago     store.PaymentMethod `json:"formaPago" validate:"required,oneof=Efectivo Transferencia Tarjeta"`
	Monto         float64             `json:"monto" validate:"gte=0"`
	Estado        string              `json:"estado"`
	Activo        *bool               `json:"activo"`
	Pago          string              `json:"pago"`
	Concepto      string              `json:"concepto"`
	Personal      string              `json:"personal"`
}

// EnrollmentService runs enrollment commands against the domain store.
type EnrollmentService struct {
	store        *store.Store
	billing      config.BillingConfig
	defaultStaff string
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

// NewEnrollmentService constructs the service.
func NewEnrollmentService(st *store.Store, billingCfg config.BillingConfig, defaultStaff string, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		store:        st,
		billing:      billingCfg,
		defaultStaff: defaultStaff,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		now:          time.Now,
	}
}

// ResolveStaff picks the label written on cash movements: the signed-in
// user's name, else the first active member of the personal collection,
// else the configured default.
func (s *EnrollmentService) ResolveStaff(current string) string {
	if current = strings.TrimSpace(current); current != "" {
		return current
	}
	for _, member := range s.store.Personal.List() {
		if member.Activo && member.Nombre != "" {
			return member.Nombre
		}
	}
	return s.defaultStaff
}

// Quote prices a prospective enrollment without storing anything.
func (s *EnrollmentService) Quote(req QuoteRequest) (*Quote, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "Datos de cotización inválidos")
	}
	course, ok := s.store.FindCourse(req.CourseID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Curso no encontrado")
	}
	certCost, err := certificateCost(course, req.TipoCertificado)
	if err != nil {
		return nil, err
	}
	_, bonus, err := s.resolveBonus(req.BecaID, req.HasBonus, req.BonusAmount)
	if err != nil {
		return nil, err
	}

	base := course.TotalTarjeta
	if req.PaymentType == store.PaymentCash {
		base = course.TotalEfectivo
	}
	q := &Quote{
		Base:             base,
		CostoCertificado: certCost,
		BonusAmount:      bonus,
		Total:            billing.FinalTotal(req.PaymentType, course.TotalEfectivo, course.TotalTarjeta, certCost, bonus),
		Installments:     []store.Installment{},
	}
	if !req.FullPayment {
		q.Installments = s.plan(course, installmentCount(req.Cuotas, course), q.Total)
	}
	return q, nil
}

// Enroll creates the enrollment and then, when FormaPago is set, records
// its cash movement. If the movement cannot be stored the enrollment is
// removed again.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest, staff string) (*EnrollResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "Datos de inscripción inválidos")
	}
	student, ok := s.store.FindStudent(req.StudentID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Alumno no encontrado")
	}
	course, ok := s.store.FindCourse(req.CourseID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Curso no encontrado")
	}
	if req.ProfessorID > 0 {
		if _, ok := s.store.FindProfessor(req.ProfessorID); !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Profesor no encontrado")
		}
	}
	certCost, err := certificateCost(course, req.TipoCertificado)
	if err != nil {
		return nil, err
	}
	hasBonus, bonus, err := s.resolveBonus(req.BecaID, req.HasBonus, req.BonusAmount)
	if err != nil {
		return nil, err
	}

	in := store.Inscription{
		StudentID:        student.ID,
		CourseID:         course.ID,
		ProfessorID:      req.ProfessorID,
		PaymentType:      req.PaymentType,
		FullPayment:      req.FullPayment,
		TotalEfectivo:    course.TotalEfectivo,
		TotalTarjeta:     course.TotalTarjeta,
		Cuotas:           installmentCount(req.Cuotas, course),
		TipoCertificado:  req.TipoCertificado,
		CostoCertificado: certCost,
		HasBonus:         hasBonus,
		BonusAmount:      bonus,
		BecaID:           req.BecaID,
		FormaPago:        req.FormaPago,
		FechaInscripcion: s.now(),
		Installments:     []store.Installment{},
	}
	total := billing.InscriptionTotal(in)
	if in.FullPayment {
		in.Cuotas = 0
	} else {
		in.Installments = s.plan(course, in.Cuotas, total)
	}

	created, err := s.store.CreateInscription(ctx, in)
	if err != nil {
		return nil, storeError(err, "failed to create inscription")
	}
	s.metrics.RecordEnrollment(string(created.PaymentType))
	s.logger.Info("inscription created",
		zap.Int("inscription_id", created.ID),
		zap.Int("student_id", created.StudentID),
		zap.Int("course_id", created.CourseID),
		zap.Float64("total", total),
	)

	result := &EnrollResult{Inscription: created}
	if req.FormaPago == "" {
		return result, nil
	}

	amount := 0.0
	concepto := "Inscripción"
	if created.FullPayment {
		amount = total
		concepto = "Inscripción - pago total"
	}
	mv, err := s.store.RecordCashMovement(ctx, store.CashMovementInput{
		StudentID:     created.StudentID,
		CourseID:      created.CourseID,
		InscriptionID: created.ID,
		FormaPago:     req.FormaPago,
		Monto:         amount,
		Personal:      s.ResolveStaff(staff),
		Estado:        req.Estado,
		Activo:        req.Activo,
		Pago:          req.Pago,
		Concepto:      concepto,
		FechaHora:     s.now(),
	})
	if err != nil {
		if _, _, rbErr := s.store.RemoveInscription(ctx, created.ID, true); rbErr != nil {
			s.logger.Error("rollback of inscription failed", zap.Int("inscription_id", created.ID), zap.Error(rbErr))
		}
		return nil, storeError(err, "failed to record cash movement")
	}
	s.metrics.RecordCashMovement(string(mv.FormaPago), mv.Monto)
	result.Movement = &mv
	return result, nil
}

// List returns the enrollments, optionally only those of one student.
func (s *EnrollmentService) List(studentID int) []billing.Summary {
	var inscriptions []store.Inscription
	if studentID > 0 {
		inscriptions = s.store.InscriptionsOf(studentID)
	} else {
		inscriptions = s.store.Inscriptions.List()
	}
	now := s.now()
	out := make([]billing.Summary, 0, len(inscriptions))
	for _, in := range inscriptions {
		out = append(out, billing.Summarize(in, now))
	}
	return out
}

// Summary returns the derived payment state of one enrollment.
func (s *EnrollmentService) Summary(id int) (*billing.Summary, error) {
	in, ok := s.store.Inscriptions.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Inscripción no encontrada")
	}
	sum := billing.Summarize(in, s.now())
	return &sum, nil
}

// PayInstallment marks one installment paid. The planned amount is what
// gets recorded, even when the installment is overdue.
func (s *EnrollmentService) PayInstallment(ctx context.Context, id, number int, req PayInstallmentRequest, staff string) (*PaymentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "Forma de pago inválida")
	}
	now := s.now()
	var record func(store.Inscription) *store.CashMovementInput
	if req.FormaPago != "" {
		record = func(in store.Inscription) *store.CashMovementInput {
			var amount float64
			for _, inst := range in.Installments {
				if inst.Number == number {
					amount = inst.Amount
				}
			}
			return &store.CashMovementInput{
				StudentID:     in.StudentID,
				CourseID:      in.CourseID,
				InscriptionID: in.ID,
				FormaPago:     req.FormaPago,
				Monto:         amount,
				Personal:      s.ResolveStaff(staff),
				Concepto:      fmt.Sprintf("Cuota %d", number),
				FechaHora:     now,
			}
		}
	}
	updated, mv, found, err := s.store.UpdateInscriptionWithMovement(ctx, id, func(in *store.Inscription) error {
		paid, err := billing.MarkPaid(in.Installments, number, now)
		if err != nil {
			return err
		}
		in.Installments = paid
		return nil
	}, record)
	switch {
	case !found:
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Inscripción no encontrada")
	case errors.Is(err, billing.ErrInstallmentNotFound):
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Cuota no encontrada")
	case errors.Is(err, billing.ErrAlreadyPaid):
		return nil, appErrors.Clone(appErrors.ErrConflict, "La cuota ya está pagada")
	case err != nil:
		return nil, storeError(err, "failed to pay installment")
	}

	result := &PaymentResult{Summary: billing.Summarize(updated, now), Movement: mv}
	if mv != nil {
		s.metrics.RecordCashMovement(string(mv.FormaPago), mv.Monto)
	}
	return result, nil
}

// Remove deletes an enrollment. Its cash movements stay unless retract
// is set.
func (s *EnrollmentService) Remove(ctx context.Context, id int, retract bool) (*RemovalResult, error) {
	removed, retracted, err := s.store.RemoveInscription(ctx, id, retract)
	if err != nil {
		return nil, storeError(err, "failed to remove inscription")
	}
	if !removed {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Inscripción no encontrada")
	}
	s.logger.Info("inscription removed", zap.Int("inscription_id", id), zap.Int("movements_retracted", retracted))
	return &RemovalResult{Success: true, Message: "Inscripción eliminada", Retracted: retracted}, nil
}

func (s *EnrollmentService) resolveBonus(becaID int, hasBonus bool, amount float64) (bool, float64, error) {
	if becaID > 0 {
		beca, ok := s.store.FindBeca(becaID)
		if !ok {
			return false, 0, appErrors.Clone(appErrors.ErrNotFound, "Beca no encontrada")
		}
		if !beca.Activa {
			return false, 0, appErrors.Clone(appErrors.ErrValidation, "La beca no está activa")
		}
		return true, beca.Monto, nil
	}
	if !hasBonus {
		return false, 0, nil
	}
	return true, amount, nil
}

func (s *EnrollmentService) plan(course store.Course, count int, total float64) []store.Installment {
	now := s.now()
	if s.billing.Schedule != config.ScheduleCourse {
		return billing.GenerateInstallments(count, total, now)
	}
	start := now
	if parsed, err := time.ParseInLocation(courseDateLayout, course.Inicio, now.Location()); err == nil {
		start = parsed
	} else if course.Inicio != "" {
		s.logger.Warn("course start date unparsable, using today", zap.Int("course_id", course.ID), zap.String("inicio", course.Inicio))
	}
	return billing.GenerateCourseInstallments(count, total, start, s.billing.OffsetMonths, s.billing.DueDay)
}

func certificateCost(course store.Course, tipo string) (float64, error) {
	if tipo == "" {
		return 0, nil
	}
	cost, ok := course.CostosCertificado[tipo]
	if !ok {
		return 0, appErrors.Clone(appErrors.ErrValidation, "Tipo de certificado no disponible para el curso")
	}
	return cost, nil
}

func installmentCount(requested int, course store.Course) int {
	switch {
	case requested > 0:
		return requested
	case course.Cuotas > 0:
		return course.Cuotas
	default:
		return 1
	}
}

// storeError maps store failures onto API errors.
func storeError(err error, message string) error {
	if errors.Is(err, store.ErrInvalidRecord) {
		return appErrors.Validation(err, "Datos inválidos")
	}
	return appErrors.Internal(err, message)
}

// RecordMovement stores a movement entered by hand. An explicit Personal
// wins over the resolved staff label.
func (s *EnrollmentService) RecordMovement(ctx context.Context, req MovementRequest, staff string) (*store.CashMovement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "Datos del movimiento inválidos")
	}
	if _, ok := s.store.FindStudent(req.StudentID); !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Alumno no encontrado")
	}
	if _, ok := s.store.FindCourse(req.CourseID); !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Curso no encontrado")
	}
	if req.InscriptionID > 0 {
		if _, ok := s.store.Inscriptions.Get(req.InscriptionID); !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Inscripción no encontrada")
		}
	}
	personal := strings.TrimSpace(req.Personal)
	if personal == "" {
		personal = s.ResolveStaff(staff)
	}
	mv, err := s.store.RecordCashMovement(ctx, store.CashMovementInput{
		StudentID:     req.StudentID,
		CourseID:      req.CourseID,
		InscriptionID: req.InscriptionID,
		FormaPago:     req.FormaPago,
		Monto:         req.Monto,
		Personal:      personal,
		Estado:        req.Estado,
		Activo:        req.Activo,
		Pago:          req.Pago,
		Concepto:      req.Concepto,
		FechaHora:     s.now(),
	})
	if err != nil {
		return nil, storeError(err, "failed to record cash movement")
	}
	s.metrics.RecordCashMovement(string(mv.FormaPago), mv.Monto)
	return &mv, nil
}
