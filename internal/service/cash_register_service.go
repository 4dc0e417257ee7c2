package service

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/instituto-admin-api/internal/store"
	appErrors "github.com/noah-isme/instituto-admin-api/pkg/errors"
	"github.com/noah-isme/instituto-admin-api/pkg/export"
)

// DateLayout is the calendar-day format accepted by the register views.
const DateLayout = "2006-01-02"

var registerMethods = []store.PaymentMethod{store.MethodCash, store.MethodTransfer, store.MethodCard}

type reportRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// MovementRow is a movement with the names it refers to resolved.
type MovementRow struct {
	store.CashMovement
	Alumno string `json:"alumno"`
	Curso  string `json:"curso"`
}

// DailyRegister is the cash register view of one calendar day.
type DailyRegister struct {
	Fecha       string                          `json:"fecha"`
	FormaPago   store.PaymentMethod             `json:"formaPago,omitempty"`
	Movimientos []MovementRow                   `json:"movimientos"`
	Totales     map[store.PaymentMethod]float64 `json:"totales"`
	Total       float64                         `json:"total"`
	Cantidad    int                             `json:"cantidad"`
}

// Report is a rendered register export.
type Report struct {
	Filename    string
	ContentType string
	Content     []byte
}

// CashRegisterService builds the daily register views and exports.
type CashRegisterService struct {
	store    *store.Store
	csv      reportRenderer
	pdf      reportRenderer
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewCashRegisterService constructs the service. Days are interpreted in
// loc, or the process local time zone when loc is nil.
func NewCashRegisterService(st *store.Store, csv, pdf reportRenderer, loc *time.Location, logger *zap.Logger) *CashRegisterService {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CashRegisterService{store: st, csv: csv, pdf: pdf, location: loc, logger: logger, now: time.Now}
}

// ParseDay reads a YYYY-MM-DD day; empty means today.
func (s *CashRegisterService) ParseDay(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return s.now().In(s.location), nil
	}
	day, err := time.ParseInLocation(DateLayout, value, s.location)
	if err != nil {
		return time.Time{}, appErrors.Validation(err, "Fecha inválida, se espera AAAA-MM-DD")
	}
	return day, nil
}

// Daily returns the movements of the day, optionally of one payment
// method, with per-method totals.
func (s *CashRegisterService) Daily(day time.Time, method store.PaymentMethod) (*DailyRegister, error) {
	if method != "" && !knownMethod(method) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Forma de pago inválida")
	}

	view := &DailyRegister{
		Fecha:       day.Format(DateLayout),
		FormaPago:   method,
		Movimientos: []MovementRow{},
		Totales:     make(map[store.PaymentMethod]float64, len(registerMethods)),
	}
	for _, m := range registerMethods {
		view.Totales[m] = 0
	}

	students := map[int]string{}
	courses := map[int]string{}
	for _, mv := range s.movements(day, method) {
		row := MovementRow{CashMovement: mv}
		row.Alumno = cachedName(students, mv.StudentID, func(id int) (string, bool) {
			st, ok := s.store.FindStudent(id)
			return st.FullName(), ok
		})
		row.Curso = cachedName(courses, mv.CourseID, func(id int) (string, bool) {
			c, ok := s.store.FindCourse(id)
			return c.Nombre, ok
		})
		view.Movimientos = append(view.Movimientos, row)
		view.Totales[mv.FormaPago] += mv.Monto
		view.Total += mv.Monto
	}
	view.Cantidad = len(view.Movimientos)
	return view, nil
}

// movements narrows to one payment method first when one is given, then
// keeps the movements inside day.
func (s *CashRegisterService) movements(day time.Time, method store.PaymentMethod) []store.CashMovement {
	if method == "" {
		return s.store.MovementsByDate(day)
	}
	start, end := store.DayBounds(day)
	var out []store.CashMovement
	for _, mv := range s.store.MovementsByPaymentMethod(method) {
		at := mv.FechaHora.In(day.Location())
		if !at.Before(start) && !at.After(end) {
			out = append(out, mv)
		}
	}
	return out
}

// Export renders the daily register as csv or pdf.
func (s *CashRegisterService) Export(day time.Time, method store.PaymentMethod, format export.Format) (*Report, error) {
	view, err := s.Daily(day, method)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{
		Title:   "Caja diaria " + day.Format("02/01/2006"),
		Headers: []string{"Hora", "Alumno", "Curso", "Forma de pago", "Concepto", "Personal", "Estado", "Monto"},
		Rows:    make([]map[string]string, 0, len(view.Movimientos)),
	}
	for _, row := range view.Movimientos {
		data.Rows = append(data.Rows, map[string]string{
			"Hora":          row.FechaHora.In(s.location).Format("15:04"),
			"Alumno":        row.Alumno,
			"Curso":         row.Curso,
			"Forma de pago": string(row.FormaPago),
			"Concepto":      row.Concepto,
			"Personal":      row.Personal,
			"Estado":        row.Estado,
			"Monto":         money(row.Monto),
		})
	}
	for _, m := range registerMethods {
		if method == "" || method == m {
			data.Summary = append(data.Summary, [2]string{string(m), money(view.Totales[m])})
		}
	}
	data.Summary = append(data.Summary, [2]string{"Total", money(view.Total)})

	var content []byte
	switch format {
	case export.FormatCSV, "":
		format = export.FormatCSV
		content, err = s.csv.Render(data)
	case export.FormatPDF:
		content, err = s.pdf.Render(data)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "Formato no soportado, use csv o pdf")
	}
	if err != nil {
		s.logger.Error("render register export failed", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to render register export")
	}

	return &Report{
		Filename:    fmt.Sprintf("caja-%s.%s", view.Fecha, format),
		ContentType: format.ContentType(),
		Content:     content,
	}, nil
}

func knownMethod(m store.PaymentMethod) bool {
	for _, known := range registerMethods {
		if known == m {
			return true
		}
	}
	return false
}

func cachedName(cache map[int]string, id int, lookup func(int) (string, bool)) string {
	if name, ok := cache[id]; ok {
		return name
	}
	name, ok := lookup(id)
	if !ok {
		name = fmt.Sprintf("#%d", id)
	}
	cache[id] = name
	return name
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
