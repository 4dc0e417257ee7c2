package store

import (
	"context"
	"fmt"
	"time"
)

// FindStudent returns the student with the given id.
func (s *Store) FindStudent(id int) (Student, bool) { return s.Students.Get(id) }

// FindCourse returns the course with the given id.
func (s *Store) FindCourse(id int) (Course, bool) { return s.Courses.Get(id) }

// FindProfessor returns the professor with the given id.
func (s *Store) FindProfessor(id int) (Professor, bool) { return s.Professors.Get(id) }

// FindBeca returns the beca with the given id.
func (s *Store) FindBeca(id int) (Beca, bool) { return s.Becas.Get(id) }

// CreateInscription stores the enrollment and nothing else. The cash
// movement for it is recorded separately with RecordCashMovement.
func (s *Store) CreateInscription(ctx context.Context, in Inscription) (Inscription, error) {
	return s.Inscriptions.Add(ctx, in)
}

// CashMovementInput describes a movement to record. Zero values take the
// register defaults.
type CashMovementInput struct {
	StudentID     int
	CourseID      int
	InscriptionID int
	FormaPago     PaymentMethod
	Monto         float64
	Personal      string
	Estado        string
	Activo        *bool
	Pago          string
	Concepto      string
	FechaHora     time.Time
}

// RecordCashMovement appends one movement to the register.
func (s *Store) RecordCashMovement(ctx context.Context, in CashMovementInput) (CashMovement, error) {
	return s.Movements.Add(ctx, in.movement())
}

func (in CashMovementInput) movement() CashMovement {
	mv := CashMovement{
		StudentID:     in.StudentID,
		CourseID:      in.CourseID,
		InscriptionID: in.InscriptionID,
		FormaPago:     in.FormaPago,
		FechaHora:     in.FechaHora,
		Personal:      in.Personal,
		Estado:        in.Estado,
		Activo:        true,
		Pago:          in.Pago,
		Monto:         in.Monto,
		Concepto:      in.Concepto,
	}
	if mv.Estado == "" {
		mv.Estado = DefaultMovementState
	}
	if mv.Pago == "" {
		mv.Pago = DefaultMovementPayment
	}
	if in.Activo != nil {
		mv.Activo = *in.Activo
	}
	return mv
}

// UpdateInscriptionWithMovement applies fn to the enrollment and, when
// movement returns an input, records that movement in the same snapshot
// write. Either both changes are stored or neither is. found is false when
// no enrollment has the id; an error from fn is returned as is.
func (s *Store) UpdateInscriptionWithMovement(ctx context.Context, id int, fn func(*Inscription) error, movement func(Inscription) *CashMovementInput) (Inscription, *CashMovement, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.Inscriptions.indexLocked(id)
	if idx < 0 {
		return Inscription{}, nil, false, nil
	}
	now := s.now()
	rec := clone(s.data.Inscriptions[idx])
	if err := fn(&rec); err != nil {
		return Inscription{}, nil, true, err
	}
	rec.ID = id
	s.Inscriptions.prepare(&rec, now)
	if err := s.validateRecord(rec); err != nil {
		return Inscription{}, nil, true, err
	}

	var mv *CashMovement
	if movement != nil {
		if in := movement(rec); in != nil {
			m := in.movement()
			s.Movements.prepare(&m, now)
			m.ID = s.Movements.nextIDLocked()
			if err := s.validateRecord(m); err != nil {
				return Inscription{}, nil, true, err
			}
			mv = &m
		}
	}

	prevInscriptions := s.data.Inscriptions
	prevMovements := s.data.CajaMovimientos
	prevSeq, hadSeq := s.data.Sequences[CollectionMovements]

	updated := make([]Inscription, len(prevInscriptions))
	copy(updated, prevInscriptions)
	updated[idx] = rec
	s.data.Inscriptions = updated
	if mv != nil {
		s.data.CajaMovimientos = append(append(make([]CashMovement, 0, len(prevMovements)+1), prevMovements...), *mv)
		s.data.Sequences[CollectionMovements] = mv.ID
	}

	if err := s.persistLocked(ctx); err != nil {
		s.data.Inscriptions = prevInscriptions
		s.data.CajaMovimientos = prevMovements
		if hadSeq {
			s.data.Sequences[CollectionMovements] = prevSeq
		} else {
			delete(s.data.Sequences, CollectionMovements)
		}
		return Inscription{}, nil, true, fmt.Errorf("update inscription %d: %w", id, err)
	}

	out := clone(rec)
	if mv != nil {
		recorded := clone(*mv)
		return out, &recorded, true, nil
	}
	return out, nil, true, nil
}

// MovementsByPaymentMethod returns every movement paid with method.
func (s *Store) MovementsByPaymentMethod(method PaymentMethod) []CashMovement {
	return s.Movements.Filter(func(m CashMovement) bool { return m.FormaPago == method })
}

// MovementsByDate returns the movements whose timestamp falls inside the
// calendar day of date, both ends inclusive, in date's location.
func (s *Store) MovementsByDate(date time.Time) []CashMovement {
	start, end := DayBounds(date)
	return s.Movements.Filter(func(m CashMovement) bool {
		at := m.FechaHora.In(date.Location())
		return !at.Before(start) && !at.After(end)
	})
}

// DayBounds returns 00:00:00.000 and 23:59:59.999 of date's calendar day.
func DayBounds(date time.Time) (time.Time, time.Time) {
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	end := time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), date.Location())
	return start, end
}

// InscriptionsOf returns the enrollments of a student.
func (s *Store) InscriptionsOf(studentID int) []Inscription {
	return s.Inscriptions.Filter(func(in Inscription) bool { return in.StudentID == studentID })
}

// RemoveInscription deletes the enrollment. With retract set, the cash
// movements linked to it are removed in the same write.
func (s *Store) RemoveInscription(ctx context.Context, id int, retract bool) (removed bool, retracted int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Inscriptions.indexLocked(id) < 0 {
		return false, 0, nil
	}

	prevInscriptions := s.data.Inscriptions
	prevMovements := s.data.CajaMovimientos

	kept := make([]Inscription, 0, len(prevInscriptions))
	for _, in := range prevInscriptions {
		if in.ID != id {
			kept = append(kept, in)
		}
	}
	s.data.Inscriptions = kept

	if retract {
		movements := make([]CashMovement, 0, len(prevMovements))
		for _, mv := range prevMovements {
			if mv.InscriptionID == id {
				retracted++
				continue
			}
			movements = append(movements, mv)
		}
		s.data.CajaMovimientos = movements
	}

	if err := s.persistLocked(ctx); err != nil {
		s.data.Inscriptions = prevInscriptions
		s.data.CajaMovimientos = prevMovements
		return false, 0, fmt.Errorf("remove inscription %d: %w", id, err)
	}
	return true, retracted, nil
}
