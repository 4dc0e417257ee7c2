// Package billing derives payment plans and totals for enrollments. All
// functions are pure: callers pass the current time explicitly.
package billing

import (
	"errors"
	"math"
	"time"

	"github.com/noah-isme/instituto-admin-api/internal/store"
)

// DefaultDueDay is the day of month installments fall due on when a
// course-aligned schedule does not name one.
const DefaultDueDay = 10

var (
	ErrInstallmentNotFound = errors.New("installment not found")
	ErrAlreadyPaid         = errors.New("installment already paid")
)

// GenerateInstallments splits total into count pending installments due at
// one-month steps from start. Amounts are rounded to cents and the last
// installment takes the remainder so the plan sums to total.
func GenerateInstallments(count int, total float64, start time.Time) []store.Installment {
	if count <= 0 {
		return nil
	}
	amounts := split(total, count)
	out := make([]store.Installment, count)
	for i := range out {
		out[i] = store.Installment{
			Number:  i + 1,
			DueDate: addMonths(start, i),
			Status:  store.InstallmentPending,
			Amount:  amounts[i],
		}
	}
	return out
}

// GenerateCourseInstallments is the course-aligned schedule: installments
// fall due on dueDay of consecutive months, the first one offsetMonths
// after the month the course starts.
func GenerateCourseInstallments(count int, total float64, courseStart time.Time, offsetMonths, dueDay int) []store.Installment {
	if count <= 0 {
		return nil
	}
	if dueDay < 1 || dueDay > 28 {
		dueDay = DefaultDueDay
	}
	amounts := split(total, count)
	y, m, _ := courseStart.Date()
	out := make([]store.Installment, count)
	for i := range out {
		out[i] = store.Installment{
			Number:  i + 1,
			DueDate: time.Date(y, m+time.Month(offsetMonths+i), dueDay, 0, 0, 0, 0, courseStart.Location()),
			Status:  store.InstallmentPending,
			Amount:  amounts[i],
		}
	}
	return out
}

// IsOverdue reports whether now's calendar date is strictly after due's.
// Time of day is ignored; due is compared in now's location.
func IsOverdue(due, now time.Time) bool {
	dy, dm, dd := due.In(now.Location()).Date()
	ny, nm, nd := now.Date()
	if ny != dy {
		return ny > dy
	}
	if nm != dm {
		return nm > dm
	}
	return nd > dd
}

// AdjustedAmount doubles amount once its due date has passed.
func AdjustedAmount(amount float64, due, now time.Time) float64 {
	if IsOverdue(due, now) {
		return amount * 2
	}
	return amount
}

// FinalTotal is the course price for the payment type plus the certificate
// cost minus the bonus, never below zero.
func FinalTotal(paymentType store.PaymentType, totalEfectivo, totalTarjeta, certCost, bonus float64) float64 {
	base := totalTarjeta
	if paymentType == store.PaymentCash {
		base = totalEfectivo
	}
	return math.Max(0, roundCents(base+certCost-bonus))
}

// InscriptionTotal is FinalTotal over the prices frozen in the enrollment.
func InscriptionTotal(in store.Inscription) float64 {
	bonus := 0.0
	if in.HasBonus {
		bonus = in.BonusAmount
	}
	return FinalTotal(in.PaymentType, in.TotalEfectivo, in.TotalTarjeta, in.CostoCertificado, bonus)
}

// MarkPaid returns a copy of installments with the given one moved from
// Pendiente to Pagado and stamped with now. The amount is left as planned.
func MarkPaid(installments []store.Installment, number int, now time.Time) ([]store.Installment, error) {
	out := make([]store.Installment, len(installments))
	copy(out, installments)
	for i := range out {
		if out[i].Number != number {
			continue
		}
		if out[i].Status == store.InstallmentPaid {
			return nil, ErrAlreadyPaid
		}
		paidAt := now
		out[i].Status = store.InstallmentPaid
		out[i].PaymentDate = &paidAt
		return out, nil
	}
	return nil, ErrInstallmentNotFound
}

// InstallmentView is an installment with its derived state at a moment.
type InstallmentView struct {
	store.Installment
	Overdue   bool    `json:"overdue"`
	AmountDue float64 `json:"amountDue"`
}

// Summary is the derived payment state of one enrollment.
type Summary struct {
	Inscription  store.Inscription `json:"inscription"`
	Total        float64           `json:"total"`
	Installments []InstallmentView `json:"installments"`
	Paid         float64           `json:"paid"`
	Pending      float64           `json:"pending"`
	PendingDue   float64           `json:"pendingDue"`
	Overdue      int               `json:"overdueCount"`
}

// Summarize derives the per-installment overdue flags and the paid and
// pending totals. PendingDue includes late surcharges; Pending does not.
func Summarize(in store.Inscription, now time.Time) Summary {
	sum := Summary{
		Inscription:  in,
		Total:        InscriptionTotal(in),
		Installments: make([]InstallmentView, 0, len(in.Installments)),
	}
	for _, inst := range in.Installments {
		view := InstallmentView{Installment: inst}
		if inst.Status == store.InstallmentPaid {
			sum.Paid += inst.Amount
		} else {
			view.Overdue = IsOverdue(inst.DueDate, now)
			view.AmountDue = AdjustedAmount(inst.Amount, inst.DueDate, now)
			sum.Pending += inst.Amount
			sum.PendingDue += view.AmountDue
			if view.Overdue {
				sum.Overdue++
			}
		}
		sum.Installments = append(sum.Installments, view)
	}
	sum.Paid = roundCents(sum.Paid)
	sum.Pending = roundCents(sum.Pending)
	sum.PendingDue = roundCents(sum.PendingDue)
	return sum
}

func split(total float64, count int) []float64 {
	each := roundCents(total / float64(count))
	out := make([]float64, count)
	for i := 0; i < count-1; i++ {
		out[i] = each
	}
	out[count-1] = roundCents(total - each*float64(count-1))
	return out
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// addMonths steps t by n calendar months, clamping the day to the end of
// the target month.
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}
