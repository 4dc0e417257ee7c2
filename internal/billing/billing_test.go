package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/instituto-admin-api/internal/store"
)

var now = time.Date(2024, time.May, 20, 18, 45, 0, 0, time.UTC)

func TestFinalTotal(t *testing.T) {
	assert.Equal(t, 900.0, FinalTotal(store.PaymentCash, 1000, 1200, 200, 300))
	assert.Equal(t, 1100.0, FinalTotal(store.PaymentCard, 1000, 1200, 200, 300))
	assert.Equal(t, 0.0, FinalTotal(store.PaymentCard, 1000, 100, 0, 500))
}

func TestInscriptionTotalIgnoresBonusWhenDisabled(t *testing.T) {
	in := store.Inscription{PaymentType: store.PaymentCash, TotalEfectivo: 1000, CostoCertificado: 200, BonusAmount: 300}
	assert.Equal(t, 1200.0, InscriptionTotal(in))

	in.HasBonus = true
	assert.Equal(t, 900.0, InscriptionTotal(in))
}

func TestGenerateInstallmentsEvenSplit(t *testing.T) {
	plan := GenerateInstallments(3, 900, now)

	require.Len(t, plan, 3)
	for i, inst := range plan {
		assert.Equal(t, i+1, inst.Number)
		assert.Equal(t, 300.0, inst.Amount)
		assert.Equal(t, store.InstallmentPending, inst.Status)
		assert.Nil(t, inst.PaymentDate)
	}
	assert.Equal(t, time.Date(2024, time.June, 20, 18, 45, 0, 0, time.UTC), plan[1].DueDate)
	assert.Equal(t, time.Date(2024, time.July, 20, 18, 45, 0, 0, time.UTC), plan[2].DueDate)
}

func TestGenerateInstallmentsRemainderOnLast(t *testing.T) {
	plan := GenerateInstallments(3, 1000, now)

	require.Len(t, plan, 3)
	assert.Equal(t, 333.33, plan[0].Amount)
	assert.Equal(t, 333.33, plan[1].Amount)
	assert.Equal(t, 333.34, plan[2].Amount)
	assert.InDelta(t, 1000, plan[0].Amount+plan[1].Amount+plan[2].Amount, 0.0001)

	assert.Nil(t, GenerateInstallments(0, 1000, now))
}

func TestGenerateInstallmentsClampsMonthEnd(t *testing.T) {
	start := time.Date(2024, time.January, 31, 9, 0, 0, 0, time.UTC)
	plan := GenerateInstallments(3, 300, start)

	assert.Equal(t, time.Date(2024, time.February, 29, 9, 0, 0, 0, time.UTC), plan[1].DueDate)
	assert.Equal(t, time.Date(2024, time.March, 31, 9, 0, 0, 0, time.UTC), plan[2].DueDate)
}

func TestGenerateCourseInstallments(t *testing.T) {
	courseStart := time.Date(2024, time.November, 4, 0, 0, 0, 0, time.UTC)
	plan := GenerateCourseInstallments(3, 600, courseStart, 1, 0)

	require.Len(t, plan, 3)
	assert.Equal(t, time.Date(2024, time.December, 10, 0, 0, 0, 0, time.UTC), plan[0].DueDate)
	assert.Equal(t, time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC), plan[1].DueDate)
	assert.Equal(t, time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC), plan[2].DueDate)

	plan = GenerateCourseInstallments(1, 600, courseStart, 0, 5)
	assert.Equal(t, time.Date(2024, time.November, 5, 0, 0, 0, 0, time.UTC), plan[0].DueDate)
}

func TestIsOverdueComparesCalendarDates(t *testing.T) {
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)
	earlierToday := time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC)
	laterToday := time.Date(2024, time.May, 20, 23, 59, 0, 0, time.UTC)

	assert.True(t, IsOverdue(yesterday, now))
	assert.True(t, IsOverdue(now.AddDate(-1, 1, 0), now))
	assert.False(t, IsOverdue(earlierToday, now))
	assert.False(t, IsOverdue(laterToday, now))
	assert.False(t, IsOverdue(tomorrow, now))
}

func TestAdjustedAmount(t *testing.T) {
	assert.Equal(t, 600.0, AdjustedAmount(300, now.AddDate(0, 0, -1), now))
	assert.Equal(t, 300.0, AdjustedAmount(300, now.AddDate(0, 0, 1), now))
	assert.Equal(t, 300.0, AdjustedAmount(300, now, now))
}

func TestMarkPaid(t *testing.T) {
	plan := GenerateInstallments(2, 500, now.AddDate(0, -3, 0))

	paid, err := MarkPaid(plan, 1, now)
	require.NoError(t, err)
	assert.Equal(t, store.InstallmentPaid, paid[0].Status)
	require.NotNil(t, paid[0].PaymentDate)
	assert.Equal(t, now, *paid[0].PaymentDate)
	assert.Equal(t, 250.0, paid[0].Amount)
	assert.Equal(t, store.InstallmentPending, plan[0].Status)

	_, err = MarkPaid(paid, 1, now)
	assert.ErrorIs(t, err, ErrAlreadyPaid)

	_, err = MarkPaid(paid, 7, now)
	assert.ErrorIs(t, err, ErrInstallmentNotFound)
}

func TestSummarize(t *testing.T) {
	in := store.Inscription{
		PaymentType:   store.PaymentCard,
		TotalTarjeta:  900,
		TotalEfectivo: 800,
		Installments: []store.Installment{
			{Number: 1, DueDate: now.AddDate(0, -2, 0), Status: store.InstallmentPaid, Amount: 300},
			{Number: 2, DueDate: now.AddDate(0, 0, -1), Status: store.InstallmentPending, Amount: 300},
			{Number: 3, DueDate: now.AddDate(0, 1, 0), Status: store.InstallmentPending, Amount: 300},
		},
	}

	sum := Summarize(in, now)

	assert.Equal(t, 900.0, sum.Total)
	assert.Equal(t, 300.0, sum.Paid)
	assert.Equal(t, 600.0, sum.Pending)
	assert.Equal(t, 900.0, sum.PendingDue)
	assert.Equal(t, 1, sum.Overdue)
	require.Len(t, sum.Installments, 3)
	assert.False(t, sum.Installments[0].Overdue)
	assert.Zero(t, sum.Installments[0].AmountDue)
	assert.True(t, sum.Installments[1].Overdue)
	assert.Equal(t, 600.0, sum.Installments[1].AmountDue)
	assert.Equal(t, 300.0, sum.Installments[2].AmountDue)
}
