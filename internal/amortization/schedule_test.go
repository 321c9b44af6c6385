package amortization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fixed method: principal portions sum back to the original principal and the
// balance lands on exactly zero.
func TestBuild_FixedClosure(t *testing.T) {
	sched, err := Build(3000, 11, 300, MethodFixed)
	require.NoError(t, err)
	require.Len(t, sched.Months, 300)

	var principalPaid float64
	for _, m := range sched.Months {
		principalPaid += m.PrincipalPortion
	}
	assert.InDelta(t, 3000, principalPaid, 0.01)
	assert.Zero(t, sched.Months[299].RemainingBalance)
}

func TestBuild_FixedPaymentIsConstantUntilFinalMonth(t *testing.T) {
	sched, err := Build(1000, 8, 120, MethodFixed)
	require.NoError(t, err)

	first := sched.Months[0].Payment
	for _, m := range sched.Months[:119] {
		assert.InDelta(t, first, m.Payment, 0.02, "month %d", m.Month)
	}
	assert.Equal(t, first, sched.FirstMonthlyPayment)
}

// Declining balance: each payment is <= the previous one.
func TestBuild_DecliningBalanceMonotonic(t *testing.T) {
	sched, err := Build(2400, 10, 240, MethodDecliningBalance)
	require.NoError(t, err)

	prev := sched.Months[0].Payment
	for _, m := range sched.Months[1:] {
		assert.LessOrEqual(t, m.Payment, prev+1e-9, "month %d", m.Month)
		prev = m.Payment
	}
	assert.Greater(t, sched.FirstMonthlyPayment, sched.LastMonthlyPayment)
	assert.Zero(t, sched.Months[239].RemainingBalance)
}

// Zero rate degenerates to equal principal-only payments for both methods.
func TestBuild_ZeroRate(t *testing.T) {
	for _, method := range []Method{MethodFixed, MethodDecliningBalance} {
		sched, err := Build(1200, 0, 12, method)
		require.NoError(t, err, string(method))
		for _, m := range sched.Months {
			assert.Equal(t, 100.0, m.Payment, "%s month %d", method, m.Month)
			assert.Zero(t, m.InterestPortion)
		}
	}
}

// A one-month term returns the full principal (plus one month of interest) as
// a single payment.
func TestBuild_SingleMonthTerm(t *testing.T) {
	sched, err := Build(500, 12, 1, MethodFixed)
	require.NoError(t, err)
	require.Len(t, sched.Months, 1)
	assert.Equal(t, 500.0, sched.Months[0].PrincipalPortion)
	assert.Equal(t, 5.0, sched.Months[0].InterestPortion) // 500 * 1%/month
	assert.Zero(t, sched.Months[0].RemainingBalance)
}

func TestBuild_RejectsBadInput(t *testing.T) {
	_, err := Build(0, 10, 12, MethodFixed)
	assert.ErrorIs(t, err, ErrInvalidPrincipal)

	_, err = Build(-5, 10, 12, MethodFixed)
	assert.ErrorIs(t, err, ErrInvalidPrincipal)

	_, err = Build(100, 10, 0, MethodFixed)
	assert.ErrorIs(t, err, ErrInvalidTerm)

	_, err = Build(100, -1, 12, MethodFixed)
	assert.ErrorIs(t, err, ErrNegativeRate)

	_, err = Build(100, 10, 12, Method("balloon"))
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestBuild_YearlyRollUp(t *testing.T) {
	sched, err := Build(1200, 6, 24, MethodFixed)
	require.NoError(t, err)
	require.Len(t, sched.Years, 2)

	var paid float64
	for _, y := range sched.Years {
		paid += y.PrincipalPaid
	}
	assert.InDelta(t, 1200, paid, 0.02)
	assert.Zero(t, sched.Years[1].EndingBalance)
	assert.Equal(t, 1, sched.Years[0].Year)
	assert.Equal(t, 2, sched.Years[1].Year)
}

// MonthlyPayment must agree with the first installment of the full schedule.
func TestMonthlyPayment_MatchesSchedule(t *testing.T) {
	for _, method := range []Method{MethodFixed, MethodDecliningBalance} {
		sched, err := Build(5000, 9.5, 180, method)
		require.NoError(t, err)
		pay, err := MonthlyPayment(5000, 9.5, 180, method)
		require.NoError(t, err)
		assert.InDelta(t, sched.FirstMonthlyPayment, pay, 0.01, string(method))
	}
}

func TestMonthlyPayment_RejectsBadInput(t *testing.T) {
	_, err := MonthlyPayment(-1, 10, 12, MethodFixed)
	assert.ErrorIs(t, err, ErrInvalidPrincipal)
	_, err = MonthlyPayment(100, 10, 12, Method("bullet"))
	assert.ErrorIs(t, err, ErrUnknownMethod)
}
