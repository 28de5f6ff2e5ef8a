package ledger

import (
	"testing"
	"time"

	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fechaVenc(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func planInput(total, abono float64, cuotas int) PlanInput {
	return PlanInput{
		ClienteID:        "cliente-1",
		Concepto:         "Heladera",
		MontoTotal:       total,
		AbonoInicial:     abono,
		Cuotas:           cuotas,
		FechaVencimiento: fechaVenc(2024, time.July, 15),
		Moneda:           "ARS",
	}
}

// ============================================================================
// PLAN DE CUOTAS
// ============================================================================

func TestBuildPlan_SingleDebt(t *testing.T) {
	debts, err := BuildPlan(planInput(1000, 0, 1))
	require.NoError(t, err)
	require.Len(t, debts, 1)

	d := debts[0]
	assert.Equal(t, models.EstadoPendiente, d.Estado)
	assert.Equal(t, 1000.0, d.MontoTotal)
	assert.Equal(t, 1000.0, d.MontoRestante)
	assert.Equal(t, 0.0, d.MontoAbonado)
	assert.Equal(t, "Heladera", d.Concepto)
}

func TestBuildPlan_SingleDebtWithInitialPayment(t *testing.T) {
	debts, err := BuildPlan(planInput(1000, 300, 1))
	require.NoError(t, err)
	require.Len(t, debts, 1)

	assert.Equal(t, 300.0, debts[0].MontoAbonado)
	assert.Equal(t, 700.0, debts[0].MontoRestante)
	assert.Equal(t, models.EstadoPendiente, debts[0].Estado)
}

func TestBuildPlan_PaidInFull(t *testing.T) {
	debts, err := BuildPlan(planInput(500, 500, 1))
	require.NoError(t, err)
	require.Len(t, debts, 1)

	assert.Equal(t, models.EstadoPagado, debts[0].Estado)
	assert.Equal(t, 500.0, debts[0].MontoAbonado)
	assert.Equal(t, 0.0, debts[0].MontoRestante)
}

func TestBuildPlan_ThreeInstallments(t *testing.T) {
	in := planInput(900, 0, 3)
	in.FechaVencimiento = fechaVenc(2024, time.January, 1)

	debts, err := BuildPlan(in)
	require.NoError(t, err)
	require.Len(t, debts, 3)

	for i, d := range debts {
		assert.Equal(t, 300.0, d.MontoTotal, "cuota %d", i+1)
		assert.Equal(t, models.EstadoPendiente, d.Estado)
		assert.Equal(t, 0.0, d.MontoAbonado)
	}
	assert.Equal(t, "Heladera - Cuota 1/3", debts[0].Concepto)
	assert.Equal(t, "Heladera - Cuota 2/3", debts[1].Concepto)
	assert.Equal(t, "Heladera - Cuota 3/3", debts[2].Concepto)

	assert.Equal(t, fechaVenc(2024, time.January, 1), debts[0].FechaVencimiento)
	assert.Equal(t, fechaVenc(2024, time.February, 1), debts[1].FechaVencimiento)
	assert.Equal(t, fechaVenc(2024, time.March, 1), debts[2].FechaVencimiento)
}

func TestBuildPlan_InstallmentsSumExactly(t *testing.T) {
	// 1000 / 3 rounds to 333.33; the last installment takes the remainder
	// so nothing is lost to rounding.
	debts, err := BuildPlan(planInput(1000, 0, 3))
	require.NoError(t, err)
	require.Len(t, debts, 3)

	assert.Equal(t, 333.33, debts[0].MontoTotal)
	assert.Equal(t, 333.33, debts[1].MontoTotal)
	assert.Equal(t, 333.34, debts[2].MontoTotal)

	var sum float64
	for _, d := range debts {
		sum += d.MontoTotal
	}
	assert.InDelta(t, 1000.0, sum, 1e-9)
}

func TestBuildPlan_RejectsSubCentShares(t *testing.T) {
	// 0.03 over 5 installments: the rounded share (0.01) overshoots and the
	// last installment would come out negative. Every share must stay
	// strictly positive, so the plan is rejected outright.
	_, err := BuildPlan(planInput(0.03, 0, 5))
	assert.ErrorIs(t, err, ErrCuotasInvalidas)

	// 0.02 over 5: each share rounds to zero.
	_, err = BuildPlan(planInput(0.02, 0, 5))
	assert.ErrorIs(t, err, ErrCuotasInvalidas)

	// The smallest valid split still works.
	debts, err := BuildPlan(planInput(0.05, 0, 5))
	require.NoError(t, err)
	require.Len(t, debts, 5)
	for _, d := range debts {
		assert.Equal(t, 0.01, d.MontoTotal)
		assert.Equal(t, models.EstadoPendiente, d.Estado)
	}
}

func TestBuildPlan_InitialPaymentNotedOnFirstInstallment(t *testing.T) {
	debts, err := BuildPlan(planInput(1000, 100, 3))
	require.NoError(t, err)
	require.Len(t, debts, 3)

	require.NotNil(t, debts[0].Notas)
	assert.Contains(t, *debts[0].Notas, "Abono inicial: $100.00")
	assert.Nil(t, debts[1].Notas)

	// The split operates on the remaining 900, not the original total.
	assert.Equal(t, 300.0, debts[0].MontoTotal)
	assert.Equal(t, 0.0, debts[0].MontoAbonado)
}

func TestBuildPlan_Validation(t *testing.T) {
	_, err := BuildPlan(planInput(0, 0, 1))
	assert.ErrorIs(t, err, ErrMontoInvalido)

	_, err = BuildPlan(planInput(100, 200, 1))
	assert.ErrorIs(t, err, ErrAbonoExcedeTotal)

	_, err = BuildPlan(planInput(100, -5, 1))
	assert.ErrorIs(t, err, ErrAbonoInvalido)

	_, err = BuildPlan(planInput(100, 0, 0))
	assert.ErrorIs(t, err, ErrCuotasInvalidas)

	in := planInput(100, 0, 1)
	in.FechaVencimiento = time.Time{}
	_, err = BuildPlan(in)
	assert.ErrorIs(t, err, ErrFechaRequerida)
}

// ============================================================================
// RECARGOS
// ============================================================================

func TestSurchargeAmount(t *testing.T) {
	assert.Equal(t, 100.0, SurchargeAmount(1000, 10))
	assert.Equal(t, 33.0, SurchargeAmount(333, 10)) // 33.3 rounds down
	assert.Equal(t, 34.0, SurchargeAmount(335, 10)) // 33.5 rounds up
	assert.Equal(t, 0.0, SurchargeAmount(0, 10))
	assert.Equal(t, 0.0, SurchargeAmount(-50, 10))
	assert.Equal(t, 0.0, SurchargeAmount(1000, 0))
}

func overdueDebt(restante float64) models.Debt {
	return models.Debt{
		MontoTotal:       restante,
		MontoAbonado:     0,
		MontoRestante:    restante,
		Estado:           models.EstadoPendiente,
		FechaVencimiento: fechaVenc(2024, time.January, 1),
	}
}

func TestEligibleForSurcharge(t *testing.T) {
	now := fechaVenc(2024, time.February, 1)

	assert.True(t, EligibleForSurcharge(overdueDebt(1000), now))

	// Same-day due dates are eligible.
	d := overdueDebt(1000)
	d.FechaVencimiento = now
	assert.True(t, EligibleForSurcharge(d, now.Add(10*time.Hour)))

	// Future due dates are not.
	d = overdueDebt(1000)
	d.FechaVencimiento = now.AddDate(0, 0, 1)
	assert.False(t, EligibleForSurcharge(d, now))

	// Paid or zero-balance debts are not.
	d = overdueDebt(1000)
	d.Estado = models.EstadoPagado
	assert.False(t, EligibleForSurcharge(d, now))

	d = overdueDebt(1000)
	d.MontoRestante = 0
	assert.False(t, EligibleForSurcharge(d, now))

	// Already-vencido debts remain eligible once the cool-down passes.
	d = overdueDebt(1000)
	d.Estado = models.EstadoVencido
	assert.True(t, EligibleForSurcharge(d, now))
}

func TestEligibleForSurcharge_Cooldown(t *testing.T) {
	base := fechaVenc(2024, time.March, 1)
	last := base
	d := overdueDebt(1000)
	d.UltimoRecargo = &last

	assert.False(t, EligibleForSurcharge(d, base.AddDate(0, 0, 29)))
	assert.True(t, EligibleForSurcharge(d, base.AddDate(0, 0, 31)))
}

func TestApplySurcharge(t *testing.T) {
	now := fechaVenc(2024, time.February, 1)
	d := overdueDebt(1000)

	ApplySurcharge(&d, SurchargeAmount(d.MontoRestante, 10), now)

	assert.Equal(t, 100.0, d.Recargos)
	assert.Equal(t, 1100.0, d.MontoTotal)
	assert.Equal(t, 1100.0, d.MontoRestante)
	assert.Equal(t, models.EstadoVencido, d.Estado)
	require.NotNil(t, d.UltimoRecargo)
	assert.Equal(t, now, *d.UltimoRecargo)
}

func TestApplySurcharge_RemainingIsRederived(t *testing.T) {
	// A debt with a partial payment: the surcharge raises the total, and
	// remaining must come out as total - paid, never double-counted.
	now := fechaVenc(2024, time.February, 1)
	d := models.Debt{
		MontoTotal:       1000,
		MontoAbonado:     400,
		MontoRestante:    600,
		Estado:           models.EstadoPendiente,
		FechaVencimiento: fechaVenc(2024, time.January, 1),
	}

	ApplySurcharge(&d, SurchargeAmount(d.MontoRestante, 10), now)

	assert.Equal(t, 60.0, d.Recargos)
	assert.Equal(t, 1060.0, d.MontoTotal)
	assert.Equal(t, 660.0, d.MontoRestante)
}

// ============================================================================
// PAGOS
// ============================================================================

func TestValidatePayment(t *testing.T) {
	d := overdueDebt(500)

	assert.NoError(t, ValidatePayment(d, 500))
	assert.NoError(t, ValidatePayment(d, 0.01))
	assert.ErrorIs(t, ValidatePayment(d, 0), ErrPagoInvalido)
	assert.ErrorIs(t, ValidatePayment(d, -10), ErrPagoInvalido)
	assert.ErrorIs(t, ValidatePayment(d, 500.01), ErrPagoExcedeSaldo)
}

func TestApplyPayment_Partial(t *testing.T) {
	d := overdueDebt(1000)

	ApplyPayment(&d, 400)

	assert.Equal(t, 400.0, d.MontoAbonado)
	assert.Equal(t, 600.0, d.MontoRestante)
	assert.Equal(t, models.EstadoPendiente, d.Estado)
}

func TestApplyPayment_SettlesDebt(t *testing.T) {
	d := models.Debt{
		MontoTotal:    500,
		MontoAbonado:  0,
		MontoRestante: 500,
		Estado:        models.EstadoPendiente,
	}

	ApplyPayment(&d, 500)

	assert.Equal(t, models.EstadoPagado, d.Estado)
	assert.Equal(t, 0.0, d.MontoRestante)
	assert.Equal(t, 500.0, d.MontoAbonado)
}

func TestRecalc_Invariant(t *testing.T) {
	cases := []struct {
		total, abonado float64
		wantRestante   float64
		wantPagado     bool
	}{
		{1000, 0, 1000, false},
		{1000, 400, 600, false},
		{1000, 1000, 0, true},
		{1000, 1200, 0, true}, // overpaid clamps at zero
	}
	for _, c := range cases {
		d := models.Debt{MontoTotal: c.total, MontoAbonado: c.abonado, Estado: models.EstadoPendiente}
		Recalc(&d)
		assert.Equal(t, c.wantRestante, d.MontoRestante)
		assert.Equal(t, c.wantPagado, d.Estado == models.EstadoPagado)
	}
}

// ============================================================================
// AGRUPACION DE CUOTAS
// ============================================================================

func TestBaseConcepto(t *testing.T) {
	assert.Equal(t, "Heladera", BaseConcepto("Heladera - Cuota 2/12"))
	assert.Equal(t, "Heladera", BaseConcepto("Heladera"))
	assert.Equal(t, "TV - Oferta", BaseConcepto("TV - Oferta - Cuota 1/3"))
}
