package ledger

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/models"
)

// Validation errors. Handlers map these to 400 responses; none of them
// leaves a row behind.
var (
	ErrMontoInvalido    = errors.New("el monto total debe ser mayor a 0")
	ErrAbonoInvalido    = errors.New("el abono inicial no puede ser negativo")
	ErrAbonoExcedeTotal = errors.New("el monto abonado no puede ser mayor al monto total")
	ErrCuotasInvalidas  = errors.New("debe ser al menos 1 cuota")
	ErrFechaRequerida   = errors.New("la fecha de vencimiento es obligatoria")
	ErrPagoInvalido     = errors.New("el monto del pago debe ser mayor a 0")
	ErrPagoExcedeSaldo  = errors.New("el monto no puede ser mayor al saldo restante")
)

// Surcharges are re-applicable only after this cool-down, regardless of the
// displayed dias_para_recargo setting (the policy the business actually ran).
const surchargeCooldown = 30 * 24 * time.Hour

// PlanInput is everything needed to turn one form submission into one or
// more debt rows.
type PlanInput struct {
	ClienteID        string
	Concepto         string
	MontoTotal       float64
	AbonoInicial     float64
	Cuotas           int
	FechaVencimiento time.Time
	Moneda           string
	Notas            *string
}

var cuotaSuffix = regexp.MustCompile(` - Cuota \d+/\d+$`)

// BaseConcepto strips the " - Cuota i/N" suffix so sibling installments can
// be regrouped by client + concept.
func BaseConcepto(concepto string) string {
	return cuotaSuffix.ReplaceAllString(concepto, "")
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Recalc re-derives the remaining balance and status from the totals. This
// is the only place either field is computed: callers mutate MontoTotal or
// MontoAbonado and then recalc, so remaining can never drift or double-count.
func Recalc(d *models.Debt) {
	restante := roundCents(d.MontoTotal - d.MontoAbonado)
	if restante < 0 {
		restante = 0
	}
	d.MontoRestante = restante
	if restante <= 0 {
		d.Estado = models.EstadoPagado
	} else if d.Estado == models.EstadoPagado {
		d.Estado = models.EstadoPendiente
	}
}

// BuildPlan validates a debt submission and expands it into the rows to
// insert: a single paid debt, a single pending debt, or N installments with
// due dates one calendar month apart.
//
// The remaining amount (total minus initial payment) is what gets split.
// The first N-1 installments take the cent-rounded even share and the last
// one takes the exact remainder, so the installment totals always sum back
// to the remaining amount.
func BuildPlan(in PlanInput) ([]models.Debt, error) {
	if in.MontoTotal <= 0 {
		return nil, ErrMontoInvalido
	}
	if in.AbonoInicial < 0 {
		return nil, ErrAbonoInvalido
	}
	if in.AbonoInicial > in.MontoTotal {
		return nil, ErrAbonoExcedeTotal
	}
	if in.Cuotas < 1 {
		return nil, ErrCuotasInvalidas
	}
	if in.FechaVencimiento.IsZero() {
		return nil, ErrFechaRequerida
	}

	restante := roundCents(in.MontoTotal - in.AbonoInicial)

	// Fully covered by the initial payment: one debt, already settled.
	if restante <= 0 {
		d := models.Debt{
			ClienteID:        in.ClienteID,
			Concepto:         in.Concepto,
			MontoTotal:       in.MontoTotal,
			MontoAbonado:     in.MontoTotal,
			MontoRestante:    0,
			Moneda:           in.Moneda,
			FechaVencimiento: in.FechaVencimiento,
			Estado:           models.EstadoPagado,
			Notas:            in.Notas,
		}
		return []models.Debt{d}, nil
	}

	if in.Cuotas == 1 {
		d := models.Debt{
			ClienteID:        in.ClienteID,
			Concepto:         in.Concepto,
			MontoTotal:       in.MontoTotal,
			MontoAbonado:     in.AbonoInicial,
			MontoRestante:    restante,
			Moneda:           in.Moneda,
			FechaVencimiento: in.FechaVencimiento,
			Estado:           models.EstadoPendiente,
			Notas:            in.Notas,
		}
		return []models.Debt{d}, nil
	}

	share := roundCents(restante / float64(in.Cuotas))
	last := roundCents(restante - share*float64(in.Cuotas-1))

	// Every installment must carry a strictly positive amount. A remainder
	// smaller than one cent per installment rounds a share to zero, or pushes
	// the last one negative when the rounded shares overshoot.
	if share <= 0 || last <= 0 {
		return nil, ErrCuotasInvalidas
	}

	debts := make([]models.Debt, 0, in.Cuotas)

	for i := 0; i < in.Cuotas; i++ {
		monto := share
		if i == in.Cuotas-1 {
			// Last installment absorbs the rounding remainder.
			monto = last
		}

		notas := in.Notas
		if i == 0 && in.AbonoInicial > 0 {
			n := strings.TrimSpace(fmt.Sprintf("%s | Abono inicial: $%.2f", derefOrEmpty(in.Notas), in.AbonoInicial))
			notas = &n
		}

		debts = append(debts, models.Debt{
			ClienteID:        in.ClienteID,
			Concepto:         fmt.Sprintf("%s - Cuota %d/%d", in.Concepto, i+1, in.Cuotas),
			MontoTotal:       monto,
			MontoAbonado:     0,
			MontoRestante:    monto,
			Moneda:           in.Moneda,
			FechaVencimiento: in.FechaVencimiento.AddDate(0, i, 0),
			Estado:           models.EstadoPendiente,
			Notas:            notas,
		})
	}
	return debts, nil
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// SurchargeAmount rounds to the nearest whole currency unit, matching how
// the late fee was always quoted to clients.
func SurchargeAmount(restante, porcentaje float64) float64 {
	if restante <= 0 || porcentaje <= 0 {
		return 0
	}
	return math.Round(restante * porcentaje / 100)
}

// EligibleForSurcharge reports whether a debt may receive an automatic
// surcharge at the given moment: it still owes money, its due date is on or
// before today (same-day eligible), and no surcharge landed within the last
// 30 days. A nil UltimoRecargo means never surcharged.
func EligibleForSurcharge(d models.Debt, now time.Time) bool {
	if d.Estado != models.EstadoPendiente && d.Estado != models.EstadoVencido {
		return false
	}
	if d.MontoRestante <= 0 {
		return false
	}
	if startOfDay(d.FechaVencimiento).After(startOfDay(now)) {
		return false
	}
	if d.UltimoRecargo != nil && now.Sub(*d.UltimoRecargo) < surchargeCooldown {
		return false
	}
	return true
}

// ApplySurcharge mutates the debt in place: the fee is added to the
// accumulated surcharges and the total, the remaining balance is re-derived,
// and the debt is flagged vencido with a fresh cool-down stamp.
func ApplySurcharge(d *models.Debt, monto float64, now time.Time) {
	if monto <= 0 {
		return
	}
	d.Recargos = roundCents(d.Recargos + monto)
	d.MontoTotal = roundCents(d.MontoTotal + monto)
	Recalc(d)
	if d.Estado != models.EstadoPagado {
		d.Estado = models.EstadoVencido
	}
	t := now
	d.UltimoRecargo = &t
}

// ValidatePayment rejects amounts that are non-positive or exceed the
// remaining balance. Must be called before any write.
func ValidatePayment(d models.Debt, monto float64) error {
	if monto <= 0 {
		return ErrPagoInvalido
	}
	if monto > d.MontoRestante+1e-9 {
		return ErrPagoExcedeSaldo
	}
	return nil
}

// ApplyPayment credits a validated amount against the debt.
func ApplyPayment(d *models.Debt, monto float64) {
	d.MontoAbonado = roundCents(d.MontoAbonado + monto)
	Recalc(d)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
