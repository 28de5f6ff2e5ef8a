package ledger

import (
	"errors"
	"time"

	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrDeudaNoEncontrada = errors.New("deuda no encontrada")
	ErrGrupoVacio        = errors.New("no hay cuotas pendientes para ese concepto")
	ErrPeticionDuplicada = errors.New("la operación ya fue procesada")
	ErrSinSaldoRecargo   = errors.New("la deuda no tiene saldo para recargar")
)

// Service runs the debt rules against the database. Every multi-row business
// action happens inside a single transaction, so a failure partway through
// rolls the whole thing back instead of leaving siblings out of sync.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// lockForUpdate adds a row lock on dialects that support it. SQLite (used by
// the test suite) has no FOR UPDATE; its writes are serialized anyway.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// claimKey records an idempotency key inside the caller's transaction. An
// empty key means the client opted out. A duplicate aborts the transaction.
func claimKey(tx *gorm.DB, key, action string) error {
	if key == "" {
		return nil
	}
	err := tx.Create(&models.IdempotencyKey{Key: key, Action: action}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrPeticionDuplicada
	}
	return err
}

// CreateDebt expands a submission into its debt rows (see BuildPlan) and
// inserts all of them atomically.
func (s *Service) CreateDebt(in PlanInput) ([]models.Debt, error) {
	debts, err := BuildPlan(in)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range debts {
			if err := tx.Create(&debts[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return debts, nil
}

// RegisterPayment applies a partial payment (abono) to one debt: validates,
// creates the Payment row plus its history snapshot, and updates the debt's
// balance and status, all in one transaction.
func (s *Service) RegisterPayment(deudaID string, monto float64, fechaPago time.Time, metodoPago, notas *string, idemKey string) (*models.Payment, error) {
	var pago models.Payment

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := claimKey(tx, idemKey, "pago"); err != nil {
			return err
		}

		var deuda models.Debt
		if err := lockForUpdate(tx).Preload("Cliente").First(&deuda, "id = ?", deudaID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDeudaNoEncontrada
			}
			return err
		}

		if err := ValidatePayment(deuda, monto); err != nil {
			return err
		}

		if fechaPago.IsZero() {
			fechaPago = time.Now()
		}
		pago = models.Payment{
			DeudaID:    deuda.ID,
			Monto:      monto,
			Moneda:     deuda.Moneda,
			FechaPago:  fechaPago,
			MetodoPago: metodoPago,
			Notas:      notas,
		}
		if err := tx.Create(&pago).Error; err != nil {
			return err
		}

		if err := tx.Create(snapshotFor(&deuda, &pago)).Error; err != nil {
			return err
		}

		ApplyPayment(&deuda, monto)
		return tx.Model(&models.Debt{}).Where("id = ?", deuda.ID).Updates(map[string]interface{}{
			"monto_abonado":  deuda.MontoAbonado,
			"monto_restante": deuda.MontoRestante,
			"estado":         deuda.Estado,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &pago, nil
}

// SettleGroup pays off every unpaid installment sharing the client and base
// concept: one Payment per sibling equal to its remaining amount, every
// sibling marked pagado, atomically. Returns how many installments were
// settled and the total collected.
func (s *Service) SettleGroup(clienteID, conceptoBase string, fechaPago time.Time, metodoPago *string, idemKey string) (int, float64, error) {
	var settled int
	var total float64

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := claimKey(tx, idemKey, "pago_completo"); err != nil {
			return err
		}

		var deudas []models.Debt
		if err := lockForUpdate(tx).Preload("Cliente").
			Where("cliente_id = ? AND estado <> ?", clienteID, models.EstadoPagado).
			Find(&deudas).Error; err != nil {
			return err
		}

		if fechaPago.IsZero() {
			fechaPago = time.Now()
		}

		for i := range deudas {
			deuda := &deudas[i]
			// The sibling group is a naming convention, so the match
			// happens here rather than in SQL.
			if BaseConcepto(deuda.Concepto) != conceptoBase {
				continue
			}
			if deuda.MontoRestante <= 0 {
				continue
			}

			pago := models.Payment{
				DeudaID:    deuda.ID,
				Monto:      deuda.MontoRestante,
				Moneda:     deuda.Moneda,
				FechaPago:  fechaPago,
				MetodoPago: metodoPago,
			}
			if err := tx.Create(&pago).Error; err != nil {
				return err
			}
			if err := tx.Create(snapshotFor(deuda, &pago)).Error; err != nil {
				return err
			}

			ApplyPayment(deuda, deuda.MontoRestante)
			if err := tx.Model(&models.Debt{}).Where("id = ?", deuda.ID).Updates(map[string]interface{}{
				"monto_abonado":  deuda.MontoAbonado,
				"monto_restante": deuda.MontoRestante,
				"estado":         deuda.Estado,
			}).Error; err != nil {
				return err
			}

			settled++
			total += pago.Monto
		}

		if settled == 0 {
			return ErrGrupoVacio
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return settled, total, nil
}

// ApplySurchargeToDebt is the operator-triggered override: it applies the
// configured surcharge to one debt without the eligibility filter.
func (s *Service) ApplySurchargeToDebt(deudaID string, porcentaje float64, now time.Time, idemKey string) (*models.Debt, float64, error) {
	var deuda models.Debt
	var monto float64

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := claimKey(tx, idemKey, "recargo"); err != nil {
			return err
		}

		if err := lockForUpdate(tx).First(&deuda, "id = ?", deudaID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDeudaNoEncontrada
			}
			return err
		}

		monto = SurchargeAmount(deuda.MontoRestante, porcentaje)
		if monto <= 0 {
			return ErrSinSaldoRecargo
		}

		ApplySurcharge(&deuda, monto, now)
		return tx.Model(&models.Debt{}).Where("id = ?", deuda.ID).Updates(map[string]interface{}{
			"recargos":       deuda.Recargos,
			"monto_total":    deuda.MontoTotal,
			"monto_restante": deuda.MontoRestante,
			"estado":         deuda.Estado,
			"ultimo_recargo": deuda.UltimoRecargo,
		}).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return &deuda, monto, nil
}

// SweepSurcharges evaluates the whole open debt set and surcharges every
// eligible one in a single transaction, returning the count updated. This is
// both the admin endpoint and the nightly job.
func (s *Service) SweepSurcharges(porcentaje float64, now time.Time) (int, error) {
	var updated int

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var candidatas []models.Debt
		if err := lockForUpdate(tx).
			Where("estado IN ? AND monto_restante > 0", []string{models.EstadoPendiente, models.EstadoVencido}).
			Find(&candidatas).Error; err != nil {
			return err
		}

		for i := range candidatas {
			deuda := &candidatas[i]
			if !EligibleForSurcharge(*deuda, now) {
				continue
			}
			monto := SurchargeAmount(deuda.MontoRestante, porcentaje)
			if monto <= 0 {
				continue
			}

			ApplySurcharge(deuda, monto, now)
			if err := tx.Model(&models.Debt{}).Where("id = ?", deuda.ID).Updates(map[string]interface{}{
				"recargos":       deuda.Recargos,
				"monto_total":    deuda.MontoTotal,
				"monto_restante": deuda.MontoRestante,
				"estado":         deuda.Estado,
				"ultimo_recargo": deuda.UltimoRecargo,
			}).Error; err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// DeleteDebt hard-deletes a debt and its payments together.
func (s *Service) DeleteDebt(deudaID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var deuda models.Debt
		if err := tx.First(&deuda, "id = ?", deudaID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDeudaNoEncontrada
			}
			return err
		}
		if err := tx.Where("deuda_id = ?", deudaID).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&deuda).Error
	})
}

// PruneHistory deletes payment-history rows older than the retention window.
// Returns how many rows went away.
func (s *Service) PruneHistory(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	res := s.db.Where("created_at < ?", cutoff).Delete(&models.PaymentHistory{})
	return res.RowsAffected, res.Error
}

func snapshotFor(deuda *models.Debt, pago *models.Payment) *models.PaymentHistory {
	nombre := ""
	if deuda.Cliente != nil {
		nombre = deuda.Cliente.Nombre + " " + deuda.Cliente.Apellido
	}
	deudaID := deuda.ID
	return &models.PaymentHistory{
		DeudaID:       &deudaID,
		ClienteNombre: nombre,
		Concepto:      deuda.Concepto,
		MontoPago:     pago.Monto,
		Moneda:        pago.Moneda,
		FechaPago:     pago.FechaPago,
		MetodoPago:    pago.MetodoPago,
		Notas:         pago.Notas,
	}
}
