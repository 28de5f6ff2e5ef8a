package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/database"
	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/ledger"

	"github.com/gin-gonic/gin"
)

func ledgerService() *ledger.Service {
	return ledger.NewService(database.DB)
}

// idempotencyKey reads the optional dedup token the frontend sends on
// payment and surcharge mutations.
func idempotencyKey(c *gin.Context) string {
	return c.GetHeader("Idempotency-Key")
}

// abortLedgerError maps rule errors to user-facing responses. Anything not
// recognized is a remote/DB failure: logged, generic 500, never fatal.
func abortLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrDeudaNoEncontrada):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrPeticionDuplicada):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrMontoInvalido),
		errors.Is(err, ledger.ErrAbonoInvalido),
		errors.Is(err, ledger.ErrAbonoExcedeTotal),
		errors.Is(err, ledger.ErrCuotasInvalidas),
		errors.Is(err, ledger.ErrFechaRequerida),
		errors.Is(err, ledger.ErrPagoInvalido),
		errors.Is(err, ledger.ErrPagoExcedeSaldo),
		errors.Is(err, ledger.ErrGrupoVacio),
		errors.Is(err, ledger.ErrSinSaldoRecargo):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Println("Operation failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "La operación no pudo completarse"})
	}
}
