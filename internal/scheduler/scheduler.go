package scheduler

import (
	"log"
	"os"
	"time"

	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/database"
	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/ledger"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const historyRetention = 30 * 24 * time.Hour

// Start wires the nightly maintenance jobs: pruning old payment history and
// sweeping surcharges over every eligible overdue debt. Schedules are
// overridable via env for ops convenience.
func Start(db *gorm.DB) *cron.Cron {
	svc := ledger.NewService(db)

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	cleanupSchedule := getEnvOrDefault("CLEANUP_SCHEDULE", "@midnight")
	_, err := c.AddFunc(cleanupSchedule, func() {
		log.Println("[LIMPIEZA] Pruning payment history...")
		deleted, err := svc.PruneHistory(historyRetention)
		if err != nil {
			log.Printf("[LIMPIEZA ERROR] %v", err)
			return
		}
		log.Printf("[LIMPIEZA] %d old history rows removed", deleted)
	})
	if err != nil {
		log.Fatalf("[SCHEDULER] invalid cleanup schedule %q: %v", cleanupSchedule, err)
	}

	surchargeSchedule := getEnvOrDefault("SURCHARGE_SCHEDULE", "30 0 * * *")
	_, err = c.AddFunc(surchargeSchedule, func() {
		settings, err := database.GetSettings(db)
		if err != nil {
			log.Printf("[RECARGOS ERROR] could not read settings: %v", err)
			return
		}
		log.Printf("[RECARGOS] Sweeping overdue debts at %.1f%%...", settings.PorcentajeRecargo)
		updated, err := svc.SweepSurcharges(settings.PorcentajeRecargo, time.Now())
		if err != nil {
			log.Printf("[RECARGOS ERROR] %v", err)
			return
		}
		log.Printf("[RECARGOS] %d debts surcharged", updated)
	})
	if err != nil {
		log.Fatalf("[SCHEDULER] invalid surcharge schedule %q: %v", surchargeSchedule, err)
	}

	c.Start()
	log.Printf("✅ Scheduler started (cleanup=%q, surcharges=%q)", cleanupSchedule, surchargeSchedule)
	return c
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
