// Package jobs wires scheduled background work.
package jobs

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"tixpay/internal/service"
)

// A run that exceeds this is cut off and its remaining items retried on the
// next schedule tick.
const runTimeout = 2 * time.Minute

// ScheduleReconciler registers the reconciliation loop on the given cron
// schedule. The cron instance is not started here.
func ScheduleReconciler(c *cron.Cron, schedule string, reconciler *service.ReconcilerService) error {
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		log.Println("Running job: reconcile pending payments")

		if err := reconciler.Run(ctx); err != nil {
			if errors.Is(err, service.ErrReconcileInProgress) {
				log.Println("reconcile run skipped: previous run still in progress")
				return
			}
			log.Printf("reconcile run failed: %v", err)
		}
	})

	return err
}
