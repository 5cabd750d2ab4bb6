// Package jobs holds the registered cron jobs.
package jobs

import (
	"log"

	"partstrack/config"
	"partstrack/cron"
	"partstrack/service/inventory"
	"partstrack/service/notify"
	"partstrack/service/purchaseorder"
)

func init() {
	// Default: every weekday at 06:00, before the parts room opens.
	schedule := config.GetEnv("LOW_STOCK_CRON", "0 6 * * 1-5")
	cron.Register("po:generate-low-stock", schedule, runLowStockGeneration)
}

func runLowStockGeneration(args ...string) {
	db, err := config.NewDB()
	if err != nil {
		log.Printf("cron po:generate-low-stock: db connect: %v", err)
		return
	}

	var notifier notify.Port = notify.Fanout{}
	if config.RedisClient != nil {
		notifier = notify.NewRedisPublisher(config.RedisClient, "")
	}
	svc := purchaseorder.NewService(db, inventory.NewAdjuster(db, notifier), notifier)

	res, err := svc.GenerateForLowStock(nil)
	if err != nil {
		log.Printf("cron po:generate-low-stock: %v", err)
		return
	}
	log.Printf("cron po:generate-low-stock: %d order(s) created, %d part(s) skipped without supplier, %d already on order",
		len(res.Orders), len(res.SkippedNoSupplier), len(res.SkippedPending))
	for _, partID := range res.SkippedNoSupplier {
		log.Printf("cron po:generate-low-stock: part %d is low on stock but has no supplier", partID)
	}
}
