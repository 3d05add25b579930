package background

import (
	"context"
	"log"
	"sync"
	"time"

	"stockpilot/internal/caching"
	"stockpilot/internal/jobs"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler manages the periodic background jobs
type JobScheduler struct {
	scheduler     gocron.Scheduler
	alertService  *jobs.LowStockAlertService
	cacheService  caching.CacheService
	alertInterval time.Duration
	scheduledJobs map[string]gocron.Job
	mu            sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(alertService *jobs.LowStockAlertService, cacheService caching.CacheService, alertInterval time.Duration) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	if alertInterval <= 0 {
		alertInterval = 30 * time.Minute
	}

	js := &JobScheduler{
		scheduler:     scheduler,
		alertService:  alertService,
		cacheService:  cacheService,
		alertInterval: alertInterval,
		scheduledJobs: make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// registerJobs registers all background jobs
func (js *JobScheduler) registerJobs() {
	alertsJob, err := js.scheduler.NewJob(
		gocron.DurationJob(js.alertInterval),
		gocron.NewTask(js.processLowStockAlerts),
		gocron.WithName("low-stock-alerts"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create low stock alerts job: %v", err)
	} else {
		js.scheduledJobs["low-stock-alerts"] = alertsJob
	}

	// Safety valve against stale projections if an invalidation was
	// missed (process crash between commit and cache delete).
	cacheJob, err := js.scheduler.NewJob(
		gocron.DurationJob(6*time.Hour),
		gocron.NewTask(js.flushBalanceCache),
		gocron.WithName("balance-cache-flush"),
	)
	if err != nil {
		log.Printf("Failed to create cache flush job: %v", err)
	} else {
		js.scheduledJobs["balance-cache-flush"] = cacheJob
	}

	log.Printf("Registered %d background jobs", len(js.scheduledJobs))
}

// processLowStockAlerts folds balances and logs reorder alerts
func (js *JobScheduler) processLowStockAlerts() error {
	log.Printf("Starting low stock alerts processing")

	ctx := context.Background()
	alerts, err := js.alertService.CheckLowStock(ctx)
	if err != nil {
		return err
	}
	js.alertService.LogAlerts(alerts)

	log.Printf("Completed low stock alerts processing")
	return nil
}

// flushBalanceCache drops every cached projection
func (js *JobScheduler) flushBalanceCache() error {
	log.Printf("Starting balance cache flush")

	if err := js.cacheService.InvalidateAll(context.Background()); err != nil {
		log.Printf("Failed to flush balance cache: %v", err)
		return err
	}

	log.Printf("Balance cache flush completed")
	return nil
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	status := make(map[string]interface{})
	status["total_jobs"] = len(js.scheduledJobs)
	names := make([]string, 0, len(js.scheduledJobs))

	for name := range js.scheduledJobs {
		names = append(names, name)
	}

	status["jobs"] = names

	return status
}
