package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"job-board-api/config"
	"job-board-api/services"

	"github.com/joho/godotenv"
)

// notify-dispatch drains the notification outbox once and exits. It is meant
// for cron or for catching up after the API was down.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config.InitLogging()
	settings, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	config.ReloadMailerConfig()
	config.InitDB(settings)

	var (
		maxBatches int
		batchSize  int
		withEmail  bool
		statsOnly  bool
	)

	flag.IntVar(&maxBatches, "max-batches", 100, "stop after this many batches (0 = until the outbox is empty)")
	flag.IntVar(&batchSize, "batch-size", settings.Outbox.BatchSize, "events per batch")
	flag.BoolVar(&withEmail, "email", true, "send notification emails when SMTP is configured")
	flag.BoolVar(&statsOnly, "stats", false, "print outbox statistics and exit")
	flag.Parse()

	if maxBatches < 0 {
		log.Fatal("max-batches must be greater than or equal to 0")
	}

	opts := []services.DispatcherOption{
		services.WithStrategy(settings.Outbox.Retry),
		services.WithBatchSize(batchSize),
	}
	if withEmail && config.MailerConfigured() {
		opts = append(opts, services.WithMailer(services.MailerFunc(config.SendMail)))
	}
	dispatcher := services.NewOutboxDispatcher(config.DB, services.NewNotificationService(config.DB), opts...)

	ctx := context.Background()
	if statsOnly {
		printStats(ctx, dispatcher)
		return
	}

	var total services.DispatchSummary
	for batch := 1; maxBatches == 0 || batch <= maxBatches; batch++ {
		summary, err := dispatcher.DrainOnce(ctx)
		if err != nil {
			log.Fatalf("drain failed: %v", err)
		}
		total.Dispatched += summary.Dispatched
		total.Retried += summary.Retried
		total.Failed += summary.Failed
		if summary.Total() == 0 {
			break
		}
	}

	fmt.Printf("Events dispatched: %d, retried later: %d, failed: %d\n", total.Dispatched, total.Retried, total.Failed)
	printStats(ctx, dispatcher)

	if total.Failed > 0 {
		os.Exit(2)
	}
}

func printStats(ctx context.Context, d *services.OutboxDispatcher) {
	stats, err := d.Stats(ctx)
	if err != nil {
		log.Printf("outbox stats unavailable: %v", err)
		return
	}
	fmt.Printf("Outbox pending: %d, dispatched: %d, failed: %d, cancelled: %d\n", stats.Pending, stats.Dispatched, stats.Failed, stats.Cancelled)
	if stats.OldestPending != nil {
		fmt.Printf("Oldest pending event created at %s\n", stats.OldestPending.Format("2006-01-02 15:04:05"))
	}
}
