package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	str2duration "github.com/xhit/go-str2duration/v2"

	"gitlab.com/vantagelabs/SignalVantage/database"
	"gitlab.com/vantagelabs/SignalVantage/helpers"
	"gitlab.com/vantagelabs/SignalVantage/interfaces"
	"gitlab.com/vantagelabs/SignalVantage/metrics"
	"gitlab.com/vantagelabs/SignalVantage/models"
	"gitlab.com/vantagelabs/SignalVantage/notifiers/telegram"
	binance2 "gitlab.com/vantagelabs/SignalVantage/providers/binance"
	paper2 "gitlab.com/vantagelabs/SignalVantage/providers/paper"
	"gitlab.com/vantagelabs/SignalVantage/scheduler"
	"gitlab.com/vantagelabs/SignalVantage/services"
)

func init() {
	cwd, _ := os.Getwd()
	confFile := os.Getenv("CONF_FILE")
	if confFile == "" {
		confFile = "/conf.env"
	}
	_ = godotenv.Load(cwd + confFile)
}

func main() {
	app := &cli.App{
		Name:  "signalvantage",
		Usage: "tracks issued trading signals and publishes their performance",
		Commands: []*cli.Command{
			{
				Name:   "tracker",
				Usage:  "run the tracking and backtest jobs on a schedule",
				Action: runTracker,
			},
			{
				Name:   "pass",
				Usage:  "run a single tracking pass and print the report",
				Action: runSinglePass,
			},
			{
				Name:  "backtest",
				Usage: "recompute the backtest for one category",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category", Value: "crypto"},
				},
				Action: runBacktest,
			},
			{
				Name:  "cancel",
				Usage: "withdraw a still-active signal",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "id", Required: true},
				},
				Action: runCancel,
			},
			{
				Name:  "trail",
				Usage: "print the recorded price trail of a signal",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "id", Required: true},
				},
				Action: runTrail,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalln(err)
	}
}

func runTracker(c *cli.Context) error {
	helpers.Logger.Infoln("🛰 Signal tracker started")

	tracker, backtest, _, err := buildServices()
	if err != nil {
		return err
	}

	if metricsAddr := os.Getenv("metricsAddr"); metricsAddr != "" {
		metrics.Serve(metricsAddr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	trackingCron := os.Getenv("trackingCron")
	if trackingCron == "" {
		trackingCron = "0 */5 * * * *"
	}
	backtestCron := os.Getenv("backtestCron")
	if backtestCron == "" {
		backtestCron = "0 0 * * * *"
	}

	sched := scheduler.NewScheduler(ctx, tracker, backtest, envDuration("passTimeout", 2*time.Minute))
	if err := sched.RegisterAll(trackingCron, backtestCron); err != nil {
		return err
	}
	sched.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	sched.Stop()
	return nil
}

func runSinglePass(c *cli.Context) error {
	tracker, _, _, err := buildServices()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), envDuration("passTimeout", 2*time.Minute))
	defer cancel()

	report, err := tracker.RunTrackingPass(ctx)
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(report)
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func runBacktest(c *cli.Context) error {
	_, backtest, databaseService, err := buildServices()
	if err != nil {
		return err
	}

	category := models.SignalCategory(c.String("category"))
	result, err := backtest.ComputeBacktest(category)
	if errors.Is(err, services.ErrNoClosedSignals) {
		fmt.Println(`{"message": "no closed signals"}`)
		return nil
	}
	if err != nil {
		return err
	}

	// Print the stored row, not the in-memory result
	stored, err := databaseService.GetBacktestResult(result.Category, result.PeriodStart, result.PeriodEnd)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func runCancel(c *cli.Context) error {
	tracker, _, _, err := buildServices()
	if err != nil {
		return err
	}

	applied, err := tracker.CancelSignal(c.Uint("id"))
	if err != nil {
		return err
	}
	if !applied {
		fmt.Println(`{"message": "signal is no longer active"}`)
		return nil
	}
	fmt.Println(`{"message": "signal cancelled"}`)
	return nil
}

func runTrail(c *cli.Context) error {
	_, _, databaseService, err := buildServices()
	if err != nil {
		return err
	}

	trackings, err := databaseService.GetTrackings(c.Uint("id"))
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(trackings)
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func buildServices() (*services.SignalTrackerService, *services.BacktestService, *database.DBService, error) {
	databaseService, err := database.NewDBService(os.Getenv("databaseHost"), os.Getenv("databasePort"),
		os.Getenv("databaseName"), os.Getenv("databaseUser"), os.Getenv("databasePassword"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	var feed interfaces.PriceFeed
	usePaperFeed, _ := strconv.ParseBool(os.Getenv("usePaperFeed"))
	if usePaperFeed {
		feed = paper2.NewPaperService()
	} else {
		feed = binance2.NewBinanceService()
	}

	var notifier interfaces.Notifier
	telegramNotifications, _ := strconv.ParseBool(os.Getenv("telegramNotifications"))
	if telegramNotifications {
		notifier = telegram.NewTelegramService()
	}

	tracker := services.NewSignalTrackerService(databaseService, feed, notifier, envDuration("feedTimeout", 10*time.Second))
	backtest := services.NewBacktestService(databaseService)
	return tracker, backtest, databaseService, nil
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := str2duration.ParseDuration(raw)
	if err != nil {
		helpers.Logger.Warnln(fmt.Sprintf("invalid %s duration %q, using %s", key, raw, fallback))
		return fallback
	}
	return parsed
}
