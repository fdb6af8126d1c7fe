// Command generate-dues creates monthly dues outside the HTTP API, either for
// one period or as a backfill over a range of periods.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"club-app-go/internal/config"
	"club-app-go/internal/db"
	billingdomain "club-app-go/internal/domain/billing"
	"club-app-go/internal/repository/inmemory"
	billingrepo "club-app-go/internal/repository/postgres/billing"
	"club-app-go/pkg/logger"
)

func main() {
	var period, from, to string
	var memberID int64

	flag.StringVar(&period, "period", "", "period to generate, YYYY-MM (default: current month)")
	flag.StringVar(&from, "from", "", "first period of a backfill, YYYY-MM")
	flag.StringVar(&to, "to", "", "last period of a backfill, YYYY-MM")
	flag.Int64Var(&memberID, "member", 0, "restrict a backfill to one member id")
	flag.Parse()

	log := logger.NewFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, period, from, to, memberID); err != nil {
		log.Critical("generate-dues: failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log logger.Logger, period, from, to string, memberID int64) error {
	backfill := from != "" || to != ""
	if backfill && (from == "" || to == "") {
		return fmt.Errorf("-from and -to must be set together")
	}
	if backfill && period != "" {
		return fmt.Errorf("-period cannot be combined with -from/-to")
	}
	if !backfill && memberID != 0 {
		return fmt.Errorf("-member only applies to a backfill")
	}

	cfg, err := config.Load(log)
	if err != nil {
		return err
	}
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := dbConn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	service := billingdomain.NewService(
		billingrepo.NewPostgres(dbConn),
		billingdomain.NewSimulatedGateway(cfg.Gateway.FailMethods),
		inmemory.NewStandingCache(),
		billingdomain.Options{
			BaseAmount: cfg.Dues.BaseAmount,
			DueDay:     cfg.Dues.DueDay,
			Currency:   cfg.Dues.Currency,
		},
	)

	if backfill {
		input := billingdomain.BackfillInput{From: from, To: to}
		if memberID > 0 {
			input.MemberID = &memberID
		}
		report, err := service.Backfill(ctx, input)
		if err != nil {
			return err
		}
		log.Info("generate-dues: backfill done",
			"from", report.From, "to", report.To, "months", report.Months,
			"created", report.Created, "skipped", report.Skipped)
		return nil
	}

	if period == "" {
		period = billingdomain.CurrentPeriod(time.Now())
	}
	report, err := service.GenerateMonthly(ctx, period)
	if err != nil {
		return err
	}
	log.Info("generate-dues: period done", "period", report.Period, "created", report.Created, "skipped", report.Skipped)
	return nil
}
