package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httpadp "loanledger/internal/adapter/http"
	"loanledger/internal/adapter/middleware"
	"loanledger/internal/adapter/repository/gormdb"
	"loanledger/internal/adapter/transfer"
	"loanledger/internal/config"
	"loanledger/internal/infrastructure/cache"
	"loanledger/internal/infrastructure/db"
	"loanledger/internal/infrastructure/logging"
	"loanledger/internal/infrastructure/metrics"
	"loanledger/internal/usecase/disbursement"
	"loanledger/internal/usecase/loan"
	"loanledger/internal/usecase/notification"
	"loanledger/internal/usecase/repayment"
	"loanledger/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("loanledger terminated", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.OpenGorm(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	logger.Info("database connected", zap.String("driver", cfg.DBDriver))

	if cfg.AutoMigrate {
		if err := gormdb.AutoMigrate(gdb); err != nil {
			return err
		}
	}

	rdb, err := cache.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// repositories
	loans := gormdb.NewLoanRepository(gdb)
	disbursements := gormdb.NewDisbursementRepository(gdb)
	repayments := gormdb.NewRepaymentRepository(gdb)
	users := gormdb.NewUserRepository(gdb)
	tx := gormdb.NewGormUoW(gdb)

	// usecases
	notifyUC := notification.NewUsecase(gormdb.NewNotificationRepository(gdb), logger)
	loanUC := loan.NewUsecase(loans, tx, users, notifyUC,
		loan.WithMetrics(m), loan.WithLogger(logger))
	repayUC := repayment.NewUsecase(loans, repayments, disbursements, tx, notifyUC, cfg.DefaultAnnualRate,
		repayment.WithMetrics(m), repayment.WithLogger(logger))
	transferer := transfer.NewRetrying(&transfer.Simulated{Latency: cfg.TransferLatency},
		cfg.TransferTimeout, cfg.TransferMaxAttempts, logger)
	disbUC := disbursement.NewUsecase(loans, disbursements, tx, users, transferer, repayUC, notifyUC,
		disbursement.WithMetrics(m), disbursement.WithLogger(logger))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.HTTPErrorHandler = httpadp.ErrorHandler
	e.Use(echomw.Recover(), middleware.RequestLogger(logger), middleware.Metrics(m))

	httpadp.Register(e, httpadp.Handlers{
		Health: httpadp.NewHandler(map[string]httpadp.Check{
			"database": sqlDB.PingContext,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}),
		Loans:         httpadp.NewLoanHandler(loanUC),
		Disbursements: httpadp.NewDisbursementHandler(disbUC),
		Repayments:    httpadp.NewRepaymentHandler(repayUC),
		Notifications: httpadp.NewNotificationHandler(notifyUC),
	}, middleware.Idempotency(rdb, cfg.IdempotencyTTL(), logger))
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	sweeper := worker.NewSweeper(repayUC, disbUC, cfg.SweepInterval, cfg.StaleDisbursementAfter,
		worker.WithMetrics(m), worker.WithLogger(logger))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return sweeper.Run(ctx) })

	g.Go(func() error {
		addr := ":" + cfg.AppPort
		logger.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
