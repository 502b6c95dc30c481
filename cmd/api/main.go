package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	gormlogger "gorm.io/gorm/logger"

	httpadp "kasbon-backend/internal/adapter/http"
	idemp "kasbon-backend/internal/adapter/middleware"
	"kasbon-backend/internal/adapter/repository/mysql"
	"kasbon-backend/internal/advisory"
	"kasbon-backend/internal/config"
	"kasbon-backend/internal/events"
	"kasbon-backend/internal/events/kafka"
	"kasbon-backend/internal/infrastructure/cache"
	"kasbon-backend/internal/infrastructure/db"
	"kasbon-backend/internal/logger"
	"kasbon-backend/internal/scheduler"
	"kasbon-backend/internal/seed"
	"kasbon-backend/internal/usecase/employee"
	"kasbon-backend/internal/usecase/loan"
	"kasbon-backend/internal/usecase/reconcile"
	"kasbon-backend/internal/usecase/report"
	"kasbon-backend/pkg/keylock"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("config", "error", err)
		os.Exit(1)
	}
	logger.Initialize(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	gormLevel := gormlogger.Warn
	if cfg.LogLevel == "debug" {
		gormLevel = gormlogger.Info
	}
	gdb, err := db.Open(cfg.DBDriver, cfg.DSN(), db.WithLogLevel(gormLevel))
	if err != nil {
		logger.Error("db open", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gdb); err != nil {
		logger.Error("db migrate", "error", err)
		os.Exit(1)
	}

	emps := mysql.NewEmployeeRepository(gdb)
	loans := mysql.NewLoanRepository(gdb)
	txs := mysql.NewTransactionRepository(gdb)
	tx := mysql.NewGormUoW(gdb)

	// redis is optional: without it the dashboard caches in memory and
	// mutating requests are not deduplicated
	var dashCache report.Cache = cache.NewMemoryCache()
	var mw []echo.MiddlewareFunc
	health := httpadp.NewHandler().WithCheck("db", db.Ping(gdb))
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Warn("redis unavailable, idempotency disabled", "addr", cfg.RedisAddr, "error", err)
	} else {
		defer rdb.Close()
		dashCache = cache.NewRedisCache(rdb, "kasbon:")
		health.WithCheck("redis", cache.Ping(rdb))
		mw = append(mw, idemp.Idempotency(rdb, cfg.IdempotencyTTL()))
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kp.Close()
		publisher = kp
	}

	adv := advisory.NewClient(advisory.Config{
		APIKey:  cfg.AdvisoryAPIKey,
		APIURL:  cfg.AdvisoryAPIURL,
		Model:   cfg.AdvisoryModel,
		Timeout: cfg.AdvisoryTimeout(),
	})
	if !adv.Enabled() {
		logger.Warn("ADVISORY_API_KEY not set, advisory answers will be placeholders")
	}

	locks := keylock.New()
	dash := report.NewUsecase(emps, loans, txs, dashCache, cfg.DashboardTTL())
	empUC := employee.NewUsecase(emps, loans, tx,
		employee.WithAdviser(adv),
		employee.WithInvalidator(dash),
	)
	loanUC := loan.NewUsecase(loans, emps, txs, tx,
		loan.WithAdvisor(adv),
		loan.WithInvalidator(dash),
		loan.WithPublisher(publisher),
		loan.WithLocker(locks),
	)
	recUC := reconcile.NewUsecase(loans, txs, tx, locks, dash)

	if cfg.SeedDemo {
		if _, err := seed.Demo(context.Background(), empUC, loanUC); err != nil {
			logger.Error("seed demo data", "error", err)
			os.Exit(1)
		}
	}

	sched := scheduler.New()
	err = sched.Register("reconcile", cfg.ReconcileSchedule, func(ctx context.Context) error {
		_, err := recUC.Run(ctx, cfg.ReconcileRepair)
		return err
	})
	if err != nil {
		logger.Error("scheduler", "error", err)
		os.Exit(1)
	}
	sched.Start()

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())

	httpadp.Register(e, httpadp.Handlers{
		Health:    health,
		Employees: httpadp.NewEmployeeHandler(empUC),
		Loans:     httpadp.NewLoanHandler(loanUC),
		Reports:   httpadp.NewReportHandler(dash, recUC),
	}, mw...)

	addr := ":" + cfg.AppPort
	go func() {
		logger.Info("listening", "addr", addr, "db_driver", cfg.DBDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	sched.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
}
