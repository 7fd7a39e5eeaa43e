package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/csm-garage/backoffice-go/internal/config"
	appHTTP "github.com/csm-garage/backoffice-go/internal/handler/http"
	"github.com/csm-garage/backoffice-go/internal/pkg/database"
	"github.com/csm-garage/backoffice-go/internal/pkg/jwt"
	"github.com/csm-garage/backoffice-go/internal/pkg/lock"
	"github.com/csm-garage/backoffice-go/internal/pkg/logger"
	"github.com/csm-garage/backoffice-go/internal/pkg/mpesa"
	"github.com/csm-garage/backoffice-go/internal/repository/postgresql"
	commissionService "github.com/csm-garage/backoffice-go/internal/service/commission"
	paymentService "github.com/csm-garage/backoffice-go/internal/service/payment"
	payrollService "github.com/csm-garage/backoffice-go/internal/service/payroll"
	"go.uber.org/zap"
)

const version = "v1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	log, err := logger.NewForEnvironment(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		fmt.Println("Error creating logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		log.Fatal("Error connecting to database", zap.Error(err))
	}
	defer db.Close()

	var locker lock.Locker
	if cfg.Redis.Addr != "" {
		redisLocker, client, err := lock.NewRedisLocker(lock.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Error connecting to Redis", zap.Error(err))
		}
		defer func() { _ = client.Close() }()
		locker = redisLocker
		log.Info("Payroll run locks backed by Redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		locker = lock.NewMemoryLocker()
		log.Info("Payroll run locks held in process memory")
	}

	txManager := postgresql.NewTransactionManager(db)
	companyRepo := postgresql.NewCompanyRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	saleRepo := postgresql.NewSaleRepository(db)
	commissionRepo := postgresql.NewCommissionRepository(db)
	remunerationRepo := postgresql.NewRemunerationRepository(db)
	deductionRepo := postgresql.NewDeductionRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	paymentRepo := postgresql.NewPaymentRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)

	payrollSvc := payrollService.NewPayrollService(
		txManager,
		locker,
		cfg.Payroll.RunLockTTL,
		companyRepo,
		employeeRepo,
		remunerationRepo,
		deductionRepo,
		payrollRepo,
		commissionRepo,
		log.Named("payroll"),
	)
	commissionSvc := commissionService.NewCommissionService(txManager, commissionRepo, saleRepo, employeeRepo, log.Named("commission"))
	paymentSvc := paymentService.NewPaymentService(txManager, paymentRepo, saleRepo, log.Named("payment"))

	requestLogLevel := slog.LevelInfo
	if cfg.App.Env != "production" {
		requestLogLevel = slog.LevelDebug
	}
	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		Env:             cfg.App.Env,
		Version:         version,
		CORSOrigins:     cfg.App.CORSOrigins,
		RequestLogLevel: requestLogLevel,
	}, JWTService, appHTTP.Handlers{
		Payroll:    appHTTP.NewPayrollHandler(payrollSvc),
		Commission: appHTTP.NewCommissionHandler(commissionSvc),
		Payment:    appHTTP.NewPaymentHandler(paymentSvc),
		Mpesa:      appHTTP.NewMpesaHandler(paymentSvc, mpesa.NewVerifier(cfg.MPesa.CallbackToken), log.Named("mpesa")),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server running", zap.String("addr", server.Addr), zap.String("env", cfg.App.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}
