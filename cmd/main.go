package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	completeAppointmentHandler "github.com/m04kA/SMC-SalonService/internal/api/handlers/complete_appointment"
	createAppointmentHandler "github.com/m04kA/SMC-SalonService/internal/api/handlers/create_appointment"
	createPaymentRequestHandler "github.com/m04kA/SMC-SalonService/internal/api/handlers/create_payment_request"
	editAppointmentHandler "github.com/m04kA/SMC-SalonService/internal/api/handlers/edit_appointment"
	getAppointmentHandler "github.com/m04kA/SMC-SalonService/internal/api/handlers/get_appointment"
	getCommissionsHandler "github.com/m04kA/SMC-SalonService/internal/api/handlers/get_commissions"
	getPaymentRequestsHandler "github.com/m04kA/SMC-SalonService/internal/api/handlers/get_payment_requests"
	getRulesHandler "github.com/m04kA/SMC-SalonService/internal/api/handlers/get_rules"
	getScheduleHandler "github.com/m04kA/SMC-SalonService/internal/api/handlers/get_schedule"
	listAppointmentsHandler "github.com/m04kA/SMC-SalonService/internal/api/handlers/list_appointments"
	saveScheduleHandler "github.com/m04kA/SMC-SalonService/internal/api/handlers/save_schedule"
	transitionAppointmentHandler "github.com/m04kA/SMC-SalonService/internal/api/handlers/transition_appointment"
	updatePaymentRequestHandler "github.com/m04kA/SMC-SalonService/internal/api/handlers/update_payment_request"
	updateRulesHandler "github.com/m04kA/SMC-SalonService/internal/api/handlers/update_rules"
	"github.com/m04kA/SMC-SalonService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonService/internal/config"
	appointmentRepo "github.com/m04kA/SMC-SalonService/internal/infra/storage/appointment"
	branchRepo "github.com/m04kA/SMC-SalonService/internal/infra/storage/branch"
	catalogRepo "github.com/m04kA/SMC-SalonService/internal/infra/storage/catalog"
	commissionRepo "github.com/m04kA/SMC-SalonService/internal/infra/storage/commission"
	paymentRepo "github.com/m04kA/SMC-SalonService/internal/infra/storage/payment"
	paymentMethodRepo "github.com/m04kA/SMC-SalonService/internal/infra/storage/paymentmethod"
	paymentRequestRepo "github.com/m04kA/SMC-SalonService/internal/infra/storage/paymentrequest"
	permissionRepo "github.com/m04kA/SMC-SalonService/internal/infra/storage/permission"
	rulesRepo "github.com/m04kA/SMC-SalonService/internal/infra/storage/rules"
	scheduleRepo "github.com/m04kA/SMC-SalonService/internal/infra/storage/schedule"
	specialistRepo "github.com/m04kA/SMC-SalonService/internal/infra/storage/specialist"
	"github.com/m04kA/SMC-SalonService/internal/integrations/evidencestorage"
	appointmentsService "github.com/m04kA/SMC-SalonService/internal/service/appointments"
	commissionsService "github.com/m04kA/SMC-SalonService/internal/service/commissions"
	rulesService "github.com/m04kA/SMC-SalonService/internal/service/rules"
	schedulesService "github.com/m04kA/SMC-SalonService/internal/service/schedules"
	completeAppointmentUC "github.com/m04kA/SMC-SalonService/internal/usecase/complete_appointment"
	createAppointmentUC "github.com/m04kA/SMC-SalonService/internal/usecase/create_appointment"
	"github.com/m04kA/SMC-SalonService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonService/pkg/logger"
	"github.com/m04kA/SMC-SalonService/pkg/metrics"
	"github.com/m04kA/SMC-SalonService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-SalonService...")

	// Метрики: при выключенных метриках nil-коллектор ничего не пишет
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Интеграции
	evidenceClient := evidencestorage.NewClient(
		cfg.EvidenceStorage.URL,
		time.Duration(cfg.EvidenceStorage.Timeout)*time.Second,
		log,
	)
	log.Info("Evidence storage client initialized (url=%s, timeout=%ds)",
		cfg.EvidenceStorage.URL, cfg.EvidenceStorage.Timeout)

	// Репозитории
	appointmentRepository := appointmentRepo.NewRepository(wrappedDB)
	branchRepository := branchRepo.NewRepository(wrappedDB)
	catalogRepository := catalogRepo.NewRepository(wrappedDB)
	commissionRepository := commissionRepo.NewRepository(wrappedDB)
	paymentRepository := paymentRepo.NewRepository(wrappedDB)
	paymentMethodRepository := paymentMethodRepo.NewRepository(wrappedDB)
	paymentRequestRepository := paymentRequestRepo.NewRepository(wrappedDB)
	permissionRepository := permissionRepo.NewRepository(wrappedDB)
	rulesRepository := rulesRepo.NewRepository(wrappedDB)
	scheduleRepository := scheduleRepo.NewRepository(wrappedDB)
	specialistRepository := specialistRepo.NewRepository(wrappedDB, cfg.Commissions.DefaultRateDecimal())

	// Сервисы
	guards := appointmentsService.NewGuards(cfg.Rules.DefaultCancellationHours)
	calculator := commissionsService.NewCalculator(cfg.Commissions.CurrencyPlaces)

	rulesSvc := rulesService.NewService(
		rulesRepository,
		time.Duration(cfg.Rules.CacheTTL)*time.Second,
		log,
	)
	appointmentsSvc := appointmentsService.NewService(
		appointmentRepository,
		rulesSvc,
		guards,
		metricsCollector,
		log,
	)
	schedulesSvc := schedulesService.NewService(
		scheduleRepository,
		branchRepository,
		txMgr,
		metricsCollector,
		log,
	)
	commissionsSvc := commissionsService.NewService(
		commissionRepository,
		paymentRequestRepository,
		txMgr,
		log,
	)

	// Use cases
	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		appointmentRepository,
		catalogRepository,
		branchRepository,
		rulesSvc,
		guards,
		txMgr,
		log,
	)
	completeAppointmentUseCase := completeAppointmentUC.NewUseCase(
		appointmentRepository,
		paymentRepository,
		paymentMethodRepository,
		catalogRepository,
		specialistRepository,
		commissionRepository,
		rulesSvc,
		evidenceClient,
		guards,
		calculator,
		txMgr,
		metricsCollector,
		log,
	)

	// Handlers
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, log)
	completeAppointment := completeAppointmentHandler.NewHandler(completeAppointmentUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentsSvc, log)
	listAppointments := listAppointmentsHandler.NewHandler(appointmentsSvc, log)
	transitionAppointment := transitionAppointmentHandler.NewHandler(appointmentsSvc, log)
	editAppointment := editAppointmentHandler.NewHandler(appointmentsSvc, log)
	getSchedule := getScheduleHandler.NewHandler(schedulesSvc, log)
	saveSchedule := saveScheduleHandler.NewHandler(schedulesSvc, log)
	getCommissions := getCommissionsHandler.NewHandler(commissionsSvc, log)
	getPaymentRequests := getPaymentRequestsHandler.NewHandler(commissionsSvc, log)
	createPaymentRequest := createPaymentRequestHandler.NewHandler(commissionsSvc, log)
	updatePaymentRequest := updatePaymentRequestHandler.NewHandler(commissionsSvc, log)
	getRules := getRulesHandler.NewHandler(rulesSvc, log)
	updateRules := updateRulesHandler.NewHandler(rulesSvc, log)

	// Роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// Все маршруты API требуют заголовков пользователя от gateway
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Actor(permissionRepository, log))

	// --- Записи ---
	api.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)
	api.HandleFunc("/appointments", listAppointments.Handle).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{appointmentId}", editAppointment.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/appointments/{appointmentId}/status", transitionAppointment.Handle).Methods(http.MethodPost)
	api.HandleFunc("/appointments/{appointmentId}/complete", completeAppointment.Handle).Methods(http.MethodPost)

	// --- Расписания ---
	api.HandleFunc("/specialists/{specialistId}/branches/{branchId}/schedule", getSchedule.Handle).Methods(http.MethodGet)
	api.HandleFunc("/schedules/check", saveSchedule.HandleCheck).Methods(http.MethodPost)
	api.HandleFunc("/schedules", saveSchedule.Handle).Methods(http.MethodPut)

	// --- Комиссии и выплаты ---
	api.HandleFunc("/specialists/{specialistId}/commissions", getCommissions.Handle).Methods(http.MethodGet)
	api.HandleFunc("/specialists/{specialistId}/payment-requests", getPaymentRequests.Handle).Methods(http.MethodGet)
	api.HandleFunc("/payment-requests", createPaymentRequest.Handle).Methods(http.MethodPost)
	api.HandleFunc("/payment-requests/{requestId}/approve", updatePaymentRequest.HandleApprove).Methods(http.MethodPatch)
	api.HandleFunc("/payment-requests/{requestId}/reject", updatePaymentRequest.HandleReject).Methods(http.MethodPatch)
	api.HandleFunc("/payment-requests/{requestId}/paid", updatePaymentRequest.HandlePaid).Methods(http.MethodPatch)

	// --- Правила бизнеса ---
	api.HandleFunc("/businesses/{businessId}/rules", getRules.Handle).Methods(http.MethodGet)
	api.HandleFunc("/businesses/{businessId}/rules", updateRules.Handle).Methods(http.MethodPut)

	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
