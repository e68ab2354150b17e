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
	"github.com/redis/go-redis/v9"

	cancelBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_booking"
	getAvailableSlotsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_booking"
	getBookingStatsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_booking_stats"
	getMyBookingsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_my_bookings"
	getOwnerBookingsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_owner_bookings"
	getStaffBookingsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_staff_bookings"
	listExceptionsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/list_schedule_exceptions"
	rescheduleBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/reschedule_booking"
	updateBookingStatusHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/update_booking_status"
	upsertExceptionHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/upsert_schedule_exception"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/config"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/cache/availability"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	directoryRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/directory"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/events"
	userServiceClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/userservice"
	bookingsService "github.com/m04kA/SMC-AppointmentService/internal/service/bookings"
	scheduleService "github.com/m04kA/SMC-AppointmentService/internal/service/schedule"
	statsService "github.com/m04kA/SMC-AppointmentService/internal/service/stats"
	createBookingUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_slots"
	rescheduleBookingUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

// Общие интерфейсы хранилищ: postgres и memory реализуют одинаковый набор методов
type bookingStore interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, booking *domain.Booking) error
	Cancel(ctx context.Context, booking *domain.Booking) error
	Reschedule(ctx context.Context, booking *domain.Booking) error
}

type directoryStore interface {
	GetService(ctx context.Context, id int64) (*domain.Service, error)
	GetStaff(ctx context.Context, id int64) (*domain.Staff, error)
	LockStaff(ctx context.Context, id int64) error
	GetException(ctx context.Context, staffID int64, date time.Time) (*domain.ScheduleException, error)
	ListExceptions(ctx context.Context, staffID int64, from, to time.Time) ([]*domain.ScheduleException, error)
	UpsertException(ctx context.Context, exception *domain.ScheduleException) (*domain.ScheduleException, error)
}

type txManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

type slotCache interface {
	Generation(ctx context.Context, staffID int64, date string) (int64, error)
	Get(ctx context.Context, staffID int64, date string, generation, serviceID int64) ([]domain.Slot, bool, error)
	Set(ctx context.Context, staffID int64, date string, generation, serviceID int64, slots []domain.Slot) error
	Invalidate(ctx context.Context, staffID int64, date string) error
}

type eventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

func main() {
	// Загружаем конфигурацию (CONFIG_PATH или config.toml)
	cfg, err := config.Load("")
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

	log.Info("Starting SMC-AppointmentService...")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Инициализируем хранилище
	var (
		bookings  bookingStore
		directory directoryStore
		txMgr     txManager
	)

	switch cfg.Database.Driver {
	case config.DriverMemory:
		store := memory.NewStore()
		if cfg.Database.SeedFile != "" {
			seed, err := memory.LoadSeed(cfg.Database.SeedFile)
			if err != nil {
				log.Fatal("Failed to load seed: %v", err)
			}
			if err := store.Apply(seed); err != nil {
				log.Fatal("Failed to apply seed: %v", err)
			}
			log.Info("Seed loaded from %s (services=%d, staff=%d)",
				cfg.Database.SeedFile, len(seed.Services), len(seed.Staff))
		}
		bookings = store.Bookings()
		directory = store.Directory()
		txMgr = store.TxManager()
		log.Info("Using in-memory storage")

	default:
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			log.Fatal("Failed to connect to database: %v", err)
		}
		defer db.Close()

		// Настраиваем connection pool
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

		if err := db.Ping(); err != nil {
			log.Fatal("Failed to ping database: %v", err)
		}
		log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

		// Без коллектора обертка не пишет метрики
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		bookings = bookingRepo.NewRepository(wrappedDB)
		directory = directoryRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	}

	// Кэш доступных слотов
	var cache slotCache = availability.Noop{}
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis is unavailable, requests will fall back to storage: %v", err)
		}
		cancel()

		cache = availability.NewCache(redisClient, time.Duration(cfg.Redis.TTLSeconds)*time.Second)
		log.Info("Availability cache enabled (redis=%s, ttl=%ds)", cfg.Redis.Address, cfg.Redis.TTLSeconds)
	}

	// Публикация событий бронирований
	var publisher eventPublisher = events.Noop{}
	if cfg.Kafka.Enabled {
		kafkaPublisher, err := events.NewPublisher(
			cfg.Kafka.Brokers,
			cfg.Kafka.Topic,
			time.Duration(cfg.Kafka.TimeoutSeconds)*time.Second,
			log,
		)
		if err != nil {
			log.Fatal("Failed to create event publisher: %v", err)
		}
		defer kafkaPublisher.Close()

		publisher = kafkaPublisher
		log.Info("Event publisher enabled (brokers=%v, topic=%s)", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}

	leadTime := time.Duration(cfg.Booking.CancellationLeadHours) * time.Hour
	granularity := time.Duration(cfg.Booking.SlotGranularityMinutes) * time.Minute

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookings,
		directory,
		cache,
		publisher,
		metricsCollector,
		txMgr,
		leadTime,
		log,
	)
	statsSvc := statsService.NewService(bookings, log)
	scheduleSvc := scheduleService.NewService(directory, cache, log)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookings,
		directory,
		cache,
		publisher,
		metricsCollector,
		txMgr,
		log,
	)
	if cfg.UserService.URL != "" {
		userClient := userServiceClient.NewClient(
			cfg.UserService.URL,
			time.Duration(cfg.UserService.Timeout)*time.Second,
			log,
		)
		createBookingUseCase.WithCustomerProfiles(userClient)
		log.Info("UserService client initialized (url=%s, timeout=%ds)", cfg.UserService.URL, cfg.UserService.Timeout)
	}

	rescheduleBookingUseCase := rescheduleBookingUC.NewUseCase(
		bookings,
		directory,
		cache,
		publisher,
		metricsCollector,
		txMgr,
		leadTime,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		bookings,
		directory,
		cache,
		granularity,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(rescheduleBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getMyBookings := getMyBookingsHandler.NewHandler(bookingSvc, log)
	getOwnerBookings := getOwnerBookingsHandler.NewHandler(bookingSvc, log)
	getStaffBookings := getStaffBookingsHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	getBookingStats := getBookingStatsHandler.NewHandler(statsSvc, log)
	listExceptions := listExceptionsHandler.NewHandler(scheduleSvc, log)
	upsertException := upsertExceptionHandler.NewHandler(scheduleSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recover(log))
	r.Use(middleware.Logging(log))

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступные слоты сотрудника на дату
	api.HandleFunc("/bookings/availability", getAvailableSlots.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID и X-User-Role)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Статичные пути регистрируем до /bookings/{bookingId}
	protected.HandleFunc("/bookings/my", getMyBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/owner", getOwnerBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/stats", getBookingStats.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/staff/{staffId:[0-9]+}", getStaffBookings.Handle).Methods(http.MethodGet)

	protected.HandleFunc("/bookings/{bookingId:[0-9]+}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId:[0-9]+}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId:[0-9]+}/cancel", cancelBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId:[0-9]+}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPost)

	// --- Исключения из расписания сотрудника ---
	protected.HandleFunc("/staff/{staffId:[0-9]+}/exceptions", listExceptions.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/staff/{staffId:[0-9]+}/exceptions/{date}", upsertException.Handle).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
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

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

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
