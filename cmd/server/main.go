package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"booking-sync-service/internal/domain/entity"
	"booking-sync-service/internal/domain/repository"
	"booking-sync-service/internal/infrastructure/config"
	"booking-sync-service/internal/infrastructure/lock"
	"booking-sync-service/internal/infrastructure/oauth"
	"booking-sync-service/internal/infrastructure/persistence"
	"booking-sync-service/internal/interface/calendar"
	"booking-sync-service/internal/interface/gemini"
	"booking-sync-service/internal/interface/gmail"
	"booking-sync-service/internal/interface/imap"
	repo "booking-sync-service/internal/interface/repository"
	"booking-sync-service/internal/usecase"
	"booking-sync-service/pkg/logger"
	"booking-sync-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/api/option"
)

func main() {
	once := flag.Bool("once", false, "run a single reconcile cycle and exit")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("info").Fatal("Failed to load config", "error", err)
	}

	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting Booking Sync Service", "version", cfg.AppVersion)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	location, err := cfg.Location()
	if err != nil {
		log.Fatal("Invalid calendar timezone", "error", err)
	}

	appMetrics := metrics.NewMetrics("booking_sync", prometheus.DefaultRegisterer)

	// Audit stores, both optional
	var emailRepo repository.EmailRepository = repo.NoopEmailRepository{}
	if cfg.MongoURI != "" {
		log.Info("Connecting to MongoDB")
		mongoClient, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		defer func() {
			if err := mongoClient.Disconnect(context.Background()); err != nil {
				log.Error("MongoDB disconnect error", "error", err)
			}
		}()

		emailRepo, err = repo.NewMongoEmailRepository(ctx, persistence.GetDatabase(mongoClient, cfg.MongoDB))
		if err != nil {
			log.Fatal("Failed to set up email repository", "error", err)
		}
	}

	var runRepo repository.RunRepository = repo.NoopRunRepository{}
	if cfg.PostgresDSN != "" {
		log.Info("Connecting to PostgreSQL")
		gormDB, err := persistence.NewPostgresDB(cfg.PostgresDSN)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		runRepo, err = repo.NewGormRunRepository(gormDB)
		if err != nil {
			log.Fatal("Failed to set up run repository", "error", err)
		}
	}

	var locker usecase.CycleLocker
	if cfg.RedisAddress != "" {
		log.Info("Connecting to Redis")
		redisClient, err := persistence.NewRedisClient(ctx, cfg.RedisAddress, cfg.RedisPassword)
		if err != nil {
			log.Fatal("Failed to connect to Redis", "error", err)
		}
		defer redisClient.Close()
		locker = lock.NewRedisLocker(redisClient, lock.DefaultKey, cfg.ReconcileLockTTL, log)
	}

	mailRepo := newMailRepository(ctx, cfg, log)

	var generator repository.TextGenerator
	if cfg.GenAIAPIKey != "" {
		gem, err := gemini.NewGeminiService(ctx, cfg.GenAIAPIKey, cfg.GenAIModel, "", log)
		if err != nil {
			log.Error("Generative extraction disabled", "error", err)
		} else {
			generator = gem
		}
	} else {
		log.Warn("GENAI_API_KEY not set, using pattern extraction only")
	}

	extractor := usecase.NewExtractorChain(log,
		usecase.NewGenAIExtractor(generator, log),
		usecase.NewRegexExtractor(location, log),
	)
	reconciler := usecase.NewBookingReconciler(cfg.CalendarID, location, cfg.PruneDuplicateEvents, log)
	notifier := usecase.NewBookingNotifier(repo.NewWebhookRepository(cfg.NotifyURL, cfg.NotifyTimeout, log), log)

	pipeline := usecase.NewBookingPipeline(usecase.PipelineDeps{
		MailRepo:         mailRepo,
		EmailRepo:        emailRepo,
		RunRepo:          runRepo,
		CalendarProvider: newCalendarProvider(cfg, log),
		Extractor:        extractor,
		Reconciler:       reconciler,
		Notifier:         notifier,
		Locker:           locker,
		Metrics:          appMetrics,
		Logger:           log,
	}, cfg.MailSender, cfg.MailFetchLimit)

	if *once || cfg.RunOnce {
		summary, err := pipeline.RunOnce(ctx)
		if err != nil {
			log.Error("Booking cycle did not complete", "status", summary.Status, "error", err)
			return
		}
		log.Info("Booking cycle completed",
			"fetched", summary.EmailsFetched,
			"extracted", summary.RecordsExtracted,
			"outcomes", summary.Outcomes,
			"notified", summary.NotificationsSent)
		return
	}

	go pipeline.Start(ctx, cfg.PollInterval)

	// Set up HTTP server for metrics
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	log.Info("Booking Sync Service stopped")
}

// unavailableMail fails every fetch with the reason the mail source could not be built
type unavailableMail struct {
	err error
}

func (u unavailableMail) FetchMessages(ctx context.Context, sender string, limit int) ([]*entity.Email, error) {
	return nil, u.err
}

func newMailRepository(ctx context.Context, cfg *config.Config, log logger.Logger) repository.MailRepository {
	if cfg.MailBackend == config.MailBackendIMAP {
		return imap.NewIMAPService(cfg.IMAPAddress, cfg.IMAPUsername, cfg.IMAPPassword, cfg.IMAPMailbox, log)
	}

	creds, err := cfg.GoogleCredentials()
	if err != nil {
		log.Error("Gmail unavailable, every cycle will abort until credentials are set", "error", err)
		return unavailableMail{err: err}
	}

	googleOAuth := oauth.NewGoogleOAuth(creds.ClientID, creds.ClientSecret, creds.RefreshToken, log)
	gmailService, err := gmail.NewGmailService(ctx, log, option.WithTokenSource(googleOAuth.GetTokenSource(ctx)))
	if err != nil {
		log.Error("Failed to create Gmail service", "error", err)
		return unavailableMail{err: err}
	}
	return gmailService
}

// newCalendarProvider builds the calendar client once per cycle so credentials are re-checked each time
func newCalendarProvider(cfg *config.Config, log logger.Logger) usecase.CalendarProvider {
	if cfg.CalendarBackend == config.CalendarBackendICS {
		ics := calendar.NewICSCalendar(cfg.ICSPath, log)
		return func(ctx context.Context) (repository.CalendarRepository, error) {
			return ics, nil
		}
	}

	return func(ctx context.Context) (repository.CalendarRepository, error) {
		creds, err := cfg.GoogleCredentials()
		if err != nil {
			return nil, err
		}
		googleOAuth := oauth.NewGoogleOAuth(creds.ClientID, creds.ClientSecret, creds.RefreshToken, log)
		return calendar.NewGoogleCalendar(ctx, log, option.WithTokenSource(googleOAuth.GetTokenSource(ctx)))
	}
}
