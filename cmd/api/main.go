package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/joho/godotenv"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/eventrite/eventrite/internal/auth"
	"github.com/eventrite/eventrite/internal/config"
	"github.com/eventrite/eventrite/internal/handlers"
	"github.com/eventrite/eventrite/internal/mailer"
	"github.com/eventrite/eventrite/internal/render"
	"github.com/eventrite/eventrite/internal/storage"
	"github.com/eventrite/eventrite/internal/store"
	"github.com/eventrite/eventrite/internal/upload"
	"github.com/eventrite/eventrite/models"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Chi
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Session store, shared with gothic for the OAuth flow
	sessions := auth.NewSessions([]byte(cfg.SessionSecret), cfg.SessionMaxAge, cfg.SecureCookies)
	gothic.Store = sessions.Store()

	if cfg.GoogleKey != "" {
		goth.UseProviders(google.New(cfg.GoogleKey, cfg.GoogleSecret, cfg.GoogleCallbackURL))
	}

	// Database connection
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	users := store.NewGorm(db)

	// Avatar storage backend
	var diskStore *storage.Disk
	var avatarStore storage.Store
	switch cfg.StorageBackend {
	case config.StorageS3:
		avatarStore = storage.NewS3(newS3Client(cfg), cfg.S3Bucket)
	default:
		diskStore, err = storage.NewDisk(cfg.UploadDir)
		if err != nil {
			log.Fatalf("Failed to prepare upload directory: %v", err)
		}
		avatarStore = diskStore
	}

	// Outbound mail worker
	var sender mailer.Sender
	if cfg.MailEnabled() {
		sender, err = mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
		if err != nil {
			log.Fatalf("Failed to configure SMTP sender: %v", err)
		}
	} else {
		logger.Warn("smtp not configured, welcome emails will be logged and dropped")
		sender = logSender{logger}
	}
	mailWorker := mailer.NewWorker(sender, 64, logger)
	mailWorker.Start(ctx)

	renderer := render.New(logger)
	strategies := auth.NewRegistry(auth.NewLocal(users))
	uh := handlers.NewUsers(users, strategies, sessions, upload.NewGate("image"), avatarStore, mailWorker, renderer, logger)
	ph := handlers.NewPages(users, sessions, renderer, logger)
	oh := handlers.NewOAuth(users, sessions, logger)

	r.Get("/", ph.Home)
	r.Route("/users", func(r chi.Router) {
		r.Get("/login", uh.LoginForm)
		r.Get("/register", uh.RegisterForm)
		r.Get("/logout", uh.Logout)
		r.Group(func(r chi.Router) {
			r.Use(httprate.Limit(
				20,
				1*time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
			))
			r.Post("/login", uh.Login)
			r.Post("/register", uh.Register)
		})
	})
	r.Group(func(r chi.Router) {
		r.Use(sessions.RequireUser)
		r.Get("/dashboard", ph.Dashboard)
	})
	r.Get("/auth/{provider}/callback", oh.Callback)
	r.Post("/auth/{provider}", oh.Begin)

	// Serve stored avatars directly when they live on local disk.
	if diskStore != nil {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(diskStore.Dir()))))
	}

	srv := &http.Server{Addr: cfg.Addr, Handler: r}
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", "err", err)
		}
	}()

	logger.Info("starting server", "addr", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server error: %v", err)
	}
	// ListenAndServe returns as soon as Shutdown is called; in-flight
	// handlers may still enqueue mail until Shutdown itself returns.
	<-shutdownDone
	mailWorker.Close()
}

// newS3Client builds an S3 client pointed at the configured R2 account,
// with static credentials and a pinned TLS version range.
func newS3Client(cfg *config.Config) *s3.Client {
	tr := &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
			MaxVersion: tls.VersionTLS13,
		},
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithHTTPClient(&http.Client{Transport: tr}),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.AccessKeySecret, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		log.Fatalf("Failed to load S3 configuration: %v", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.S3AccountID))
	})
}

// logSender stands in for SMTP when mail is not configured.
type logSender struct {
	log *slog.Logger
}

func (l logSender) Send(_ context.Context, msg mailer.Message) error {
	l.log.Info("mail sending disabled, dropping message", "to", msg.To, "subject", msg.Subject)
	return nil
}
