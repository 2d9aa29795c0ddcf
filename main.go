package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"threadsnet/config"
	"threadsnet/handler"
	"threadsnet/metrics"
	"threadsnet/middleware"
	"threadsnet/model"
	"threadsnet/presence"
	"threadsnet/repository"
	"threadsnet/repository/memory"
	"threadsnet/repository/postgres"
	"threadsnet/service"
	"threadsnet/session"
	"threadsnet/storage"
	"threadsnet/utils"
)

func init() {
	// 服务端统一使用 UTC
	time.Local = time.UTC
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "threadsnet",
		Short:         "Threads-style social network backend",
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	})
	return root
}

func setup() (*config.Config, func(), error) {
	cfg := config.Load()
	logger, err := utils.InitLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, func() { _ = logger.Sync() }, nil
}

func runMigrate() error {
	cfg, flush, err := setup()
	if err != nil {
		return err
	}
	defer flush()

	db, err := utils.InitDB(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer utils.CloseDB(db)

	if err := postgres.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	zap.L().Info("migration completed")
	return nil
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, flush, err := setup()
	if err != nil {
		return err
	}
	defer flush()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 存储
	var (
		store    repository.Store
		sessions session.Store
	)
	switch cfg.StorageDriver {
	case "memory":
		store = memory.NewStore()
		sessions = session.NewMemoryStore()
		zap.L().Warn("using in-memory storage, data is lost on restart")
	case "postgres":
		var db *gorm.DB
		if db, err = utils.InitDB(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer utils.CloseDB(db)
		store = postgres.NewStore(db)

		rdb, err := utils.InitRedis(ctx, cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		sessions = session.NewRedisStore(rdb)
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	// 媒体
	var (
		media      storage.MediaService
		localMedia *storage.LocalStorage
	)
	switch cfg.MediaDriver {
	case "s3":
		s3Storage, err := storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:        cfg.S3.Bucket,
			Region:        cfg.S3.Region,
			Endpoint:      cfg.S3.Endpoint,
			AccessKey:     cfg.S3.AccessKey,
			SecretKey:     cfg.S3.SecretKey,
			PublicBaseURL: cfg.S3.PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("init s3 storage: %w", err)
		}
		media = s3Storage
	case "local":
		if localMedia, err = storage.NewLocalStorage(cfg.LocalMedia.Path, cfg.LocalMedia.BaseURL); err != nil {
			return fmt.Errorf("init local storage: %w", err)
		}
		media = localMedia
	default:
		return fmt.Errorf("unknown MEDIA_DRIVER %q", cfg.MediaDriver)
	}

	// 指标
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// 服务
	sysSvc := service.NewSystemSettingsService(store)
	if err := sysSvc.Init(ctx); err != nil {
		return fmt.Errorf("load system settings: %w", err)
	}
	credSvc := service.NewCredentialService(service.CredentialConfig{
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
		ResetTTL:      cfg.ResetTokenTTL,
	}, sessions)
	moderation := service.NewModerationService(store, sysSvc)
	relSvc := service.NewRelationshipService(store)
	friendSvc := service.NewFriendService(store, m)
	commentSvc := service.NewCommentService(store, moderation, sysSvc, service.ReplyOwnershipPolicy(cfg.ReplyOwnershipPolicy))
	postSvc := service.NewPostService(store, relSvc, commentSvc, moderation, media, cfg.MaxPostLength)
	userSvc := service.NewUserService(store, credSvc, relSvc, media)
	convSvc := service.NewConversationService(store)

	registry := presence.NewRegistry(m, func() bool {
		return sysSvc.IsFeatureEnabled(model.SettingOnlineBroadcast)
	})
	msgSvc := service.NewMessageService(store, convSvc, relSvc, registry, media, m)

	if err := middleware.RegisterValidators(); err != nil {
		return fmt.Errorf("register validators: %w", err)
	}
	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(handler.Dependencies{
		Users:         userSvc,
		Credentials:   credSvc,
		Relationships: relSvc,
		Friends:       friendSvc,
		Posts:         postSvc,
		Comments:      commentSvc,
		Conversations: convSvc,
		Messages:      msgSvc,
		Moderation:    moderation,
		Settings:      sysSvc,
		Registry:      registry,
		Metrics:       m,
		Gatherer:      reg,
		CORSOrigins:   cfg.CORSOrigins,
		AuthLimiter:   middleware.NewIPRateLimiter(cfg.RateLimitPerMinute, time.Minute, 0),
		LocalMedia:    localMedia,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("threadsnet service starting", zap.String("port", cfg.Port),
			zap.String("storage", cfg.StorageDriver), zap.String("media", cfg.MediaDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zap.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
