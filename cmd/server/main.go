package main

import (
	"Lura/internal/config"
	"Lura/internal/handlers"
	"Lura/internal/locker"
	"Lura/internal/mailer"
	"Lura/internal/middleware"
	"Lura/internal/oauth"
	"Lura/internal/repo"
	"Lura/internal/service"
	"Lura/internal/storage"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.LogFormat == "json" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		_ = logger.Sync()
	}()

	for _, w := range cfg.Warnings {
		sugar.Warnw("Config", "warning", w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, sugar); err != nil {
		sugar.Errorw("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) error {
	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		return err
	}

	var mail mailer.Sender = mailer.NewLogSender(sugar)
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	}

	store, err := storage.NewDisk(cfg.UploadsDir, int64(cfg.UploadMaxMB)<<20)
	if err != nil {
		return err
	}

	var google oauth.Provider
	if cfg.GoogleEnabled() {
		google = oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL)
	}

	var lock locker.Locker = locker.Noop{}
	if cfg.RedisAddr != "" {
		rl, err := locker.NewRedisLocker(ctx, locker.RedisConfig{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err != nil {
			return err
		}
		defer rl.Close()
		lock = rl
	}

	userRepo := repo.NewUserRepository(gormDB)
	workspaceRepo := repo.NewWorkspaceRepository(gormDB)
	caseRepo := repo.NewCaseRepository(gormDB)
	tagRepo := repo.NewTagRepository(gormDB)
	documentRepo := repo.NewDocumentRepository(gormDB)
	calendarRepo := repo.NewCalendarRepository(gormDB)

	authz := service.NewAuthorizer(workspaceRepo)
	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.RefreshJWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	activity := service.NewActivityService(repo.NewActivityRepository(gormDB), sugar)
	magic := service.NewMagicLinkService(userRepo, repo.NewMagicLinkRepository(gormDB), mail, cfg.BackendURL, sugar)

	svc := handlers.Services{
		Auth:      service.NewAuthService(userRepo, magic, tokens, google, cfg.FrontendURL, sugar),
		MagicLink: magic,
		Tokens:    tokens,
		Workspace: service.NewWorkspaceService(workspaceRepo, userRepo, authz, activity, store, sugar),
		Case:      service.NewCaseService(caseRepo, authz, activity, store, sugar),
		CaseTag:   service.NewCaseTagService(caseRepo, tagRepo, authz),
		Tag:       service.NewTagService(tagRepo, authz),
		Document:  service.NewDocumentService(caseRepo, documentRepo, tagRepo, authz, activity, store, sugar),
		Comment:   service.NewCommentService(caseRepo, documentRepo, repo.NewCommentRepository(gormDB), authz, activity, sugar),
		Calendar:  service.NewCalendarService(calendarRepo, activity, sugar),
		Activity:  activity,
	}
	notifier := service.NewReminderNotifier(calendarRepo, activity, mail, lock, cfg.ReminderInterval, sugar)

	h := handlers.NewHandler(svc, sugar, cfg)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sugar.Infow("Starting server",
		"addr", srv.Addr,
		"frontend", cfg.FrontendURL,
		"uploads", cfg.UploadsDir,
		"google", cfg.GoogleEnabled(),
		"redis", cfg.RedisAddr != "",
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return notifier.Run(gctx)
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sugar.Infow("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
