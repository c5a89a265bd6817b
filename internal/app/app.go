package app

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

	"vismay-core/internal/auth"
	"vismay-core/internal/config"
	"vismay-core/internal/database"
	"vismay-core/internal/handler"
	"vismay-core/internal/middleware"
	"vismay-core/internal/repository"
	"vismay-core/internal/router"
	"vismay-core/internal/service"
)

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	signer := auth.NewHS256Signer(cfg.JWTSecret)

	if cfg.SeedOnStartup {
		if err := db.Seed(context.Background(), hasher); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	tokenRepo := repository.NewTokenRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	tenantRepo := repository.NewTenantRepository(pool)
	districtRepo := repository.NewDistrictRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	slog.Info("database ready")

	auditService := service.NewAuditService(auditRepo)
	authService := service.NewAuthService(signer, hasher, userRepo, tokenRepo, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	permissionService := service.NewPermissionService(roleRepo)
	userService := service.NewUserService(userRepo, tokenRepo, hasher)

	guard := middleware.NewAuthMiddleware(authService, permissionService, auditService)

	appRouter := router.New(cfg, guard, router.Handlers{
		Auth:     handler.NewAuthHandler(authService, auditService),
		User:     handler.NewUserHandler(userService, auditService),
		Role:     handler.NewRoleHandler(roleRepo, permissionService, auditService),
		Tenant:   handler.NewTenantHandler(tenantRepo),
		District: handler.NewDistrictHandler(districtRepo),
		Category: handler.NewCategoryHandler(categoryRepo),
		Product:  handler.NewProductHandler(productRepo),
		Audit:    handler.NewAuditHandler(auditService),
	})

	purgeCtx, purgeCancel := context.WithCancel(context.Background())
	go authService.StartPurgeTicker(purgeCtx, time.Hour)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      appRouter,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			purgeCancel,
			db.Close,
		},
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	slog.Info("server stopped")
	return nil
}
