package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/bookcircle/bookcircle-api/internal/api"
	authmiddleware "github.com/bookcircle/bookcircle-api/internal/api/middleware"
	"github.com/bookcircle/bookcircle-api/internal/config"
	"github.com/bookcircle/bookcircle-api/internal/platform/postgres"
	"github.com/bookcircle/bookcircle-api/internal/service"
	"github.com/bookcircle/bookcircle-api/internal/service/auth"
)

// application holds the fully wired components of the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	authHandler  *api.AuthHandler
	userHandler  *api.UserHandler
	groupHandler *api.GroupHandler
	postHandler  *api.PostHandler

	authMiddleware *authmiddleware.AuthMiddleware
}

// newApplication wires stores, services, and handlers together. Wiring
// happens in one place so the dependency graph stays visible.
func newApplication(cfg *config.Config, db *sql.DB, appLogger *slog.Logger) (*application, error) {
	userStore := postgres.NewPostgresUserStore(db, appLogger)
	groupStore := postgres.NewPostgresGroupStore(db, appLogger)
	postStore := postgres.NewPostgresPostStore(db, appLogger)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	userService := service.NewUserService(userStore, hasher, hasher, jwtService, db, appLogger)
	groupService := service.NewGroupService(groupStore, db, appLogger)
	postService := service.NewPostService(postStore, db, appLogger)

	return &application{
		config:         cfg,
		logger:         appLogger,
		db:             db,
		authHandler:    api.NewAuthHandler(userService, appLogger),
		userHandler:    api.NewUserHandler(userService, appLogger),
		groupHandler:   api.NewGroupHandler(groupService, appLogger),
		postHandler:    api.NewPostHandler(postService, appLogger),
		authMiddleware: authmiddleware.NewAuthMiddleware(jwtService),
	}, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Failed to close database connection", "error", err)
		}
	}
}
