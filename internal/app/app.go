package app

import (
	"context"
	"log/slog"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/config"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger
	Server *http.Server
	Mongo  *mongo.Client
}

func New(cfg *config.Config, logger *slog.Logger, server *http.Server, client *mongo.Client) *App {
	return &App{Config: cfg, Logger: logger, Server: server, Mongo: client}
}

// Shutdown stops accepting requests, then releases the datastore
// connections.
func (a *App) Shutdown(ctx context.Context) error {
	if err := a.Server.Shutdown(ctx); err != nil {
		return err
	}
	if a.Mongo != nil {
		return a.Mongo.Disconnect(ctx)
	}
	return nil
}
