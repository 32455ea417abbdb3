//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/app"
)

func InitializeApp() (*app.App, error) {
	panic(wire.Build(
		ConfigSet,
		ObservabilitySet,
		InfraSet,
		RepositorySet,
		SecuritySet,
		ServiceSet,
		HTTPSet,
		AppSet,
	))
}
