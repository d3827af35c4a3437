//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"pagecraft-backend/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideDomainConfig,
	ProvideCanvasRepository,
	ProvideEventBus,
	ProvideEditorBus,
	ProvideModelClients,
	ProvideDispatcher,
	ProvideDragService,
	ProvideModificationApplier,
	ProvideGenerationService,
	ProvideJWTValidator,
	ProvideRateLimiter,
	ProvideCommandBus,
	ProvideQueryBus,
	wire.Struct(new(Container), "*"),
)

// InitializeContainerWire creates a fully wired container via wire codegen
func InitializeContainerWire(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil
}
