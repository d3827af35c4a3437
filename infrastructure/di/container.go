package di

import (
	"go.uber.org/zap"

	"pagecraft-backend/application/commands/bus"
	"pagecraft-backend/application/consensus"
	"pagecraft-backend/application/ports"
	querybus "pagecraft-backend/application/queries/bus"
	"pagecraft-backend/application/services"
	domainconfig "pagecraft-backend/domain/config"
	"pagecraft-backend/infrastructure/config"
	"pagecraft-backend/pkg/auth"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	DomainConfig *domainconfig.DomainConfig
	Logger       *zap.Logger
	CanvasRepo   ports.CanvasRepository
	EventBus     ports.EventBus
	EditorBus    ports.EditorBus
	CommandBus   *bus.CommandBus
	QueryBus     *querybus.QueryBus
	DragService  *services.DragService
	Applier      *services.ModificationApplier
	Generation   *services.GenerationService
	ModelClients []ports.ModelClient
	Dispatcher   *consensus.Dispatcher
	JWTValidator *auth.JWTValidator
	RateLimiter  *auth.TokenBucketLimiter
}

// Shutdown releases resources held by the container
func (c *Container) Shutdown() {
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}
