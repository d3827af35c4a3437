package di

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pagecraft-backend/application/commands"
	"pagecraft-backend/application/commands/bus"
	commands_handlers "pagecraft-backend/application/commands/handlers"
	"pagecraft-backend/application/consensus"
	"pagecraft-backend/application/ports"
	"pagecraft-backend/application/queries"
	querybus "pagecraft-backend/application/queries/bus"
	queries_handlers "pagecraft-backend/application/queries/handlers"
	"pagecraft-backend/application/services"
	domainconfig "pagecraft-backend/domain/config"
	"pagecraft-backend/infrastructure/ai"
	"pagecraft-backend/infrastructure/config"
	eventsinfra "pagecraft-backend/infrastructure/events"
	"pagecraft-backend/infrastructure/persistence/memory"
	"pagecraft-backend/pkg/auth"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideDomainConfig creates the domain configuration for the environment
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	return domainconfig.LoadDomainConfig(cfg.Environment)
}

// ProvideCanvasRepository creates the canvas repository
func ProvideCanvasRepository(domainCfg *domainconfig.DomainConfig, logger *zap.Logger) ports.CanvasRepository {
	return memory.NewCanvasRepository(domainCfg, logger)
}

// ProvideEventBus creates the domain event bus
func ProvideEventBus(logger *zap.Logger) ports.EventBus {
	return eventsinfra.NewMemoryBus(logger)
}

// ProvideEditorBus creates the editor-surface event bus
func ProvideEditorBus() ports.EditorBus {
	return eventsinfra.NewEditorBus()
}

// ProvideModelClients creates one client per configured model, preserving
// the configured rank order
func ProvideModelClients(cfg *config.Config, logger *zap.Logger) []ports.ModelClient {
	clients := make([]ports.ModelClient, 0, len(cfg.Models))
	for _, modelID := range cfg.Models {
		clients = append(clients, ai.NewHTTPModelClient(modelID, cfg.ModelBaseURL, cfg.ModelAPIKey, logger))
	}
	return clients
}

// ProvideDispatcher creates the consensus dispatcher
func ProvideDispatcher(cfg *config.Config, clients []ports.ModelClient, logger *zap.Logger) (*consensus.Dispatcher, error) {
	strategy, err := consensus.ParseStrategy(cfg.ConsensusStrategy)
	if err != nil {
		return nil, err
	}

	var defaultClient ports.ModelClient
	for _, client := range clients {
		if client.ID() == cfg.DefaultModel {
			defaultClient = client
			break
		}
	}

	return consensus.NewDispatcher(clients, defaultClient, consensus.Config{
		Strategy:     strategy,
		ModelTimeout: cfg.ModelTimeout,
		MaxWorkers:   int64(cfg.MaxWorkers),
	}, logger)
}

// ProvideDragService creates the drag service
func ProvideDragService(canvasRepo ports.CanvasRepository, eventBus ports.EventBus, logger *zap.Logger) *services.DragService {
	return services.NewDragService(canvasRepo, eventBus, logger)
}

// ProvideModificationApplier creates the modification applier
func ProvideModificationApplier(canvasRepo ports.CanvasRepository, eventBus ports.EventBus, logger *zap.Logger) *services.ModificationApplier {
	return services.NewModificationApplier(canvasRepo, eventBus, logger)
}

// ProvideGenerationService creates the generation service
func ProvideGenerationService(canvasRepo ports.CanvasRepository, eventBus ports.EventBus, logger *zap.Logger) *services.GenerationService {
	return services.NewGenerationService(canvasRepo, eventBus, logger)
}

// ProvideJWTValidator creates the JWT validator. Development runs without a
// secret; the auth middleware falls back to a fixed dev identity when the
// validator is nil.
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	if cfg.JWTSecret == "" && !cfg.IsProduction() {
		return nil, nil
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
	})
}

// ProvideRateLimiter creates the AI endpoint rate limiter
func ProvideRateLimiter(cfg *config.Config) *auth.TokenBucketLimiter {
	return auth.NewTokenBucketLimiter(cfg.AIRateLimit, time.Minute)
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) error
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	return a.handler(ctx, cmd)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	canvasRepo ports.CanvasRepository,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *bus.CommandBus {
	commandBus := bus.NewCommandBus()

	createNodeHandler := commands_handlers.NewCreateNodeHandler(canvasRepo, eventBus, logger)
	commandBus.Register(&commands.CreateNodeCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			createCmd, ok := cmd.(*commands.CreateNodeCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return createNodeHandler.Handle(ctx, createCmd)
		},
	})

	updateNodeHandler := commands_handlers.NewUpdateNodeHandler(canvasRepo, eventBus, logger)
	commandBus.Register(&commands.UpdateNodeCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			updateCmd, ok := cmd.(*commands.UpdateNodeCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return updateNodeHandler.Handle(ctx, updateCmd)
		},
	})

	reparentNodeHandler := commands_handlers.NewReparentNodeHandler(canvasRepo, eventBus, logger)
	commandBus.Register(&commands.ReparentNodeCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			reparentCmd, ok := cmd.(*commands.ReparentNodeCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return reparentNodeHandler.Handle(ctx, reparentCmd)
		},
	})

	deleteNodeHandler := commands_handlers.NewDeleteNodeHandler(canvasRepo, eventBus, logger)
	commandBus.Register(&commands.DeleteNodeCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			deleteCmd, ok := cmd.(*commands.DeleteNodeCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return deleteNodeHandler.Handle(ctx, deleteCmd)
		},
	})

	duplicateNodeHandler := commands_handlers.NewDuplicateNodeHandler(canvasRepo, eventBus, logger)
	commandBus.Register(&commands.DuplicateNodeCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			duplicateCmd, ok := cmd.(*commands.DuplicateNodeCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return duplicateNodeHandler.Handle(ctx, duplicateCmd)
		},
	})

	createPageHandler := commands_handlers.NewCreatePageHandler(canvasRepo, eventBus, logger)
	commandBus.Register(&commands.CreatePageCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			pageCmd, ok := cmd.(*commands.CreatePageCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return createPageHandler.Handle(ctx, pageCmd)
		},
	})

	renamePageHandler := commands_handlers.NewRenamePageHandler(canvasRepo, eventBus, logger)
	commandBus.Register(&commands.RenamePageCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			renameCmd, ok := cmd.(*commands.RenamePageCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return renamePageHandler.Handle(ctx, renameCmd)
		},
	})

	deletePageHandler := commands_handlers.NewDeletePageHandler(canvasRepo, eventBus, logger)
	commandBus.Register(&commands.DeletePageCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			pageCmd, ok := cmd.(*commands.DeletePageCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return deletePageHandler.Handle(ctx, pageCmd)
		},
	})

	return commandBus
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(canvasRepo ports.CanvasRepository, logger *zap.Logger) *querybus.QueryBus {
	queryBus := querybus.NewQueryBus()
	canvasHandler := queries_handlers.NewCanvasQueryHandler(canvasRepo, logger)

	queryBus.Register(queries.GetCanvasQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			q, ok := query.(queries.GetCanvasQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return canvasHandler.HandleGetCanvas(ctx, q)
		},
	})

	queryBus.Register(queries.VisibleNodesQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			q, ok := query.(queries.VisibleNodesQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return canvasHandler.HandleVisibleNodes(ctx, q)
		},
	})

	queryBus.Register(queries.ListChildrenQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			q, ok := query.(queries.ListChildrenQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return canvasHandler.HandleListChildren(ctx, q)
		},
	})

	queryBus.Register(queries.RenderTreeQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			q, ok := query.(queries.RenderTreeQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return canvasHandler.HandleRenderTree(ctx, q)
		},
	})

	return queryBus
}

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	domainCfg := ProvideDomainConfig(cfg)
	canvasRepo := ProvideCanvasRepository(domainCfg, logger)
	eventBus := ProvideEventBus(logger)
	editorBus := ProvideEditorBus()

	validator, err := ProvideJWTValidator(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT validator: %w", err)
	}

	container := &Container{
		Config:       cfg,
		DomainConfig: domainCfg,
		Logger:       logger,
		CanvasRepo:   canvasRepo,
		EventBus:     eventBus,
		EditorBus:    editorBus,
		CommandBus:   ProvideCommandBus(canvasRepo, eventBus, logger),
		QueryBus:     ProvideQueryBus(canvasRepo, logger),
		DragService:  ProvideDragService(canvasRepo, eventBus, logger),
		Applier:      ProvideModificationApplier(canvasRepo, eventBus, logger),
		Generation:   ProvideGenerationService(canvasRepo, eventBus, logger),
		JWTValidator: validator,
		RateLimiter:  ProvideRateLimiter(cfg),
	}

	if cfg.AIEnabled {
		clients := ProvideModelClients(cfg, logger)
		dispatcher, err := ProvideDispatcher(cfg, clients, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create dispatcher: %w", err)
		}
		container.ModelClients = clients
		container.Dispatcher = dispatcher
	}

	return container, nil
}
