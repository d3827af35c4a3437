package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"pagecraft-backend/infrastructure/di"
	"pagecraft-backend/interfaces/http/rest/handlers"
	"pagecraft-backend/interfaces/http/rest/middleware"
)

// Router creates and configures the HTTP router
type Router struct {
	container *di.Container
}

// NewRouter creates a new router instance
func NewRouter(container *di.Container) *Router {
	return &Router{container: container}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	c := rt.container
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(c.Logger))

	if c.Config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   c.Config.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(c.JWTValidator, c.Logger))

		nodeHandler := handlers.NewNodeHandler(c.CommandBus, c.QueryBus, c.Logger)
		pageHandler := handlers.NewPageHandler(c.CommandBus, c.QueryBus, c.Logger)
		dragHandler := handlers.NewDragHandler(c.DragService, c.Logger)
		editorHandler := handlers.NewEditorHandler(c.EditorBus, c.Logger)

		// Canvas and node endpoints
		r.Get("/canvas", nodeHandler.GetCanvas)
		r.Route("/nodes", func(r chi.Router) {
			r.Post("/", nodeHandler.CreateNode)
			r.Put("/{nodeID}", nodeHandler.UpdateNode)
			r.Put("/{nodeID}/parent", nodeHandler.ReparentNode)
			r.Delete("/{nodeID}", nodeHandler.DeleteNode)
			r.Post("/{nodeID}/duplicate", nodeHandler.DuplicateNode)
			r.Get("/{nodeID}/children", nodeHandler.ListChildren)
		})

		// Page endpoints
		r.Route("/pages", func(r chi.Router) {
			r.Post("/", pageHandler.CreatePage)
			r.Put("/{pageID}", pageHandler.RenamePage)
			r.Delete("/{pageID}", pageHandler.DeletePage)
			r.Get("/{pageID}/nodes", pageHandler.VisibleNodes)
			r.Get("/{pageID}/render", pageHandler.RenderTree)
		})

		// Drag endpoint
		r.Post("/drag/drop", dragHandler.Drop)

		// Editor surface
		r.Get("/catalog", editorHandler.Catalog)
		r.Route("/editor/events", func(r chi.Router) {
			r.Post("/", editorHandler.PublishEvent)
			r.Get("/{topic}", editorHandler.StreamEvents)
		})

		// AI endpoints, rate limited per user
		r.Route("/ai", func(r chi.Router) {
			r.Use(middleware.RateLimit(c.RateLimiter, c.Logger))

			aiHandler := handlers.NewAIHandler(c.Dispatcher, c.Applier, c.Generation, c.CanvasRepo, c.Logger)
			r.Post("/process-prompt", aiHandler.ProcessPrompt)
			r.Post("/process-action", aiHandler.ProcessAction)
			r.Post("/debug-fix", aiHandler.DebugFix)
			r.Post("/generate/component", aiHandler.GenerateComponent)
			r.Post("/generate/page", aiHandler.GeneratePage)
			r.Post("/generate/application", aiHandler.GenerateApplication)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
