package routes

import (
	"centre-block/internal/config"
	"centre-block/internal/handlers"
	"centre-block/internal/logger"
	"centre-block/internal/metrics"
	mdlwr "centre-block/internal/middleware"
	"centre-block/internal/services"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps are the collaborators the router wires into handlers. Publish-time
// renders and the editor proxy use separate clients so each keeps its own
// timeout.
type Deps struct {
	Proxy   *services.DirectoryClient
	Publish *services.DirectoryClient
	Blocks  services.BlockStore
}

func NewRouter(deps Deps, cfg *config.Config, logr *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(mdlwr.AccessLog(logr.Logger))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	proxyResolver := services.NewResolver(deps.Proxy)
	renderer := services.NewRenderer(services.NewResolver(deps.Publish), logr.Logger)

	centreHandler := handlers.NewCentreHandler(deps.Proxy, proxyResolver, logr.Logger)
	blockHandler := handlers.NewBlockHandler(deps.Blocks, renderer, logr.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("ok"))
		if err != nil {
			return
		}
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/awanui/v1", func(r chi.Router) {
		r.Route("/centres", func(r chi.Router) {
			r.Get("/", centreHandler.ListCentres)
			r.Get("/{id}", centreHandler.GetCentre)
		})

		r.Route("/blocks", func(r chi.Router) {
			r.Post("/", blockHandler.CreateBlock)
			r.Get("/{id}", blockHandler.GetBlock)
			r.Put("/{id}", blockHandler.UpdateBlock)
		})

		r.Get("/render", blockHandler.RenderSelection)
	})

	// Published page fragments.
	r.Get("/blocks/{id}", blockHandler.RenderBlock)

	return r
}
