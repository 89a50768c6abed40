package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/gestaopalco/painel/internal/auth"
	"github.com/gestaopalco/painel/internal/config"
	httpmiddleware "github.com/gestaopalco/painel/internal/http/middleware"
	"github.com/gestaopalco/painel/internal/painel"
)

// Handler concentra as dependências dos endpoints do painel.
type Handler struct {
	cfg           *config.Config
	pool          *pgxpool.Pool
	redis         *redis.Client
	painel        *painel.Service
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
}

// NewRouter devolve roteador configurado.
func NewRouter(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client, service *painel.Service) http.Handler {
	h := &Handler{
		cfg:           cfg,
		pool:          pool,
		redis:         redisClient,
		painel:        service,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(jwtManager))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

		private.Route("/painel", func(p chi.Router) {
			p.Get("/", h.GetPainel)
			p.Post("/atualizar", h.AtualizarPainel)
			p.Post("/invalidar", h.InvalidarPainel)
			p.Get("/conectividade", h.Conectividade)
		})

		private.Route("/eventos", func(e chi.Router) {
			e.Post("/", h.CreateEvento)
			e.Patch("/{id}", h.UpdateEvento)
			e.Delete("/{id}", h.DeleteEvento)
		})

		private.Route("/demandas", func(d chi.Router) {
			d.Post("/", h.CreateDemanda)
			d.Patch("/{id}", h.UpdateDemanda)
			d.Delete("/{id}", h.DeleteDemanda)
		})

		private.Route("/crm", func(c chi.Router) {
			c.Post("/", h.CreateRegistroCRM)
			c.Patch("/{id}", h.UpdateRegistroCRM)
			c.Delete("/{id}", h.DeleteRegistroCRM)
		})

		private.Route("/notas", func(n chi.Router) {
			n.Post("/", h.CreateNota)
			n.Patch("/{id}", h.UpdateNota)
			n.Delete("/{id}", h.DeleteNota)
		})
	})

	return r
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready valida conexões com Postgres e Redis.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbErr := h.pool.Ping(ctx)
	redisErr := h.redis.Ping(ctx).Err()

	if dbErr != nil || redisErr != nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "dependências indisponíveis", map[string]any{
			"db":    errorString(dbErr),
			"redis": errorString(redisErr),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
