package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/arena-lobby/internal/ws"
)

func SetupRoutes(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(d.Log))

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(d.Hub, d.Log))
	r.Get("/api/options", Options(d))

	r.Route("/lobbies", func(r chi.Router) {
		r.Post("/", CreateLobby(d))
		r.Get("/", ListLobbies(d))
		r.Get("/{code}", GetLobby(d))
		r.Delete("/{code}", DeleteLobby(d))
		r.Post("/{code}/start", StartGame(d))
	})

	r.Route("/profiles", func(r chi.Router) {
		r.Get("/{id}", GetProfile(d))
		r.Put("/{id}", PutProfile(d))
	})
	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			began := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(began)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
