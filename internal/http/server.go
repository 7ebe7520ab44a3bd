package http

import (
	"net/http"

	"github.com/opencourt/ladderd/internal/config"
	"github.com/opencourt/ladderd/internal/metrics"
	"github.com/opencourt/ladderd/internal/notifier"
	"github.com/opencourt/ladderd/internal/pubsub"
	"github.com/opencourt/ladderd/internal/service"
)

func NewServer(svc service.Service, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Service:        svc,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// The auth middleware resolves the caller's principal; authorization
	// decisions live in the service layer.
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("GET /stats", Chain(s.StatsHandler(), paramsMiddleware))

	s.Router.Handle("POST /login", Chain(s.LoginHandler(), paramsMiddleware))
	s.Router.Handle("GET /users/{id}", Chain(s.GetUserHandler(), paramsMiddleware, s.authMiddleware))
	s.Router.Handle("PUT /users/{id}", Chain(s.UpdateUserHandler(), paramsMiddleware, s.authMiddleware))

	s.Router.Handle("GET /ladders", Chain(s.ListLaddersHandler(), paramsMiddleware, s.authMiddleware))
	s.Router.Handle("GET /ladders/{id}/players", Chain(s.ListPlayersHandler(), paramsMiddleware, s.authMiddleware))
	s.Router.Handle("POST /ladders/{id}/players", Chain(s.JoinLadderHandler(), paramsMiddleware, s.authMiddleware))
	s.Router.Handle("PUT /ladders/{id}/players/order", Chain(s.UpdatePlayerOrderHandler(), paramsMiddleware, s.authMiddleware))
	s.Router.Handle("PUT /ladders/{id}/players/{userID}", Chain(s.UpdatePlayerHandler(), paramsMiddleware, s.authMiddleware))
	s.Router.Handle("GET /ladders/{id}/matches", Chain(s.ListMatchesHandler(), paramsMiddleware, s.authMiddleware))
	s.Router.Handle("POST /ladders/{id}/matches", Chain(s.ReportMatchHandler(), paramsMiddleware, s.authMiddleware))

	s.Router.Handle("PUT /matches/{id}", Chain(s.UpdateMatchHandler(), paramsMiddleware, s.authMiddleware))
	s.Router.Handle("DELETE /matches/{id}", Chain(s.DeleteMatchHandler(), paramsMiddleware, s.authMiddleware))

	// Infrastructure triggers and push subscriptions.
	s.Router.Handle("POST /decay", Chain(s.DecayHandler(), paramsMiddleware))
	s.Router.Handle("POST /events/match-reported", Chain(s.MatchReportedEventHandler(), paramsMiddleware))
	s.Router.Handle("POST /events/points-decayed", Chain(s.PointsDecayedEventHandler(), paramsMiddleware))
	s.Router.Handle("POST /slack/command/standings", Chain(s.StandingsCommandHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
