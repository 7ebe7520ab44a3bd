package http

import (
	"net/http"

	"github.com/opencourt/ladderd/internal/config"
	"github.com/opencourt/ladderd/internal/metrics"
	"github.com/opencourt/ladderd/internal/notifier"
	"github.com/opencourt/ladderd/internal/pubsub"
	"github.com/opencourt/ladderd/internal/service"
)

type Server struct {
	Service        service.Service
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
