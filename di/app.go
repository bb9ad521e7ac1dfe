package di

import (
	"marketplace/infras/kafka"
	"marketplace/infras/otel"
	"marketplace/internal/jobs"
	"marketplace/internal/relay"
	"marketplace/transport/http"
)

// App is everything the API process starts and stops.
type App struct {
	HTTP      *http.HTTP
	Consumer  *relay.Consumer
	Scheduler *jobs.Scheduler
	Publisher relay.Publisher
	Hub       *relay.Hub
	Kafka     kafka.Client
	Otel      otel.Otel
}

// Reconciler is the dependency set of the standalone reconcile command.
type Reconciler struct {
	Scheduler *jobs.Scheduler
	Publisher relay.Publisher
	Kafka     kafka.Client
	Otel      otel.Otel
}
