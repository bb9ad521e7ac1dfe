package handler

import (
	"marketplace/config"
	"marketplace/di"
	"marketplace/shared/logger"
	"net/http"
	"sync"
)

var (
	app  *di.App
	once sync.Once
)

// Handler serves the API from a serverless runtime. Background workers are not started here;
// payment reconciliation runs from cmd/reconcile.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		cfg := config.Get()

		logger.InitLogger()

		logger.SetLogLevel(cfg)

		app = di.InitializeApp()
	})

	r.RequestURI = r.URL.String()

	app.HTTP.ServeHTTP(w, r)
}
