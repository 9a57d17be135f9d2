package httpapi

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stationpace/internal/pace"
	"stationpace/internal/station"
	"stationpace/internal/store"
)

func NewMux(
	registry *station.Registry,
	paceSvc *pace.Service,
	results *store.ResultStore,
	obsDB, resultsDB *sql.DB,
	metricsReg *prometheus.Registry,
) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, obsDB, resultsDB)
	registerStations(mux, registry)
	registerPace(mux, registry, paceSvc)
	registerResults(mux, registry, results)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metricsReg, promhttp.HandlerOpts{}))
	return mux
}
