package httpapi

import (
	"database/sql"
	"log/slog"
	"net/http"

	"stationpace/internal/utils"
)

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	obsDB     *sql.DB
	resultsDB *sql.DB
}

func NewHealthchecker(obsDB, resultsDB *sql.DB) healthchecker {
	return &healthcheckerImpl{obsDB: obsDB, resultsDB: resultsDB}
}

func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	for name, db := range map[string]*sql.DB{
		"observations": h.obsDB,
		"results":      h.resultsDB,
	} {
		var ok int
		if err := db.QueryRow(`SELECT 1`).Scan(&ok); err != nil {
			slog.Error("failed to check database connectivity", "store", name, "error", err)
			utils.WriteError(w, http.StatusInternalServerError, "failed to check database connectivity")
			return
		}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func registerHealthcheck(mux *http.ServeMux, obsDB, resultsDB *sql.DB) {
	healthchecker := NewHealthchecker(obsDB, resultsDB)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}
