package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"

	"stationpace/internal/station"
	"stationpace/internal/store"
	"stationpace/internal/utils"
)

const defaultResultLimit = 30

type resultsHandler struct {
	registry *station.Registry
	results  *store.ResultStore
}

func (h *resultsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	st, ok := h.registry.ByID(id)
	if !ok {
		utils.WriteError(w, http.StatusNotFound, "unknown station")
		return
	}

	limit := defaultResultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			utils.WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	results, err := h.results.ListByStation(st.ID, limit)
	if err != nil {
		slog.Error("failed to list daily results", "station", st.ID, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to list daily results")
		return
	}
	if results == nil {
		results = []store.DailyResult{}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"results": results})
}

func registerResults(mux *http.ServeMux, registry *station.Registry, results *store.ResultStore) {
	h := &resultsHandler{registry: registry, results: results}
	mux.HandleFunc("GET /api/results/{id}", h.handleList)
}
