package httpapi

import (
	"log/slog"
	"net/http"

	"stationpace/internal/pace"
	"stationpace/internal/station"
	"stationpace/internal/utils"
)

type paceHandler struct {
	registry *station.Registry
	svc      *pace.Service
}

func (h *paceHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	st, ok := h.registry.ByID(id)
	if !ok {
		utils.WriteError(w, http.StatusNotFound, "unknown station")
		return
	}
	snap, ok, err := h.svc.SnapshotFor(st)
	if err != nil {
		slog.Error("failed to read pace snapshot", "station", st.ID, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to read pace snapshot")
		return
	}
	if !ok {
		utils.WriteError(w, http.StatusNotFound, "no observations for the current local day")
		return
	}
	utils.WriteJSON(w, http.StatusOK, snap)
}

func registerPace(mux *http.ServeMux, registry *station.Registry, svc *pace.Service) {
	h := &paceHandler{registry: registry, svc: svc}
	mux.HandleFunc("GET /api/pace/{id}", h.handleGet)
}
