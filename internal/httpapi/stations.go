package httpapi

import (
	"net/http"

	"stationpace/internal/station"
	"stationpace/internal/utils"
)

type stationInfo struct {
	Key       string `json:"key"`
	StationID string `json:"station_id"`
	Name      string `json:"name"`
	Timezone  string `json:"timezone"`
}

type stationsHandler struct {
	registry *station.Registry
}

func (h *stationsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	stations := h.registry.Stations()
	out := make([]stationInfo, 0, len(stations))
	for _, st := range stations {
		out = append(out, stationInfo{
			Key:       st.Key,
			StationID: st.ID,
			Name:      st.Name,
			Timezone:  st.Timezone,
		})
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"stations": out})
}

func registerStations(mux *http.ServeMux, registry *station.Registry) {
	h := &stationsHandler{registry: registry}
	mux.HandleFunc("GET /api/stations", h.handleList)
}
