package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/netdash/netdash/pkg/manage"
	"github.com/netdash/netdash/pkg/network"
	"github.com/netdash/netdash/pkg/network/openvpn"
)

const maxDispatchBodySize = 64 << 10

type snapshotResponse struct {
	*manage.Snapshot
	Errors []string `json:"errors,omitempty"`
}

type currentWifiResponse struct {
	Interface string `json:"interface"`
	SSID      string `json:"ssid"`
}

type stationsResponse struct {
	Stations []string `json:"stations"`
}

type externalIPResponse struct {
	IP string `json:"ip"`
}

type jsonHandler struct {
	manageService manage.Service
	wifiInterface string
}

func newJSONHandler(manageService manage.Service, wifiInterface string) *jsonHandler {
	return &jsonHandler{
		manageService: manageService,
		wifiInterface: wifiInterface,
	}
}

func (h *jsonHandler) snapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.manageService.Snapshot(r.Context())
	response := snapshotResponse{Snapshot: snapshot}
	if err != nil {
		logrus.WithError(err).Warn("snapshot is incomplete")
		response.Errors = errorMessages(err)
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *jsonHandler) dispatch(w http.ResponseWriter, r *http.Request) {
	var request network.ActionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDispatchBodySize)).Decode(&request); err != nil {
		writeJSONError(w, fmt.Errorf("%w: failed to decode request: %w", network.ErrInvalidRequest, err))
		return
	}

	if request.Kind == network.KindWifi && request.Name == "" {
		request.Name = h.wifiInterface
	}

	result, err := h.manageService.Dispatch(r.Context(), request)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *jsonHandler) currentWifi(w http.ResponseWriter, r *http.Request) {
	interfaceName := r.URL.Query().Get("interface")
	if interfaceName == "" {
		interfaceName = h.wifiInterface
	}

	ssid, err := h.manageService.CurrentWifiAssociation(r.Context(), interfaceName)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, currentWifiResponse{Interface: interfaceName, SSID: ssid})
}

func (h *jsonHandler) wifiStations(w http.ResponseWriter, r *http.Request) {
	stations, err := h.manageService.AssociatedStations(r.Context())
	if err != nil {
		writeJSONError(w, err)
		return
	}
	if stations == nil {
		stations = []string{}
	}
	writeJSON(w, http.StatusOK, stationsResponse{Stations: stations})
}

func (h *jsonHandler) wireguardDevice(w http.ResponseWriter, r *http.Request) {
	device, err := h.manageService.WireguardDevice(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, device)
}

func (h *jsonHandler) openvpnSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.manageService.OpenvpnSessions(r.Context())
	if err != nil {
		writeJSONError(w, err)
		return
	}
	if sessions == nil {
		sessions = []*openvpn.SessionStatus{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *jsonHandler) externalIP(w http.ResponseWriter, r *http.Request) {
	ip, err := h.manageService.ExternalIP(r.Context())
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, externalIPResponse{IP: ip.String()})
}
