package api

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/netdash/netdash/pkg/manage"
	"github.com/netdash/netdash/pkg/network"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type indexPage struct {
	Snapshot *manage.Snapshot
	Errors   []string
}

type resultPage struct {
	Title     string
	Succeeded bool
	Headline  string
	Output    string
}

type outputPage struct {
	Title  string
	Label  string
	Value  string
	Output string
}

type pageHandler struct {
	manageService manage.Service
	wifiInterface string
}

func newPageHandler(manageService manage.Service, wifiInterface string) *pageHandler {
	return &pageHandler{
		manageService: manageService,
		wifiInterface: wifiInterface,
	}
}

func (h *pageHandler) index(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.manageService.Snapshot(r.Context())
	page := indexPage{Snapshot: snapshot}
	if err != nil {
		logrus.WithError(err).Warn("snapshot is incomplete")
		page.Errors = errorMessages(err)
	}
	render(w, http.StatusOK, "index.html", page)
}

func (h *pageHandler) submitWifi(w http.ResponseWriter, r *http.Request) {
	request := network.ActionRequest{
		Kind:     network.KindWifi,
		Name:     h.wifiInterface,
		Action:   network.ActionConnect,
		SSID:     r.PostFormValue("ssid"),
		Password: r.PostFormValue("password"),
	}

	h.dispatch(w, r, request, "Wi-Fi", func(succeeded bool) string {
		if succeeded {
			return fmt.Sprintf("Success: connected %s to %s", request.Name, request.SSID)
		}
		return "Error: failed to connect to wifi network"
	})
}

func (h *pageHandler) controlWireguard(w http.ResponseWriter, r *http.Request) {
	request := network.ActionRequest{
		Kind:   network.KindWireguard,
		Name:   r.PostFormValue("interface"),
		Action: network.Action(r.PostFormValue("action")),
	}

	h.dispatch(w, r, request, "WireGuard", func(succeeded bool) string {
		return actionHeadline(succeeded, request, "WireGuard")
	})
}

func (h *pageHandler) controlOpenvpn(w http.ResponseWriter, r *http.Request) {
	request := network.ActionRequest{
		Kind:   network.KindOpenvpn,
		Name:   r.PostFormValue("client"),
		Action: network.Action(r.PostFormValue("action")),
	}

	h.dispatch(w, r, request, "OpenVPN", func(succeeded bool) string {
		return actionHeadline(succeeded, request, "OpenVPN")
	})
}

func (h *pageHandler) dispatch(w http.ResponseWriter, r *http.Request, request network.ActionRequest, title string, headline func(succeeded bool) string) {
	result, err := h.manageService.Dispatch(r.Context(), request)
	if err != nil {
		render(w, statusForError(err), "result.html", resultPage{
			Title:    title,
			Headline: "Error: invalid request",
			Output:   err.Error(),
		})
		return
	}

	render(w, http.StatusOK, "result.html", resultPage{
		Title:     title,
		Succeeded: result.Succeeded,
		Headline:  headline(result.Succeeded),
		Output:    result.Message,
	})
}

func (h *pageHandler) currentWifi(w http.ResponseWriter, r *http.Request) {
	interfaceName := r.URL.Query().Get("interface")
	if interfaceName == "" {
		interfaceName = h.wifiInterface
	}

	ssid, err := h.manageService.CurrentWifiAssociation(r.Context(), interfaceName)
	if err != nil {
		renderOutputError(w, "Current WiFi", err)
		return
	}
	render(w, http.StatusOK, "output.html", outputPage{
		Title: "Current WiFi",
		Label: "Current WiFi",
		Value: ssid,
	})
}

func (h *pageHandler) wifiClients(w http.ResponseWriter, r *http.Request) {
	stations, err := h.manageService.AssociatedStations(r.Context())
	if err != nil {
		renderOutputError(w, "WiFi Clients", err)
		return
	}
	render(w, http.StatusOK, "output.html", outputPage{
		Title:  "WiFi Clients",
		Label:  "WiFi Clients",
		Output: strings.Join(stations, "\n"),
	})
}

func (h *pageHandler) connectedClients(w http.ResponseWriter, r *http.Request) {
	table, err := h.manageService.NeighborTable(r.Context())
	if err != nil {
		renderOutputError(w, "Connected Clients", err)
		return
	}
	render(w, http.StatusOK, "output.html", outputPage{
		Title:  "Connected Clients",
		Label:  "Connected Clients",
		Output: table,
	})
}

func actionHeadline(succeeded bool, request network.ActionRequest, backend string) string {
	if succeeded {
		return fmt.Sprintf("Success to %s %s on %s", request.Action, backend, request.Name)
	}
	return fmt.Sprintf("Failed to %s %s on %s", request.Action, backend, request.Name)
}

func renderOutputError(w http.ResponseWriter, title string, err error) {
	logrus.WithError(err).WithField("page", title).Warn("diagnostic query failed")
	render(w, statusForError(err), "output.html", outputPage{
		Title:  title,
		Label:  "Error",
		Output: err.Error(),
	})
}

func render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		logrus.WithError(err).WithField("template", name).Error("failed to render template")
	}
}
