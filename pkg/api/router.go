package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/netdash/netdash/pkg/config"
	"github.com/netdash/netdash/pkg/manage"
)

func NewRouter(
	conf *config.Config,
	manageService manage.Service,
) http.Handler {
	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   conf.CorsAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: conf.CorsAllowCredentials,
	})

	pages := newPageHandler(manageService, conf.Network.WifiInterface)
	apiHandler := newJSONHandler(manageService, conf.Network.WifiInterface)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(corsMiddleware.Handler)

	router.Group(func(r chi.Router) {
		r.Get("/", pages.index)
		r.Post("/submit", pages.submitWifi)
		r.Post("/wireguard", pages.controlWireguard)
		r.Post("/openvpn", pages.controlOpenvpn)
		r.Get("/current_wifi", pages.currentWifi)
		r.Get("/wifi_clients", pages.wifiClients)
		r.Get("/connected_clients", pages.connectedClients)
		r.HandleFunc("/health", func(writer http.ResponseWriter, request *http.Request) {})
	})

	router.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", apiHandler.snapshot)
		r.Post("/dispatch", apiHandler.dispatch)
		r.Get("/wifi/current", apiHandler.currentWifi)
		r.Get("/wifi/stations", apiHandler.wifiStations)
		r.Get("/wireguard/{name}", apiHandler.wireguardDevice)
		r.Get("/openvpn/sessions", apiHandler.openvpnSessions)
		if conf.ExternalIpEnabled {
			r.Get("/external-ip", apiHandler.externalIP)
		}
	})

	return router
}
