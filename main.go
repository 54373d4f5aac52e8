package main

import (
	"context"
	"errors"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/netdash/netdash/pkg/api"
	"github.com/netdash/netdash/pkg/command"
	"github.com/netdash/netdash/pkg/config"
	"github.com/netdash/netdash/pkg/datastore"
	"github.com/netdash/netdash/pkg/datastore/bbolt"
	"github.com/netdash/netdash/pkg/manage"
	"github.com/netdash/netdash/pkg/network/egress"
	"github.com/netdash/netdash/pkg/network/link"
	"github.com/netdash/netdash/pkg/network/openvpn"
	"github.com/netdash/netdash/pkg/network/wifi"
	"github.com/netdash/netdash/pkg/network/wireguard"
)

const (
	appName = "netdash"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
		TimestampFormat: time.RFC3339,
	})

	conf, err := config.Load(appName)
	if err != nil {
		logrus.
			WithError(err).
			Fatal("failed to initialize config")
		return
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGTERM, syscall.SIGINT)

	if _, err := maxprocs.Set(maxprocs.Logger(logrus.Printf)); err != nil {
		logrus.
			WithError(err).
			Error("failed to set maxprocs")
		return
	}

	debugServer := &http.Server{
		Addr: conf.DebugServer.Address(),
	}

	if conf.DebugServer.Enabled {
		go func() {
			logrus.WithField("address", conf.DebugServer.Address()).Info("Starting serving debug server")
			if err := debugServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logrus.
					WithError(err).
					Fatal("Failed to serve debug")
				return
			}
		}()
	}

	logrus.Info("initializing database..")
	db, err := datastore.NewBBoltDB(conf.BoltDB.Path, conf.BoltDB.Timeout)
	if err != nil {
		logrus.
			WithError(err).
			Fatal("failed initialize datastore")
		return
	}
	defer func() {
		if err := db.Close(); err != nil {
			logrus.
				WithError(err).
				Error("failed to close database")
		}
	}()

	runner, err := command.NewRunner(conf.Network.CommandTimeout, conf.Network.UseSudo)
	if err != nil {
		logrus.
			WithError(err).
			Fatal("failed to initialize command runner")
		return
	}

	deviceReader, err := wireguard.NewDeviceReader()
	if err != nil {
		logrus.
			WithError(err).
			Warn("wireguard device details are unavailable")
	} else {
		defer func() {
			if err := deviceReader.Close(); err != nil {
				logrus.
					WithError(err).
					Error("failed to close wireguard device reader")
			}
		}()
	}

	var egressResolver egress.Resolver
	if conf.ExternalIpEnabled {
		egressResolver = egress.NewResolver()
	}

	sessionRepository := bbolt.NewSessionRepository(db)

	manageService := manage.NewService(manage.Options{
		Wifi:                wifi.NewAdapter(runner, conf.Network.WifiInterface),
		Wireguard:           wireguard.NewAdapter(runner, conf.Network.WireguardDir, deviceReader),
		Openvpn:             openvpn.NewAdapter(runner, conf.Network.OpenvpnDir, conf.Network.OpenvpnRunDir, sessionRepository),
		LinkStateReader:     link.NewStateReader(),
		EgressResolver:      egressResolver,
		SnapshotConcurrency: conf.Network.SnapshotConcurrency,
	})

	router := api.NewRouter(
		conf,
		manageService,
	)

	httpServer := http.Server{
		Addr:    conf.HttpServer.Address(),
		Handler: router,
	}

	go func() {
		logrus.WithField("address", conf.HttpServer.Address()).Info("Starting serving http server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.
				WithError(err).
				Fatal("failed to listen and serve http server")
		}
	}()

	<-shutdownChan
	logrus.Info("Shutting down")

	logrus.Info("Shutting down http server")
	httpServerShutdownTimeoutCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(httpServerShutdownTimeoutCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.
			WithError(err).
			Error("failed to shutdown http server")
	}

	if conf.DebugServer.Enabled {
		logrus.Info("Shutting down debug http server")
		debugHttpServerShutdownTimeoutCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := debugServer.Shutdown(debugHttpServerShutdownTimeoutCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.
				WithError(err).
				Error("failed to shutdown debug server")
		}
	}
}
