package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/netdash/netdash/pkg/manage"
	"github.com/netdash/netdash/pkg/network"
	"github.com/netdash/netdash/pkg/network/wireguard"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusForError maps request validation errors to 400. Everything else
// that reaches the presentation layer comes from a tool that could not be
// run or answered badly.
func statusForError(err error) int {
	switch {
	case errors.Is(err, network.ErrInvalidRequest), errors.Is(err, network.ErrInvalidAction):
		return http.StatusBadRequest
	case errors.Is(err, wireguard.ErrDeviceNotFound), errors.Is(err, manage.ErrExternalIPDisabled):
		return http.StatusNotFound
	case errors.Is(err, wireguard.ErrDeviceReaderUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		logrus.WithError(err).Warn("failed to write json response")
	}
}

func writeJSONError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
}

// errorMessages flattens an aggregated error into one message per failure.
func errorMessages(err error) []string {
	var multiErr *multierror.Error
	if errors.As(err, &multiErr) {
		messages := make([]string, 0, len(multiErr.Errors))
		for _, e := range multiErr.Errors {
			messages = append(messages, e.Error())
		}
		return messages
	}
	return []string{err.Error()}
}
