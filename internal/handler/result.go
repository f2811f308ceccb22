package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bakry/voice-comments/internal/wire"
)

func writeResult(w http.ResponseWriter, status int, result wire.Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeOK(w http.ResponseWriter, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		slog.Error("failed to marshal response value", "error", err)
		writeResult(w, http.StatusInternalServerError, wire.Result{
			OK:    false,
			Error: "internal error",
		})
		return
	}
	writeResult(w, http.StatusOK, wire.Result{OK: true, Value: raw})
}

// writeErr maps the error onto the failure envelope. UserErrors carry
// their message to the client; anything else is logged and masked.
func writeErr(w http.ResponseWriter, err error) {
	var userErr *UserError
	if errors.As(err, &userErr) {
		writeResult(w, http.StatusBadRequest, wire.Result{
			OK:    false,
			Error: userErr.Message,
		})
		return
	}

	slog.Error("request failed", "error", err)
	writeResult(w, http.StatusInternalServerError, wire.Result{
		OK:    false,
		Error: "internal error",
	})
}
