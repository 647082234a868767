// internal/dispatch/handler.go
package dispatch

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"spacebot/internal/auth"
)

var webhooksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "spacebot_webhooks_total",
	Help: "Inbound webhook payloads by class and outcome.",
}, []string{"class", "outcome"})

// Routes mounts the webhook endpoint.
func (d *Dispatcher) Routes(r chi.Router) {
	r.Post("/api/space", d.handleWebhook)
}

func (d *Dispatcher) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	payload, err := DecodePayload(body)
	if err != nil {
		d.log.Warnw("webhook rejected", "err", err)
		webhooksTotal.WithLabelValues("unknown", "rejected").Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	switch p := payload.(type) {
	case InitPayload:
		if err := d.HandleInit(ctx, p); err != nil {
			d.log.Errorw("init failed", "clientId", p.ClientID, "err", err)
			webhooksTotal.WithLabelValues("InitPayload", "error").Inc()
			http.Error(w, "init failed", http.StatusInternalServerError)
			return
		}
		webhooksTotal.WithLabelValues("InitPayload", "ok").Inc()
		w.WriteHeader(http.StatusOK)

	case MessagePayload:
		if err := d.HandleMessage(ctx, p); err != nil {
			d.log.Errorw("message failed", "clientId", p.ClientID, "err", err)
			webhooksTotal.WithLabelValues("MessagePayload", "error").Inc()
			status := http.StatusInternalServerError
			if errors.Is(err, auth.ErrUnregisteredTenant) {
				status = http.StatusForbidden
			}
			http.Error(w, "message failed", status)
			return
		}
		webhooksTotal.WithLabelValues("MessagePayload", "ok").Inc()
		w.WriteHeader(http.StatusOK)

	case ListCommandsPayload:
		webhooksTotal.WithLabelValues("ListCommandsPayload", "ok").Inc()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"commands": d.HandleListCommands(ctx)})
	}
}
