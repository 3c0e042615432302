package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"hookrelay/internal/engine/registry"
	"hookrelay/internal/engine/routing"
	"hookrelay/internal/platform/config"
)

// Dispatcher performs the outbound transmission for a list of matches. It is
// fire-and-forget by design: no retries, no dead-lettering.
type Dispatcher struct {
	client          *http.Client
	signatureHeader string
}

func NewDispatcher(cfg config.WebhooksConfig) *Dispatcher {
	timeout := cfg.DeliveryTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	header := cfg.SignatureHeader
	if header == "" {
		header = "X-Hookrelay-Signature"
	}
	return &Dispatcher{
		client:          &http.Client{Timeout: timeout},
		signatureHeader: header,
	}
}

// Dispatch fans the event out to every match concurrently. secret is the
// organization's signing secret.
func (d *Dispatcher) Dispatch(event routing.Event, matches []routing.Match, secret string) {
	deliveryID := "evt_" + uuid.New().String()

	for _, match := range matches {
		payload, err := buildPayload(event, match)
		if err != nil {
			log.Error().Err(err).Str("endpoint", match.Endpoint.ID).Msg("failed to build webhook payload")
			continue
		}
		go d.deliver(match, deliveryID, string(event.ActionID), payload, secret)
	}
}

func (d *Dispatcher) deliver(match routing.Match, deliveryID, action string, payload []byte, secret string) {
	req, err := http.NewRequest(http.MethodPost, match.Endpoint.URL, bytes.NewBuffer(payload))
	if err != nil {
		log.Error().Err(err).Str("endpoint", match.Endpoint.ID).Msg("failed to build webhook request")
		return
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(d.signatureHeader, Sign(secret, payload))
	req.Header.Set("X-Hookrelay-Action", action)
	req.Header.Set("X-Hookrelay-Delivery", deliveryID)
	// Extra headers from the endpoint are passed through verbatim.
	for key, value := range match.Endpoint.Headers {
		req.Header.Set(key, value)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("endpoint", match.Endpoint.ID).Str("action", action).Msg("webhook delivery failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Warn().Int("status", resp.StatusCode).Str("endpoint", match.Endpoint.ID).Str("action", action).
			Msg("webhook delivery rejected")
		return
	}
	log.Debug().Str("endpoint", match.Endpoint.ID).Str("action", action).Msg("webhook delivered")
}

// buildPayload shapes the request body for one match. With send_payload off
// only the action identifier is sent.
func buildPayload(event routing.Event, match routing.Match) ([]byte, error) {
	body := map[string]interface{}{
		"action": string(event.ActionID),
	}

	if match.Endpoint.SendPayload {
		fragment, err := serializeEntities(event, match.Action)
		if err != nil {
			return nil, err
		}
		if fragment != nil {
			body[match.Action.PayloadKey] = fragment
		}
	}

	return json.Marshal(body)
}

// serializeEntities applies the action's serializer variant. Full projection
// passes the caller-supplied entity data through; id-only reduces to
// identifier records.
func serializeEntities(event routing.Event, desc registry.Descriptor) (interface{}, error) {
	switch desc.Serializer {
	case registry.SerializeIDOnly:
		ids := make([]map[string]string, 0, len(event.EntityIDs))
		for _, id := range event.EntityIDs {
			ids = append(ids, map[string]string{"id": id})
		}
		if desc.IsMulti {
			return ids, nil
		}
		if len(ids) == 0 {
			return nil, nil
		}
		return ids[0], nil
	case registry.SerializeFull:
		return event.Data, nil
	default:
		return nil, fmt.Errorf("unknown serializer variant %q", desc.Serializer)
	}
}
