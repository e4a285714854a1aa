package endpoint

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/rajnandan1/kener-sub002/internal/ingest"
	"github.com/rajnandan1/kener-sub002/internal/kenererr"
	api "github.com/rajnandan1/kener-sub002/lib-kener"
)

// WebhookEndpoint accepts one observation per call:
// {tag, status, latency, timestampInSeconds?}.
func WebhookEndpoint(b Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := decodePayload(r)
		if err != nil {
			writeError(w, err, http.StatusBadRequest)
			return
		}
		serveIngest(b, w, payload)
	}
}

// NowEndpoint is the path-tag alias of the webhook: the tag comes
// from the URL and overrides whatever the body says.
func NowEndpoint(b Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := decodePayload(r)
		if err != nil {
			writeError(w, err, http.StatusBadRequest)
			return
		}
		payload.Tag = mux.Vars(r)["tag"]
		serveIngest(b, w, payload)
	}
}

func decodePayload(r *http.Request) (ingest.Payload, error) {
	var payload ingest.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return ingest.Payload{}, kenererr.New(api.ErrValidation, err, "invalid request body")
	}
	return payload, nil
}

func serveIngest(b Backend, w http.ResponseWriter, payload ingest.Payload) {
	minute, err := b.Ingest.Ingest(payload)
	if err != nil {
		// Unknown tags answer 400 on this route, per the ingestion
		// contract.
		writeError(w, err, http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":         fmt.Sprintf("stored %s at %d", payload.Tag, minute),
		"writtenAtMinute": minute,
	})
}
