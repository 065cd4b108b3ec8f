package api

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sqlc-dev/pqtype"

	"github.com/mupfumi/donation-receipts-backend/internal/db"
	"github.com/mupfumi/donation-receipts-backend/internal/platform"
)

// ─── POST /webhooks/orders/create ─────────────────────────────────────────────

// handleOrderWebhook is the entry point for order-creation webhooks.
//
// The platform delivers webhooks at-least-once and retries on non-2xx
// responses, so the handler does the minimum synchronous work: verify the
// signature, persist the raw payload as an order_event row, and enqueue it
// for the worker. All donation semantics — including replay protection via
// the donations uniqueness constraint — live in the pipeline, not here. An
// event row is an audit record, never a dedup gate: two rows for the same
// order still produce exactly one donation.
func (s *Server) handleOrderWebhook(w http.ResponseWriter, r *http.Request) {
	// Read the raw body before anything else so the signature check runs
	// against the exact bytes the platform signed.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB — generous for any order payload
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		respondErr(w, http.StatusBadRequest, "could not read request body")
		return
	}

	sig := r.Header.Get(platform.HeaderHMAC)
	if err := platform.VerifyWebhook(payload, sig, s.cfg.WebhookSecret); err != nil {
		s.logger.Warn("webhook: invalid signature", "error", err, logField(r))
		respondErr(w, http.StatusUnauthorized, "invalid webhook signature")
		return
	}

	shop := r.Header.Get(platform.HeaderShopDomain)
	if shop == "" {
		respondErr(w, http.StatusBadRequest, "missing shop domain header")
		return
	}

	event, err := s.q.CreateOrderEvent(r.Context(), db.CreateOrderEventParams{
		Shop:      shop,
		WebhookID: nullString(r.Header.Get(platform.HeaderWebhookID)),
		Topic:     topicOrDefault(r.Header.Get(platform.HeaderTopic)),
		Payload:   json.RawMessage(payload),
		Headers:   webhookHeaders(r),
	})
	if err != nil {
		// 500 makes the platform retry the delivery. The replay is safe: the
		// pipeline collapses duplicates on the donation constraint.
		s.respondInternalErr(w, r, fmt.Errorf("create order event: %w", err))
		return
	}

	if err := s.worker.Enqueue(r.Context(), event.ID); err != nil {
		// Enqueueing failed (queue full) — the poller will pick it up.
		s.logger.Warn("webhook: enqueue failed, will be picked up by poller",
			"event_id", event.ID,
			"error", err,
			logField(r),
		)
	}

	w.WriteHeader(http.StatusOK)
}

// webhookHeaders captures the platform's delivery headers as a JSON object
// for the audit row.
func webhookHeaders(r *http.Request) pqtype.NullRawMessage {
	captured := map[string]string{}
	for _, name := range []string{platform.HeaderShopDomain, platform.HeaderWebhookID, platform.HeaderTopic} {
		if v := r.Header.Get(name); v != "" {
			captured[name] = v
		}
	}
	if len(captured) == 0 {
		return pqtype.NullRawMessage{}
	}
	raw, err := json.Marshal(captured)
	if err != nil {
		return pqtype.NullRawMessage{}
	}
	return pqtype.NullRawMessage{RawMessage: raw, Valid: true}
}

func topicOrDefault(topic string) string {
	if topic == "" {
		return "orders/create"
	}
	return topic
}

// nullString converts a Go string to sql.NullString. Empty string → NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
