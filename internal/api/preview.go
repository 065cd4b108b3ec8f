package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mupfumi/donation-receipts-backend/internal/receipt"
)

// ─── GET /api/preview/email ──────────────────────────────────────────────────

// handlePreviewEmail renders the caller-supplied subject and body template
// against mock order and donation bindings, without saving or sending
// anything. The settings page calls it on every keystroke pause.
func (s *Server) handlePreviewEmail(w http.ResponseWriter, r *http.Request) {
	subject := r.URL.Query().Get("subject")
	template := r.URL.Query().Get("template")

	preview, err := s.receipts.PreviewEmail(r.Context(), shopFrom(r), subject, template)
	var cerr *receipt.CompositionError
	if errors.As(err, &cerr) {
		respondErr(w, http.StatusUnprocessableEntity, cerr.Error())
		return
	}
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("preview email: %w", err))
		return
	}

	respond(w, http.StatusOK, preview)
}

// ─── GET /api/preview/pdf ────────────────────────────────────────────────────

// handlePreviewPDF renders the shop's saved PDF template against mock
// bindings and returns the raw bytes inline.
func (s *Server) handlePreviewPDF(w http.ResponseWriter, r *http.Request) {
	pdf, err := s.receipts.PreviewPDF(r.Context(), shopFrom(r))
	var cerr *receipt.CompositionError
	if errors.As(err, &cerr) {
		respondErr(w, http.StatusUnprocessableEntity, cerr.Error())
		return
	}
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("preview pdf: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="receipt-preview.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// ─── POST /api/test-email ────────────────────────────────────────────────────

type testEmailRequest struct {
	To string `json:"to"`
}

// handleTestEmail sends a full receipt — rendered templates, PDF attachment,
// real transport — built from mock order data to the given address. No
// donation is recorded.
func (s *Server) handleTestEmail(w http.ResponseWriter, r *http.Request) {
	var req testEmailRequest
	if !decode(w, r, &req) {
		return
	}
	if req.To == "" {
		respondErr(w, http.StatusBadRequest, "to is required")
		return
	}

	res, err := s.receipts.TestSend(r.Context(), shopFrom(r), req.To)
	if err != nil {
		s.logger.Error("test email failed",
			"to", req.To,
			"outcome", res.Outcome,
			"error", err,
			logField(r),
		)
		respond(w, http.StatusBadGateway, map[string]string{"outcome": string(res.Outcome)})
		return
	}

	respond(w, http.StatusOK, map[string]string{"outcome": string(res.Outcome)})
}
