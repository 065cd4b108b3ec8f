package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mupfumi/donation-receipts-backend/internal/db"
	"github.com/mupfumi/donation-receipts-backend/internal/store"
)

// Fallback templates for a charity saved before the merchant has customised
// anything. They render with the standard bindings and nothing else.
const (
	defaultEmailSubject  = "Receipt for your donation to {{ charity.name }}"
	defaultEmailTemplate = "Thank you for your order. " +
		"{{ donation.donation_amount }} from order {{ order.name }} will be donated to {{ charity.name }}. " +
		"Your receipt is attached."
	defaultPDFTemplate = "{{ charity.name }} confirms a donation of {{ donation.donation_amount }} " +
		"arising from order {{ order.name }} placed on {{ donation.created_at }}."
	defaultPDFFilename = "receipt-{{ donation.order_id }}"
)

type charityResponse struct {
	Name          string `json:"name"`
	EmailFrom     string `json:"email_from"`
	EmailBcc      string `json:"email_bcc"`
	EmailSubject  string `json:"email_subject"`
	EmailTemplate string `json:"email_template"`
	PDFTemplate   string `json:"pdf_template"`
	PDFFilename   string `json:"pdf_filename"`
}

func toCharityResponse(c db.Charity) charityResponse {
	return charityResponse{
		Name:          c.Name.String,
		EmailFrom:     c.EmailFrom.String,
		EmailBcc:      c.EmailBcc.String,
		EmailSubject:  c.EmailSubject,
		EmailTemplate: c.EmailTemplate,
		PDFTemplate:   c.PdfTemplate,
		PDFFilename:   c.PdfFilename,
	}
}

// ─── GET /api/charity ────────────────────────────────────────────────────────

func (s *Server) handleGetCharity(w http.ResponseWriter, r *http.Request) {
	charity, err := s.store.CharityByShop(r.Context(), shopFrom(r))
	if errors.Is(err, store.ErrCharityNotFound) {
		respondErr(w, http.StatusNotFound, "no charity configured")
		return
	}
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}

	respond(w, http.StatusOK, toCharityResponse(charity))
}

// ─── PUT /api/charity ────────────────────────────────────────────────────────

type upsertCharityRequest struct {
	Name          string `json:"name"`
	EmailFrom     string `json:"email_from"`
	EmailBcc      string `json:"email_bcc"`
	EmailSubject  string `json:"email_subject"`
	EmailTemplate string `json:"email_template"`
	PDFTemplate   string `json:"pdf_template"`
	PDFFilename   string `json:"pdf_filename"`
}

// handleUpsertCharity creates or replaces the shop's charity configuration.
// Template fields left empty fall back to the defaults, so a merchant can
// save just the charity name and have working receipts immediately.
func (s *Server) handleUpsertCharity(w http.ResponseWriter, r *http.Request) {
	var req upsertCharityRequest
	if !decode(w, r, &req) {
		return
	}

	charity, err := s.q.UpsertCharity(r.Context(), db.UpsertCharityParams{
		Shop:          shopFrom(r),
		Name:          nullString(req.Name),
		EmailFrom:     nullString(req.EmailFrom),
		EmailBcc:      nullString(req.EmailBcc),
		EmailSubject:  orDefault(req.EmailSubject, defaultEmailSubject),
		EmailTemplate: orDefault(req.EmailTemplate, defaultEmailTemplate),
		PdfTemplate:   orDefault(req.PDFTemplate, defaultPDFTemplate),
		PdfFilename:   orDefault(req.PDFFilename, defaultPDFFilename),
	})
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("upsert charity: %w", err))
		return
	}

	respond(w, http.StatusOK, toCharityResponse(charity))
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
