package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mupfumi/donation-receipts-backend/internal/db"
	"github.com/mupfumi/donation-receipts-backend/internal/pipeline"
)

const donationsPageSize = 50

// ─── GET /api/donations ──────────────────────────────────────────────────────

type donationResponse struct {
	ID             string `json:"id"`
	OrderID        int64  `json:"order_id"`
	DonationAmount string `json:"donation_amount"`
	CreatedAt      string `json:"created_at"`
}

type listDonationsResponse struct {
	Donations []donationResponse `json:"donations"`
	Page      int                `json:"page"`
}

// handleListDonations returns the shop's donations newest-first, one fixed
// size page at a time. ?page= is 1-based; out-of-range pages return an empty
// list, not an error.
func (s *Server) handleListDonations(w http.ResponseWriter, r *http.Request) {
	shop := shopFrom(r)

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondErr(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		page = n
	}

	rows, err := s.q.ListDonationsByShop(r.Context(), db.ListDonationsByShopParams{
		Shop:   shop,
		Limit:  donationsPageSize,
		Offset: int32((page - 1) * donationsPageSize),
	})
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("list donations: %w", err))
		return
	}

	donations := make([]donationResponse, len(rows))
	for i, d := range rows {
		donations[i] = toDonationResponse(d)
	}

	respond(w, http.StatusOK, listDonationsResponse{
		Donations: donations,
		Page:      page,
	})
}

func toDonationResponse(d db.Donation) donationResponse {
	return donationResponse{
		ID:             d.ID.String(),
		OrderID:        d.OrderID,
		DonationAmount: d.DonationAmount.StringFixed(2),
		CreatedAt:      d.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ─── POST /api/donations/{donationID}/resend ─────────────────────────────────

type resendRequest struct {
	// To overrides the recipient; empty means the order's customer email.
	To string `json:"to"`
}

type resendResponse struct {
	DonationID string `json:"donation_id"`
	Outcome    string `json:"outcome"`
}

// handleResendReceipt re-delivers the receipt for an existing donation. It
// composes and sends from current state — the donation row is never touched,
// so resending cannot double-count and cannot race the webhook path.
func (s *Server) handleResendReceipt(w http.ResponseWriter, r *http.Request) {
	shop := shopFrom(r)

	donationID, err := uuid.Parse(chi.URLParam(r, "donationID"))
	if err != nil {
		respondErr(w, http.StatusBadRequest, "invalid donation id")
		return
	}

	// The body is optional: POST with no body means "send to the customer".
	var req resendRequest
	if r.ContentLength > 0 && !decode(w, r, &req) {
		return
	}

	res, err := s.receipts.Resend(r.Context(), shop, donationID, req.To)
	if errors.Is(err, pipeline.ErrDonationNotFound) {
		respondErr(w, http.StatusNotFound, "donation not found")
		return
	}
	if err != nil {
		s.logger.Error("resend failed",
			"donation_id", donationID,
			"outcome", res.Outcome,
			"error", err,
			logField(r),
		)
		respond(w, http.StatusBadGateway, resendResponse{
			DonationID: donationID.String(),
			Outcome:    string(res.Outcome),
		})
		return
	}

	respond(w, http.StatusOK, resendResponse{
		DonationID: donationID.String(),
		Outcome:    string(res.Outcome),
	})
}
