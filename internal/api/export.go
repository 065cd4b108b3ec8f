package api

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/mupfumi/donation-receipts-backend/internal/db"
)

// ─── POST /api/export ────────────────────────────────────────────────────────

type exportRequest struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD, inclusive
	EndDate   string `json:"end_date"`   // YYYY-MM-DD, inclusive
}

// handleExport streams the shop's donations for a date range as a CSV
// attachment. Both dates are inclusive calendar days in UTC.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if !decode(w, r, &req) {
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		respondErr(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		respondErr(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
		return
	}
	if end.Before(start) {
		respondErr(w, http.StatusBadRequest, "end_date must not be before start_date")
		return
	}

	donations, err := s.q.ListDonationsByDateRange(r.Context(), db.ListDonationsByDateRangeParams{
		Shop:      shopFrom(r),
		StartDate: start,
		// The query's upper bound is exclusive; extend to midnight after the
		// requested day so the whole end date is included.
		EndDate: end.AddDate(0, 0, 1),
	})
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("list donations for export: %w", err))
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="donations.csv"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"donation id", "order id", "donation amount", "created at"})
	for _, d := range donations {
		_ = cw.Write([]string{
			d.ID.String(),
			fmt.Sprintf("%d", d.OrderID),
			d.DonationAmount.StringFixed(2),
			d.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		s.logger.Error("export: csv write failed", "error", err, logField(r))
	}
}
