package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mupfumi/donation-receipts-backend/internal/db"
	"github.com/mupfumi/donation-receipts-backend/internal/store"
)

type productResponse struct {
	ID         string `json:"id"`
	ProductID  int64  `json:"product_id"`
	Percentage string `json:"percentage"`
}

func toProductResponse(p db.DonationProduct) productResponse {
	return productResponse{
		ID:         p.ID.String(),
		ProductID:  p.ProductID,
		Percentage: p.Percentage.String(),
	}
}

// parsePercentage validates a percentage string: a decimal in [0, 100].
func parsePercentage(raw string) (decimal.Decimal, error) {
	pct, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("percentage must be a decimal number")
	}
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Decimal{}, fmt.Errorf("percentage must be between 0 and 100")
	}
	return pct, nil
}

// ─── GET /api/products ───────────────────────────────────────────────────────

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	rows, err := s.q.ListDonationProductsByShop(r.Context(), shopFrom(r))
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("list products: %w", err))
		return
	}

	products := make([]productResponse, len(rows))
	for i, p := range rows {
		products[i] = toProductResponse(p)
	}
	respond(w, http.StatusOK, map[string][]productResponse{"products": products})
}

// ─── POST /api/products ──────────────────────────────────────────────────────

type createProductRequest struct {
	ProductID  int64  `json:"product_id"`
	Percentage string `json:"percentage"`
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ProductID <= 0 {
		respondErr(w, http.StatusBadRequest, "product_id must be a positive integer")
		return
	}
	pct, err := parsePercentage(req.Percentage)
	if err != nil {
		respondErr(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := s.q.CreateDonationProduct(r.Context(), db.CreateDonationProductParams{
		Shop:       shopFrom(r),
		ProductID:  req.ProductID,
		Percentage: pct,
	})
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("create product: %w", err))
		return
	}

	respond(w, http.StatusCreated, toProductResponse(product))
}

// ─── PUT /api/products ───────────────────────────────────────────────────────

type replaceProductsRequest struct {
	Products []createProductRequest `json:"products"`
}

// handleReplaceProducts swaps the shop's entire donation-product set in one
// transaction. The embedded-app settings page saves its whole table this way
// instead of diffing row by row.
func (s *Server) handleReplaceProducts(w http.ResponseWriter, r *http.Request) {
	var req replaceProductsRequest
	if !decode(w, r, &req) {
		return
	}

	params := make([]store.ProductParams, len(req.Products))
	for i, p := range req.Products {
		if p.ProductID <= 0 {
			respondErr(w, http.StatusBadRequest, fmt.Sprintf("products[%d]: product_id must be a positive integer", i))
			return
		}
		pct, err := parsePercentage(p.Percentage)
		if err != nil {
			respondErr(w, http.StatusBadRequest, fmt.Sprintf("products[%d]: %v", i, err))
			return
		}
		params[i] = store.ProductParams{ProductID: p.ProductID, Percentage: pct}
	}

	rows, err := s.store.ReplaceDonationProducts(r.Context(), shopFrom(r), params)
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("replace products: %w", err))
		return
	}

	products := make([]productResponse, len(rows))
	for i, p := range rows {
		products[i] = toProductResponse(p)
	}
	respond(w, http.StatusOK, map[string][]productResponse{"products": products})
}

// ─── DELETE /api/products/{productID} ────────────────────────────────────────

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		respondErr(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := s.q.DeleteDonationProduct(r.Context(), db.DeleteDonationProductParams{
		ID:   id,
		Shop: shopFrom(r),
	}); err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("delete product: %w", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
