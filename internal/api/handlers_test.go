package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mupfumi/donation-receipts-backend/internal/api"
	"github.com/mupfumi/donation-receipts-backend/internal/db"
	"github.com/mupfumi/donation-receipts-backend/internal/pipeline"
	"github.com/mupfumi/donation-receipts-backend/internal/platform"
	"github.com/mupfumi/donation-receipts-backend/internal/receipt"
	"github.com/mupfumi/donation-receipts-backend/internal/store"
)

const (
	testShop          = "apple.example-shop.test"
	testWebhookSecret = "whsec_test"
)

// ─── STUBS ────────────────────────────────────────────────────────────────────

// stubQuerier satisfies db.Querier with in-memory state.
// Fields may be set per-test to control behaviour.
type stubQuerier struct {
	db.Querier // embedded to panic on unimplemented methods

	charities   map[string]db.Charity
	products    map[string][]db.DonationProduct
	donations   map[string][]db.Donation
	orderEvents []db.OrderEvent

	createEventErr error
	listErr        error
}

func newStubQuerier() *stubQuerier {
	return &stubQuerier{
		charities: make(map[string]db.Charity),
		products:  make(map[string][]db.DonationProduct),
		donations: make(map[string][]db.Donation),
	}
}

func (q *stubQuerier) CreateOrderEvent(_ context.Context, p db.CreateOrderEventParams) (db.OrderEvent, error) {
	if q.createEventErr != nil {
		return db.OrderEvent{}, q.createEventErr
	}
	ev := db.OrderEvent{
		ID:         uuid.New(),
		Shop:       p.Shop,
		WebhookID:  p.WebhookID,
		Topic:      p.Topic,
		Payload:    p.Payload,
		Headers:    p.Headers,
		Status:     "pending",
		ReceivedAt: time.Now(),
	}
	q.orderEvents = append(q.orderEvents, ev)
	return ev, nil
}

func (q *stubQuerier) ListDonationsByShop(_ context.Context, p db.ListDonationsByShopParams) ([]db.Donation, error) {
	if q.listErr != nil {
		return nil, q.listErr
	}
	all := q.donations[p.Shop]
	start := int(p.Offset)
	if start >= len(all) {
		return nil, nil
	}
	end := min(start+int(p.Limit), len(all))
	return all[start:end], nil
}

func (q *stubQuerier) ListDonationsByDateRange(_ context.Context, p db.ListDonationsByDateRangeParams) ([]db.Donation, error) {
	var out []db.Donation
	for _, d := range q.donations[p.Shop] {
		if !d.CreatedAt.Before(p.StartDate) && d.CreatedAt.Before(p.EndDate) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (q *stubQuerier) UpsertCharity(_ context.Context, p db.UpsertCharityParams) (db.Charity, error) {
	c, ok := q.charities[p.Shop]
	if !ok {
		c = db.Charity{ID: uuid.New(), Shop: p.Shop}
	}
	c.Name = p.Name
	c.EmailFrom = p.EmailFrom
	c.EmailBcc = p.EmailBcc
	c.EmailSubject = p.EmailSubject
	c.EmailTemplate = p.EmailTemplate
	c.PdfTemplate = p.PdfTemplate
	c.PdfFilename = p.PdfFilename
	q.charities[p.Shop] = c
	return c, nil
}

func (q *stubQuerier) ListDonationProductsByShop(_ context.Context, shop string) ([]db.DonationProduct, error) {
	return q.products[shop], nil
}

func (q *stubQuerier) CreateDonationProduct(_ context.Context, p db.CreateDonationProductParams) (db.DonationProduct, error) {
	product := db.DonationProduct{
		ID:         uuid.New(),
		Shop:       p.Shop,
		ProductID:  p.ProductID,
		Percentage: p.Percentage,
	}
	q.products[p.Shop] = append(q.products[p.Shop], product)
	return product, nil
}

func (q *stubQuerier) DeleteDonationProduct(_ context.Context, p db.DeleteDonationProductParams) error {
	rows := q.products[p.Shop]
	for i, row := range rows {
		if row.ID == p.ID {
			q.products[p.Shop] = append(rows[:i], rows[i+1:]...)
			return nil
		}
	}
	return nil
}

// stubStore satisfies api.ConfigStore.
type stubStore struct {
	q          *stubQuerier
	replaceErr error
}

func (s *stubStore) ReplaceDonationProducts(_ context.Context, shop string, products []store.ProductParams) ([]db.DonationProduct, error) {
	if s.replaceErr != nil {
		return nil, s.replaceErr
	}
	rows := make([]db.DonationProduct, len(products))
	for i, p := range products {
		rows[i] = db.DonationProduct{
			ID:         uuid.New(),
			Shop:       shop,
			ProductID:  p.ProductID,
			Percentage: p.Percentage,
		}
	}
	s.q.products[shop] = rows
	return rows, nil
}

func (s *stubStore) CharityByShop(_ context.Context, shop string) (db.Charity, error) {
	c, ok := s.q.charities[shop]
	if !ok {
		return db.Charity{}, store.ErrCharityNotFound
	}
	return c, nil
}

// stubReceipts is a controllable Receipts implementation.
type stubReceipts struct {
	resendResult  pipeline.Result
	resendErr     error
	resendShop    string
	resendID      uuid.UUID
	resendTo      string
	testResult    pipeline.Result
	testErr       error
	testTo        string
	preview       pipeline.Preview
	previewErr    error
	previewPDF    []byte
	previewPDFErr error
}

func (r *stubReceipts) Resend(_ context.Context, shop string, donationID uuid.UUID, overrideTo string) (pipeline.Result, error) {
	r.resendShop, r.resendID, r.resendTo = shop, donationID, overrideTo
	return r.resendResult, r.resendErr
}

func (r *stubReceipts) TestSend(_ context.Context, _ string, to string) (pipeline.Result, error) {
	r.testTo = to
	return r.testResult, r.testErr
}

func (r *stubReceipts) PreviewEmail(_ context.Context, _ string, subject, template string) (pipeline.Preview, error) {
	if r.previewErr != nil {
		return pipeline.Preview{}, r.previewErr
	}
	p := r.preview
	p.EmailSubject = subject
	p.EmailTemplate = template
	return p, nil
}

func (r *stubReceipts) PreviewPDF(_ context.Context, _ string) ([]byte, error) {
	return r.previewPDF, r.previewPDFErr
}

// stubWorker records enqueued events.
type stubWorker struct {
	enqueued []uuid.UUID
	err      error
}

func (w *stubWorker) Enqueue(_ context.Context, id uuid.UUID) error {
	w.enqueued = append(w.enqueued, id)
	return w.err
}

// ─── HELPERS ─────────────────────────────────────────────────────────────────

type testDeps struct {
	q        *stubQuerier
	receipts *stubReceipts
	worker   *stubWorker
	handler  http.Handler
}

func newTestServer(t *testing.T) *testDeps {
	t.Helper()

	q := newStubQuerier()
	rc := &stubReceipts{
		resendResult: pipeline.Result{Outcome: pipeline.OutcomeDelivered},
		testResult:   pipeline.Result{Outcome: pipeline.OutcomeDelivered},
		previewPDF:   []byte("%PDF-1.4 stub"),
	}
	wk := &stubWorker{}

	cfg := api.Config{
		Env:           "development",
		WebhookSecret: testWebhookSecret,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := api.NewServer(q, &stubStore{q: q}, rc, wk, cfg, logger)

	return &testDeps{q: q, receipts: rc, worker: wk, handler: handler}
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		bodyReader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, bodyReader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// doShopRequest is doRequest with the X-Shop header pre-set.
func doShopRequest(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return doRequest(t, handler, method, path, body, map[string]string{"X-Shop": testShop})
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(dst); err != nil {
		t.Fatalf("decode response body: %v (raw: %s)", err, rr.Body.String())
	}
}

func seedDonation(q *stubQuerier, amount string, createdAt time.Time) db.Donation {
	d := db.Donation{
		ID:             uuid.New(),
		Shop:           testShop,
		OrderID:        int64(450789469 + len(q.donations[testShop])),
		DonationAmount: decimal.RequireFromString(amount),
		CreatedAt:      createdAt,
	}
	q.donations[testShop] = append(q.donations[testShop], d)
	return d
}

// ─── GET /healthz ─────────────────────────────────────────────────────────────

func TestHealthz(t *testing.T) {
	deps := newTestServer(t)
	rr := doRequest(t, deps.handler, http.MethodGet, "/healthz", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

// ─── POST /webhooks/orders/create ─────────────────────────────────────────────

func signedWebhookRequest(t *testing.T, payload []byte, mutate func(*http.Request)) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/orders/create", bytes.NewReader(payload))
	req.Header.Set(platform.HeaderHMAC, platform.SignWebhook(payload, testWebhookSecret))
	req.Header.Set(platform.HeaderShopDomain, testShop)
	req.Header.Set(platform.HeaderWebhookID, "wh_12345")
	req.Header.Set(platform.HeaderTopic, "orders/create")
	if mutate != nil {
		mutate(req)
	}
	return req
}

func TestOrderWebhook_StoresEventAndEnqueues(t *testing.T) {
	deps := newTestServer(t)
	payload := []byte(`{"id": 450789469, "line_items": []}`)

	rr := httptest.NewRecorder()
	deps.handler.ServeHTTP(rr, signedWebhookRequest(t, payload, nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(deps.q.orderEvents) != 1 {
		t.Fatalf("expected 1 stored event, got %d", len(deps.q.orderEvents))
	}
	ev := deps.q.orderEvents[0]
	if ev.Shop != testShop {
		t.Errorf("shop: %q", ev.Shop)
	}
	if !bytes.Equal(ev.Payload, payload) {
		t.Error("payload must be stored byte-for-byte")
	}
	if ev.WebhookID.String != "wh_12345" {
		t.Errorf("webhook id: %q", ev.WebhookID.String)
	}
	if !ev.Headers.Valid {
		t.Error("delivery headers should be captured")
	}
	if len(deps.worker.enqueued) != 1 || deps.worker.enqueued[0] != ev.ID {
		t.Errorf("expected event to be enqueued, got %v", deps.worker.enqueued)
	}
}

func TestOrderWebhook_BadSignatureReturns401(t *testing.T) {
	deps := newTestServer(t)
	payload := []byte(`{"id": 1}`)

	req := signedWebhookRequest(t, payload, func(r *http.Request) {
		r.Header.Set(platform.HeaderHMAC, platform.SignWebhook(payload, "wrong-secret"))
	})
	rr := httptest.NewRecorder()
	deps.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if len(deps.q.orderEvents) != 0 {
		t.Error("unverified payload must not be stored")
	}
	if len(deps.worker.enqueued) != 0 {
		t.Error("unverified payload must not be enqueued")
	}
}

func TestOrderWebhook_MissingSignatureReturns401(t *testing.T) {
	deps := newTestServer(t)
	req := signedWebhookRequest(t, []byte(`{}`), func(r *http.Request) {
		r.Header.Del(platform.HeaderHMAC)
	})
	rr := httptest.NewRecorder()
	deps.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestOrderWebhook_MissingShopDomainReturns400(t *testing.T) {
	deps := newTestServer(t)
	req := signedWebhookRequest(t, []byte(`{}`), func(r *http.Request) {
		r.Header.Del(platform.HeaderShopDomain)
	})
	rr := httptest.NewRecorder()
	deps.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestOrderWebhook_StoreErrorReturns500ForRetry(t *testing.T) {
	deps := newTestServer(t)
	deps.q.createEventErr = errors.New("db down")

	rr := httptest.NewRecorder()
	deps.handler.ServeHTTP(rr, signedWebhookRequest(t, []byte(`{}`), nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 so the platform retries, got %d", rr.Code)
	}
}

func TestOrderWebhook_FullQueueStillAcks(t *testing.T) {
	deps := newTestServer(t)
	deps.worker.err = errors.New("queue full")

	rr := httptest.NewRecorder()
	deps.handler.ServeHTTP(rr, signedWebhookRequest(t, []byte(`{"id": 2}`), nil))

	// The event row is durable; the poller will find it.
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if len(deps.q.orderEvents) != 1 {
		t.Error("event must be stored even when the queue is full")
	}
}

// ─── SHOP SCOPING ────────────────────────────────────────────────────────────

func TestAPI_MissingShopHeaderReturns401(t *testing.T) {
	deps := newTestServer(t)
	rr := doRequest(t, deps.handler, http.MethodGet, "/api/donations", nil, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

// ─── GET /api/donations ──────────────────────────────────────────────────────

func TestListDonations_ReturnsFormattedAmounts(t *testing.T) {
	deps := newTestServer(t)
	seedDonation(deps.q, "11.5", time.Now())

	rr := doShopRequest(t, deps.handler, http.MethodGet, "/api/donations", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Donations []struct {
			OrderID        int64  `json:"order_id"`
			DonationAmount string `json:"donation_amount"`
		} `json:"donations"`
		Page int `json:"page"`
	}
	decodeJSON(t, rr, &resp)

	if resp.Page != 1 {
		t.Errorf("page: %d", resp.Page)
	}
	if len(resp.Donations) != 1 {
		t.Fatalf("expected 1 donation, got %d", len(resp.Donations))
	}
	if resp.Donations[0].DonationAmount != "11.50" {
		t.Errorf("amount must have two fraction digits, got %q", resp.Donations[0].DonationAmount)
	}
}

func TestListDonations_InvalidPageReturns400(t *testing.T) {
	deps := newTestServer(t)
	for _, page := range []string{"0", "-1", "abc"} {
		rr := doShopRequest(t, deps.handler, http.MethodGet, "/api/donations?page="+page, nil)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("page=%s: expected 400, got %d", page, rr.Code)
		}
	}
}

func TestListDonations_PastTheEndPageIsEmpty(t *testing.T) {
	deps := newTestServer(t)
	seedDonation(deps.q, "5.00", time.Now())

	rr := doShopRequest(t, deps.handler, http.MethodGet, "/api/donations?page=7", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp struct {
		Donations []json.RawMessage `json:"donations"`
	}
	decodeJSON(t, rr, &resp)
	if len(resp.Donations) != 0 {
		t.Errorf("expected empty page, got %d rows", len(resp.Donations))
	}
}

// ─── POST /api/donations/{id}/resend ─────────────────────────────────────────

func TestResend_PassesOverrideRecipient(t *testing.T) {
	deps := newTestServer(t)
	id := uuid.New()

	rr := doShopRequest(t, deps.handler, http.MethodPost,
		"/api/donations/"+id.String()+"/resend", map[string]string{"to": "support@apple.test"})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if deps.receipts.resendID != id {
		t.Errorf("donation id: %s", deps.receipts.resendID)
	}
	if deps.receipts.resendShop != testShop {
		t.Errorf("shop: %q", deps.receipts.resendShop)
	}
	if deps.receipts.resendTo != "support@apple.test" {
		t.Errorf("override to: %q", deps.receipts.resendTo)
	}

	var resp struct {
		Outcome string `json:"outcome"`
	}
	decodeJSON(t, rr, &resp)
	if resp.Outcome != "delivered" {
		t.Errorf("outcome: %q", resp.Outcome)
	}
}

func TestResend_EmptyBodyMeansCustomerRecipient(t *testing.T) {
	deps := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/donations/"+uuid.New().String()+"/resend", nil)
	req.Header.Set("X-Shop", testShop)
	rr := httptest.NewRecorder()
	deps.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if deps.receipts.resendTo != "" {
		t.Errorf("expected no override, got %q", deps.receipts.resendTo)
	}
}

func TestResend_InvalidIDReturns400(t *testing.T) {
	deps := newTestServer(t)
	rr := doShopRequest(t, deps.handler, http.MethodPost, "/api/donations/not-a-uuid/resend", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestResend_UnknownDonationReturns404(t *testing.T) {
	deps := newTestServer(t)
	deps.receipts.resendErr = pipeline.ErrDonationNotFound

	rr := doShopRequest(t, deps.handler, http.MethodPost,
		"/api/donations/"+uuid.New().String()+"/resend", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestResend_DeliveryFailureReturns502WithOutcome(t *testing.T) {
	deps := newTestServer(t)
	deps.receipts.resendResult = pipeline.Result{Outcome: pipeline.OutcomeDeliveryFailed}
	deps.receipts.resendErr = errors.New("relay down")

	rr := doShopRequest(t, deps.handler, http.MethodPost,
		"/api/donations/"+uuid.New().String()+"/resend", nil)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}

	var resp struct {
		Outcome string `json:"outcome"`
	}
	decodeJSON(t, rr, &resp)
	if resp.Outcome != "delivery_failed" {
		t.Errorf("outcome: %q", resp.Outcome)
	}
}

// ─── /api/charity ────────────────────────────────────────────────────────────

func TestGetCharity_NotConfiguredReturns404(t *testing.T) {
	deps := newTestServer(t)
	rr := doShopRequest(t, deps.handler, http.MethodGet, "/api/charity", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestUpsertCharity_AppliesTemplateDefaults(t *testing.T) {
	deps := newTestServer(t)

	rr := doShopRequest(t, deps.handler, http.MethodPut, "/api/charity",
		map[string]string{"name": "Sea Turtle Rescue", "email_from": "receipts@seaturtle.org"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Name          string `json:"name"`
		EmailSubject  string `json:"email_subject"`
		EmailTemplate string `json:"email_template"`
		PDFFilename   string `json:"pdf_filename"`
	}
	decodeJSON(t, rr, &resp)
	if resp.Name != "Sea Turtle Rescue" {
		t.Errorf("name: %q", resp.Name)
	}
	if resp.EmailSubject == "" || resp.EmailTemplate == "" || resp.PDFFilename == "" {
		t.Error("omitted template fields should fall back to defaults")
	}
}

func TestUpsertCharity_ThenGetRoundTrips(t *testing.T) {
	deps := newTestServer(t)

	put := doShopRequest(t, deps.handler, http.MethodPut, "/api/charity",
		map[string]string{"name": "Ocean Cleanup", "email_subject": "Your receipt"})
	if put.Code != http.StatusOK {
		t.Fatalf("put: expected 200, got %d", put.Code)
	}

	get := doShopRequest(t, deps.handler, http.MethodGet, "/api/charity", nil)
	if get.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", get.Code)
	}

	var resp struct {
		Name         string `json:"name"`
		EmailSubject string `json:"email_subject"`
	}
	decodeJSON(t, get, &resp)
	if resp.Name != "Ocean Cleanup" || resp.EmailSubject != "Your receipt" {
		t.Errorf("round trip: %+v", resp)
	}
}

// ─── /api/products ───────────────────────────────────────────────────────────

func TestCreateProduct_ValidReturns201(t *testing.T) {
	deps := newTestServer(t)

	rr := doShopRequest(t, deps.handler, http.MethodPost, "/api/products",
		map[string]any{"product_id": 632910392, "percentage": "12.5"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		ProductID  int64  `json:"product_id"`
		Percentage string `json:"percentage"`
	}
	decodeJSON(t, rr, &resp)
	if resp.ProductID != 632910392 || resp.Percentage != "12.5" {
		t.Errorf("response: %+v", resp)
	}
}

func TestCreateProduct_RejectsBadPercentage(t *testing.T) {
	deps := newTestServer(t)
	for _, pct := range []string{"-1", "100.01", "abc", ""} {
		rr := doShopRequest(t, deps.handler, http.MethodPost, "/api/products",
			map[string]any{"product_id": 1, "percentage": pct})
		if rr.Code != http.StatusBadRequest {
			t.Errorf("percentage=%q: expected 400, got %d", pct, rr.Code)
		}
	}
}

func TestCreateProduct_RejectsBadProductID(t *testing.T) {
	deps := newTestServer(t)
	rr := doShopRequest(t, deps.handler, http.MethodPost, "/api/products",
		map[string]any{"product_id": 0, "percentage": "10"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestReplaceProducts_SwapsWholeSet(t *testing.T) {
	deps := newTestServer(t)
	deps.q.products[testShop] = []db.DonationProduct{
		{ID: uuid.New(), Shop: testShop, ProductID: 1, Percentage: decimal.NewFromInt(5)},
	}

	rr := doShopRequest(t, deps.handler, http.MethodPut, "/api/products",
		map[string]any{"products": []map[string]any{
			{"product_id": 632910392, "percentage": "50"},
			{"product_id": 921728736, "percentage": "10"},
		}})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Products []struct {
			ProductID int64 `json:"product_id"`
		} `json:"products"`
	}
	decodeJSON(t, rr, &resp)
	if len(resp.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(resp.Products))
	}
	if len(deps.q.products[testShop]) != 2 {
		t.Errorf("stored set should be replaced, got %d rows", len(deps.q.products[testShop]))
	}
}

func TestReplaceProducts_RejectsInvalidEntryWholeBatch(t *testing.T) {
	deps := newTestServer(t)
	rr := doShopRequest(t, deps.handler, http.MethodPut, "/api/products",
		map[string]any{"products": []map[string]any{
			{"product_id": 1, "percentage": "50"},
			{"product_id": 2, "percentage": "150"},
		}})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestDeleteProduct(t *testing.T) {
	deps := newTestServer(t)
	id := uuid.New()
	deps.q.products[testShop] = []db.DonationProduct{
		{ID: id, Shop: testShop, ProductID: 1, Percentage: decimal.NewFromInt(5)},
	}

	rr := doShopRequest(t, deps.handler, http.MethodDelete, "/api/products/"+id.String(), nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if len(deps.q.products[testShop]) != 0 {
		t.Error("product should be gone")
	}
}

func TestDeleteProduct_InvalidIDReturns400(t *testing.T) {
	deps := newTestServer(t)
	rr := doShopRequest(t, deps.handler, http.MethodDelete, "/api/products/nope", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

// ─── PREVIEW / TEST EMAIL ────────────────────────────────────────────────────

func TestPreviewEmail_ReturnsRenderedParts(t *testing.T) {
	deps := newTestServer(t)
	deps.receipts.preview = pipeline.Preview{EmailBody: "rendered body"}

	rr := doShopRequest(t, deps.handler, http.MethodGet,
		"/api/preview/email?subject=Hello&template=raw", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		EmailSubject  string `json:"email_subject"`
		EmailBody     string `json:"email_body"`
		EmailTemplate string `json:"email_template"`
	}
	decodeJSON(t, rr, &resp)
	if resp.EmailSubject != "Hello" || resp.EmailBody != "rendered body" || resp.EmailTemplate != "raw" {
		t.Errorf("response: %+v", resp)
	}
}

func TestPreviewEmail_BadTemplateReturns422(t *testing.T) {
	deps := newTestServer(t)
	deps.receipts.previewErr = &receipt.CompositionError{
		Stage: "email body",
		Err:   errors.New("liquid parse error"),
	}

	rr := doShopRequest(t, deps.handler, http.MethodGet, "/api/preview/email?template=%7B%25bad", nil)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestPreviewPDF_ServesInlinePDF(t *testing.T) {
	deps := newTestServer(t)

	rr := doShopRequest(t, deps.handler, http.MethodGet, "/api/preview/pdf", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type: %q", ct)
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")) {
		t.Error("expected PDF bytes")
	}
}

func TestTestEmail_RequiresRecipient(t *testing.T) {
	deps := newTestServer(t)
	rr := doShopRequest(t, deps.handler, http.MethodPost, "/api/test-email",
		map[string]string{"to": ""})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestTestEmail_SendsToGivenAddress(t *testing.T) {
	deps := newTestServer(t)
	rr := doShopRequest(t, deps.handler, http.MethodPost, "/api/test-email",
		map[string]string{"to": "staff@apple.test"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if deps.receipts.testTo != "staff@apple.test" {
		t.Errorf("to: %q", deps.receipts.testTo)
	}
}

// ─── POST /api/export ────────────────────────────────────────────────────────

func TestExport_ReturnsCSVAttachment(t *testing.T) {
	deps := newTestServer(t)
	inRange := seedDonation(deps.q, "11.50", time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	// End date is inclusive: a donation late on the last day must appear.
	lastDay := seedDonation(deps.q, "2.00", time.Date(2026, 3, 31, 23, 50, 0, 0, time.UTC))
	seedDonation(deps.q, "9.99", time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC))

	rr := doShopRequest(t, deps.handler, http.MethodPost, "/api/export",
		map[string]string{"start_date": "2026-03-01", "end_date": "2026-03-31"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("content type: %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "donations.csv") {
		t.Errorf("content disposition: %q", cd)
	}

	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	if len(lines) != 3 { // header + 2 rows
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), rr.Body.String())
	}
	if !strings.Contains(lines[1], inRange.ID.String()) || !strings.Contains(lines[1], "11.50") {
		t.Errorf("first row: %q", lines[1])
	}
	if !strings.Contains(lines[2], lastDay.ID.String()) {
		t.Errorf("second row: %q", lines[2])
	}
}

func TestExport_RejectsBadDates(t *testing.T) {
	deps := newTestServer(t)
	cases := []map[string]string{
		{"start_date": "03/01/2026", "end_date": "2026-03-31"},
		{"start_date": "2026-03-01", "end_date": "tomorrow"},
		{"start_date": "2026-04-01", "end_date": "2026-03-01"},
	}
	for _, body := range cases {
		rr := doShopRequest(t, deps.handler, http.MethodPost, "/api/export", body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%v: expected 400, got %d", body, rr.Code)
		}
	}
}

// ─── CORS ─────────────────────────────────────────────────────────────────────

func TestCORS_PreflightReturns204(t *testing.T) {
	deps := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/donations", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rr := httptest.NewRecorder()
	deps.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("missing Access-Control-Allow-Origin header")
	}
}

func TestCORS_NoOriginHeader_SkipsCORSHeaders(t *testing.T) {
	deps := newTestServer(t)
	rr := doRequest(t, deps.handler, http.MethodGet, "/healthz", nil, nil)
	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("should not set CORS headers when no Origin present")
	}
}
