package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jewelpos/internal/apierror"
	"jewelpos/internal/dto"
	"jewelpos/internal/middleware"
	"jewelpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

// ── stubs ─────────────────────────────────────────────────────────────────────

type stubSaleService struct {
	completeErr error
	got         dto.CompleteSaleRequest
	fetchRef    string
}

func (s *stubSaleService) CompleteSale(_ context.Context, req dto.CompleteSaleRequest) (*dto.CompleteSaleResponse, error) {
	s.got = req
	if s.completeErr != nil {
		return nil, s.completeErr
	}
	return &dto.CompleteSaleResponse{
		Success:    true,
		BillID:     1,
		BillNumber: "BILL-000001",
		Subtotal:   decimal.NewFromInt(45000),
		Tax:        decimal.NewFromInt(1350),
		Total:      decimal.NewFromInt(46350),
		CreatedAt:  "2024-03-01T10:00:00Z",
	}, nil
}

func (s *stubSaleService) FetchBill(_ context.Context, ref string) (*dto.BillResponse, error) {
	s.fetchRef = ref
	if ref == "BILL-000404" {
		return nil, service.ErrBillNotFound
	}
	return &dto.BillResponse{ID: 1, BillNumber: "BILL-000001"}, nil
}

func (s *stubSaleService) ListSales(context.Context) ([]dto.SaleListItem, error) {
	return []dto.SaleListItem{}, nil
}

func (s *stubSaleService) RenderBillPDF(context.Context, string) ([]byte, string, error) {
	return []byte("%PDF-1.3"), "BILL-000001", nil
}

var _ service.SaleService = (*stubSaleService)(nil)

type stubOrnamentService struct{ scanErr error }

func (s *stubOrnamentService) AddOrnament(_ context.Context, req dto.AddOrnamentRequest) (*dto.AddOrnamentResponse, error) {
	return &dto.AddOrnamentResponse{Success: true, OrnamentID: "R001", QRCode: `{"ornamentId":"R001"}`}, nil
}

func (s *stubOrnamentService) ScanItem(_ context.Context, code string) (*dto.ScanResponse, error) {
	if s.scanErr != nil {
		return nil, s.scanErr
	}
	return &dto.ScanResponse{OrnamentID: code, SellingPrice: decimal.NewFromInt(46350)}, nil
}

func (s *stubOrnamentService) ListAvailable(context.Context, string) ([]dto.AvailableItem, error) {
	return []dto.AvailableItem{{OrnamentID: "R001"}}, nil
}

func (s *stubOrnamentService) ListStock(_ context.Context, f dto.StockFilter) ([]dto.StockItem, error) {
	if f.Status == "lost" {
		return nil, service.ErrInvalidStatus
	}
	return []dto.StockItem{}, nil
}

func (s *stubOrnamentService) QRCodePNG(context.Context, string) ([]byte, error) {
	return []byte("\x89PNG"), nil
}

var _ service.OrnamentService = (*stubOrnamentService)(nil)

type stubClientService struct{ gotID uint }

func (s *stubClientService) CreateClient(context.Context, dto.CreateClientRequest) (*dto.ClientResponse, error) {
	return nil, service.ErrDuplicateClient
}
func (s *stubClientService) ListClients(context.Context) ([]dto.ClientResponse, error) { return nil, nil }
func (s *stubClientService) GetClient(_ context.Context, id uint) (*dto.ClientDetail, error) {
	s.gotID = id
	return &dto.ClientDetail{}, nil
}

var _ service.ClientService = (*stubClientService)(nil)

type stubGoldPrice struct{}

func (stubGoldPrice) Current(context.Context) *dto.GoldPriceResponse {
	return &dto.GoldPriceResponse{Price: service.DefaultGoldPrice, Timestamp: "2024-03-01T10:00:00Z", IsDefaultPrice: true}
}
func (stubGoldPrice) Refresh(context.Context) error { return nil }

// ── helpers ───────────────────────────────────────────────────────────────────

func newTestEngine() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery(), middleware.ErrorHandler())
	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierror.APIError {
	t.Helper()
	var body apierror.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// ── sales ─────────────────────────────────────────────────────────────────────

const validSale = `{
	"clientName": "Priya Sharma",
	"clientPhone": "9000000001",
	"items": [{"ornamentId": "R001", "sellingPrice": 45000}],
	"subtotal": 45000, "tax": 1350, "total": 46350,
	"paymentMethod": "cash"
}`

func TestCompleteSale_Created(t *testing.T) {
	svc := &stubSaleService{}
	r := newTestEngine()
	r.POST("/v1/sales", NewSalesHandler(svc).Complete)

	w := doJSON(r, http.MethodPost, "/v1/sales", validSale)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "BILL-000001", body["billNumber"])
	assert.EqualValues(t, 1, body["billId"])

	require.Len(t, svc.got.Items, 1)
	assert.True(t, svc.got.Items[0].SellingPrice.Equal(decimal.NewFromInt(45000)))
	require.NotNil(t, svc.got.Total)
	assert.True(t, svc.got.Total.Equal(decimal.NewFromInt(46350)))
}

func TestCompleteSale_ErrorMapping(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		status    int
		code      string
		retryable bool
	}{
		{"already sold", service.ErrAlreadySold.Withf("ornament R001 is already sold"), http.StatusConflict, "ORNAMENT_ALREADY_SOLD", false},
		{"not found", service.ErrOrnamentNotFound, http.StatusNotFound, "ORNAMENT_NOT_FOUND", false},
		{"validation", service.ErrTotalsMismatch, http.StatusBadRequest, "TOTALS_MISMATCH", false},
		{"timeout", service.ErrStorageTimeout.Wrap("storage did not respond in time, please retry", context.DeadlineExceeded), http.StatusServiceUnavailable, "STORAGE_TIMEOUT", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestEngine()
			r.POST("/v1/sales", NewSalesHandler(&stubSaleService{completeErr: tc.err}).Complete)

			w := doJSON(r, http.MethodPost, "/v1/sales", validSale)
			assert.Equal(t, tc.status, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tc.code, body.Code)
			assert.Equal(t, tc.retryable, body.Retryable)
		})
	}
}

func TestCompleteSale_InternalErrorIsGeneric(t *testing.T) {
	r := newTestEngine()
	r.POST("/v1/sales", NewSalesHandler(&stubSaleService{completeErr: errors.New("pq: relation bills does not exist")}).Complete)

	w := doJSON(r, http.MethodPost, "/v1/sales", validSale)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "relation")
	assert.Equal(t, "internal server error", decodeError(t, w).Detail)
}

func TestCompleteSale_BindingFailures(t *testing.T) {
	r := newTestEngine()
	r.POST("/v1/sales", NewSalesHandler(&stubSaleService{}).Complete)

	w := doJSON(r, http.MethodPost, "/v1/sales", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/v1/sales", `{"clientPhone":"1","items":[{"sellingPrice":1}],"paymentMethod":"cash"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body apierror.ValidationError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "required", body.Fields["ClientName"])
	assert.Equal(t, "required", body.Fields["OrnamentID"])
}

func TestBills(t *testing.T) {
	svc := &stubSaleService{}
	h := NewSalesHandler(svc)
	r := newTestEngine()
	r.GET("/v1/bills/:billId", h.GetBill)
	r.GET("/v1/bills/:billId/pdf", h.BillPDF)

	w := doJSON(r, http.MethodGet, "/v1/bills/BILL-000001", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "BILL-000001", svc.fetchRef)

	w = doJSON(r, http.MethodGet, "/v1/bills/BILL-000404", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/v1/bills/1/pdf", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "BILL-000001.pdf")
}

// ── ornaments ─────────────────────────────────────────────────────────────────

func TestAddOrnament(t *testing.T) {
	r := newTestEngine()
	r.POST("/v1/ornaments", NewOrnamentsHandler(&stubOrnamentService{}).Add)

	w := doJSON(r, http.MethodPost, "/v1/ornaments",
		`{"type":"ring","weight":5.5,"costPrice":45000,"merchantCode":"M001","purity":"22K"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"ornamentId":"R001"`)

	w = doJSON(r, http.MethodPost, "/v1/ornaments",
		`{"type":"ring","weight":0,"costPrice":45000,"merchantCode":"M001","purity":"14K"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body apierror.ValidationError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "gt", body.Fields["Weight"])
	assert.Equal(t, "oneof", body.Fields["Purity"])
}

func TestScan(t *testing.T) {
	r := newTestEngine()
	r.POST("/v1/scan", NewOrnamentsHandler(&stubOrnamentService{}).Scan)

	w := doJSON(r, http.MethodPost, "/v1/scan", `{"code":"R001"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sellingPrice":"46350"`)

	r = newTestEngine()
	r.POST("/v1/scan", NewOrnamentsHandler(&stubOrnamentService{scanErr: service.ErrAlreadySold}).Scan)
	w = doJSON(r, http.MethodPost, "/v1/scan", `{"code":"R001"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestOrnamentListings(t *testing.T) {
	h := NewOrnamentsHandler(&stubOrnamentService{})
	r := newTestEngine()
	r.GET("/v1/ornaments", h.ListStock)
	r.GET("/v1/ornaments/available", h.ListAvailable)
	r.GET("/v1/ornaments/:ornamentId/qr", h.QRCode)

	w := doJSON(r, http.MethodGet, "/v1/ornaments?status=lost", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_STATUS", decodeError(t, w).Code)

	w = doJSON(r, http.MethodGet, "/v1/ornaments/available?type=ring", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)

	w = doJSON(r, http.MethodGet, "/v1/ornaments/R001/qr", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
}

// ── clients / dashboard ───────────────────────────────────────────────────────

func TestClients(t *testing.T) {
	svc := &stubClientService{}
	h := NewClientsHandler(svc)
	r := newTestEngine()
	r.POST("/v1/clients", h.Create)
	r.GET("/v1/clients/:id", h.Get)

	w := doJSON(r, http.MethodPost, "/v1/clients", `{"name":"Priya","phone":"9000000001"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_CLIENT", decodeError(t, w).Code)

	w = doJSON(r, http.MethodGet, "/v1/clients/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/v1/clients/7", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(7), svc.gotID)
}

func TestGoldPrice(t *testing.T) {
	r := newTestEngine()
	r.GET("/v1/gold-price", NewDashboardHandler(nil, stubGoldPrice{}).GoldPrice)

	w := doJSON(r, http.MethodGet, "/v1/gold-price", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"isDefaultPrice":true`)
	assert.Contains(t, w.Body.String(), `"price":"6245.75"`)
}
