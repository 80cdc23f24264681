package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"jewelpos/internal/dto"
	"jewelpos/internal/infra"
	"jewelpos/internal/metrics"
	"jewelpos/internal/model"
	"jewelpos/internal/repository"
	"jewelpos/internal/worker"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BillJobQueue is satisfied by *worker.Dispatcher.
type BillJobQueue interface {
	EnqueueBillDocument(ctx context.Context, payload worker.BillDocumentJob) error
}

type SaleService interface {
	CompleteSale(ctx context.Context, req dto.CompleteSaleRequest) (*dto.CompleteSaleResponse, error)
	// FetchBill accepts a numeric bill ID or a bill number (BILL-000042).
	FetchBill(ctx context.Context, ref string) (*dto.BillResponse, error)
	ListSales(ctx context.Context) ([]dto.SaleListItem, error)
	// RenderBillPDF returns the PDF bytes and the bill number.
	RenderBillPDF(ctx context.Context, ref string) ([]byte, string, error)
}

type saleService struct {
	uow       repository.UnitOfWork
	bills     repository.BillRepository
	jobs      BillJobQueue
	timeout   time.Duration
	storeName string
	now       func() time.Time
}

// NewSaleService wires the sale engine. jobs may be nil (no async bill
// documents, e.g. in tests or when Redis is down at boot).
func NewSaleService(
	uow repository.UnitOfWork,
	bills repository.BillRepository,
	jobs BillJobQueue,
	timeout time.Duration,
	storeName string,
) SaleService {
	return &saleService{
		uow:       uow,
		bills:     bills,
		jobs:      jobs,
		timeout:   timeout,
		storeName: storeName,
		now:       time.Now,
	}
}

// validatedSale is a cart that passed every check that needs no storage.
type validatedSale struct {
	clientName    string
	clientPhone   string
	clientEmail   *string
	paymentMethod string
	ornamentIDs   []string
	prices        map[string]decimal.Decimal
	subtotal      decimal.Decimal
	tax           decimal.Decimal
	total         decimal.Decimal
}

func validateSale(req dto.CompleteSaleRequest) (*validatedSale, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	v := &validatedSale{
		clientName:    strings.TrimSpace(req.ClientName),
		clientPhone:   strings.TrimSpace(req.ClientPhone),
		paymentMethod: strings.ToLower(strings.TrimSpace(req.PaymentMethod)),
		prices:        make(map[string]decimal.Decimal, len(req.Items)),
		subtotal:      decimal.Zero,
	}
	if v.clientName == "" {
		return nil, ErrMissingClientName
	}
	if v.clientPhone == "" {
		return nil, ErrMissingClientPhone
	}
	if req.ClientEmail != nil {
		if email := strings.TrimSpace(*req.ClientEmail); email != "" {
			v.clientEmail = &email
		}
	}

	for _, item := range req.Items {
		id := strings.ToUpper(strings.TrimSpace(item.OrnamentID))
		if id == "" {
			return nil, ErrMissingOrnamentID
		}
		if item.SellingPrice.IsNegative() {
			return nil, ErrNegativeAmount.Withf("selling price of %s must not be negative", id)
		}
		if err := checkStorable("selling price of "+id, item.SellingPrice, moneyScale, maxMoney); err != nil {
			return nil, err
		}
		if _, dup := v.prices[id]; dup {
			return nil, ErrDuplicateItem.Withf("ornament %s appears more than once in the cart", id)
		}
		v.prices[id] = item.SellingPrice
		v.ornamentIDs = append(v.ornamentIDs, id)
		v.subtotal = v.subtotal.Add(item.SellingPrice)
	}

	if !model.ValidPaymentMethod(v.paymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}

	v.tax = ComputeTax(v.subtotal)
	v.total = v.subtotal.Add(v.tax)
	if err := checkStorable("bill total", v.total, moneyScale, maxMoney); err != nil {
		return nil, err
	}

	if req.Subtotal != nil && !req.Subtotal.Equal(v.subtotal) {
		return nil, ErrTotalsMismatch.Withf("subtotal %s does not match cart subtotal %s", req.Subtotal, v.subtotal)
	}
	if req.Tax != nil && !req.Tax.Equal(v.tax) {
		return nil, ErrTotalsMismatch.Withf("tax %s does not match computed tax %s", req.Tax, v.tax)
	}
	if req.Total != nil && !req.Total.Equal(v.total) {
		return nil, ErrTotalsMismatch.Withf("total %s does not match computed total %s", req.Total, v.total)
	}
	return v, nil
}

// ── CompleteSale ──────────────────────────────────────────────────────────────
// One unit of work per sale:
//   1. Validate the cart (no storage access)
//   2. BEGIN; lock every cart ornament FOR UPDATE, reject missing / sold
//   3. Find or create the client by phone
//   4. Insert bill header, then bill items
//   5. Flip each ornament to sold (conditional on is_sold = false)
//   6. COMMIT
//   7. (async) bill PDF + email job, best effort

func (s *saleService) CompleteSale(ctx context.Context, req dto.CompleteSaleRequest) (resp *dto.CompleteSaleResponse, err error) {
	defer func() {
		if err != nil {
			metrics.RecordSale(errorCode(err))
		}
	}()

	sale, err := validateSale(req)
	if err != nil {
		return nil, err
	}

	txCtx, cancel := withStorageTimeout(ctx, s.timeout)
	defer cancel()

	bill, err := s.commitSale(txCtx, sale)
	if err != nil {
		if errors.Is(err, ErrAlreadySold) {
			log.Warn().Strs("ornaments", sale.ornamentIDs).Str("phone", sale.clientPhone).Msg("sale rejected: ornament already sold")
		}
		return nil, err
	}

	metrics.RecordSale("completed")
	log.Info().
		Str("bill", bill.Number()).
		Uint("client_id", bill.ClientID).
		Int("items", len(bill.Items)).
		Str("total", bill.TotalAmount.StringFixed(2)).
		Msg("sale completed")

	s.enqueueBillDocument(ctx, bill, sale.clientEmail)

	return &dto.CompleteSaleResponse{
		Success:    true,
		BillID:     bill.ID,
		BillNumber: bill.Number(),
		Subtotal:   bill.Subtotal,
		Tax:        bill.Tax,
		Total:      bill.TotalAmount,
		CreatedAt:  bill.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}

func (s *saleService) commitSale(ctx context.Context, sale *validatedSale) (*model.Bill, error) {
	tx, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, storageError("begin", err)
	}
	defer tx.Rollback()

	locked, err := tx.Ornaments().LockForSale(ctx, sale.ornamentIDs)
	if err != nil {
		return nil, storageError("lock ornaments", err)
	}
	byID := make(map[string]model.Ornament, len(locked))
	for _, o := range locked {
		byID[o.OrnamentID] = o
	}
	for _, id := range sale.ornamentIDs {
		o, ok := byID[id]
		if !ok {
			return nil, ErrOrnamentNotFound.Withf("ornament %s not found", id)
		}
		if o.IsSold {
			return nil, ErrAlreadySold.Withf("ornament %s is already sold", id)
		}
	}

	client, err := tx.Clients().FindOrCreate(ctx, &model.Client{
		Name:  sale.clientName,
		Phone: sale.clientPhone,
		Email: sale.clientEmail,
	})
	if err != nil {
		return nil, storageError("find or create client", err)
	}

	now := s.now()
	bill := &model.Bill{
		ClientID:      client.ID,
		Subtotal:      sale.subtotal,
		Tax:           sale.tax,
		TotalAmount:   sale.total,
		PaymentMethod: sale.paymentMethod,
		CreatedAt:     now,
	}
	for _, id := range sale.ornamentIDs {
		bill.Items = append(bill.Items, model.BillItem{OrnamentID: id, SellingPrice: sale.prices[id]})
	}
	if err := tx.Bills().Create(ctx, bill); err != nil {
		// bill_items.ornament_id is unique: another sale got there first
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadySold.Wrap("an ornament in the cart was sold concurrently", err)
		}
		return nil, storageError("create bill", err)
	}

	for _, id := range sale.ornamentIDs {
		err := tx.Ornaments().MarkSold(ctx, id, sale.prices[id], now)
		if errors.Is(err, repository.ErrNotModified) {
			return nil, ErrAlreadySold.Withf("ornament %s is already sold", id)
		}
		if err != nil {
			return nil, storageError("mark sold", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, storageError("commit", err)
	}
	bill.Client = client
	return bill, nil
}

func (s *saleService) enqueueBillDocument(ctx context.Context, bill *model.Bill, email *string) {
	if s.jobs == nil {
		return
	}
	job := worker.BillDocumentJob{BillID: bill.ID}
	if email != nil {
		job.ClientEmail = *email
	}
	// the sale is committed; a cancelled request must not drop the job
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.jobs.EnqueueBillDocument(ctx, job); err != nil {
		log.Warn().Err(err).Str("bill", bill.Number()).Msg("failed to enqueue bill document job")
	}
}

// ── Bills ─────────────────────────────────────────────────────────────────────

// parseBillRef accepts "42", "BILL-000042" or "bill-42".
func parseBillRef(ref string) (uint, error) {
	ref = strings.TrimSpace(ref)
	if len(ref) >= len(model.BillNumberPrefix) && strings.EqualFold(ref[:len(model.BillNumberPrefix)], model.BillNumberPrefix) {
		ref = ref[len(model.BillNumberPrefix):]
	}
	id, err := strconv.ParseUint(ref, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidBillID
	}
	return uint(id), nil
}

func (s *saleService) loadBill(ctx context.Context, ref string) (*model.Bill, error) {
	id, err := parseBillRef(ref)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withStorageTimeout(ctx, s.timeout)
	defer cancel()

	bill, err := s.bills.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBillNotFound.Withf("bill %s not found", model.FormatBillNumber(id))
	}
	if err != nil {
		return nil, storageError("find bill", err)
	}
	return bill, nil
}

func (s *saleService) FetchBill(ctx context.Context, ref string) (*dto.BillResponse, error) {
	bill, err := s.loadBill(ctx, ref)
	if err != nil {
		return nil, err
	}
	resp := &dto.BillResponse{
		ID:            bill.ID,
		BillNumber:    bill.Number(),
		CreatedAt:     bill.CreatedAt.UTC().Format(time.RFC3339),
		Subtotal:      bill.Subtotal,
		Tax:           bill.Tax,
		TotalAmount:   bill.TotalAmount,
		PaymentMethod: bill.PaymentMethod,
		Items:         saleLines(bill.Items),
	}
	if bill.Client != nil {
		resp.Client = dto.BillClient{
			ID:      bill.Client.ID,
			Name:    bill.Client.Name,
			Phone:   bill.Client.Phone,
			Email:   bill.Client.Email,
			Address: bill.Client.Address,
		}
	}
	return resp, nil
}

func (s *saleService) ListSales(ctx context.Context) ([]dto.SaleListItem, error) {
	ctx, cancel := withStorageTimeout(ctx, s.timeout)
	defer cancel()

	bills, err := s.bills.List(ctx, 0)
	if err != nil {
		return nil, storageError("list bills", err)
	}
	sales := make([]dto.SaleListItem, 0, len(bills))
	for _, b := range bills {
		item := dto.SaleListItem{
			ID:            b.ID,
			BillID:        b.Number(),
			Date:          b.CreatedAt.UTC().Format(time.RFC3339),
			Items:         len(b.Items),
			Total:         b.TotalAmount,
			PaymentMethod: b.PaymentMethod,
			BillItems:     saleLines(b.Items),
		}
		if b.Client != nil {
			item.ClientName = b.Client.Name
			item.ClientPhone = b.Client.Phone
		}
		sales = append(sales, item)
	}
	return sales, nil
}

func (s *saleService) RenderBillPDF(ctx context.Context, ref string) ([]byte, string, error) {
	bill, err := s.loadBill(ctx, ref)
	if err != nil {
		return nil, "", err
	}
	data, err := infra.RenderBillPDF(bill, s.storeName)
	if err != nil {
		return nil, "", err
	}
	return data, bill.Number(), nil
}

func saleLines(items []model.BillItem) []dto.SaleLine {
	lines := make([]dto.SaleLine, 0, len(items))
	for _, it := range items {
		line := dto.SaleLine{OrnamentID: it.OrnamentID, SellingPrice: it.SellingPrice}
		if it.Ornament != nil {
			line.Type = it.Ornament.Type
			line.Weight = it.Ornament.Weight
			line.Purity = it.Ornament.Purity
		}
		lines = append(lines, line)
	}
	return lines
}
