package worker

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"jewelpos/internal/model"
	"jewelpos/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

type stubBillRepo struct {
	bills map[uint]*model.Bill
	err   error
}

func (r *stubBillRepo) FindByID(_ context.Context, id uint) (*model.Bill, error) {
	if r.err != nil {
		return nil, r.err
	}
	b, ok := r.bills[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return b, nil
}

func (r *stubBillRepo) List(_ context.Context, _ int) ([]model.Bill, error) { return nil, nil }

var _ repository.BillRepository = (*stubBillRepo)(nil)

type stubEmailQueue struct {
	jobs []EmailJobPayload
	err  error
}

func (q *stubEmailQueue) EnqueueEmail(_ context.Context, p EmailJobPayload) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, p)
	return nil
}

func buildBill() *model.Bill {
	return &model.Bill{
		ID:            12,
		ClientID:      3,
		Subtotal:      decimal.NewFromInt(45000),
		Tax:           decimal.NewFromInt(1350),
		TotalAmount:   decimal.NewFromInt(46350),
		PaymentMethod: model.PaymentCash,
		CreatedAt:     time.Now(),
		Client:        &model.Client{ID: 3, Name: "Meera", Phone: "9000000001"},
		Items: []model.BillItem{{
			OrnamentID:   "R001",
			SellingPrice: decimal.NewFromInt(45000),
			Ornament:     &model.Ornament{OrnamentID: "R001", Type: "ring", Weight: decimal.NewFromInt(5), Purity: "22K"},
		}},
	}
}

func mustJSON(v interface{}) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestBillDocumentWorker_WritesPDFAndQueuesEmail(t *testing.T) {
	repo := &stubBillRepo{bills: map[uint]*model.Bill{12: buildBill()}}
	emails := &stubEmailQueue{}
	w := NewBillDocumentWorker(repo, emails, "Jewellery Store", t.TempDir())

	err := w.Process(context.Background(), mustJSON(BillDocumentJob{BillID: 12, ClientEmail: "meera@example.com"}))
	require.NoError(t, err)

	require.Len(t, emails.jobs, 1)
	job := emails.jobs[0]
	assert.Equal(t, "meera@example.com", job.ToEmail)
	assert.Equal(t, "BILL-000012", job.BillNumber)
	assert.Contains(t, job.Subject, "BILL-000012")
	assert.Contains(t, job.Body, "46350.00")
	_, statErr := os.Stat(job.PDFPath)
	assert.NoError(t, statErr, "PDF file should exist on disk")
}

func TestBillDocumentWorker_NoEmailWithoutAddress(t *testing.T) {
	repo := &stubBillRepo{bills: map[uint]*model.Bill{12: buildBill()}}
	emails := &stubEmailQueue{}
	w := NewBillDocumentWorker(repo, emails, "Jewellery Store", t.TempDir())

	require.NoError(t, w.Process(context.Background(), mustJSON(BillDocumentJob{BillID: 12})))
	assert.Empty(t, emails.jobs)
}

func TestBillDocumentWorker_EnqueueFailureIsNotRetried(t *testing.T) {
	repo := &stubBillRepo{bills: map[uint]*model.Bill{12: buildBill()}}
	emails := &stubEmailQueue{err: errors.New("redis down")}
	w := NewBillDocumentWorker(repo, emails, "Jewellery Store", t.TempDir())

	assert.NoError(t, w.Process(context.Background(), mustJSON(BillDocumentJob{BillID: 12, ClientEmail: "a@b.co"})))
}

func TestBillDocumentWorker_UnknownBillIsPermanent(t *testing.T) {
	w := NewBillDocumentWorker(&stubBillRepo{bills: map[uint]*model.Bill{}}, nil, "Jewellery Store", t.TempDir())

	err := w.Process(context.Background(), mustJSON(BillDocumentJob{BillID: 99}))
	var perm *permanentError
	assert.ErrorAs(t, err, &perm)
}

func TestBillDocumentWorker_StorageErrorIsRetryable(t *testing.T) {
	w := NewBillDocumentWorker(&stubBillRepo{err: context.DeadlineExceeded}, nil, "Jewellery Store", t.TempDir())

	err := w.Process(context.Background(), mustJSON(BillDocumentJob{BillID: 12}))
	require.Error(t, err)
	var perm *permanentError
	assert.False(t, errors.As(err, &perm))
}

func TestBillDocumentWorker_InvalidPayload(t *testing.T) {
	w := NewBillDocumentWorker(&stubBillRepo{}, nil, "Jewellery Store", t.TempDir())

	var perm *permanentError
	assert.ErrorAs(t, w.Process(context.Background(), json.RawMessage(`"nope"`)), &perm)
	assert.ErrorAs(t, w.Process(context.Background(), json.RawMessage(`{}`)), &perm)
}
