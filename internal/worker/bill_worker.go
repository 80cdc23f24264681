package worker

// bill_worker.go
// Processes QueueBillDocument: renders the bill PDF to disk and, when the
// client left an email address, queues the delivery.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"jewelpos/internal/infra"
	"jewelpos/internal/model"
	"jewelpos/internal/repository"

	"github.com/rs/zerolog/log"
)

// BillDocumentJob is the payload sent to QueueBillDocument after a sale commits.
type BillDocumentJob struct {
	BillID      uint   `json:"bill_id"`
	ClientEmail string `json:"client_email,omitempty"`
}

// EmailQueue is the part of the Dispatcher the bill worker needs.
type EmailQueue interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

type BillDocumentWorker struct {
	bills          repository.BillRepository
	emails         EmailQueue
	storeName      string
	pdfStoragePath string
}

// NewBillDocumentWorker wires the bill worker. emails may be nil when SMTP is
// not configured; PDFs are still written.
func NewBillDocumentWorker(bills repository.BillRepository, emails EmailQueue, storeName, pdfStoragePath string) *BillDocumentWorker {
	return &BillDocumentWorker{
		bills:          bills,
		emails:         emails,
		storeName:      storeName,
		pdfStoragePath: pdfStoragePath,
	}
}

// Process handles a single bill document job:
//  1. Parse BillDocumentJob
//  2. Load the bill with client and items
//  3. Write the PDF to pdfStoragePath
//  4. Optionally enqueue an email job with the PDF attached
func (w *BillDocumentWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload BillDocumentJob
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Permanent(fmt.Errorf("bill_worker: invalid payload: %w", err))
	}
	if payload.BillID == 0 {
		return Permanent(errors.New("bill_worker: missing bill_id"))
	}

	bill, err := w.bills.FindByID(ctx, payload.BillID)
	if errors.Is(err, repository.ErrNotFound) {
		return Permanent(fmt.Errorf("bill_worker: bill %d not found", payload.BillID))
	}
	if err != nil {
		return fmt.Errorf("bill_worker: load bill %d: %w", payload.BillID, err)
	}

	pdfPath, err := infra.WriteBillPDF(bill, w.storeName, w.pdfStoragePath)
	if err != nil {
		return err
	}
	log.Info().Str("bill", bill.Number()).Str("pdf", pdfPath).Msg("bill_worker: PDF generated")

	if payload.ClientEmail == "" || w.emails == nil {
		return nil
	}
	job := EmailJobPayload{
		ToEmail:    payload.ClientEmail,
		BillNumber: bill.Number(),
		Subject:    fmt.Sprintf("%s: bill %s", w.storeName, bill.Number()),
		Body:       billEmailBody(bill, w.storeName),
		PDFPath:    pdfPath,
	}
	if err := w.emails.EnqueueEmail(ctx, job); err != nil {
		// PDF already on disk; a retry would only rewrite it
		log.Warn().Err(err).Str("bill", bill.Number()).Msg("bill_worker: failed to enqueue email")
		return nil
	}
	log.Info().Str("bill", bill.Number()).Msg("bill_worker: email job enqueued")
	return nil
}

func billEmailBody(bill *model.Bill, storeName string) string {
	name := "customer"
	if bill.Client != nil && bill.Client.Name != "" {
		name = bill.Client.Name
	}
	return fmt.Sprintf(
		"Dear %s,\n\nThank you for shopping at %s. Your bill %s is attached.\n\nSubtotal: Rs. %s\nTax (3%%): Rs. %s\nTotal: Rs. %s\n",
		name, storeName, bill.Number(),
		bill.Subtotal.StringFixed(2), bill.Tax.StringFixed(2), bill.TotalAmount.StringFixed(2),
	)
}
