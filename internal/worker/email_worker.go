package worker

// email_worker.go
// Processes email jobs from QueueEmail: sends bill PDFs to clients via SMTP.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"jewelpos/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail    string `json:"to_email"`
	BillNumber string `json:"bill_number"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	PDFPath    string `json:"pdf_path"`
}

// BillMailer is satisfied by *infra.Mailer.
type BillMailer interface {
	SendBill(msg infra.BillEmail) error
}

type EmailWorker struct {
	mailer BillMailer
}

func NewEmailWorker(mailer BillMailer) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

// Process sends an email with the bill PDF as attachment. SMTP failures are
// returned so the pool retries them.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Permanent(fmt.Errorf("email_worker: invalid payload: %w", err))
	}
	if payload.ToEmail == "" {
		return Permanent(errors.New("email_worker: empty to_email"))
	}

	msg := infra.BillEmail{
		To:         payload.ToEmail,
		BillNumber: payload.BillNumber,
		Subject:    payload.Subject,
		Body:       payload.Body,
		PDFPath:    payload.PDFPath,
	}
	if err := w.mailer.SendBill(msg); err != nil {
		log.Warn().Err(err).Str("bill", payload.BillNumber).Str("to", payload.ToEmail).Msg("email_worker: send failed")
		return err
	}
	log.Info().Str("bill", payload.BillNumber).Str("to", payload.ToEmail).Msg("email_worker: bill sent")
	return nil
}
