package infra

import (
	"fmt"
	"net/mail"
	"net/smtp"
	"os"
	"path/filepath"

	"jewelpos/internal/config"

	"github.com/jordan-wright/email"
)

// BillEmail is one bill delivered to a client.
type BillEmail struct {
	To         string
	BillNumber string
	Subject    string
	Body       string
	PDFPath    string
}

// Mailer sends bills over SMTP on behalf of the store.
type Mailer struct {
	host      string
	user      string
	password  string
	addr      string
	storeName string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:      cfg.SMTPHost,
		user:      cfg.SMTPUser,
		password:  cfg.SMTPPassword,
		addr:      fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		storeName: cfg.StoreName,
	}
}

// SendBill emails a bill to the client.
func (m *Mailer) SendBill(msg BillEmail) error {
	e, err := m.compose(msg)
	if err != nil {
		return err
	}
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return e.Send(m.addr, auth)
}

// compose builds the message: the store as sender name, the bill number in
// X-Bill-Number and the PDF attached as BILL-000042.pdf.
func (m *Mailer) compose(msg BillEmail) (*email.Email, error) {
	e := email.NewEmail()
	e.From = m.user
	if m.storeName != "" && m.user != "" {
		e.From = (&mail.Address{Name: m.storeName, Address: m.user}).String()
	}
	e.To = []string{msg.To}
	e.Subject = msg.Subject
	e.Text = []byte(msg.Body)
	if msg.BillNumber != "" {
		e.Headers.Set("X-Bill-Number", msg.BillNumber)
	}

	if msg.PDFPath == "" {
		return e, nil
	}
	f, err := os.Open(msg.PDFPath)
	if err != nil {
		return nil, fmt.Errorf("mailer: open bill PDF: %w", err)
	}
	defer f.Close()

	name := filepath.Base(msg.PDFPath)
	if msg.BillNumber != "" {
		name = msg.BillNumber + ".pdf"
	}
	if _, err := e.Attach(f, name, "application/pdf"); err != nil {
		return nil, fmt.Errorf("mailer: attach bill PDF: %w", err)
	}
	return e, nil
}
