package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/finaccosolutions/Business-Management-Application-sub013/app/models"
	"github.com/finaccosolutions/Business-Management-Application-sub013/internal/pkg/env"
)

// SendMail sends an HTML email via SMTP
func SendMail(to string, subject string, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Printf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Printf("SMTP send error: %v", err)
		return err
	}
	return nil
}

// NotifyInvoiceCreated mails the customer about a freshly generated
// invoice. Failures are logged only; billing never depends on mail.
func NotifyInvoiceCreated(invoice *models.Invoice, customer *models.Customer) {
	if customer.Email == "" {
		return
	}
	subject := fmt.Sprintf("Invoice %s", invoice.Number)
	body := fmt.Sprintf(
		"<p>Dear %s,</p>"+
			"<p>Invoice <strong>%s</strong> dated %s has been generated for your account.</p>"+
			"<p>Amount due: %.2f (incl. %.0f%% tax), payable by %s.</p>",
		customer.Name,
		invoice.Number,
		invoice.InvoiceDate.Format("02 Jan 2006"),
		invoice.TotalAmount,
		invoice.TaxRate,
		invoice.DueDate.Format("02 Jan 2006"),
	)
	if err := SendMail(customer.Email, subject, body); err != nil {
		log.Printf("invoice notification for %s failed: %v", invoice.Number, err)
	}
}
