package mail

import (
	"fmt"
	"net/smtp"
	"strings"

	"regimenz-pos/internal/config"
	"regimenz-pos/internal/core"
)

// Mailer sends plain-text alert emails over SMTP.
type Mailer struct {
	cfg config.SMTPConfig
}

func New(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// SendLowStock emails the current low-stock list to the configured recipient.
func (m *Mailer) SendLowStock(alerts []core.LowStockAlert) error {
	if m.cfg.Host == "" || m.cfg.From == "" || m.cfg.To == "" {
		return fmt.Errorf("smtp not configured")
	}

	var body strings.Builder
	body.WriteString("The following products are at or below their reorder thresholds:\r\n\r\n")
	for _, a := range alerts {
		fmt.Fprintf(&body, "  %s  %s  on hand: %d  threshold: %d\r\n",
			a.SKU, a.Name, a.QtyOnHand, a.Threshold)
	}
	body.WriteString("\r\nPlease reorder.\r\n")

	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + m.cfg.To,
		"Subject: Regimenz — Low-stock Alert",
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body.String(),
	}, "\r\n")

	addr := m.cfg.Host + ":" + m.cfg.Port
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{m.cfg.To}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}
