package report

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
)

type EmailConfig struct {
	Host     string   `json:"host"`
	Port     int      `json:"port"`
	Username string   `json:"username"`
	Password string   `json:"password"`
	From     string   `json:"from"`
	To       []string `json:"to"`
}

func (c EmailConfig) Enabled() bool {
	return c.Host != "" && len(c.To) > 0
}

// Email sends the HTML report to the configured recipients.
func (r *Report) Email(cfg EmailConfig) error {
	if !cfg.Enabled() {
		return fmt.Errorf("email not configured")
	}

	page, err := r.HTML()
	if err != nil {
		return err
	}

	e := email.NewEmail()
	e.From = cfg.From
	e.To = cfg.To
	e.Subject = fmt.Sprintf(
		"Card prices: %d cards, %s € total",
		len(r.Records), r.Totals.Grand().StringFixed(2),
	)
	e.HTML = []byte(page)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	if err := e.Send(addr, auth); err != nil {
		return fmt.Errorf("send report email: %w", err)
	}
	return nil
}
