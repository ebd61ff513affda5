package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type Client struct {
	From   string
	dialer *gomail.Dialer
}

func NewClient(host string, port int, username, password, from string) *Client {
	return &Client{
		From:   from,
		dialer: gomail.NewDialer(host, port, username, password),
	}
}

// Send delivers an HTML message to a single recipient.
func (c *Client) Send(to, subject, htmlBody string) error {
	if c.dialer.Username == "" {
		return fmt.Errorf("smtp credentials not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", c.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := c.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}
