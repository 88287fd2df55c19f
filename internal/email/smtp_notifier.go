package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
	"time"
)

// SMTPNotifier sends escalation alerts to a fixed contact address via SMTP.
type SMTPNotifier struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
	to       string
	useTLS   bool
}

func NewSMTPNotifier(host string, port int, username, password, from, fromName, to string, useTLS bool) (*SMTPNotifier, error) {
	if strings.TrimSpace(host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("smtp from is required")
	}
	if strings.TrimSpace(to) == "" {
		return nil, fmt.Errorf("alert recipient is required")
	}
	if port == 0 {
		port = 587
	}
	return &SMTPNotifier{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		fromName: fromName,
		to:       to,
		useTLS:   useTLS,
	}, nil
}

func (n *SMTPNotifier) SendEscalationAlert(_ context.Context, userID, instrumentID, classification string) error {
	subject := "Critical assessment indicator"
	body := fmt.Sprintf(
		"An assessment raised the critical indicator.\nUser: %s\nInstrument: %s\nClassification: %s\nTime: %s UTC\n",
		userID,
		instrumentID,
		classification,
		time.Now().UTC().Format(time.RFC3339),
	)
	msg := buildMessage(n.from, n.fromName, n.to, subject, body)
	addr := fmt.Sprintf("%s:%d", n.host, n.port)

	var auth smtp.Auth
	if n.username != "" {
		auth = smtp.PlainAuth("", n.username, n.password, n.host)
	}

	if n.useTLS {
		conn, err := tls.Dial("tcp", addr, &tls.Config{
			ServerName: n.host,
		})
		if err != nil {
			return err
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, n.host)
		if err != nil {
			return err
		}
		defer client.Quit()

		if auth != nil {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
		if err := client.Mail(n.from); err != nil {
			return err
		}
		if err := client.Rcpt(n.to); err != nil {
			return err
		}
		writer, err := client.Data()
		if err != nil {
			return err
		}
		if _, err := writer.Write([]byte(msg)); err != nil {
			_ = writer.Close()
			return err
		}
		return writer.Close()
	}

	return smtp.SendMail(addr, auth, n.from, []string{n.to}, []byte(msg))
}

func buildMessage(from, fromName, to, subject, body string) string {
	fromHeader := from
	if strings.TrimSpace(fromName) != "" {
		fromHeader = fmt.Sprintf("%s <%s>", fromName, from)
	}

	headers := []string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
	}
	return strings.Join(headers, "\r\n") + "\r\n\r\n" + body
}
