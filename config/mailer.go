package config

import (
	"crypto/tls"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	mail "github.com/go-mail/mail/v2"
)

type mailerConfig struct {
	host          string
	port          int
	user          string
	pass          string
	from          string // e.g. "Job Board <no-reply@example.com>"
	skipTLSVerify bool
}

var (
	mailerMu sync.RWMutex
	mailer   = readMailerConfig()
)

func readMailerConfig() mailerConfig {
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if port == 0 {
		port = 587
	}
	return mailerConfig{
		host:          strings.TrimSpace(os.Getenv("SMTP_HOST")),
		port:          port,
		user:          os.Getenv("SMTP_USER"),
		pass:          os.Getenv("SMTP_PASS"),
		from:          strings.TrimSpace(os.Getenv("SMTP_FROM")),
		skipTLSVerify: os.Getenv("SMTP_SKIP_TLS_VERIFY") == "1",
	}
}

// ReloadMailerConfig re-reads SMTP_* after the environment changed, e.g. after godotenv.Load.
func ReloadMailerConfig() {
	cfg := readMailerConfig()
	mailerMu.Lock()
	mailer = cfg
	mailerMu.Unlock()
}

// MailerConfigured reports whether SMTP_HOST and SMTP_FROM are set.
func MailerConfigured() bool {
	mailerMu.RLock()
	defer mailerMu.RUnlock()
	return mailer.host != "" && mailer.from != ""
}

func SendMail(to []string, subject, html string) error {
	if len(to) == 0 {
		return nil
	}
	mailerMu.RLock()
	cfg := mailer
	mailerMu.RUnlock()

	if cfg.host == "" || cfg.from == "" {
		return fmt.Errorf("smtp not configured (SMTP_HOST/SMTP_FROM)")
	}

	m := mail.NewMessage()
	m.SetHeader("From", cfg.from)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	d := mail.NewDialer(cfg.host, cfg.port, cfg.user, cfg.pass)

	// STARTTLS is mandatory on 587
	d.StartTLSPolicy = mail.MandatoryStartTLS

	d.TLSConfig = &tls.Config{
		ServerName:         cfg.host,
		InsecureSkipVerify: cfg.skipTLSVerify, // dev only
	}

	return d.DialAndSend(m)
}
