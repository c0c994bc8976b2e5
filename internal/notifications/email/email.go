// Package email provides the e-mail delivery drivers used by notifications.
package email

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/httpclient"
)

const providerName = "email"

// Drivers.
const (
	DriverLog  = "log"
	DriverHTTP = "http"
)

// Address is a mailbox.
type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Message is a plain text e-mail.
type Message struct {
	To      Address
	Subject string
	Text    string
}

// Sender delivers e-mail.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Config configures a sender driver.
type Config struct {
	Driver   string
	APIURL   string
	APIKey   string
	From     string
	Timeout  time.Duration
	RetryMax int
}

// New returns the driver selected by cfg.Driver.
func New(cfg Config, logger *zap.Logger) (Sender, error) {
	switch cfg.Driver {
	case DriverLog, "":
		return NewLogSender(logger), nil
	case DriverHTTP:
		if strings.TrimSpace(cfg.APIURL) == "" {
			return nil, fmt.Errorf("email http driver requires an api url")
		}
		return NewHTTPSender(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown email driver %q", cfg.Driver)
	}
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send implements Sender.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := validate(msg); err != nil {
		return err
	}
	s.logger.Info("email sent",
		zap.String("to", msg.To.Email),
		zap.String("subject", msg.Subject),
		zap.Int("text_length", len(msg.Text)),
	)
	return nil
}

// HTTPSender delivers messages through a SendGrid-compatible mail send API.
type HTTPSender struct {
	client *httpclient.Client
	apiKey string
	from   Address
}

// NewHTTPSender creates an HTTPSender.
func NewHTTPSender(cfg Config, logger *zap.Logger) *HTTPSender {
	return &HTTPSender{
		client: httpclient.New(httpclient.Config{
			BaseURL:  cfg.APIURL,
			Timeout:  cfg.Timeout,
			RetryMax: cfg.RetryMax,
		}, logger),
		apiKey: cfg.APIKey,
		from:   Address{Email: strings.TrimSpace(cfg.From)},
	}
}

type mailSendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             Address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []mailContent     `json:"content"`
}

type personalization struct {
	To []Address `json:"to"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Send implements Sender. Transport faults and non-2xx responses are reported as
// ProviderError.
func (s *HTTPSender) Send(ctx context.Context, msg Message) error {
	if err := validate(msg); err != nil {
		return err
	}

	headers := map[string]string{}
	if s.apiKey != "" {
		headers["Authorization"] = "Bearer " + s.apiKey
	}

	wire := mailSendRequest{
		Personalizations: []personalization{{To: []Address{msg.To}}},
		From:             s.from,
		Subject:          strings.TrimSpace(msg.Subject),
		Content:          []mailContent{{Type: "text/plain", Value: msg.Text}},
	}

	if err := s.client.DoJSON(ctx, http.MethodPost, "/v3/mail/send", headers, wire, nil); err != nil {
		return apperrors.NewProviderError(providerName, "send", err)
	}
	return nil
}

func validate(msg Message) error {
	if strings.TrimSpace(msg.To.Email) == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "email recipient is required")
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "email subject is required")
	}
	return nil
}
