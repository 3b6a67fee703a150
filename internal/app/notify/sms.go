package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// smsBody is the welcome message carrying the one-time credential.
// Members are told to change the password on first login.
const smsBody = `እንኳን ደህና መጡ!
የመግቢያ መረጃዎ:
የተጠቃሚ ስም: %s
የይለፍ ቃል: %s
በመጀመሪያው ሎግኢን የይለፍ ቃልዎን እንዲቀይሩ እንመክራለን።`

// SMSConfig holds the SMS gateway settings (Twilio-compatible REST API).
type SMSConfig struct {
	AccountSID string
	AuthToken  string
	From       string // E.164 sending number
	BaseURL    string // override for tests; empty means the real gateway
}

// SMSSender delivers credentials over the SMS gateway's REST API.
type SMSSender struct {
	cfg    SMSConfig
	client *http.Client
	log    *zap.Logger
}

func NewSMSSender(cfg SMSConfig, client *http.Client, logger *zap.Logger) *SMSSender {
	if client == nil {
		client = http.DefaultClient
	}
	return &SMSSender{cfg: cfg, client: client, log: logger}
}

// SendCredential posts one message to the gateway. The request runs under the
// caller's context so delivery can never outlive the registration's timeout.
func (s *SMSSender) SendCredential(ctx context.Context, dest Destination, username, secret string) error {
	if dest.Channel != ChannelSMS {
		return fmt.Errorf("sms sender got %q destination", dest.Channel)
	}
	if s.cfg.AccountSID == "" || s.cfg.AuthToken == "" || s.cfg.From == "" {
		return fmt.Errorf("sms gateway is not configured")
	}

	endpoint := s.cfg.BaseURL
	if endpoint == "" {
		endpoint = "https://api.twilio.com"
	}
	endpoint = fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", endpoint, s.cfg.AccountSID)

	form := url.Values{}
	form.Set("To", dest.To)
	form.Set("From", s.cfg.From)
	form.Set("Body", fmt.Sprintf(smsBody, username, secret))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.cfg.AccountSID, s.cfg.AuthToken)

	msgID := uuid.NewString()
	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn("sms delivery failed",
			zap.String("message_id", msgID),
			zap.String("to", dest.To),
			zap.Error(err))
		return fmt.Errorf("sms delivery: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.log.Warn("sms gateway rejected message",
			zap.String("message_id", msgID),
			zap.String("to", dest.To),
			zap.Int("status", resp.StatusCode))
		return fmt.Errorf("sms gateway returned %d", resp.StatusCode)
	}

	// The gateway's message resource; its sid is what support quotes when
	// chasing a delivery with the provider.
	var gw struct {
		Sid    string `json:"sid"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&gw); err != nil {
		s.log.Warn("sms gateway response unreadable",
			zap.String("message_id", msgID),
			zap.Error(err))
	}

	s.log.Info("credential sms sent",
		zap.String("message_id", msgID),
		zap.String("gateway_sid", gw.Sid),
		zap.String("gateway_status", gw.Status),
		zap.String("to", dest.To))
	return nil
}
