package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MailGateway sends transactional mail through an HTTP mail API.
type MailGateway struct {
	apiURL string
	apiKey string
	sender string
	client *http.Client
}

// MailConfig holds configuration for the mail gateway
type MailConfig struct {
	APIURL string
	APIKey string
	Sender string
}

// NewMailGateway creates a new mail gateway client
func NewMailGateway(config MailConfig) *MailGateway {
	return &MailGateway{
		apiURL: config.APIURL,
		apiKey: config.APIKey,
		sender: config.Sender,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// sendMailRequest is the mail API request body
type sendMailRequest struct {
	From     string            `json:"from"`
	To       string            `json:"to"`
	Template string            `json:"template"`
	Params   map[string]string `json:"params"`
}

// sendMailResponse is the mail API response body
type sendMailResponse struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id"`
	Error     string `json:"error,omitempty"`
}

// Send delivers one templated mail to the event's recipient.
func (g *MailGateway) Send(template string, event Event) error {
	mailReq := sendMailRequest{
		From:     g.sender,
		To:       event.RecipientEmail,
		Template: template,
		Params: map[string]string{
			"name":           event.RecipientName,
			"race":           event.RaceName,
			"departure_day":  event.DepartureDay,
			"departure_hour": event.DepartureHour,
			"departure_city": event.DepartureCity,
			"trip_url":       event.TripURL,
		},
	}

	jsonData, err := json.Marshal(mailReq)
	if err != nil {
		return fmt.Errorf("failed to marshal mail request: %w", err)
	}

	url := fmt.Sprintf("%s/send", g.apiURL)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create mail request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", g.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send mail request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read mail response: %w", err)
	}

	var mailResp sendMailResponse
	if err := json.Unmarshal(body, &mailResp); err != nil {
		return fmt.Errorf("failed to parse mail response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || mailResp.Status != "sent" {
		return fmt.Errorf("mail sending failed: %s (http %d)", mailResp.Error, resp.StatusCode)
	}
	return nil
}
