package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// WhatsAppGateway sends template messages through a WhatsApp Business API
// provider.
type WhatsAppGateway struct {
	apiURL string
	token  string
	sender string
	client *http.Client
}

// WhatsAppConfig holds configuration for the WhatsApp gateway
type WhatsAppConfig struct {
	APIURL string
	Token  string
	Sender string
}

// NewWhatsAppGateway creates a new WhatsApp gateway client
func NewWhatsAppGateway(config WhatsAppConfig) *WhatsAppGateway {
	return &WhatsAppGateway{
		apiURL: config.APIURL,
		token:  config.Token,
		sender: config.Sender,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// sendMessageRequest is the WhatsApp API request body
type sendMessageRequest struct {
	From       string   `json:"from"`
	To         string   `json:"to"`
	Template   string   `json:"template"`
	Parameters []string `json:"parameters"`
}

// sendMessageResponse is the WhatsApp API response body
type sendMessageResponse struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id"`
	Error     string `json:"error,omitempty"`
}

// Send delivers one template message to the event's recipient phone.
func (g *WhatsAppGateway) Send(template string, event Event) error {
	msgReq := sendMessageRequest{
		From:     g.sender,
		To:       event.RecipientPhone,
		Template: template,
		Parameters: []string{
			event.RecipientName,
			event.RaceName,
			event.DepartureDay,
			event.DepartureHour,
			event.TripURL,
		},
	}

	jsonData, err := json.Marshal(msgReq)
	if err != nil {
		return fmt.Errorf("failed to marshal message request: %w", err)
	}

	url := fmt.Sprintf("%s/messages", g.apiURL)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create message request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", g.token))
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read message response: %w", err)
	}

	var msgResp sendMessageResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return fmt.Errorf("failed to parse message response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || msgResp.Status != "sent" {
		return fmt.Errorf("message sending failed: %s (http %d)", msgResp.Error, resp.StatusCode)
	}
	return nil
}
