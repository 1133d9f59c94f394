// webhookd/whatsapp.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	defaultGraphBaseURL = "https://graph.facebook.com"
	defaultAPIVersion   = "v21.0"
)

// SendResult reports the outcome of one outbound send. A failed send carries
// the HTTP status when one was received; details live in the logs only.
type SendResult struct {
	OK         bool
	StatusCode int
}

// TextSender is the outbound-messaging seam the dispatcher depends on.
type TextSender interface {
	SendText(ctx context.Context, to, body string) SendResult
}

// Messenger posts text messages to the WhatsApp Cloud API with bearer auth.
// One best-effort attempt per call, no retries.
type Messenger struct {
	baseURL       string
	apiVersion    string
	phoneNumberID string
	token         string
	httpClient    *http.Client
}

type MessengerOption func(*Messenger)

func WithBaseURL(baseURL string) MessengerOption {
	return func(m *Messenger) {
		m.baseURL = baseURL
	}
}

func WithAPIVersion(version string) MessengerOption {
	return func(m *Messenger) {
		if version != "" {
			m.apiVersion = version
		}
	}
}

func WithHTTPClient(httpClient *http.Client) MessengerOption {
	return func(m *Messenger) {
		m.httpClient = httpClient
	}
}

// NewMessenger creates a Messenger. Missing credentials are tolerated here
// and reported per send, so the webhook keeps acknowledging deliveries.
func NewMessenger(token, phoneNumberID string, opts ...MessengerOption) *Messenger {
	m := &Messenger{
		baseURL:       defaultGraphBaseURL,
		apiVersion:    defaultAPIVersion,
		phoneNumberID: phoneNumberID,
		token:         token,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Messenger) messagesURL() string {
	return m.baseURL + "/" + m.apiVersion + "/" + m.phoneNumberID + "/messages"
}

// SendText sends a text message to the given WhatsApp user. Any non-2xx
// status or network error yields a failure result, never an error past this
// boundary.
func (m *Messenger) SendText(ctx context.Context, to, body string) SendResult {
	if m.token == "" || m.phoneNumberID == "" {
		log.Println("WhatsApp credentials not found (WHATSAPP_API_TOKEN or WHATSAPP_PHONE_NUMBER_ID)")
		return SendResult{}
	}

	msg := TextMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
	}
	msg.Text.Body = body

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshalling message to %s: %v", to, err)
		return SendResult{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.messagesURL(), bytes.NewReader(payload))
	if err != nil {
		log.Printf("Error creating request for %s: %v", to, err)
		return SendResult{}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.token)

	res, err := m.httpClient.Do(req)
	if err != nil {
		log.Printf("Error sending message to %s: %v", to, err)
		return SendResult{}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		log.Printf("WhatsApp API rejected message to %s: status %d: %s", to, res.StatusCode, string(buf))
		return SendResult{StatusCode: res.StatusCode}
	}

	return SendResult{OK: true, StatusCode: res.StatusCode}
}
