// webhookd/types.go
package main

import "encoding/json"

// WebhookPayload is the WhatsApp Business webhook envelope. Only the fields
// this service reads are mapped; everything else is ignored on decode.
type WebhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		ID      string `json:"id"`
		Changes []struct {
			Value struct {
				MessagingProduct string `json:"messaging_product"`
				Metadata         struct {
					DisplayPhoneNumber string `json:"display_phone_number"`
					PhoneNumberID      string `json:"phone_number_id"`
				} `json:"metadata"`
				Contacts []struct {
					Profile struct {
						Name string `json:"name"`
					} `json:"profile"`
					WaID string `json:"wa_id"`
				} `json:"contacts"`
				Messages []WebhookMessage  `json:"messages"`
				Statuses []json.RawMessage `json:"statuses"` // delivered/read notifications
			} `json:"value"`
			Field string `json:"field"`
		} `json:"changes"`
	} `json:"entry"`
}

// WebhookMessage is a single message inside a webhook payload. Type is "text",
// "audio", "image" etc.; Text is only populated for "text".
type WebhookMessage struct {
	From      string `json:"from"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      struct {
		Body string `json:"body"`
	} `json:"text"`
}

// InboundMessage is the flat record the dispatcher works with. Raw keeps the
// original nested message for fields not yet mapped.
type InboundMessage struct {
	SenderID string
	Text     string
	Type     string
	Raw      WebhookMessage
}

// TextMessage is the outbound Graph API text message body.
type TextMessage struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}
