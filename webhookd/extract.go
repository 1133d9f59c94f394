// webhookd/extract.go
package main

// ExtractOutcome classifies a webhook payload.
type ExtractOutcome int

const (
	// ExtractOK means a user message was found and extracted.
	ExtractOK ExtractOutcome = iota
	// ExtractStatusUpdate means the payload carries no messages, only
	// delivery/read notifications. Skipped silently.
	ExtractStatusUpdate
	// ExtractMalformed means the entry/changes nesting is missing entirely.
	ExtractMalformed
)

// ExtractMessage pulls the first message out of a webhook payload. Text is
// populated only for "text" messages; audio and other types are recognized
// but their content is left empty.
func ExtractMessage(payload WebhookPayload) (InboundMessage, ExtractOutcome) {
	if len(payload.Entry) == 0 || len(payload.Entry[0].Changes) == 0 {
		return InboundMessage{}, ExtractMalformed
	}

	value := payload.Entry[0].Changes[0].Value
	if len(value.Messages) == 0 {
		return InboundMessage{}, ExtractStatusUpdate
	}

	msg := value.Messages[0]
	text := ""
	if msg.Type == "text" {
		text = msg.Text.Body
	}

	return InboundMessage{
		SenderID: msg.From,
		Text:     text,
		Type:     msg.Type,
		Raw:      msg,
	}, ExtractOK
}
