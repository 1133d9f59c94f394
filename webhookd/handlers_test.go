// webhookd/handlers_test.go
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type upsertCall struct {
	userID string
	fields map[string]any
}

type fakeStore struct {
	docs    map[string]map[string]any
	upserts []upsertCall
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string]map[string]any)}
}

func (f *fakeStore) Get(_ context.Context, userID string) (map[string]any, bool) {
	doc, ok := f.docs[userID]
	return doc, ok
}

func (f *fakeStore) Upsert(_ context.Context, userID string, fields map[string]any) bool {
	f.upserts = append(f.upserts, upsertCall{userID: userID, fields: fields})
	return true
}

type sentMessage struct {
	to   string
	body string
}

type fakeSender struct {
	sent   []sentMessage
	result SendResult
}

func (f *fakeSender) SendText(_ context.Context, to, body string) SendResult {
	f.sent = append(f.sent, sentMessage{to: to, body: body})
	return f.result
}

func newTestRouter(t *testing.T, cfg Config, store UserStore, sender TextSender) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewServer(cfg, store, sender, nil).RegisterRoutes(router)
	return router
}

const textPayload = `{
	"object": "whatsapp_business_account",
	"entry": [{
		"id": "123456",
		"changes": [{
			"value": {
				"messaging_product": "whatsapp",
				"messages": [{
					"from": "5215550001111",
					"id": "wamid.ABC",
					"type": "text",
					"text": {"body": "hola luca"}
				}]
			},
			"field": "messages"
		}]
	}]
}`

func postWebhook(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, Config{}, newFakeStore(), &fakeSender{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok","service":"LUCA Webhook"}`, w.Body.String())
}

func TestVerify_Success(t *testing.T) {
	router := newTestRouter(t, Config{VerifyToken: "secret"}, newFakeStore(), &fakeSender{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=secret&hub.challenge=X", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "X", w.Body.String())
}

func TestVerify_WrongToken(t *testing.T) {
	router := newTestRouter(t, Config{VerifyToken: "secret"}, newFakeStore(), &fakeSender{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=X", nil))
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestVerify_MissingMode(t *testing.T) {
	router := newTestRouter(t, Config{VerifyToken: "secret"}, newFakeStore(), &fakeSender{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/webhook?hub.verify_token=secret&hub.challenge=X", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhook_NewUserOnboarding(t *testing.T) {
	store := newFakeStore()
	sender := &fakeSender{result: SendResult{OK: true}}
	router := newTestRouter(t, Config{}, store, sender)

	w := postWebhook(router, textPayload)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"processed"}`, w.Body.String())

	require.Len(t, store.upserts, 1)
	require.Equal(t, "5215550001111", store.upserts[0].userID)
	require.Equal(t, "onboarding", store.upserts[0].fields["status"])
	require.Equal(t, ServerTimestamp, store.upserts[0].fields["created_at"])

	require.Len(t, sender.sent, 1)
	require.Equal(t, "5215550001111", sender.sent[0].to)
	require.Equal(t, greetingMessage, sender.sent[0].body)
}

func TestWebhook_KnownUserEcho(t *testing.T) {
	store := newFakeStore()
	store.docs["5215550001111"] = map[string]any{"status": "onboarding"}
	sender := &fakeSender{result: SendResult{OK: true}}
	router := newTestRouter(t, Config{}, store, sender)

	w := postWebhook(router, textPayload)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"processed"}`, w.Body.String())

	require.Empty(t, store.upserts)
	require.Len(t, sender.sent, 1)
	require.Equal(t, "Recibido: hola luca", sender.sent[0].body)
}

func TestWebhook_SendFailureStillAcks(t *testing.T) {
	store := newFakeStore()
	sender := &fakeSender{result: SendResult{}}
	router := newTestRouter(t, Config{}, store, sender)

	w := postWebhook(router, textPayload)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"processed"}`, w.Body.String())
}

func TestWebhook_StatusUpdateIgnored(t *testing.T) {
	sender := &fakeSender{}
	router := newTestRouter(t, Config{}, newFakeStore(), sender)

	w := postWebhook(router, `{
		"entry": [{"changes": [{"value": {"statuses": [{"status": "read"}]}}]}]
	}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ignored_status_update"}`, w.Body.String())
	require.Empty(t, sender.sent)
}

func TestWebhook_MalformedIgnored(t *testing.T) {
	sender := &fakeSender{}
	router := newTestRouter(t, Config{}, newFakeStore(), sender)

	w := postWebhook(router, `{"object": "whatsapp_business_account"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ignored_malformed"}`, w.Body.String())
	require.Empty(t, sender.sent)
}

func TestWebhook_InvalidJSON(t *testing.T) {
	router := newTestRouter(t, Config{}, newFakeStore(), &fakeSender{})

	w := postWebhook(router, `{not json`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func signBody(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestWebhook_SignatureRejected(t *testing.T) {
	router := newTestRouter(t, Config{AppSecret: "app-secret"}, newFakeStore(), &fakeSender{})

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(textPayload))
	req.Header.Set("X-Hub-Signature-256", "sha256=deadbeef")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhook_SignatureAccepted(t *testing.T) {
	store := newFakeStore()
	sender := &fakeSender{result: SendResult{OK: true}}
	router := newTestRouter(t, Config{AppSecret: "app-secret"}, store, sender)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(textPayload))
	req.Header.Set("X-Hub-Signature-256", signBody("app-secret", textPayload))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, sender.sent, 1)
}

func TestValidSignature(t *testing.T) {
	body := []byte(`{"a":1}`)
	require.True(t, validSignature(body, signBody("s3cr3t", `{"a":1}`), "s3cr3t"))
	require.False(t, validSignature(body, "", "s3cr3t"))
	require.False(t, validSignature(body, "sha256=zzzz", "s3cr3t"))
	require.False(t, validSignature(body, signBody("other", `{"a":1}`), "s3cr3t"))
}
