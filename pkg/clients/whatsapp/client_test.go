package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mamadbah2/logistics/internal/config"
)

func TestSendText(t *testing.T) {
	var gotPath, gotAuth string
	var gotPayload textPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	client := NewClient(config.WhatsAppConfig{
		AccessToken:   "secret",
		PhoneNumberID: "12345",
		BaseURL:       srv.URL + "/",
		APIVersion:    "v20.0",
	})

	id, err := client.SendText(context.Background(), "48500100200", "Best product: C")
	if err != nil {
		t.Fatal(err)
	}
	if id != "wamid.1" {
		t.Errorf("id = %s", id)
	}
	if gotPath != "/v20.0/12345/messages" {
		t.Errorf("path = %s", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("auth = %s", gotAuth)
	}
	if gotPayload.To != "48500100200" || gotPayload.Text.Body != "Best product: C" || gotPayload.Type != "text" {
		t.Errorf("unexpected payload %+v", gotPayload)
	}
}

func TestSendText_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid parameter","code":100}}`))
	}))
	defer srv.Close()

	client := NewClient(config.WhatsAppConfig{AccessToken: "t", PhoneNumberID: "1", BaseURL: srv.URL, APIVersion: "v20.0"})

	_, err := client.SendText(context.Background(), "1", "hi")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "code=100") || !strings.Contains(err.Error(), "Invalid parameter") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestSendText_EmptyRecipient(t *testing.T) {
	client := NewClient(config.WhatsAppConfig{BaseURL: "http://localhost", APIVersion: "v20.0"})
	if _, err := client.SendText(context.Background(), "", "hi"); err == nil {
		t.Fatal("expected error")
	}
}
