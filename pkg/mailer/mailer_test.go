package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mart-ng/mart-backend/pkg/config"
)

func newTestClient(t *testing.T, server *httptest.Server) *SendGridClient {
	t.Helper()
	client, err := NewSendGridClient(config.MailConfig{
		SendgridAPIKey: "sg-key",
		DefaultFrom:    "no-reply@mart.ng",
		BaseURL:        server.URL,
	})
	if err != nil {
		t.Fatalf("building client: %v", err)
	}
	client.httpClient = server.Client()
	return client
}

func TestSendGridClientSend(t *testing.T) {
	var captured sendGridPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/mail/send" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sg-key" {
			t.Errorf("unexpected authorization header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decoding payload: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	err := client.Send(context.Background(), Message{
		To:        "buyer@example.com",
		Subject:   "Verify your email",
		PlainText: "Use this link to verify your account.",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if captured.From.Email != "no-reply@mart.ng" {
		t.Fatalf("unexpected from %q", captured.From.Email)
	}
	if len(captured.Personalizations) != 1 || len(captured.Personalizations[0].To) != 1 {
		t.Fatalf("unexpected personalizations %+v", captured.Personalizations)
	}
	if got := captured.Personalizations[0].To[0].Email; got != "buyer@example.com" {
		t.Fatalf("unexpected recipient %q", got)
	}
	if len(captured.Content) != 1 || captured.Content[0].Type != "text/plain" {
		t.Fatalf("unexpected content %+v", captured.Content)
	}
}

func TestSendGridClientSendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"message":"bad key"}]}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	err := client.Send(context.Background(), Message{
		To:        "buyer@example.com",
		Subject:   "Verify your email",
		PlainText: "body",
	})
	if err == nil {
		t.Fatal("expected error on non-2xx response")
	}
}

func TestSendGridClientValidation(t *testing.T) {
	client := &SendGridClient{from: "no-reply@mart.ng", baseURL: "http://unused", httpClient: http.DefaultClient}

	if err := client.Send(context.Background(), Message{Subject: "s", PlainText: "b"}); err == nil {
		t.Fatal("expected error for missing recipient")
	}
	if err := client.Send(context.Background(), Message{To: "a@b.c", PlainText: "b"}); err == nil {
		t.Fatal("expected error for missing subject")
	}
	if err := client.Send(context.Background(), Message{To: "a@b.c", Subject: "s"}); err == nil {
		t.Fatal("expected error for empty body")
	}
}
