package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/atelierweb/atelier-api/internal/observability/notify"
)

func TestNewClientValidation(t *testing.T) {
	tcs := []struct {
		name string
		cfg  Config
	}{
		{name: "missing api url", cfg: Config{APIKey: "k", FromEmail: "contact@atelierweb.fr"}},
		{name: "missing api key", cfg: Config{APIURL: "https://api.example/v3/smtp/email", FromEmail: "contact@atelierweb.fr"}},
		{name: "missing sender", cfg: Config{APIURL: "https://api.example/v3/smtp/email", APIKey: "k"}},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewClient(tc.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSendContactEventPostsAcknowledgment(t *testing.T) {
	var gotKey string
	var gotPayload mailPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		APIURL:    srv.URL,
		APIKey:    "s3cret",
		FromName:  "Atelier Web",
		FromEmail: "contact@atelierweb.fr",
		ReplyTo:   "bonjour@atelierweb.fr",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = client.SendContactEvent(context.Background(), notify.ContactEvent{
		Name:    "Marie Dupont",
		Email:   "marie@example.fr",
		Project: "vitrine",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotKey != "s3cret" {
		t.Fatalf("expected api key header, got %q", gotKey)
	}
	if gotPayload.Sender.Email != "contact@atelierweb.fr" {
		t.Fatalf("unexpected sender: %+v", gotPayload.Sender)
	}
	if len(gotPayload.To) != 1 || gotPayload.To[0].Email != "marie@example.fr" {
		t.Fatalf("unexpected recipients: %+v", gotPayload.To)
	}
	if gotPayload.ReplyTo == nil || gotPayload.ReplyTo.Email != "bonjour@atelierweb.fr" {
		t.Fatalf("unexpected reply-to: %+v", gotPayload.ReplyTo)
	}
	if gotPayload.Subject != "Nous avons bien reçu votre demande" {
		t.Fatalf("unexpected subject: %q", gotPayload.Subject)
	}
	if !strings.Contains(gotPayload.TextContent, "Bonjour Marie Dupont") {
		t.Fatalf("expected greeting in body: %s", gotPayload.TextContent)
	}
	if !strings.Contains(gotPayload.TextContent, "« vitrine »") {
		t.Fatalf("expected project mention in body: %s", gotPayload.TextContent)
	}
}

func TestSendContactEventSkipsMissingEmail(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		APIURL:    srv.URL,
		APIKey:    "k",
		FromEmail: "contact@atelierweb.fr",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = client.SendContactEvent(context.Background(), notify.ContactEvent{Name: "Marie"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Fatal("expected no request when email is missing")
	}
}

func TestSendContactEventRetriesOnServerError(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			http.Error(w, "boom", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		APIURL:     srv.URL,
		APIKey:     "k",
		FromEmail:  "contact@atelierweb.fr",
		RetryLimit: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = client.SendContactEvent(context.Background(), notify.ContactEvent{Email: "marie@example.fr"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestBuildAcknowledgmentBodyWithoutName(t *testing.T) {
	body := buildAcknowledgmentBody(notify.ContactEvent{Email: "x@example.fr"})
	if !strings.HasPrefix(body, "Bonjour,") {
		t.Fatalf("expected neutral greeting, got: %s", body)
	}
}
