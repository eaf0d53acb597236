package slack

import (
	"strings"
	"testing"
	"time"

	"github.com/atelierweb/atelier-api/internal/observability/notify"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error when webhook url missing")
	}
}

func TestFormatMessageIncludesFields(t *testing.T) {
	client, err := NewClient(Config{
		WebhookURL: "https://hooks.slack.com/services/test",
		Channel:    "#contact",
		Username:   "atelier-bot",
		Timeout:    time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	budget := 3000
	msg := client.formatMessage(notify.ContactEvent{
		ContactID:    "7f1c2a30-1111-4222-8333-944445555666",
		Name:         "Marie Dupont",
		Email:        "marie@example.fr",
		Phone:        "+33 6 12 34 56 78",
		Project:      "vitrine",
		Budget:       "3000",
		BudgetAmount: &budget,
		Message:      "Bonjour, je souhaite refondre mon site.",
		Source:       "site-vitrine",
	})

	if msg["username"] != "atelier-bot" {
		t.Fatalf("expected username to be preserved, got %v", msg["username"])
	}
	if msg["channel"] != "#contact" {
		t.Fatalf("expected channel to be set, got %v", msg["channel"])
	}

	text, ok := msg["text"].(string)
	if !ok {
		t.Fatalf("expected text field")
	}
	if !containsAll(
		text,
		[]string{
			"Nouvelle demande de contact",
			"Marie Dupont",
			"marie@example.fr",
			"+33 6 12 34 56 78",
			"vitrine",
			"3000 (~3000 €)",
			"site-vitrine",
			"refondre mon site",
		},
	) {
		t.Fatalf("message text missing fields: %s", text)
	}
}

func TestFormatMessageAdminLink(t *testing.T) {
	client, err := NewClient(Config{
		WebhookURL:     "https://hooks.slack.com/services/test",
		AdminURLPrefix: "https://admin.atelierweb.fr/contacts",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := client.formatMessage(notify.ContactEvent{
		ContactID: "contact-123",
		Name:      "Marie Dupont",
	})

	text, ok := msg["text"].(string)
	if !ok {
		t.Fatalf("expected text field")
	}

	expected := "<https://admin.atelierweb.fr/contacts/contact-123|Marie Dupont>"
	if !strings.Contains(text, expected) {
		t.Fatalf("expected admin link %q in text: %s", expected, text)
	}
}

func TestFormatMessageEscapesName(t *testing.T) {
	client, err := NewClient(Config{
		WebhookURL: "https://hooks.slack.com/services/test",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := client.formatMessage(notify.ContactEvent{
		Name: "SARL Dupont & <Fils>",
	})

	text, ok := msg["text"].(string)
	if !ok {
		t.Fatalf("expected text field")
	}

	if !strings.Contains(text, "SARL Dupont &amp; &lt;Fils&gt;") {
		t.Fatalf("expected escaped name, got: %s", text)
	}
}

func TestFormatMessageTruncatesLongMessage(t *testing.T) {
	client, err := NewClient(Config{
		WebhookURL: "https://hooks.slack.com/services/test",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := client.formatMessage(notify.ContactEvent{
		Name:    "Marie Dupont",
		Message: strings.Repeat("é", 400),
	})

	text, ok := msg["text"].(string)
	if !ok {
		t.Fatalf("expected text field")
	}

	if !strings.Contains(text, strings.Repeat("é", 300)+"…") {
		t.Fatalf("expected truncated message with ellipsis, got: %s", text)
	}
	if strings.Contains(text, strings.Repeat("é", 301)) {
		t.Fatalf("expected message capped at 300 runes, got: %s", text)
	}
}

func TestFormatContactValuePermutations(t *testing.T) {
	tcs := []struct {
		name      string
		contactID string
		contact   string
		prefix    string
		want      string
	}{
		{
			name:      "id with link",
			contactID: "c-1",
			prefix:    "https://admin.example/contacts",
			want:      "<https://admin.example/contacts/c-1|c-1>",
		},
		{
			name:    "name only",
			contact: "Marie",
			prefix:  "https://admin.example/contacts",
			want:    "Marie",
		},
		{
			name:      "id and name with link",
			contactID: "c-2",
			contact:   "Marie",
			prefix:    "https://admin.example/contacts",
			want:      "<https://admin.example/contacts/c-2|Marie>",
		},
		{
			name:      "id and name without link",
			contactID: "c-3",
			contact:   "Marie",
			prefix:    "not a url",
			want:      "Marie",
		},
		{
			name:    "empty inputs",
			contact: "",
			prefix:  "https://admin.example/contacts",
			want:    "",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			client, err := NewClient(Config{
				WebhookURL:     "https://hooks.slack.com/services/test",
				AdminURLPrefix: tc.prefix,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := client.formatContactValue(notify.ContactEvent{
				ContactID: tc.contactID,
				Name:      tc.contact,
			})
			if got != tc.want {
				t.Fatalf("formatContactValue(%q,%q) = %q, want %q", tc.contactID, tc.contact, got, tc.want)
			}
		})
	}
}

func containsAll(text string, substrs []string) bool {
	for _, s := range substrs {
		if !strings.Contains(text, s) {
			return false
		}
	}
	return true
}
