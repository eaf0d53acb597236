package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/atelierweb/atelier-api/internal/domain/model"
	"github.com/stretchr/testify/require"
)

func TestPrintContactsTableColumns(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	company := "Fromagerie Moreau"
	contacts := []*model.Contact{
		{
			ID:          "9f3c2a10-0000-4000-8000-000000000001",
			Name:        "Julien Moreau",
			Email:       "julien@fromagerie-moreau.fr",
			CompanyName: &company,
			Project:     model.ProjectCategoryEcommerce,
			Status:      model.ContactStatusContacted,
			CreatedAt:   created,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, printContactsTable(&buf, contacts))

	out := buf.String()
	require.Contains(t, out, "ID")
	require.Contains(t, out, "STATUS")
	require.Contains(t, out, "Julien Moreau")
	require.Contains(t, out, "julien@fromagerie-moreau.fr")
	require.Contains(t, out, "ecommerce")
	require.Contains(t, out, "contacted")
	require.Contains(t, out, "2026-03-14T09:30:00Z")
}

func TestPrintContactDetailShowsDashForMissingFields(t *testing.T) {
	contact := &model.Contact{
		ID:      "9f3c2a10-0000-4000-8000-000000000002",
		Name:    "Marie Dupont",
		Email:   "marie.dupont@example.fr",
		Project: model.ProjectCategoryVitrine,
		Budget:  "moins de 3000",
		Status:  model.ContactStatusNew,
		Source:  "site-vitrine",
		Message: "Je souhaite un site vitrine pour mon cabinet.",
	}

	var buf bytes.Buffer
	require.NoError(t, printContactDetail(&buf, contact))

	out := buf.String()
	require.Contains(t, out, "Phone:")
	require.Contains(t, out, "-")
	require.Contains(t, out, "Je souhaite un site vitrine pour mon cabinet.")
}

func TestPrintErrorEntriesTable(t *testing.T) {
	created := time.Date(2026, 2, 1, 18, 0, 0, 0, time.UTC)
	entries := []*model.ErrorEntry{
		{
			ID:        "e1",
			Code:      "notification_failed",
			Message:   "slack webhook returned 500",
			Severity:  model.ErrorSeverityLow,
			Details:   map[string]string{"sink": "slack", "attempts": "3"},
			CreatedAt: created,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, printErrorEntriesTable(&buf, entries))

	out := buf.String()
	require.Contains(t, out, "notification_failed")
	require.Contains(t, out, "low")
	// Details render sorted by key for stable output.
	require.Contains(t, out, "attempts=3 sink=slack")
	require.Contains(t, out, "2026-02-01T18:00:00Z")
}

func TestRenderTTL(t *testing.T) {
	cases := []struct {
		name string
		in   time.Duration
		want string
	}{
		{name: "no expiry sentinel", in: -1 * time.Second, want: "no expiry"},
		{name: "missing key sentinel", in: -2 * time.Second, want: "key missing"},
		{name: "positive duration", in: 90 * time.Second, want: "1m30s"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, renderTTL(tc.in))
		})
	}
}

func TestIsLikelyRemoteHost(t *testing.T) {
	cases := []struct {
		host string
		want bool
	}{
		{host: "localhost", want: false},
		{host: "127.0.0.1", want: false},
		{host: "::1", want: false},
		{host: "db.local", want: false},
		{host: "", want: false},
		{host: "10.12.0.4", want: true},
		{host: "db.prod.example.fr", want: true},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, isLikelyRemoteHost(tc.host), "host %q", tc.host)
	}
}

func TestTruncateKeepsShortStrings(t *testing.T) {
	require.Equal(t, "short", truncate("short", 10))
	long := truncate("une très longue description du problème rencontré", 20)
	require.Len(t, []rune(long), 20)
	require.Contains(t, long, "…")
}
