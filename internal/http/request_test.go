package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIdentityIP(t *testing.T) {
	tests := []struct {
		name    string
		trust   bool
		headers map[string]string
		remote  string
		want    string
	}{
		{
			name:   "transport address when no proxy headers",
			trust:  true,
			remote: "203.0.113.7:51234",
			want:   "203.0.113.7",
		},
		{
			name:    "first forwarded-for hop wins",
			trust:   true,
			headers: map[string]string{"X-Forwarded-For": "198.51.100.4, 10.0.0.1"},
			remote:  "10.0.0.1:8080",
			want:    "198.51.100.4",
		},
		{
			name:    "real-ip fallback",
			trust:   true,
			headers: map[string]string{"X-Real-IP": "198.51.100.9"},
			remote:  "10.0.0.1:8080",
			want:    "198.51.100.9",
		},
		{
			name:    "proxy headers ignored when untrusted",
			trust:   false,
			headers: map[string]string{"X-Forwarded-For": "198.51.100.4"},
			remote:  "203.0.113.7:51234",
			want:    "203.0.113.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}

			got := ClientIdentity{TrustProxyHeaders: tt.trust}.IP(r)
			if got != tt.want {
				t.Fatalf("IP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientIdentityKey(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
	r.RemoteAddr = "203.0.113.7:51234"
	r.Header.Set("User-Agent", "Mozilla/5.0 test-agent")

	key := ClientIdentity{UserAgentPrefixLen: 10}.Key(r)
	if key != "203.0.113.7|Mozilla/5." {
		t.Fatalf("key = %q", key)
	}
}

func TestParseLimitOffset(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", 20, 0},
		{"explicit", "limit=10&offset=30", 10, 30},
		{"clamped high", "limit=5000", 100, 0},
		{"clamped low", "limit=-1&offset=-5", 1, 0},
		{"garbage ignored", "limit=abc&offset=xyz", 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/admin/contacts?"+tt.query, nil)
			limit, offset := ParseLimitOffset(r, 20, 100)
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Fatalf("ParseLimitOffset = (%d, %d), want (%d, %d)", limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}
