package oidc

import (
	"testing"

	"golang.org/x/oauth2"
)

func TestNewProvider_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  ProviderConfig
	}{
		{"missing client ID", ProviderConfig{ClientSecret: "s", RedirectURL: "u", DiscoveryURL: "d"}},
		{"missing client secret", ProviderConfig{ClientID: "c", RedirectURL: "u", DiscoveryURL: "d"}},
		{"missing redirect URL", ProviderConfig{ClientID: "c", ClientSecret: "s", DiscoveryURL: "d"}},
		{"missing discovery URL", ProviderConfig{ClientID: "c", ClientSecret: "s", RedirectURL: "u"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewProvider(tt.cfg); err == nil {
				t.Error("expected configuration error")
			}
		})
	}
}

func TestMapIDTokenClaims(t *testing.T) {
	f := mapIDTokenClaims(idTokenClaims{
		Sub:               "abc-123",
		PreferredUsername: "claire",
		Name:              "Claire Fontaine",
		Email:             "claire@atelier.fr",
		Groups:            []string{"atelier-admin"},
	})
	if f.userID != "claire" {
		t.Errorf("userID = %q, want preferred_username to win over sub", f.userID)
	}
	if f.email != "claire@atelier.fr" {
		t.Errorf("email = %q", f.email)
	}
	if f.displayName() != "Claire Fontaine" {
		t.Errorf("displayName = %q", f.displayName())
	}
	if len(f.groups) != 1 || f.groups[0] != "atelier-admin" {
		t.Errorf("groups = %v", f.groups)
	}
}

func TestMapIDTokenClaims_SubFallback(t *testing.T) {
	f := mapIDTokenClaims(idTokenClaims{Sub: "abc-123"})
	if f.userID != "abc-123" {
		t.Errorf("userID = %q, want sub fallback", f.userID)
	}
	if f.displayName() != "abc-123" {
		t.Errorf("displayName = %q, want userID fallback", f.displayName())
	}
}

func TestDisplayName_GivenFamilyPair(t *testing.T) {
	f := idFields{userID: "x", givenName: "Claire", familyName: "Fontaine"}
	if f.displayName() != "Claire Fontaine" {
		t.Errorf("displayName = %q", f.displayName())
	}
}

func TestFillFromUserInfoClaims(t *testing.T) {
	f := idFields{userID: "claire"}
	fillFromUserInfoClaims(&f, UserInfo{
		Subject:    "abc-123",
		Email:      "claire@atelier.fr",
		GivenName:  "Claire",
		FamilyName: "Fontaine",
		Groups:     []string{"atelier-admin"},
	})
	if f.userID != "claire" {
		t.Errorf("userID = %q, existing value should be kept", f.userID)
	}
	if f.email != "claire@atelier.fr" {
		t.Errorf("email = %q, want userinfo fill", f.email)
	}
	if len(f.groups) != 1 {
		t.Errorf("groups = %v, want userinfo fill", f.groups)
	}
}

func TestGetIDTokenFromToken(t *testing.T) {
	if _, err := getIDTokenFromToken(nil); err == nil {
		t.Error("nil token should error")
	}

	tok := (&oauth2.Token{}).WithExtra(map[string]interface{}{"id_token": "raw"})
	s, err := getIDTokenFromToken(tok)
	if err != nil {
		t.Fatalf("getIDTokenFromToken: %v", err)
	}
	if s != "raw" {
		t.Errorf("id_token = %q", s)
	}

	empty := (&oauth2.Token{}).WithExtra(map[string]interface{}{})
	if _, err := getIDTokenFromToken(empty); err == nil {
		t.Error("missing id_token should error")
	}
}

func TestGenerateRandomString(t *testing.T) {
	s1, err := generateRandomString(32)
	if err != nil {
		t.Fatalf("generateRandomString: %v", err)
	}
	if len(s1) != 32 {
		t.Errorf("len = %d, want 32", len(s1))
	}
	s2, err := generateRandomString(32)
	if err != nil {
		t.Fatalf("generateRandomString: %v", err)
	}
	if s1 == s2 {
		t.Error("two generated strings should differ")
	}

	empty, err := generateRandomString(0)
	if err != nil || empty != "" {
		t.Errorf("generateRandomString(0) = %q, %v", empty, err)
	}
}
