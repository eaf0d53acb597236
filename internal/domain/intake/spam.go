package intake

import (
	"strings"

	"golang.org/x/net/publicsuffix"
)

// HoneypotFields are the decoy form fields. They are invisible to real users;
// anything filling one is automation. The genuine company field travels under
// the separate "company_name" key.
var HoneypotFields = []string{"company", "website"}

// HoneypotTripped reports whether any decoy field carries a value.
func HoneypotTripped(values map[string]string) bool {
	for _, field := range HoneypotFields {
		if strings.TrimSpace(values[field]) != "" {
			return true
		}
	}
	return false
}

// EmailDomainBlocked reports whether the email's registrable domain (eTLD+1)
// appears in the blocked list. Disposable-mail providers register throwaway
// subdomains freely, so comparison happens on the registrable domain. A
// malformed address or an unlisted TLD falls back to the raw domain.
func EmailDomainBlocked(email string, blocked []string) bool {
	if len(blocked) == 0 {
		return false
	}

	at := strings.LastIndexByte(email, '@')
	if at < 0 || at == len(email)-1 {
		return false
	}
	domain := strings.ToLower(email[at+1:])

	registrable, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil {
		registrable = domain
	}

	for _, b := range blocked {
		if registrable == b || domain == b {
			return true
		}
	}
	return false
}
