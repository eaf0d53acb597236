package intake

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// reEmail is intentionally permissive: local@domain.tld shaped, not RFC 5322.
	reEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// rePhone matches French mobile or landline numbers: optional +33 or a
	// leading 0, then a non-zero digit and eight more. Internal whitespace is
	// expected to be stripped by SanitizePhone before validation.
	rePhone = regexp.MustCompile(`^(?:\+33|0)[1-9]\d{8}$`)
)

// Rule is one composable validation predicate with its failure message.
// Rules are immutable and stateless; Check never mutates its input.
type Rule struct {
	Check   func(value string) bool
	Message string
}

// firstOr returns the first override message, or the fallback.
func firstOr(fallback string, override []string) string {
	if len(override) > 0 && override[0] != "" {
		return override[0]
	}
	return fallback
}

// Required fails on values that are empty after trimming.
func Required(message ...string) Rule {
	return Rule{
		Check:   func(v string) bool { return strings.TrimSpace(v) != "" },
		Message: firstOr("Ce champ est requis.", message),
	}
}

// Email fails on values that are not email-shaped.
func Email(message ...string) Rule {
	return Rule{
		Check:   func(v string) bool { return reEmail.MatchString(v) },
		Message: firstOr("Adresse e-mail invalide.", message),
	}
}

// Phone fails on values that are not French phone-number shaped.
func Phone(message ...string) Rule {
	return Rule{
		Check:   func(v string) bool { return rePhone.MatchString(v) },
		Message: firstOr("Numéro de téléphone invalide.", message),
	}
}

// MinLength fails on values shorter than n runes.
func MinLength(n int, message ...string) Rule {
	return Rule{
		Check:   func(v string) bool { return utf8.RuneCountInString(v) >= n },
		Message: firstOr("Ce champ est trop court.", message),
	}
}

// MaxLength fails on values longer than n runes. A missing value never fails
// this rule; Required owns presence checks.
func MaxLength(n int, message ...string) Rule {
	return Rule{
		Check:   func(v string) bool { return utf8.RuneCountInString(v) <= n },
		Message: firstOr("Ce champ est trop long.", message),
	}
}

// Pattern fails on values that do not match the given expression.
func Pattern(re *regexp.Regexp, message string) Rule {
	return Rule{
		Check:   func(v string) bool { return re.MatchString(v) },
		Message: message,
	}
}

// OneOf fails on values outside the allowed set. The empty value never
// matches, even when the set contains it.
func OneOf(allowed []string, message ...string) Rule {
	set := make(map[string]struct{}, len(allowed))
	for _, v := range allowed {
		set[v] = struct{}{}
	}
	return Rule{
		Check: func(v string) bool {
			if v == "" {
				return false
			}
			_, ok := set[v]
			return ok
		},
		Message: firstOr("Valeur non reconnue.", message),
	}
}

// Custom wraps an arbitrary predicate into a Rule.
func Custom(check func(value string) bool, message string) Rule {
	return Rule{Check: check, Message: message}
}

// Optional relaxes a rule so the empty value always passes. Used for fields
// that may be omitted but must be well-formed when present.
func Optional(r Rule) Rule {
	return Rule{
		Check: func(v string) bool {
			if strings.TrimSpace(v) == "" {
				return true
			}
			return r.Check(v)
		},
		Message: r.Message,
	}
}

// Schema maps field names to ordered rule sequences. Field insertion order is
// preserved so error messages evaluate deterministically.
type Schema struct {
	fields []string
	rules  map[string][]Rule
}

// NewSchema creates an empty schema.
func NewSchema() *Schema {
	return &Schema{rules: make(map[string][]Rule)}
}

// Field appends rules for a field, registering the field on first use.
// Returns the schema for chaining.
func (s *Schema) Field(name string, rules ...Rule) *Schema {
	if _, ok := s.rules[name]; !ok {
		s.fields = append(s.fields, name)
	}
	s.rules[name] = append(s.rules[name], rules...)
	return s
}

// Fields returns the schema's field names in declaration order.
func (s *Schema) Fields() []string {
	out := make([]string, len(s.fields))
	copy(out, s.fields)
	return out
}

// Result carries the outcome of validating one payload.
type Result struct {
	Valid bool
	// Errors maps each failing field to every failing rule message, in rule
	// declaration order. Fields absent from the schema are never reported.
	Errors map[string][]string
}

// FieldMessages flattens Errors to one joined string per field for API
// responses that want a single message per field.
func (r Result) FieldMessages() map[string]string {
	if len(r.Errors) == 0 {
		return nil
	}
	out := make(map[string]string, len(r.Errors))
	for field, msgs := range r.Errors {
		out[field] = strings.Join(msgs, " ")
	}
	return out
}

// Validate runs every rule for every schema field against the payload. All
// rules run even after a failure: the result collects every failing message
// per field rather than stopping at the first.
func (s *Schema) Validate(data map[string]string) Result {
	result := Result{Valid: true, Errors: make(map[string][]string)}
	for _, field := range s.fields {
		value := data[field]
		for _, rule := range s.rules[field] {
			if rule.Check(value) {
				continue
			}
			result.Valid = false
			result.Errors[field] = append(result.Errors[field], rule.Message)
		}
	}
	return result
}
