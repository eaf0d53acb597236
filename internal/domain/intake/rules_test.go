package intake

import (
	"regexp"
	"testing"
)

func TestRequiredRule(t *testing.T) {
	r := Required()
	if r.Check("   ") {
		t.Fatal("expected whitespace-only value to fail")
	}
	if !r.Check("x") {
		t.Fatal("expected non-empty value to pass")
	}
	if r.Message != "Ce champ est requis." {
		t.Fatalf("unexpected default message: %q", r.Message)
	}
	if custom := Required("obligatoire"); custom.Message != "obligatoire" {
		t.Fatalf("expected message override, got %q", custom.Message)
	}
}

func TestEmailRule(t *testing.T) {
	r := Email()
	valid := []string{"a@b.co", "claire.moreau@exemple.fr", "x+y@sub.domaine.org"}
	invalid := []string{"not-an-email", "a@b", "@exemple.fr", "a b@c.fr", "a@b .fr", ""}
	for _, v := range valid {
		if !r.Check(v) {
			t.Errorf("expected %q to pass", v)
		}
	}
	for _, v := range invalid {
		if r.Check(v) {
			t.Errorf("expected %q to fail", v)
		}
	}
}

func TestPhoneRule(t *testing.T) {
	r := Phone()
	valid := []string{"0612345678", "+33612345678", "0145678901", "+33145678901"}
	invalid := []string{"0012345678", "12345678", "06123456789", "061234567", "+336123456", "abc", ""}
	for _, v := range valid {
		if !r.Check(v) {
			t.Errorf("expected %q to pass", v)
		}
	}
	for _, v := range invalid {
		if r.Check(v) {
			t.Errorf("expected %q to fail", v)
		}
	}
}

func TestLengthRules(t *testing.T) {
	if MinLength(2).Check("a") {
		t.Fatal("expected single rune to fail MinLength(2)")
	}
	if !MinLength(2).Check("ab") {
		t.Fatal("expected two runes to pass MinLength(2)")
	}
	if !MinLength(2).Check("éà") {
		t.Fatal("expected rune counting, not byte counting")
	}
	if MaxLength(3).Check("abcd") {
		t.Fatal("expected four runes to fail MaxLength(3)")
	}
	// Missing value never fails MaxLength; Required owns presence.
	if !MaxLength(3).Check("") {
		t.Fatal("expected empty value to pass MaxLength")
	}
}

func TestOneOfRule(t *testing.T) {
	r := OneOf([]string{"vitrine", "seo", ""})
	if !r.Check("vitrine") {
		t.Fatal("expected member to pass")
	}
	if r.Check("autre-chose") {
		t.Fatal("expected non-member to fail")
	}
	// Empty never matches, even when the allowed set contains it.
	if r.Check("") {
		t.Fatal("expected empty value to fail")
	}
}

func TestPatternAndCustomRules(t *testing.T) {
	p := Pattern(regexp.MustCompile(`^\d+$`), "chiffres uniquement")
	if !p.Check("123") || p.Check("12a") {
		t.Fatal("pattern rule misbehaved")
	}
	c := Custom(func(v string) bool { return v != "interdit" }, "valeur interdite")
	if !c.Check("ok") || c.Check("interdit") {
		t.Fatal("custom rule misbehaved")
	}
}

func TestOptionalRule(t *testing.T) {
	r := Optional(Phone())
	if !r.Check("") || !r.Check("  ") {
		t.Fatal("expected empty value to pass optional rule")
	}
	if r.Check("pas-un-numero") {
		t.Fatal("expected present malformed value to fail")
	}
	if !r.Check("0612345678") {
		t.Fatal("expected present well-formed value to pass")
	}
}

func TestSchemaCollectsAllFailures(t *testing.T) {
	schema := NewSchema().
		Field("name", Required("requis"), MinLength(2, "trop court")).
		Field("email", Required("requis"), Email("invalide"))

	result := schema.Validate(map[string]string{"name": "", "email": "not-an-email"})

	if result.Valid {
		t.Fatal("expected invalid result")
	}
	// Both name rules fail: message collection does not stop at the first.
	if got := result.Errors["name"]; len(got) != 2 || got[0] != "requis" || got[1] != "trop court" {
		t.Fatalf("unexpected name errors: %v", got)
	}
	if got := result.Errors["email"]; len(got) != 1 || got[0] != "invalide" {
		t.Fatalf("unexpected email errors: %v", got)
	}
}

func TestSchemaIgnoresFieldsOutsideSchema(t *testing.T) {
	schema := NewSchema().Field("name", Required())
	result := schema.Validate(map[string]string{
		"name":     "Claire",
		"timeline": "", // not in schema: neither validated nor reported
	})
	if !result.Valid || len(result.Errors) != 0 {
		t.Fatalf("expected clean result, got %+v", result)
	}
}

func TestSchemaValidPayload(t *testing.T) {
	result := ContactSchema().Validate(map[string]string{
		FieldName:    "Claire Moreau",
		FieldEmail:   "claire@exemple.fr",
		FieldPhone:   "0612345678",
		FieldProject: "vitrine",
		FieldBudget:  "3000-5000€",
		FieldMessage: "Je souhaite un site vitrine pour mon cabinet.",
	})
	if !result.Valid {
		t.Fatalf("expected valid payload, got errors %v", result.Errors)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("expected empty error map, got %v", result.Errors)
	}
}

func TestContactSchemaRequiredFields(t *testing.T) {
	result := ContactSchema().Validate(map[string]string{})

	if result.Valid {
		t.Fatal("expected invalid result")
	}
	for _, field := range []string{FieldName, FieldEmail, FieldProject, FieldBudget, FieldMessage} {
		if len(result.Errors[field]) == 0 {
			t.Errorf("expected errors for missing %q", field)
		}
	}
	// Phone is optional: no error when absent.
	if len(result.Errors[FieldPhone]) != 0 {
		t.Fatalf("expected no phone errors, got %v", result.Errors[FieldPhone])
	}
}

func TestContactSchemaEmailShape(t *testing.T) {
	base := map[string]string{
		FieldName:    "Claire Moreau",
		FieldEmail:   "not-an-email",
		FieldProject: "vitrine",
		FieldBudget:  "5000",
		FieldMessage: "Un message suffisamment long.",
	}
	result := ContactSchema().Validate(base)
	if result.Valid {
		t.Fatal("expected invalid result")
	}
	if len(result.Errors) != 1 || len(result.Errors[FieldEmail]) == 0 {
		t.Fatalf("expected only email to fail, got %v", result.Errors)
	}

	base[FieldEmail] = "a@b.co"
	if result = ContactSchema().Validate(base); !result.Valid {
		t.Fatalf("expected a@b.co to pass, got %v", result.Errors)
	}
}

func TestResultFieldMessages(t *testing.T) {
	r := Result{
		Valid: false,
		Errors: map[string][]string{
			"name": {"requis", "trop court"},
		},
	}
	got := r.FieldMessages()
	if got["name"] != "requis trop court" {
		t.Fatalf("unexpected joined message: %q", got["name"])
	}
	if (Result{Valid: true}).FieldMessages() != nil {
		t.Fatal("expected nil for clean result")
	}
}
