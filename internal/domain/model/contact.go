package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxContactNameLen    = 50
	maxContactMessageLen = 1000
)

// ContactStatus tracks where a contact sits in the admin pipeline.
type ContactStatus string

const (
	ContactStatusNew       ContactStatus = "new"
	ContactStatusContacted ContactStatus = "contacted"
	ContactStatusQualified ContactStatus = "qualified"
	ContactStatusConverted ContactStatus = "converted"
	ContactStatusClosed    ContactStatus = "closed"
)

// Valid reports whether the contact status is supported.
func (s ContactStatus) Valid() bool {
	switch s {
	case ContactStatusNew, ContactStatusContacted, ContactStatusQualified,
		ContactStatusConverted, ContactStatusClosed:
		return true
	default:
		return false
	}
}

// ParseContactStatus normalizes a status string and reports whether it is supported.
func ParseContactStatus(value string) (ContactStatus, bool) {
	status := ContactStatus(strings.ToLower(strings.TrimSpace(value)))
	if status.Valid() {
		return status, true
	}
	return "", false
}

// CanTransitionTo reports whether the pipeline allows moving to the target status.
// Closed is reachable from anywhere; converted only from qualified; otherwise
// statuses advance forward one or more steps.
func (s ContactStatus) CanTransitionTo(target ContactStatus) bool {
	if !target.Valid() || s == target {
		return false
	}
	if target == ContactStatusClosed {
		return true
	}
	switch s {
	case ContactStatusNew:
		return target == ContactStatusContacted || target == ContactStatusQualified
	case ContactStatusContacted:
		return target == ContactStatusQualified
	case ContactStatusQualified:
		return target == ContactStatusConverted
	case ContactStatusConverted, ContactStatusClosed:
		return false
	default:
		return false
	}
}

// ProjectCategory is the closed set of project types an inquiry maps into.
type ProjectCategory string

const (
	ProjectCategoryVitrine   ProjectCategory = "vitrine"
	ProjectCategoryEcommerce ProjectCategory = "ecommerce"
	ProjectCategoryWebapp    ProjectCategory = "webapp"
	ProjectCategoryRefonte   ProjectCategory = "refonte"
	ProjectCategorySEO       ProjectCategory = "seo"
	ProjectCategoryAutre     ProjectCategory = "autre"
)

// Valid reports whether the project category is part of the closed set.
func (c ProjectCategory) Valid() bool {
	switch c {
	case ProjectCategoryVitrine, ProjectCategoryEcommerce, ProjectCategoryWebapp,
		ProjectCategoryRefonte, ProjectCategorySEO, ProjectCategoryAutre:
		return true
	default:
		return false
	}
}

// ProjectCategories returns every supported category in display order.
func ProjectCategories() []ProjectCategory {
	return []ProjectCategory{
		ProjectCategoryVitrine,
		ProjectCategoryEcommerce,
		ProjectCategoryWebapp,
		ProjectCategoryRefonte,
		ProjectCategorySEO,
		ProjectCategoryAutre,
	}
}

// projectCategorySynonyms maps lowercased free-text spellings to categories.
// The public site sends canonical slugs, but inquiries also arrive from older
// form versions and partner sites with their own labels.
var projectCategorySynonyms = map[string]ProjectCategory{
	"vitrine":           ProjectCategoryVitrine,
	"site vitrine":      ProjectCategoryVitrine,
	"site-vitrine":      ProjectCategoryVitrine,
	"showcase":          ProjectCategoryVitrine,
	"ecommerce":         ProjectCategoryEcommerce,
	"e-commerce":        ProjectCategoryEcommerce,
	"boutique":          ProjectCategoryEcommerce,
	"boutique en ligne": ProjectCategoryEcommerce,
	"webapp":            ProjectCategoryWebapp,
	"web app":           ProjectCategoryWebapp,
	"application":       ProjectCategoryWebapp,
	"application web":   ProjectCategoryWebapp,
	"refonte":           ProjectCategoryRefonte,
	"redesign":          ProjectCategoryRefonte,
	"refonte de site":   ProjectCategoryRefonte,
	"seo":               ProjectCategorySEO,
	"referencement":     ProjectCategorySEO,
	"référencement":     ProjectCategorySEO,
	"autre":             ProjectCategoryAutre,
	"other":             ProjectCategoryAutre,
}

// MapProjectCategory resolves free text to a category using a case-insensitive
// lookup, falling back to the catch-all. An unrecognized spelling is never a
// rejection reason; it lands in "autre" for the admin to triage.
func MapProjectCategory(value string) ProjectCategory {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if cat, ok := projectCategorySynonyms[normalized]; ok {
		return cat
	}
	if cat := ProjectCategory(normalized); cat.Valid() {
		return cat
	}
	return ProjectCategoryAutre
}

// Contact is a persisted contact-form submission plus the pipeline metadata
// the admin area works with.
type Contact struct {
	ID           string          `json:"id"                      db:"id"`
	Name         string          `json:"name"                    db:"name"`
	Email        string          `json:"email"                   db:"email"`
	Phone        *string         `json:"phone,omitempty"         db:"phone"`
	CompanyName  *string         `json:"company_name,omitempty"  db:"company_name"`
	Project      ProjectCategory `json:"project"                 db:"project"`
	Budget       string          `json:"budget"                  db:"budget"`
	BudgetAmount *int            `json:"budget_amount,omitempty" db:"budget_amount"`
	Timeline     *string         `json:"timeline,omitempty"      db:"timeline"`
	Message      string          `json:"message"                 db:"message"`
	Status       ContactStatus   `json:"status"                  db:"status"`
	Source       string          `json:"source"                  db:"source"`
	IPAddress    string          `json:"ip_address"              db:"ip_address"`
	UserAgent    *string         `json:"user_agent,omitempty"    db:"user_agent"`
	Referrer     *string         `json:"referrer,omitempty"      db:"referrer"`
	CreatedAt    time.Time       `json:"created_at"              db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"              db:"updated_at"`
}

// CreateContactRequest carries an accepted submission into the repository.
// Fields are expected to be normalized and validated by the intake pipeline;
// Validate only guards the repository against programming mistakes.
type CreateContactRequest struct {
	Name         string
	Email        string
	Phone        *string
	CompanyName  *string
	Project      ProjectCategory
	Budget       string
	BudgetAmount *int
	Timeline     *string
	Message      string
	Source       string
	IPAddress    string
	UserAgent    *string
	Referrer     *string
}

// Validate checks structural invariants before an insert is attempted.
func (r *CreateContactRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("contact name is required")
	}
	if utf8.RuneCountInString(r.Name) > maxContactNameLen {
		return errors.New("contact name exceeds maximum length")
	}
	if strings.TrimSpace(r.Email) == "" {
		return errors.New("contact email is required")
	}
	if strings.TrimSpace(r.Message) == "" {
		return errors.New("contact message is required")
	}
	if utf8.RuneCountInString(r.Message) > maxContactMessageLen {
		return errors.New("contact message exceeds maximum length")
	}
	if !r.Project.Valid() {
		return errors.New("contact project category is invalid")
	}
	return nil
}

// ContactsListOptions controls paging and filtering for listing contacts.
// Notes:
// - Q matches name or email via ILIKE substring.
// - Status and Project match exactly.
type ContactsListOptions struct {
	Limit   int
	Offset  int
	Q       *string
	Status  *ContactStatus
	Project *ProjectCategory
}
