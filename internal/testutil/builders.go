package testutil

import (
	"fmt"
	"time"

	"github.com/atelierweb/atelier-api/internal/domain/model"
)

// ContactRequestBuilder provides a fluent interface for building
// CreateContactRequest objects for testing.
type ContactRequestBuilder struct {
	req *model.CreateContactRequest
}

// NewContactRequest creates a new ContactRequestBuilder with sensible defaults.
func NewContactRequest() *ContactRequestBuilder {
	return &ContactRequestBuilder{
		req: &model.CreateContactRequest{
			Name:      "Marie Dupont",
			Email:     fmt.Sprintf("marie-%d@example.fr", time.Now().UnixNano()),
			Project:   model.ProjectCategoryVitrine,
			Budget:    "3000",
			Message:   "Bonjour, je souhaite créer un site vitrine pour mon activité.",
			Source:    "site-vitrine",
			IPAddress: "203.0.113.10",
		},
	}
}

// WithName sets the contact name.
func (b *ContactRequestBuilder) WithName(name string) *ContactRequestBuilder {
	b.req.Name = name
	return b
}

// WithEmail sets the contact email.
func (b *ContactRequestBuilder) WithEmail(email string) *ContactRequestBuilder {
	b.req.Email = email
	return b
}

// WithPhone sets the contact phone.
func (b *ContactRequestBuilder) WithPhone(phone string) *ContactRequestBuilder {
	b.req.Phone = &phone
	return b
}

// WithProject sets the project category.
func (b *ContactRequestBuilder) WithProject(project model.ProjectCategory) *ContactRequestBuilder {
	b.req.Project = project
	return b
}

// WithBudget sets the raw budget text and parsed amount.
func (b *ContactRequestBuilder) WithBudget(raw string) *ContactRequestBuilder {
	b.req.Budget = raw
	b.req.BudgetAmount = model.ParseBudget(raw)
	return b
}

// WithMessage sets the contact message.
func (b *ContactRequestBuilder) WithMessage(message string) *ContactRequestBuilder {
	b.req.Message = message
	return b
}

// WithSource sets the submission source.
func (b *ContactRequestBuilder) WithSource(source string) *ContactRequestBuilder {
	b.req.Source = source
	return b
}

// WithIPAddress sets the client IP.
func (b *ContactRequestBuilder) WithIPAddress(ip string) *ContactRequestBuilder {
	b.req.IPAddress = ip
	return b
}

// WithUserAgent sets the client user agent.
func (b *ContactRequestBuilder) WithUserAgent(ua string) *ContactRequestBuilder {
	b.req.UserAgent = &ua
	return b
}

// Build returns the constructed request.
func (b *ContactRequestBuilder) Build() *model.CreateContactRequest {
	return b.req
}
