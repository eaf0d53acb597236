package intake

import "github.com/atelierweb/atelier-api/internal/domain/model"

// Contact form field names. These match the public site's form and the
// recognized JSON keys of POST /api/contact.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldPhone   = "phone"
	FieldProject = "project"
	FieldBudget  = "budget"
	FieldMessage = "message"
)

// ContactSchema builds the validation schema for contact submissions.
// The payload is expected to be sanitized and the project field already
// mapped to a canonical category slug.
func ContactSchema() *Schema {
	categories := model.ProjectCategories()
	slugs := make([]string, len(categories))
	for i, c := range categories {
		slugs[i] = string(c)
	}

	return NewSchema().
		Field(FieldName,
			Required("Le nom est requis."),
			MinLength(2, "Le nom doit contenir au moins 2 caractères."),
			MaxLength(50, "Le nom ne peut pas dépasser 50 caractères."),
		).
		Field(FieldEmail,
			Required("L'adresse e-mail est requise."),
			Email("Veuillez saisir une adresse e-mail valide."),
		).
		Field(FieldPhone,
			Optional(Phone("Veuillez saisir un numéro de téléphone français valide.")),
		).
		Field(FieldProject,
			Required("Le type de projet est requis."),
			OneOf(slugs, "Type de projet non reconnu."),
		).
		Field(FieldBudget,
			Required("Le budget est requis."),
		).
		Field(FieldMessage,
			Required("Le message est requis."),
			MinLength(10, "Le message doit contenir au moins 10 caractères."),
			MaxLength(1000, "Le message ne peut pas dépasser 1000 caractères."),
		)
}
