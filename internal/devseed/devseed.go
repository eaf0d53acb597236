// Package devseed populates a development database with realistic French
// contact inquiries so the admin area has something to show. Seeding is
// idempotent: a contact whose email already exists is left alone.
package devseed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/atelierweb/atelier-api/internal/data"
	"github.com/atelierweb/atelier-api/internal/domain/model"
)

// Services bundles the dependencies needed for development seeding.
type Services struct {
	DB       *sql.DB
	contacts *data.ContactRepo
	errorLog *data.ErrorLogRepo
}

// NewServices constructs the repositories used for seeding from the provided DB.
func NewServices(db *sql.DB) Services {
	return Services{
		DB:       db,
		contacts: data.NewContactRepo(db),
		errorLog: data.NewErrorLogRepo(db),
	}
}

// Run executes the full development seeding workflow against the provided DB.
func Run(ctx context.Context, svcs Services, logger *slog.Logger) error {
	failures := 0
	failures += seedContacts(ctx, svcs.contacts, logger)
	failures += seedErrorEntries(ctx, svcs.errorLog, logger)

	if failures > 0 {
		return fmt.Errorf("%d seed errors; check logs", failures)
	}
	return nil
}

// seedContact pairs an inquiry with the pipeline status it should end up in.
type seedContact struct {
	req    *model.CreateContactRequest
	status model.ContactStatus
}

func seedContacts(ctx context.Context, repo *data.ContactRepo, logger *slog.Logger) int {
	failures := 0
	for _, seed := range defaultContacts() {
		created, err := createContact(ctx, repo, seed)
		if err != nil {
			if logger != nil {
				logger.ErrorContext(ctx, "failed to seed contact", "email", seed.req.Email, "error", err)
			}
			failures++
			continue
		}
		if logger != nil {
			msg := "contact already exists"
			if created {
				msg = "created contact"
			}
			logger.InfoContext(ctx, msg, "email", seed.req.Email, "status", seed.status)
		}
	}
	return failures
}

func createContact(ctx context.Context, repo *data.ContactRepo, seed seedContact) (bool, error) {
	existing, err := repo.List(ctx, model.ContactsListOptions{Q: &seed.req.Email, Limit: 1})
	if err != nil {
		return false, fmt.Errorf("look up contact: %w", err)
	}
	if len(existing) > 0 {
		return false, nil
	}

	contact, err := repo.Create(ctx, seed.req)
	if err != nil {
		return false, fmt.Errorf("create contact: %w", err)
	}

	if err := advanceStatus(ctx, repo, contact, seed.status); err != nil {
		return false, err
	}
	return true, nil
}

// advanceStatus walks the pipeline one step at a time so seeded contacts
// respect the same transition rules the admin area enforces.
func advanceStatus(ctx context.Context, repo *data.ContactRepo, contact *model.Contact, target model.ContactStatus) error {
	for _, step := range statusPath(contact.Status, target) {
		updated, err := repo.UpdateStatus(ctx, contact.ID, step)
		if err != nil {
			return fmt.Errorf("advance contact %s to %s: %w", contact.ID, step, err)
		}
		contact = updated
	}
	return nil
}

func statusPath(from, to model.ContactStatus) []model.ContactStatus {
	if from == to {
		return nil
	}
	switch to {
	case model.ContactStatusContacted:
		return []model.ContactStatus{model.ContactStatusContacted}
	case model.ContactStatusQualified:
		return []model.ContactStatus{model.ContactStatusQualified}
	case model.ContactStatusConverted:
		return []model.ContactStatus{model.ContactStatusQualified, model.ContactStatusConverted}
	case model.ContactStatusClosed:
		return []model.ContactStatus{model.ContactStatusClosed}
	default:
		return nil
	}
}

func defaultContacts() []seedContact {
	return []seedContact{
		{
			req: &model.CreateContactRequest{
				Name:         "Marie Dupont",
				Email:        "marie.dupont@example.fr",
				Phone:        strPtr("+33 6 12 34 56 78"),
				Project:      model.ProjectCategoryVitrine,
				Budget:       "3 000 €",
				BudgetAmount: intPtr(3000),
				Timeline:     strPtr("2 mois"),
				Message:      "Bonjour, je lance mon cabinet d'architecte et j'aurais besoin d'un site vitrine élégant pour présenter mes réalisations.",
				Source:       "site-vitrine",
				IPAddress:    "203.0.113.10",
			},
			status: model.ContactStatusNew,
		},
		{
			req: &model.CreateContactRequest{
				Name:        "Julien Moreau",
				Email:       "julien@fromagerie-moreau.fr",
				CompanyName: strPtr("Fromagerie Moreau"),
				Project:     model.ProjectCategoryEcommerce,
				Budget:      "8 000 €",
				Timeline:    strPtr("avant Noël"),
				Message:     "Nous souhaitons vendre nos fromages en ligne avec livraison réfrigérée. Avez-vous déjà travaillé sur ce type de boutique ?",
				Source:      "site-vitrine",
				IPAddress:   "203.0.113.11",
			},
			status: model.ContactStatusContacted,
		},
		{
			req: &model.CreateContactRequest{
				Name:        "Sophie Lambert",
				Email:       "s.lambert@cabinet-lambert.fr",
				Phone:       strPtr("+33 7 98 76 54 32"),
				CompanyName: strPtr("Cabinet Lambert"),
				Project:     model.ProjectCategoryRefonte,
				Budget:      "5 000 - 10 000 €",
				Message:     "Notre site date de 2015 et n'est pas adapté aux mobiles. Nous cherchons une refonte complète avec une vraie stratégie de contenu.",
				Source:      "recommandation",
				IPAddress:   "203.0.113.12",
			},
			status: model.ContactStatusQualified,
		},
		{
			req: &model.CreateContactRequest{
				Name:         "Antoine Girard",
				Email:        "antoine.girard@example.fr",
				Project:      model.ProjectCategoryWebapp,
				Budget:       "15 000 €",
				BudgetAmount: intPtr(15000),
				Timeline:     strPtr("6 mois"),
				Message:      "Je cherche un développeur pour une application de réservation de cours de yoga, avec paiement en ligne et espace membre.",
				Source:       "linkedin",
				IPAddress:    "203.0.113.13",
			},
			status: model.ContactStatusConverted,
		},
		{
			req: &model.CreateContactRequest{
				Name:      "Claire Petit",
				Email:     "claire.petit@example.fr",
				Project:   model.ProjectCategorySEO,
				Budget:    "1 000 €",
				Message:   "Mon site n'apparaît pas sur Google. Pouvez-vous m'aider à améliorer mon référencement ?",
				Source:    "site-vitrine",
				IPAddress: "203.0.113.14",
			},
			status: model.ContactStatusClosed,
		},
	}
}

// seedErrorEntries adds a few log entries so the admin error view is not
// empty. Skipped entirely when the log already has content.
func seedErrorEntries(ctx context.Context, repo *data.ErrorLogRepo, logger *slog.Logger) int {
	existing, err := repo.List(ctx, 1, 0, nil)
	if err != nil {
		if logger != nil {
			logger.ErrorContext(ctx, "failed to inspect error log", "error", err)
		}
		return 1
	}
	if len(existing) > 0 {
		if logger != nil {
			logger.InfoContext(ctx, "error log already has entries, skipping seed")
		}
		return 0
	}

	failures := 0
	entries := []*model.CreateErrorEntryRequest{
		{
			Code:     "notification_failed",
			Message:  "slack: webhook returned status 500",
			Severity: model.ErrorSeverityLow,
			Details:  map[string]string{"sink": "slack", "contact_email": "marie.dupont@example.fr"},
		},
		{
			Code:     "persistence_failed",
			Message:  "create contact: connection refused",
			Severity: model.ErrorSeverityMedium,
			Details:  map[string]string{"source": "site-vitrine"},
		},
	}
	for _, entry := range entries {
		if _, err := repo.Create(ctx, entry); err != nil {
			if logger != nil {
				logger.ErrorContext(ctx, "failed to seed error entry", "code", entry.Code, "error", err)
			}
			failures++
		}
	}
	return failures
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
