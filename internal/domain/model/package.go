package model

import "time"

// ServicePackage is a sellable service offer rendered on the public site
// (e.g. "Site vitrine", "Boutique en ligne"). Packages are seeded by
// migration and edited directly in the database for now.
type ServicePackage struct {
	ID          string    `json:"id"          db:"id"`
	Slug        string    `json:"slug"        db:"slug"`
	Name        string    `json:"name"        db:"name"`
	Description string    `json:"description" db:"description"`
	PriceCents  int       `json:"price_cents" db:"price_cents"`
	Features    []string  `json:"features"    db:"features"`
	Position    int       `json:"position"    db:"position"`
	Active      bool      `json:"active"      db:"active"`
	CreatedAt   time.Time `json:"created_at"  db:"created_at"`
}
