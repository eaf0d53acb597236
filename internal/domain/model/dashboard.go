package model

// MonthlyCount is one month of intake volume for the dashboard chart.
// Month uses the "2006-01" layout.
type MonthlyCount struct {
	Month string `json:"month" db:"month"`
	Count int    `json:"count" db:"count"`
}

// DashboardStats aggregates the admin dashboard numbers. Assembled from
// group-by queries in the contact repository; no single SQL statement
// produces the whole struct.
type DashboardStats struct {
	TotalContacts  int                     `json:"total_contacts"`
	ByStatus       map[ContactStatus]int   `json:"by_status"`
	ByProject      map[ProjectCategory]int `json:"by_project"`
	MonthlyIntake  []MonthlyCount          `json:"monthly_intake"`
	RecentContacts []*Contact              `json:"recent_contacts"`
}
