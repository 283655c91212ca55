package model

// HealthReport is the admin view of backend dependencies.
type HealthReport struct {
	Database       string          `json:"database"`
	Providers      map[string]bool `json:"providers"`
	NotifierBroker bool            `json:"notifierBroker"`
}

// Healthy reports whether the database answered.
func (h HealthReport) Healthy() bool {
	return h.Database == "ok"
}
