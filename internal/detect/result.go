package detect

import "clickscan/internal/azure"

// Finding pairs one resource's metadata snapshot with the indicators that
// suggest it was created through the portal. An empty indicator list means
// the resource was not flagged.
type Finding struct {
	SubscriptionID   string         `json:"subscription_id"`
	SubscriptionName string         `json:"subscription_name"`
	Resource         azure.Resource `json:"resource"`
	Indicators       []string       `json:"indicators"`
}

// Flagged reports whether any heuristic triggered for this resource
func (f Finding) Flagged() bool {
	return len(f.Indicators) > 0
}

// Findings is a slice of Finding in discovery order
type Findings []Finding

// Flagged returns only the findings with at least one indicator,
// preserving discovery order
func (fs Findings) Flagged() Findings {
	var flagged Findings
	for _, f := range fs {
		if f.Flagged() {
			flagged = append(flagged, f)
		}
	}
	return flagged
}

// CountFlagged returns the number of flagged findings
func (fs Findings) CountFlagged() int {
	count := 0
	for _, f := range fs {
		if f.Flagged() {
			count++
		}
	}
	return count
}
