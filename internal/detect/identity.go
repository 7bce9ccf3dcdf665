package detect

import "clickscan/internal/azure"

// IdentityDetector flags resources whose creation identity fields carry no
// known automation principal. Automation tooling records itself in
// createdBy/managedBy; a portal click leaves them empty or anonymous.
type IdentityDetector struct{}

func init() {
	if err := DefaultRegistry.Register(&IdentityDetector{}); err != nil {
		panic(err)
	}
}

// Name implements Detector interface
func (d *IdentityDetector) Name() string {
	return "creation-identity"
}

// ArgumentName implements Detector interface
func (d *IdentityDetector) ArgumentName() string {
	return "identity"
}

// Label implements Detector interface
func (d *IdentityDetector) Label() string {
	return "Creation Identity"
}

// Priority implements Detector interface
func (d *IdentityDetector) Priority() int {
	return 1
}

// Detect implements Detector interface
func (d *IdentityDetector) Detect(res azure.Resource, opts Options) []string {
	if containsAutomationPrincipal(res.CreatedBy) ||
		containsAutomationPrincipal(res.ManagedBy) ||
		containsAutomationPrincipal(identityString(res.Identity)) {
		return nil
	}

	if res.CreatedBy == "" && res.ManagedBy == "" {
		return []string{"No creating principal recorded, automation normally populates one"}
	}
	return []string{"Creation identity lacks a known automation principal"}
}
