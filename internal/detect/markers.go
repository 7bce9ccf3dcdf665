package detect

import (
	"fmt"
	"strings"

	"clickscan/internal/azure"
)

// defaultAutomationTags are tag key/value fragments conventionally applied
// by infrastructure-as-code tooling to mark managed resources
var defaultAutomationTags = []string{
	"terraform",
	"tf-managed",
	"arm-template",
	"bicep",
	"pulumi",
	"cloudformation",
	"managed-by",
	"created-by",
	"provisioner",
	"automation",
	"iac",
}

// automationPrincipals are fragments automation tooling leaves in the
// createdBy/managedBy/identity metadata of resources it provisions
var automationPrincipals = []string{
	"azurerm",
	"terraform",
	"pulumi",
	"bicep",
	"arm-template",
	"iac",
}

// automationTagMarkers merges configured extra markers with the built-in set
func automationTagMarkers(opts Options) []string {
	if len(opts.AutomationMarkers) == 0 {
		return defaultAutomationTags
	}
	markers := make([]string, 0, len(defaultAutomationTags)+len(opts.AutomationMarkers))
	markers = append(markers, defaultAutomationTags...)
	markers = append(markers, opts.AutomationMarkers...)
	return markers
}

// hasAutomationTags reports whether any tag key or value carries an
// automation marker, case-insensitive
func hasAutomationTags(res azure.Resource, opts Options) bool {
	markers := automationTagMarkers(opts)
	for k, v := range res.Tags {
		k = strings.ToLower(k)
		v = strings.ToLower(v)
		for _, marker := range markers {
			if strings.Contains(k, marker) || strings.Contains(v, marker) {
				return true
			}
		}
	}
	return false
}

// containsAutomationPrincipal reports whether a metadata value carries a
// known automation principal fragment
func containsAutomationPrincipal(value string) bool {
	value = strings.ToLower(value)
	if value == "" {
		return false
	}
	for _, marker := range automationPrincipals {
		if strings.Contains(value, marker) {
			return true
		}
	}
	return false
}

// identityString flattens the identity block for marker matching
func identityString(identity map[string]interface{}) string {
	if len(identity) == 0 {
		return ""
	}
	return fmt.Sprintf("%v", identity)
}
