package detect

import (
	"strings"

	"clickscan/internal/azure"
)

// ProvisioningDetector flags resources that reached a Succeeded provisioning
// state without any automation correlation. Best-effort: `az resource list`
// does not reliably expose provisioning history, so this signal can be
// switched off entirely via scan.provisioning_heuristic.
type ProvisioningDetector struct{}

func init() {
	if err := DefaultRegistry.Register(&ProvisioningDetector{}); err != nil {
		panic(err)
	}
}

// Name implements Detector interface
func (d *ProvisioningDetector) Name() string {
	return "provisioning-state"
}

// ArgumentName implements Detector interface
func (d *ProvisioningDetector) ArgumentName() string {
	return "provisioning"
}

// Label implements Detector interface
func (d *ProvisioningDetector) Label() string {
	return "Provisioning State"
}

// Priority implements Detector interface
func (d *ProvisioningDetector) Priority() int {
	return 3
}

// Detect implements Detector interface
func (d *ProvisioningDetector) Detect(res azure.Resource, opts Options) []string {
	if !strings.EqualFold(res.ProvisioningState, "Succeeded") {
		return nil
	}
	if hasAutomationTags(res, opts) {
		return nil
	}
	return []string{"Resource was provisioned without automation tags"}
}
