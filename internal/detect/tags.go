package detect

import "clickscan/internal/azure"

// TagsDetector flags resources carrying none of the tags that
// infrastructure-as-code tooling conventionally applies
type TagsDetector struct{}

func init() {
	if err := DefaultRegistry.Register(&TagsDetector{}); err != nil {
		panic(err)
	}
}

// Name implements Detector interface
func (d *TagsDetector) Name() string {
	return "automation-tags"
}

// ArgumentName implements Detector interface
func (d *TagsDetector) ArgumentName() string {
	return "tags"
}

// Label implements Detector interface
func (d *TagsDetector) Label() string {
	return "Automation Tags"
}

// Priority implements Detector interface
func (d *TagsDetector) Priority() int {
	return 2
}

// Detect implements Detector interface
func (d *TagsDetector) Detect(res azure.Resource, opts Options) []string {
	if len(res.Tags) == 0 {
		return []string{"Resource has no tags"}
	}
	if !hasAutomationTags(res, opts) {
		return []string{"Resource lacks automation-related tags"}
	}
	return nil
}
