// Package output renders findings for the console and exports them to CSV.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"clickscan/internal/detect"

	"github.com/fatih/color"
)

const separatorWidth = 80

// ConsoleReporter prints findings in a human-readable form
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a reporter writing to out
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

// PrintFinding prints one flagged resource with its creation metadata and
// the indicators that triggered
func (r *ConsoleReporter) PrintFinding(f detect.Finding) {
	fmt.Fprintln(r.out, strings.Repeat("─", separatorWidth))
	fmt.Fprintf(r.out, "%s %s\n", color.CyanString("Resource:"), f.Resource.Name)
	fmt.Fprintf(r.out, "  Type: %s\n", f.Resource.Type)
	fmt.Fprintf(r.out, "  Resource Group: %s\n", f.Resource.ResourceGroup)
	fmt.Fprintln(r.out, "  Tags:")
	if len(f.Resource.Tags) == 0 {
		fmt.Fprintln(r.out, "    No tags")
	} else {
		for _, k := range sortedKeys(f.Resource.Tags) {
			fmt.Fprintf(r.out, "    %s = %s\n", k, f.Resource.Tags[k])
		}
	}
	fmt.Fprintf(r.out, "  Created Time: %s\n", orUnknown(f.Resource.CreatedTime))
	fmt.Fprintf(r.out, "  %s\n", color.YellowString("Portal Creation Indicators:"))
	for _, indicator := range f.Indicators {
		fmt.Fprintf(r.out, "    • %s\n", indicator)
	}
}

// PrintSubscriptionHeader announces a subscription before its findings
func (r *ConsoleReporter) PrintSubscriptionHeader(name string) {
	fmt.Fprintf(r.out, "\n%s %s\n", color.BlueString("Analyzing subscription:"), name)
}

// PrintSubscriptionSummary prints per-subscription counts
func (r *ConsoleReporter) PrintSubscriptionSummary(total, flagged int) {
	fmt.Fprintf(r.out, "\nFound %d portal-created resources out of %d total resources in this subscription.\n",
		flagged, total)
	if flagged == 0 {
		fmt.Fprintf(r.out, "%s\n", color.GreenString("No portal-created resources found in this subscription."))
	}
}

// PrintRunSummary prints totals for the whole run
func (r *ConsoleReporter) PrintRunSummary(total, flagged int) {
	fmt.Fprintf(r.out, "\n%s\n", color.New(color.Bold).Sprint("Summary"))
	fmt.Fprintln(r.out, "=======")
	fmt.Fprintf(r.out, "Total resources analyzed: %d\n", total)
	fmt.Fprintf(r.out, "Portal-created resources found: %d\n", flagged)
	if total > 0 {
		fmt.Fprintf(r.out, "Percentage of portal-created resources: %.1f%%\n",
			float64(flagged)/float64(total)*100)
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
