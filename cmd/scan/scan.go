package scan

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"clickscan/internal/azure"
	"clickscan/internal/detect"
	"clickscan/internal/logging"
	"clickscan/internal/output"
)

type scanOptions struct {
	subscriptions  []string // subscription IDs or names to scan
	all            bool     // scan every visible subscription
	outputPath     string   // CSV export path, empty for console only
	detectors      string   // comma-separated detector list
	automationTags string   // extra automation tag markers
	noProgress     bool

	provisioningHeuristic bool // best-effort provisioning-state check
}

// NewScanCmd creates the scan command
func NewScanCmd() *cobra.Command {
	opts := &scanOptions{}

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan Azure resources for portal-created origins",
		Long: `Scan Azure resources and flag the ones whose metadata suggests they were
created manually through the portal rather than by infrastructure-as-code.

When no subscription is specified, an interactive prompt offers every
subscription visible to the logged-in account plus an "all subscriptions"
entry. Per-subscription failures are reported as warnings and the run
continues with the remaining subscriptions.

Examples:
  # Interactive subscription selection, console report
  clickscan scan

  # Scan every subscription and export flagged resources to CSV
  clickscan scan --all --output results.csv

  # Scan one subscription with only the tag heuristic
  clickscan scan --subscription "Production" --detectors tags`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.all && len(opts.subscriptions) > 0 {
				return fmt.Errorf("--all and --subscription are mutually exclusive")
			}

			// Flags win over config file values
			if opts.outputPath == "" {
				opts.outputPath = viper.GetString("scan.output")
			}
			if opts.detectors == "" {
				opts.detectors = viper.GetString("scan.detectors")
			}
			if opts.automationTags == "" {
				opts.automationTags = viper.GetString("scan.automation_tags")
			}
			if cmd.Flags().Changed("provisioning-heuristic") {
				viper.Set("scan.provisioning_heuristic", opts.provisioningHeuristic)
			}

			client := azure.NewClient()
			ctx := cmd.Context()
			if err := client.CheckCLI(ctx); err != nil {
				return err
			}
			if err := client.EnsureLogin(ctx); err != nil {
				return err
			}

			return runScan(cmd, opts, client)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.subscriptions, "subscription", "s", nil, "Subscription ID or name to scan (repeatable)")
	cmd.Flags().BoolVar(&opts.all, "all", false, "Scan all subscriptions visible to the logged-in account")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Export flagged resources to the given CSV file")
	cmd.Flags().StringVar(&opts.detectors, "detectors", "", "Comma-separated list of detectors to run (default: all)")
	cmd.Flags().StringVar(&opts.automationTags, "automation-tags", "", "Extra automation tag markers, comma-separated")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Disable the per-subscription progress bar")
	cmd.Flags().BoolVar(&opts.provisioningHeuristic, "provisioning-heuristic", true, "Include the best-effort provisioning-state check in the default detector set")

	return cmd
}

// getDetectors resolves the detector list from a comma-separated string,
// defaulting to every registered detector. The best-effort provisioning
// heuristic is dropped from the default set when disabled in config.
func getDetectors(detectorList string) ([]detect.Detector, error) {
	if detectorList == "" {
		detectors := detect.DefaultRegistry.Detectors()
		if len(detectors) == 0 {
			return nil, fmt.Errorf("no detectors available in registry")
		}

		if viper.IsSet("scan.provisioning_heuristic") && !viper.GetBool("scan.provisioning_heuristic") {
			kept := detectors[:0]
			for _, d := range detectors {
				if d.ArgumentName() != "provisioning" {
					kept = append(kept, d)
				}
			}
			detectors = kept
		}
		return detectors, nil
	}

	var detectors []detect.Detector
	for _, name := range strings.Split(detectorList, ",") {
		d, err := detect.DefaultRegistry.Get(strings.TrimSpace(name))
		if err != nil {
			return nil, fmt.Errorf("failed to get detector '%s': %w", name, err)
		}
		detectors = append(detectors, d)
	}
	return detectors, nil
}

// splitList parses a comma-separated flag value into trimmed entries
func splitList(list string) []string {
	if list == "" {
		return nil
	}
	var entries []string
	for _, entry := range strings.Split(list, ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			entries = append(entries, strings.ToLower(entry))
		}
	}
	return entries
}

// selectSubscriptions resolves the target subscriptions from flags, falling
// back to the interactive prompt
func selectSubscriptions(subs []azure.Subscription, opts *scanOptions, in io.Reader, out io.Writer) ([]azure.Subscription, error) {
	if opts.all {
		return subs, nil
	}

	if len(opts.subscriptions) > 0 {
		var selected []azure.Subscription
		for _, wanted := range opts.subscriptions {
			found := false
			for _, sub := range subs {
				if sub.ID == wanted || strings.EqualFold(sub.Name, wanted) {
					selected = append(selected, sub)
					found = true
					break
				}
			}
			if !found {
				return nil, fmt.Errorf("subscription '%s' not found", wanted)
			}
		}
		return selected, nil
	}

	return promptSubscription(subs, in, out)
}

// promptSubscription asks the user to pick one subscription or all of them,
// re-prompting until the choice is valid
func promptSubscription(subs []azure.Subscription, in io.Reader, out io.Writer) ([]azure.Subscription, error) {
	fmt.Fprintln(out, "\nAvailable Subscriptions:")
	for i, sub := range subs {
		fmt.Fprintf(out, "  %d: %s\n", i+1, sub.Name)
	}
	fmt.Fprintf(out, "  %d: Evaluate all subscriptions\n", len(subs)+1)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nSelect a subscription (enter the number): ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("failed to read selection: %w", err)
			}
			return nil, fmt.Errorf("no selection made")
		}

		choice, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err == nil {
			if choice == len(subs)+1 {
				return subs, nil
			}
			if choice >= 1 && choice <= len(subs) {
				return subs[choice-1 : choice], nil
			}
		}
		fmt.Fprintln(out, "Invalid choice. Please try again.")
	}
}

// runScan drives the whole run: subscription selection, sequential resource
// enumeration, heuristic evaluation, reporting, and optional CSV export.
// One subscription and one resource are processed at a time.
func runScan(cmd *cobra.Command, opts *scanOptions, client azure.API) error {
	detectors, err := getDetectors(opts.detectors)
	if err != nil {
		return err
	}
	engine := detect.NewEngine(detectors, detect.Options{
		AutomationMarkers: splitList(opts.automationTags),
	})

	ctx := cmd.Context()
	subs, err := client.ListSubscriptions(ctx)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		logging.Warn("No subscriptions visible to the logged-in account", nil)
		return nil
	}

	selected, err := selectSubscriptions(subs, opts, os.Stdin, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	// An unwritable output path fails the run before any subscription is
	// queried
	var csvWriter *output.Writer
	if opts.outputPath != "" {
		csvWriter, err = output.NewWriter(opts.outputPath)
		if err != nil {
			return err
		}
		defer csvWriter.Close()
	}

	reporter := output.NewConsoleReporter(cmd.OutOrStdout())

	var detectorLabels []string
	for _, d := range detectors {
		detectorLabels = append(detectorLabels, d.Label())
	}
	var logSubs []logging.Subscription
	for _, sub := range selected {
		logSubs = append(logSubs, logging.Subscription{ID: sub.ID, Name: sub.Name})
	}
	logging.ScanStart(detectorLabels, logSubs)

	totalResources := 0
	totalFlagged := 0

	for _, sub := range selected {
		logging.SubscriptionStart(sub.ID, sub.Name)

		resources, err := client.ListResources(ctx, sub.ID)
		if err != nil {
			if azure.IsAuthError(err) {
				return err
			}
			logging.SubscriptionError(sub.ID, sub.Name, err)
			continue
		}

		reporter.PrintSubscriptionHeader(sub.Name)

		var bar *progressbar.ProgressBar
		if !opts.noProgress && len(resources) > 0 {
			bar = progressbar.NewOptions(len(resources),
				progressbar.OptionSetDescription("Evaluating resources..."),
				progressbar.OptionSetWidth(15),
				progressbar.OptionShowCount(),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(cmd.OutOrStdout())
				}),
			)
		}

		findings := make(detect.Findings, 0, len(resources))
		for _, res := range resources {
			findings = append(findings, detect.Finding{
				SubscriptionID:   sub.ID,
				SubscriptionName: sub.Name,
				Resource:         res,
				Indicators:       engine.Evaluate(res),
			})
			if bar != nil {
				if err := bar.Add(1); err != nil {
					logging.Debug("Failed to update progress bar", map[string]interface{}{
						"error": err.Error(),
					})
				}
			}
		}

		flagged := findings.Flagged()
		for _, f := range flagged {
			reporter.PrintFinding(f)
		}
		reporter.PrintSubscriptionSummary(len(findings), len(flagged))

		if csvWriter != nil {
			if err := csvWriter.Write(findings); err != nil {
				return err
			}
		}

		totalResources += len(findings)
		totalFlagged += len(flagged)
		logging.SubscriptionComplete(sub.ID, sub.Name, len(findings), len(flagged))
	}

	reporter.PrintRunSummary(totalResources, totalFlagged)
	logging.ScanComplete(totalResources, totalFlagged)

	if csvWriter != nil {
		if err := csvWriter.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nResults exported to %s\n", csvWriter.Path())
	}

	return nil
}
