package scan

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clickscan/internal/azure"
)

func init() {
	color.NoColor = true
}

// fakeAPI satisfies azure.API without invoking any external process
type fakeAPI struct {
	subscriptions []azure.Subscription
	subsErr       error
	resources     map[string][]azure.Resource
	resourceErrs  map[string]error
}

func (f *fakeAPI) ListSubscriptions(ctx context.Context) ([]azure.Subscription, error) {
	return f.subscriptions, f.subsErr
}

func (f *fakeAPI) ListResources(ctx context.Context, subscriptionID string) ([]azure.Resource, error) {
	if err, ok := f.resourceErrs[subscriptionID]; ok {
		return nil, err
	}
	return f.resources[subscriptionID], nil
}

// newTestCmd builds a command shell for runScan with captured output
func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetContext(context.Background())
	return cmd, buf
}

func manualResource(name string) azure.Resource {
	return azure.Resource{
		Name:          name,
		Type:          "Microsoft.Compute/virtualMachines",
		ResourceGroup: "rg-1",
	}
}

func terraformResource(name string) azure.Resource {
	return azure.Resource{
		Name:          name,
		Type:          "Microsoft.Compute/virtualMachines",
		ResourceGroup: "rg-1",
		Tags:          map[string]string{"terraform": "true"},
		CreatedBy:     "client=terraform",
	}
}

func TestNewScanCmd(t *testing.T) {
	cmd := NewScanCmd()
	assert.Equal(t, "scan", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	for _, flag := range []string{"subscription", "all", "output", "detectors", "automation-tags", "no-progress", "provisioning-heuristic"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "missing flag %s", flag)
	}
}

func TestProvisioningHeuristicFlag(t *testing.T) {
	defer viper.Set("scan.provisioning_heuristic", true)

	cmd := NewScanCmd()
	require.NoError(t, cmd.Flags().Set("provisioning-heuristic", "false"))

	// The flag feeds the config key that getDetectors consults
	if cmd.Flags().Changed("provisioning-heuristic") {
		value, err := cmd.Flags().GetBool("provisioning-heuristic")
		require.NoError(t, err)
		viper.Set("scan.provisioning_heuristic", value)
	}

	detectors, err := getDetectors("")
	require.NoError(t, err)
	for _, d := range detectors {
		assert.NotEqual(t, "provisioning", d.ArgumentName())
	}
}

func TestGetDetectorsDefault(t *testing.T) {
	detectors, err := getDetectors("")
	require.NoError(t, err)

	var names []string
	for _, d := range detectors {
		names = append(names, d.ArgumentName())
	}
	assert.Equal(t, []string{"identity", "tags", "provisioning"}, names)
}

func TestGetDetectorsExplicit(t *testing.T) {
	detectors, err := getDetectors("tags, identity")
	require.NoError(t, err)
	require.Len(t, detectors, 2)

	_, err = getDetectors("tags,nonsense")
	assert.Error(t, err)
}

func TestGetDetectorsProvisioningDisabled(t *testing.T) {
	viper.Set("scan.provisioning_heuristic", false)
	defer viper.Set("scan.provisioning_heuristic", true)

	detectors, err := getDetectors("")
	require.NoError(t, err)

	for _, d := range detectors {
		assert.NotEqual(t, "provisioning", d.ArgumentName())
	}
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"ansible", "chef"}, splitList("Ansible, chef ,"))
}

func TestSelectSubscriptionsAll(t *testing.T) {
	subs := []azure.Subscription{{ID: "sub-1"}, {ID: "sub-2"}}
	selected, err := selectSubscriptions(subs, &scanOptions{all: true}, strings.NewReader(""), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, subs, selected)
}

func TestSelectSubscriptionsByIDAndName(t *testing.T) {
	subs := []azure.Subscription{
		{ID: "sub-1", Name: "Production"},
		{ID: "sub-2", Name: "Staging"},
	}

	selected, err := selectSubscriptions(subs, &scanOptions{subscriptions: []string{"staging", "sub-1"}}, strings.NewReader(""), &bytes.Buffer{})
	require.NoError(t, err)
	require.Len(t, selected, 2)
	assert.Equal(t, "sub-2", selected[0].ID)
	assert.Equal(t, "sub-1", selected[1].ID)

	_, err = selectSubscriptions(subs, &scanOptions{subscriptions: []string{"missing"}}, strings.NewReader(""), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestPromptSubscription(t *testing.T) {
	subs := []azure.Subscription{
		{ID: "sub-1", Name: "Production"},
		{ID: "sub-2", Name: "Staging"},
	}

	tests := []struct {
		name    string
		input   string
		wantIDs []string
		wantErr bool
	}{
		{
			name:    "single selection",
			input:   "2\n",
			wantIDs: []string{"sub-2"},
		},
		{
			name:    "all subscriptions entry",
			input:   "3\n",
			wantIDs: []string{"sub-1", "sub-2"},
		},
		{
			name:    "invalid then valid",
			input:   "nope\n99\n1\n",
			wantIDs: []string{"sub-1"},
		},
		{
			name:    "input exhausted",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			selected, err := promptSubscription(subs, strings.NewReader(tt.input), &out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			var ids []string
			for _, sub := range selected {
				ids = append(ids, sub.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Contains(t, out.String(), "Evaluate all subscriptions")
		})
	}
}

func TestRunScanReportsFindings(t *testing.T) {
	api := &fakeAPI{
		subscriptions: []azure.Subscription{{ID: "sub-1", Name: "Production"}},
		resources: map[string][]azure.Resource{
			"sub-1": {manualResource("vm-manual"), terraformResource("vm-managed")},
		},
	}

	cmd, buf := newTestCmd()
	err := runScan(cmd, &scanOptions{all: true, noProgress: true}, api)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Resource: vm-manual")
	assert.NotContains(t, out, "Resource: vm-managed")
	assert.Contains(t, out, "Found 1 portal-created resources out of 2 total resources")
	assert.Contains(t, out, "Total resources analyzed: 2")
	assert.Contains(t, out, "Portal-created resources found: 1")
}

func TestRunScanContinuesPastFailingSubscription(t *testing.T) {
	api := &fakeAPI{
		subscriptions: []azure.Subscription{
			{ID: "sub-a", Name: "Alpha"},
			{ID: "sub-b", Name: "Beta"},
		},
		resources: map[string][]azure.Resource{
			"sub-a": {manualResource("vm-a")},
		},
		resourceErrs: map[string]error{
			"sub-b": &azure.SubscriptionError{SubscriptionID: "sub-b", Err: errors.New("listing failed")},
		},
	}

	cmd, buf := newTestCmd()
	err := runScan(cmd, &scanOptions{all: true, noProgress: true}, api)
	require.NoError(t, err, "a failing subscription must not fail the run")

	out := buf.String()
	assert.Contains(t, out, "Resource: vm-a")
	assert.Contains(t, out, "Total resources analyzed: 1")
}

func TestRunScanAuthErrorIsFatal(t *testing.T) {
	api := &fakeAPI{
		subscriptions: []azure.Subscription{{ID: "sub-1", Name: "Production"}},
		resourceErrs: map[string]error{
			"sub-1": &azure.AuthError{Detail: "token expired"},
		},
	}

	cmd, _ := newTestCmd()
	err := runScan(cmd, &scanOptions{all: true, noProgress: true}, api)
	require.Error(t, err)
	assert.True(t, azure.IsAuthError(err))
}

func TestRunScanSubscriptionListingAuthErrorIsFatal(t *testing.T) {
	api := &fakeAPI{subsErr: &azure.AuthError{}}

	cmd, _ := newTestCmd()
	err := runScan(cmd, &scanOptions{all: true, noProgress: true}, api)
	require.Error(t, err)
	assert.True(t, azure.IsAuthError(err))
}

func TestRunScanNoSubscriptions(t *testing.T) {
	api := &fakeAPI{}

	cmd, _ := newTestCmd()
	assert.NoError(t, runScan(cmd, &scanOptions{all: true, noProgress: true}, api))
}

func TestRunScanExportsCSV(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "results.csv")

	api := &fakeAPI{
		subscriptions: []azure.Subscription{
			{ID: "sub-a", Name: "Alpha"},
			{ID: "sub-b", Name: "Beta"},
		},
		resources: map[string][]azure.Resource{
			"sub-a": {manualResource("vm-a"), terraformResource("vm-ok")},
			"sub-b": {manualResource("vm-b")},
		},
	}

	cmd, buf := newTestCmd()
	err := runScan(cmd, &scanOptions{all: true, noProgress: true, outputPath: outputPath}, api)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Results exported to "+outputPath)

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per flagged resource")
	assert.Equal(t, "Alpha", rows[1][0])
	assert.Equal(t, "vm-a", rows[1][2])
	assert.Equal(t, "Beta", rows[2][0])
	assert.Equal(t, "vm-b", rows[2][2])
}

func TestRunScanClosesCSVOnAuthError(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "results.csv")

	api := &fakeAPI{
		subscriptions: []azure.Subscription{
			{ID: "sub-a", Name: "Alpha"},
			{ID: "sub-b", Name: "Beta"},
		},
		resources: map[string][]azure.Resource{
			"sub-a": {manualResource("vm-a")},
		},
		resourceErrs: map[string]error{
			"sub-b": &azure.AuthError{Detail: "token expired"},
		},
	}

	cmd, _ := newTestCmd()
	err := runScan(cmd, &scanOptions{all: true, noProgress: true, outputPath: outputPath}, api)
	require.Error(t, err)
	assert.True(t, azure.IsAuthError(err))

	// Rows written before the fatal error are flushed to disk
	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "vm-a", rows[1][2])
}

func TestRunScanUnwritableOutputIsFatal(t *testing.T) {
	api := &fakeAPI{
		subscriptions: []azure.Subscription{{ID: "sub-1", Name: "Production"}},
	}

	cmd, _ := newTestCmd()
	opts := &scanOptions{
		all:        true,
		noProgress: true,
		outputPath: filepath.Join(t.TempDir(), "missing", "results.csv"),
	}
	assert.Error(t, runScan(cmd, opts, api))
}
