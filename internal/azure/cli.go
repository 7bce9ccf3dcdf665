// Package azure wraps the external Azure CLI binary. All resource metadata
// flows through `az` subprocess invocations; the JSON it prints is the wire
// contract this tool parses. Nothing here talks to Azure directly.
package azure

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"clickscan/internal/config"
	"clickscan/internal/logging"
)

// Runner executes the Azure CLI and returns its stdout. The orchestrator and
// all tests depend on this interface rather than on a real subprocess.
type Runner interface {
	// Run executes az with the given arguments, capturing stdout
	Run(ctx context.Context, args ...string) ([]byte, error)

	// RunInteractive executes az attached to the user's terminal,
	// for flows like `az login` that prompt or open a browser
	RunInteractive(ctx context.Context, args ...string) error
}

// API is the narrow bridge surface the orchestrator consumes
type API interface {
	ListSubscriptions(ctx context.Context) ([]Subscription, error)
	ListResources(ctx context.Context, subscriptionID string) ([]Resource, error)
}

// execRunner invokes the real az binary
type execRunner struct {
	binary string
}

func (r *execRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logging.Debug("Invoking Azure CLI", map[string]interface{}{
		"binary": r.binary,
		"args":   strings.Join(args, " "),
	})

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, &NotInstalledError{Binary: r.binary}
		}
		return nil, classifyStderr(strings.Join(args, " "), stderr.String(), err)
	}

	return stdout.Bytes(), nil
}

func (r *execRunner) RunInteractive(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return &NotInstalledError{Binary: r.binary}
		}
		return classifyStderr(strings.Join(args, " "), "", err)
	}
	return nil
}

// Client is the Azure CLI bridge
type Client struct {
	runner Runner
}

// NewClient creates a bridge around the configured az binary
func NewClient() *Client {
	return &Client{runner: &execRunner{binary: config.Config.AzBinary}}
}

// NewClientWithRunner creates a bridge around a custom runner
func NewClientWithRunner(r Runner) *Client {
	return &Client{runner: r}
}

// CheckCLI verifies the Azure CLI is installed and executable
func (c *Client) CheckCLI(ctx context.Context) error {
	if _, err := c.runner.Run(ctx, "version", "-o", "json"); err != nil {
		return err
	}
	return nil
}

// EnsureLogin verifies an account is logged in, attempting an interactive
// `az login` once if it is not. Returns AuthError when login cannot be
// established.
func (c *Client) EnsureLogin(ctx context.Context) error {
	_, err := c.runner.Run(ctx, "account", "show", "-o", "json")
	if err == nil {
		return nil
	}
	if !IsAuthError(err) {
		return err
	}

	logging.Info("Azure CLI is not logged in, attempting login")
	if loginErr := c.runner.RunInteractive(ctx, "login"); loginErr != nil {
		return &AuthError{Detail: loginErr.Error()}
	}

	if _, err := c.runner.Run(ctx, "account", "show", "-o", "json"); err != nil {
		return err
	}
	return nil
}
