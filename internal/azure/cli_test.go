package azure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner satisfies Runner without executing any process
type fakeRunner struct {
	run         func(args ...string) ([]byte, error)
	interactive func(args ...string) error

	calls            [][]string
	interactiveCalls [][]string
}

func (r *fakeRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	r.calls = append(r.calls, args)
	return r.run(args...)
}

func (r *fakeRunner) RunInteractive(ctx context.Context, args ...string) error {
	r.interactiveCalls = append(r.interactiveCalls, args)
	if r.interactive == nil {
		return nil
	}
	return r.interactive(args...)
}

func TestClassifyStderr(t *testing.T) {
	execErr := errors.New("exit status 1")

	tests := []struct {
		name     string
		stderr   string
		wantAuth bool
	}{
		{
			name:     "please run az login",
			stderr:   "ERROR: Please run 'az login' to setup account.",
			wantAuth: true,
		},
		{
			name:     "aadsts token expired",
			stderr:   "AADSTS700082: The refresh token has expired due to inactivity.",
			wantAuth: true,
		},
		{
			name:     "generic failure",
			stderr:   "ERROR: The subscription could not be found.",
			wantAuth: false,
		},
		{
			name:     "empty stderr",
			stderr:   "",
			wantAuth: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyStderr("account list", tt.stderr, execErr)
			require.Error(t, err)
			assert.Equal(t, tt.wantAuth, IsAuthError(err))
		})
	}
}

func TestIsAuthErrorWrapped(t *testing.T) {
	err := fmt.Errorf("listing failed: %w", &AuthError{Detail: "expired"})
	assert.True(t, IsAuthError(err))

	err = &SubscriptionError{SubscriptionID: "sub-1", Err: &AuthError{}}
	assert.True(t, IsAuthError(err))

	assert.False(t, IsAuthError(errors.New("boom")))
}

func TestListSubscriptions(t *testing.T) {
	runner := &fakeRunner{
		run: func(args ...string) ([]byte, error) {
			return []byte(`[
				{"id": "sub-1", "name": "Production", "state": "Enabled", "tenantId": "t-1", "isDefault": true},
				{"id": "sub-2", "name": "Staging", "state": "Enabled", "tenantId": "t-1", "isDefault": false}
			]`), nil
		},
	}

	client := NewClientWithRunner(runner)
	subs, err := client.ListSubscriptions(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "sub-1", subs[0].ID)
	assert.Equal(t, "Production", subs[0].Name)
	assert.True(t, subs[0].IsDefault)
	assert.Equal(t, "Staging", subs[1].Name)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"account", "list", "-o", "json"}, runner.calls[0])
}

func TestListSubscriptionsMalformed(t *testing.T) {
	runner := &fakeRunner{
		run: func(args ...string) ([]byte, error) {
			return []byte("WARNING: not json at all"), nil
		},
	}

	client := NewClientWithRunner(runner)
	_, err := client.ListSubscriptions(context.Background())
	require.Error(t, err)

	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestListResources(t *testing.T) {
	runner := &fakeRunner{
		run: func(args ...string) ([]byte, error) {
			return []byte(`[
				{
					"id": "/subscriptions/sub-1/resourceGroups/rg-1/providers/Microsoft.Compute/virtualMachines/vm-1",
					"name": "vm-1",
					"type": "Microsoft.Compute/virtualMachines",
					"resourceGroup": "rg-1",
					"tags": {"terraform": "true"},
					"createdTime": "2024-03-01T10:00:00.000000+00:00",
					"createdBy": "client=terraform",
					"managedBy": null,
					"identity": null,
					"provisioningState": "Succeeded"
				},
				{
					"id": "/subscriptions/sub-1/resourceGroups/rg-1/providers/Microsoft.Storage/storageAccounts/st1",
					"name": "st1",
					"type": "Microsoft.Storage/storageAccounts",
					"resourceGroup": "rg-1",
					"tags": null,
					"createdTime": null,
					"createdBy": null,
					"managedBy": null,
					"identity": null,
					"provisioningState": null
				}
			]`), nil
		},
	}

	client := NewClientWithRunner(runner)
	resources, err := client.ListResources(context.Background(), "sub-1")
	require.NoError(t, err)
	require.Len(t, resources, 2)

	assert.Equal(t, "vm-1", resources[0].Name)
	assert.Equal(t, "rg-1", resources[0].ResourceGroup)
	assert.Equal(t, map[string]string{"terraform": "true"}, resources[0].Tags)
	assert.Equal(t, "client=terraform", resources[0].CreatedBy)
	assert.Equal(t, "Succeeded", resources[0].ProvisioningState)

	// Null metadata fields decode to zero values
	assert.Empty(t, resources[1].Tags)
	assert.Empty(t, resources[1].CreatedBy)
	assert.Empty(t, resources[1].ProvisioningState)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, "resource", runner.calls[0][0])
	assert.Contains(t, strings.Join(runner.calls[0], " "), "--subscription sub-1")
}

func TestListResourcesWrapsFailure(t *testing.T) {
	runner := &fakeRunner{
		run: func(args ...string) ([]byte, error) {
			return nil, errors.New("exit status 1")
		},
	}

	client := NewClientWithRunner(runner)
	_, err := client.ListResources(context.Background(), "sub-2")
	require.Error(t, err)

	var subErr *SubscriptionError
	require.True(t, errors.As(err, &subErr))
	assert.Equal(t, "sub-2", subErr.SubscriptionID)
}

func TestListResourcesAuthErrorStaysFatal(t *testing.T) {
	runner := &fakeRunner{
		run: func(args ...string) ([]byte, error) {
			return nil, &AuthError{Detail: "token expired"}
		},
	}

	client := NewClientWithRunner(runner)
	_, err := client.ListResources(context.Background(), "sub-1")
	require.Error(t, err)

	var subErr *SubscriptionError
	assert.False(t, errors.As(err, &subErr), "auth errors must not be downgraded to per-subscription warnings")
	assert.True(t, IsAuthError(err))
}

func TestListResourcesMalformed(t *testing.T) {
	runner := &fakeRunner{
		run: func(args ...string) ([]byte, error) {
			return []byte("{not json"), nil
		},
	}

	client := NewClientWithRunner(runner)
	_, err := client.ListResources(context.Background(), "sub-1")
	require.Error(t, err)

	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
	var subErr *SubscriptionError
	assert.True(t, errors.As(err, &subErr))
}

func TestEnsureLoginAlreadyLoggedIn(t *testing.T) {
	runner := &fakeRunner{
		run: func(args ...string) ([]byte, error) {
			return []byte(`{"id": "sub-1"}`), nil
		},
	}

	client := NewClientWithRunner(runner)
	require.NoError(t, client.EnsureLogin(context.Background()))
	assert.Empty(t, runner.interactiveCalls, "no login attempt when already logged in")
}

func TestEnsureLoginAttemptsLogin(t *testing.T) {
	attempts := 0
	runner := &fakeRunner{
		run: func(args ...string) ([]byte, error) {
			if args[0] == "account" {
				attempts++
				if attempts == 1 {
					return nil, &AuthError{}
				}
				return []byte(`{"id": "sub-1"}`), nil
			}
			return nil, fmt.Errorf("unexpected command %v", args)
		},
	}

	client := NewClientWithRunner(runner)
	require.NoError(t, client.EnsureLogin(context.Background()))
	require.Len(t, runner.interactiveCalls, 1)
	assert.Equal(t, []string{"login"}, runner.interactiveCalls[0])
}

func TestEnsureLoginFails(t *testing.T) {
	runner := &fakeRunner{
		run: func(args ...string) ([]byte, error) {
			return nil, &AuthError{}
		},
		interactive: func(args ...string) error {
			return errors.New("login cancelled")
		},
	}

	client := NewClientWithRunner(runner)
	err := client.EnsureLogin(context.Background())
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
}
