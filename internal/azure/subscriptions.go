package azure

import (
	"context"
	"encoding/json"
)

// Subscription is one entry from `az account list`
type Subscription struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	State     string `json:"state"`
	TenantID  string `json:"tenantId"`
	IsDefault bool   `json:"isDefault"`
}

// ListSubscriptions lists subscriptions using a default client
func ListSubscriptions(ctx context.Context) ([]Subscription, error) {
	return NewClient().ListSubscriptions(ctx)
}

// ListSubscriptions returns every subscription visible to the logged-in
// account, in the order the Azure CLI reports them
func (c *Client) ListSubscriptions(ctx context.Context) ([]Subscription, error) {
	out, err := c.runner.Run(ctx, "account", "list", "-o", "json")
	if err != nil {
		return nil, err
	}

	var subs []Subscription
	if err := json.Unmarshal(out, &subs); err != nil {
		return nil, &ParseError{Command: "account list", Err: err}
	}
	return subs, nil
}
