package azure

import (
	"context"
	"encoding/json"
)

// resourceQuery is the JMESPath projection requested from `az resource list`.
// It flattens identity.principalId into createdBy while keeping the full
// identity block for the heuristics.
const resourceQuery = "[].{id:id, name:name, type:type, resourceGroup:resourceGroup, " +
	"tags:tags, createdTime:createdTime, createdBy:identity.principalId, " +
	"managedBy:managedBy, identity:identity, provisioningState:provisioningState}"

// Resource is an immutable snapshot of one Azure resource's creation
// metadata, fetched once per run
type Resource struct {
	ID                string                 `json:"id"`
	Name              string                 `json:"name"`
	Type              string                 `json:"type"`
	ResourceGroup     string                 `json:"resourceGroup"`
	Tags              map[string]string      `json:"tags"`
	CreatedTime       string                 `json:"createdTime"`
	CreatedBy         string                 `json:"createdBy"`
	ManagedBy         string                 `json:"managedBy"`
	Identity          map[string]interface{} `json:"identity"`
	ProvisioningState string                 `json:"provisioningState"`
}

// ListResources returns the metadata snapshot of every resource in the given
// subscription. Failures are wrapped as SubscriptionError unless the CLI
// reports an authentication problem, which stays fatal.
func (c *Client) ListResources(ctx context.Context, subscriptionID string) ([]Resource, error) {
	out, err := c.runner.Run(ctx, "resource", "list",
		"--subscription", subscriptionID,
		"--query", resourceQuery,
		"-o", "json")
	if err != nil {
		if IsAuthError(err) {
			return nil, err
		}
		return nil, &SubscriptionError{SubscriptionID: subscriptionID, Err: err}
	}

	var resources []Resource
	if err := json.Unmarshal(out, &resources); err != nil {
		return nil, &SubscriptionError{
			SubscriptionID: subscriptionID,
			Err:            &ParseError{Command: "resource list", Err: err},
		}
	}
	return resources, nil
}
