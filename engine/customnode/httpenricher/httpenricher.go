// Package httpenricher implements the "httpEnricher" custom node described
// in SPEC_FULL.md §4.3: a supplemental replacement for the historical
// Enricher/ServiceRef node concept that the upstream scenario model never
// finished wiring up. It executes requests with resty and follows the
// CustomNode contract: one outbound request per invocation, one
// continuation call bound to the decoded JSON response.
package httpenricher

import (
	"context"
	"fmt"
	"time"

	"github.com/Jeffail/gabs/v2"
	"github.com/go-resty/resty/v2"

	"github.com/BDNK1/scenarioengine/engine"
)

// Node implements engine.CustomNode for nodeType "httpEnricher".
type Node struct {
	client *resty.Client
}

// New returns an httpEnricher Node using a resty client with sane request
// timeouts; callers that need different behaviour (retries, auth) can
// build their own client and use NewWithClient.
func New() *Node {
	return NewWithClient(resty.New().SetTimeout(10 * time.Second))
}

// NewWithClient returns an httpEnricher Node backed by the given client,
// e.g. one configured with a fake transport for tests.
func NewWithClient(client *resty.Client) *Node {
	return &Node{client: client}
}

func (n *Node) Run(ctx context.Context, outputVar string, parameters map[string]engine.VarValue, input engine.VarContext, continuation engine.Interpreter) (engine.ScenarioOutput, error) {
	url, ok := parameters["url"].(string)
	if !ok || url == "" {
		return nil, fmt.Errorf("httpEnricher: missing required string parameter \"url\"")
	}
	method := "GET"
	if m, present := parameters["method"]; present {
		methodStr, ok := m.(string)
		if !ok {
			return nil, fmt.Errorf("httpEnricher: parameter \"method\" must be a string")
		}
		method = methodStr
	}

	request := n.client.R().SetContext(ctx)
	if body, present := parameters["body"]; present {
		request = request.SetBody(body)
	}

	resp, err := request.Execute(method, url)
	if err != nil {
		return nil, fmt.Errorf("httpEnricher: request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("httpEnricher: %s returned %s", url, resp.Status())
	}

	decoded, err := gabs.ParseJSON(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("httpEnricher: decoding response body: %w", err)
	}

	out, err := continuation.Run(ctx, input.WithNewVar(outputVar, decoded.Data()))
	if err != nil {
		return nil, err
	}
	return out, nil
}
