package http_request

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/specialistvlad/nodegraph/internal/ctxlog"
	"github.com/specialistvlad/nodegraph/internal/node"
	"github.com/specialistvlad/nodegraph/internal/pin"
	"github.com/specialistvlad/nodegraph/internal/registry"
	"github.com/specialistvlad/nodegraph/internal/types"
	"go.uber.org/multierr"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// Module implements the registry.Module interface for this package.
type Module struct {
	// Client is shared by every HttpRequest node. Nil means
	// NewClient(DefaultTimeout).
	Client *http.Client
}

func (m *Module) Name() string { return "http_request" }

// NewClient returns the pooled client HttpRequest nodes share.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

type requester struct {
	client *http.Client
}

// Compute performs the request when "exec" fires. Transport errors fail the
// node; any HTTP status is a successful compute and fires "then".
func (r requester) Compute(ctx context.Context, in node.Inputs) (node.Outputs, error) {
	var url, method string
	if err := in.Decode("url", &url); err != nil {
		return nil, err
	}
	if err := in.Decode("method", &method); err != nil {
		return nil, err
	}
	method = strings.ToUpper(method)
	logger := ctxlog.FromContext(ctx)
	logger.Info("Making HTTP request", "method", method, "url", url)

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	logger.Info("Received HTTP response", "status", resp.Status)
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return node.Outputs{
		"status_code": resp.StatusCode,
		"body":        string(bodyBytes),
		"then":        true,
	}, nil
}

// Register registers the HttpRequest and UploadFile node types.
func (m *Module) Register(r *registry.Registry) error {
	client := m.Client
	if client == nil {
		client = NewClient(DefaultTimeout)
	}
	return multierr.Combine(
		r.RegisterNode(httpRequest(client)),
		r.RegisterNode(uploadFile(client)),
	)
}

func httpRequest(client *http.Client) registry.NodeType {
	return registry.NodeType{
		Name: "HttpRequest",
		Kind: node.Callable,
		Meta: node.Meta{Category: "Network", Description: "Sends an HTTP request.", Keywords: []string{"http", "fetch"}},
		Pins: []pin.Spec{
			{Name: "exec", Type: types.Exec, Structure: pin.Multi},
			{Name: "url", Type: types.String},
			{Name: "method", Type: types.String, Default: http.MethodGet},
			{Name: "status_code", Type: types.Int, Direction: pin.Output, Transient: true},
			{Name: "body", Type: types.String, Direction: pin.Output, Transient: true},
			{Name: "then", Type: types.Exec, Direction: pin.Output},
		},
		New: func() node.Behavior { return requester{client: client} },
	}
}
