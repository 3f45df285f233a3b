package gemini

import (
	"context"

	"github.com/imroc/req/v3"
)

// Operation is a long-running operation handle.
type Operation struct {
	Name     string         `json:"name"`
	Done     bool           `json:"done"`
	Error    *Status        `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Response map[string]any `json:"response,omitempty"`
}

// Err returns the operation failure, or nil while running or on success.
func (o *Operation) Err() error {
	if o.Error == nil {
		return nil
	}
	return o.Error
}

type OperationsAPI struct {
	client *req.Client
}

func newOperationsAPI(client *req.Client) *OperationsAPI {
	return &OperationsAPI{
		client: client,
	}
}

// Get refreshes an operation by resource name.
func (o *OperationsAPI) Get(ctx context.Context, name string) (op *Operation, err error) {
	var errEnv errorEnvelope
	resp, err := o.client.R().
		SetContext(ctx).
		SetSuccessResult(&op).
		SetErrorResult(&errEnv).
		Get("/v1beta/" + name)

	if err := handleAPIError(resp, err, "operation get"); err != nil {
		return nil, err
	}

	return op, nil
}
