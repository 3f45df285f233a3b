package gemini

import (
	"context"
	"strconv"

	"github.com/imroc/req/v3"
)

type DocumentsAPI struct {
	client *req.Client
}

func newDocumentsAPI(client *req.Client) *DocumentsAPI {
	return &DocumentsAPI{
		client: client,
	}
}

// List returns one page of the documents in a store.
func (d *DocumentsAPI) List(ctx context.Context, storeName string, params *ListParams) (page *ListDocumentsResponse, err error) {
	var errEnv errorEnvelope
	resp, err := d.client.R().
		SetContext(ctx).
		SetQueryParams(params.query()).
		SetSuccessResult(&page).
		SetErrorResult(&errEnv).
		Get("/v1beta/" + storeName + "/documents")

	if err := handleAPIError(resp, err, "document list"); err != nil {
		return nil, err
	}

	return page, nil
}

// Delete removes a document by resource name. With force its chunks are removed too.
func (d *DocumentsAPI) Delete(ctx context.Context, name string, force bool) error {
	var errEnv errorEnvelope
	resp, err := d.client.R().
		SetContext(ctx).
		SetQueryParam("force", strconv.FormatBool(force)).
		SetErrorResult(&errEnv).
		Delete("/v1beta/" + name)

	return handleAPIError(resp, err, "document delete")
}
