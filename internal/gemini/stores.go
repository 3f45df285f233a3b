package gemini

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/imroc/req/v3"
)

const (
	v1Stores = "/v1beta/fileSearchStores"
	v1Upload = "/upload/v1beta/"
)

type StoresAPI struct {
	client *req.Client
}

func newStoresAPI(client *req.Client) *StoresAPI {
	return &StoresAPI{
		client: client,
	}
}

// Create creates a new, empty store.
func (s *StoresAPI) Create(ctx context.Context, params *CreateStoreParams) (store *FileSearchStore, err error) {
	var errEnv errorEnvelope
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(params).
		SetSuccessResult(&store).
		SetErrorResult(&errEnv).
		Post(v1Stores)

	if err := handleAPIError(resp, err, "store create"); err != nil {
		return nil, err
	}

	return store, nil
}

// List returns one page of stores.
func (s *StoresAPI) List(ctx context.Context, params *ListParams) (page *ListStoresResponse, err error) {
	var errEnv errorEnvelope
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(params.query()).
		SetSuccessResult(&page).
		SetErrorResult(&errEnv).
		Get(v1Stores)

	if err := handleAPIError(resp, err, "store list"); err != nil {
		return nil, err
	}

	return page, nil
}

// Delete removes a store. With force the store's documents are removed too.
func (s *StoresAPI) Delete(ctx context.Context, name string, force bool) error {
	var errEnv errorEnvelope
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("force", strconv.FormatBool(force)).
		SetErrorResult(&errEnv).
		Delete("/v1beta/" + name)

	return handleAPIError(resp, err, "store delete")
}

// Upload sends a local file to a store using the resumable upload protocol
// and returns the long-running operation that imports it.
func (s *StoresAPI) Upload(ctx context.Context, params *UploadParams) (op *Operation, err error) {
	data, err := os.ReadFile(params.FilePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", params.FilePath, err)
	}

	uploadURL, err := s.startUpload(ctx, params, len(data))
	if err != nil {
		return nil, err
	}

	var errEnv errorEnvelope
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader(headerUploadCommand, "upload, finalize").
		SetHeader(headerUploadOffset, "0").
		SetBodyBytes(data).
		SetSuccessResult(&op).
		SetErrorResult(&errEnv).
		Post(uploadURL)

	if err := handleAPIError(resp, err, "store upload"); err != nil {
		return nil, err
	}

	return op, nil
}

func (s *StoresAPI) startUpload(ctx context.Context, params *UploadParams, size int) (string, error) {
	var errEnv errorEnvelope
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader(headerUploadProtocol, "resumable").
		SetHeader(headerUploadCommand, "start").
		SetHeader(headerUploadContentLength, strconv.Itoa(size)).
		SetHeader(headerUploadContentType, params.MimeType).
		SetBody(&uploadMetadata{
			DisplayName:    params.DisplayName,
			MimeType:       params.MimeType,
			CustomMetadata: params.CustomMetadata,
		}).
		SetErrorResult(&errEnv).
		Post(v1Upload + params.StoreName + ":uploadToFileSearchStore")

	if err := handleAPIError(resp, err, "store upload start"); err != nil {
		return "", err
	}

	uploadURL := resp.Header.Get(headerUploadURL)
	if uploadURL == "" {
		return "", ErrNoUploadURL
	}

	return uploadURL, nil
}
