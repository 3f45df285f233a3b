// Package gemini is a small typed client for the parts of the Gemini REST API
// docsync needs: file search stores, their documents, long-running upload
// operations and grounded content generation.
package gemini

import (
	"github.com/imroc/req/v3"
)

// SDK is the entry point. Each remote resource gets its own API struct.
type SDK struct {
	client     *req.Client
	config     *Config
	Stores     *StoresAPI
	Documents  *DocumentsAPI
	Operations *OperationsAPI
	Models     *ModelsAPI
}

// New validates cfg and returns a ready SDK.
func New(cfg *Config) (*SDK, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := req.C().
		SetBaseURL(cfg.BaseURL).
		SetUserAgent(UserAgent).
		SetCommonHeader(HeaderAPIKey, cfg.APIKey).
		SetTimeout(cfg.Timeout).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal)

	return &SDK{
		client:     client,
		config:     cfg,
		Stores:     newStoresAPI(client),
		Documents:  newDocumentsAPI(client),
		Operations: newOperationsAPI(client),
		Models:     newModelsAPI(client, cfg.Model),
	}, nil
}

// Close releases idle connections.
func (s *SDK) Close() {
	s.client.GetClient().CloseIdleConnections()
}
