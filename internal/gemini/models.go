package gemini

import (
	"context"
	"errors"

	"github.com/imroc/req/v3"
)

var ErrEmptyPrompt = errors.New("gemini: empty prompt")

type ModelsAPI struct {
	client       *req.Client
	defaultModel string
}

func newModelsAPI(client *req.Client, model string) *ModelsAPI {
	return &ModelsAPI{
		client:       client,
		defaultModel: model,
	}
}

// GenerateContent asks the model a question grounded on the given stores.
func (m *ModelsAPI) GenerateContent(ctx context.Context, params *GenerateParams) (out *GenerateContentResponse, err error) {
	if params.Prompt == "" {
		return nil, ErrEmptyPrompt
	}

	model := params.Model
	if model == "" {
		model = m.defaultModel
	}

	body := &generateContentRequest{
		Contents: []Content{{Role: "user", Parts: []Part{{Text: params.Prompt}}}},
	}
	if len(params.StoreNames) > 0 {
		body.Tools = []Tool{{FileSearch: &FileSearch{FileSearchStoreNames: params.StoreNames}}}
	}

	var errEnv errorEnvelope
	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(body).
		SetSuccessResult(&out).
		SetErrorResult(&errEnv).
		Post("/v1beta/models/" + model + ":generateContent")

	if err := handleAPIError(resp, err, "generate content"); err != nil {
		return nil, err
	}

	return out, nil
}
