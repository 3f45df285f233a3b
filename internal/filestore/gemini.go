package filestore

import (
	"context"
	"errors"
	"iter"
	"strconv"

	"github.com/openmined/docsync/internal/gemini"
	"github.com/openmined/docsync/internal/retry"
)

// GeminiBackend stores documents in Gemini File Search stores.
type GeminiBackend struct {
	sdk *gemini.SDK
}

func NewGeminiBackend(sdk *gemini.SDK) *GeminiBackend {
	return &GeminiBackend{sdk: sdk}
}

func (g *GeminiBackend) FindStore(ctx context.Context, label string) (*Store, error) {
	params := &gemini.ListParams{PageSize: 20}
	for {
		page, err := g.sdk.Stores.List(ctx, params)
		if err != nil {
			return nil, classify(err)
		}
		for _, s := range page.FileSearchStores {
			if s.DisplayName == label {
				return &Store{Name: s.Name, DisplayName: s.DisplayName}, nil
			}
		}
		if page.NextPageToken == "" {
			return nil, nil
		}
		params.PageToken = page.NextPageToken
	}
}

func (g *GeminiBackend) CreateStore(ctx context.Context, label string) (*Store, error) {
	s, err := g.sdk.Stores.Create(ctx, &gemini.CreateStoreParams{DisplayName: label})
	if err != nil {
		return nil, classify(err)
	}
	return &Store{Name: s.Name, DisplayName: s.DisplayName}, nil
}

func (g *GeminiBackend) DeleteStore(ctx context.Context, store *Store) error {
	return classify(g.sdk.Stores.Delete(ctx, store.Name, true))
}

func (g *GeminiBackend) ListDocuments(ctx context.Context, store *Store) iter.Seq2[Document, error] {
	return func(yield func(Document, error) bool) {
		params := &gemini.ListParams{PageSize: 20}
		for {
			page, err := g.sdk.Documents.List(ctx, store.Name, params)
			if err != nil {
				yield(Document{}, classify(err))
				return
			}
			for _, d := range page.Documents {
				if !yield(toDocument(d), nil) {
					return
				}
			}
			if page.NextPageToken == "" {
				return
			}
			params.PageToken = page.NextPageToken
		}
	}
}

func (g *GeminiBackend) UploadDocument(ctx context.Context, store *Store, req UploadRequest) (*Operation, error) {
	params := &gemini.UploadParams{
		StoreName:   store.Name,
		FilePath:    req.Path,
		DisplayName: req.DisplayName,
		MimeType:    req.MimeType,
	}
	if req.Hash != "" {
		params.CustomMetadata = []gemini.CustomMetadata{{Key: MetaSHA256, StringValue: req.Hash}}
	}

	op, err := g.sdk.Stores.Upload(ctx, params)
	if err != nil {
		return nil, classify(err)
	}
	return &Operation{Name: op.Name, Done: op.Done, Err: op.Err()}, nil
}

func (g *GeminiBackend) GetOperation(ctx context.Context, op *Operation) (*Operation, error) {
	if op.Done {
		return op, nil
	}
	latest, err := g.sdk.Operations.Get(ctx, op.Name)
	if err != nil {
		return nil, classify(err)
	}
	return &Operation{Name: latest.Name, Done: latest.Done, Err: latest.Err()}, nil
}

func (g *GeminiBackend) DeleteDocument(ctx context.Context, id string) error {
	err := g.sdk.Documents.Delete(ctx, id, true)
	if errors.Is(err, gemini.ErrNotFound) {
		return nil
	}
	return classify(err)
}

func (g *GeminiBackend) Query(ctx context.Context, store *Store, text string) (*Answer, error) {
	resp, err := g.sdk.Models.GenerateContent(ctx, &gemini.GenerateParams{
		Prompt:     text,
		StoreNames: []string{store.Name},
	})
	if err != nil {
		return nil, classify(err)
	}
	return &Answer{Text: resp.Text(), Sources: resp.Sources()}, nil
}

func toDocument(d *gemini.Document) Document {
	size, _ := strconv.ParseInt(d.SizeBytes, 10, 64)
	doc := Document{
		ID:          d.Name,
		DisplayName: d.DisplayName,
		MimeType:    d.MimeType,
		State:       d.State,
		SizeBytes:   size,
		UpdateTime:  d.UpdateTime,
	}
	if len(d.CustomMetadata) > 0 {
		doc.Metadata = make(map[string]string, len(d.CustomMetadata))
		for _, m := range d.CustomMetadata {
			doc.Metadata[m.Key] = m.StringValue
		}
	}
	return doc
}

// classify marks API errors that cannot succeed on retry as permanent.
func classify(err error) error {
	var apiErr *gemini.APIError
	if errors.As(err, &apiErr) && !apiErr.Temporary() {
		return retry.Permanent(err)
	}
	return err
}
