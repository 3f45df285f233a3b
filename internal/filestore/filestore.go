// Package filestore is the boundary between the sync engine and a remote
// document store. Backends expose the same small set of capabilities; the
// engine never talks to a concrete API.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"
)

// MetaSHA256 is the metadata key holding a document's full content hash.
const MetaSHA256 = "sha256"

var ErrQueryUnsupported = errors.New("filestore: backend does not support queries")

// Store is a remote namespace of documents.
type Store struct {
	Name        string // stable backend identifier
	DisplayName string // human readable label
}

// Document is a remote document as listed by a backend.
type Document struct {
	ID          string
	DisplayName string
	MimeType    string
	State       string
	SizeBytes   int64
	UpdateTime  time.Time
	Metadata    map[string]string
}

// UploadRequest describes one local file to upload.
type UploadRequest struct {
	Path        string // file to read
	DisplayName string // encoded identifier
	MimeType    string
	Hash        string // full content hash, stored as MetaSHA256
}

// Operation is a handle to an upload that may still be processing remotely.
type Operation struct {
	Name string
	Done bool
	Err  error
}

// Answer is the reply to a free text query.
type Answer struct {
	Text    string
	Sources []string
}

// Backend is everything the sync engine and CLI need from a remote store.
type Backend interface {
	// FindStore returns the store labelled label, or nil if there is none.
	FindStore(ctx context.Context, label string) (*Store, error)
	CreateStore(ctx context.Context, label string) (*Store, error)
	DeleteStore(ctx context.Context, store *Store) error

	// ListDocuments lazily pages through every document in store. Iteration
	// stops at the first error.
	ListDocuments(ctx context.Context, store *Store) iter.Seq2[Document, error]
	UploadDocument(ctx context.Context, store *Store, req UploadRequest) (*Operation, error)
	GetOperation(ctx context.Context, op *Operation) (*Operation, error)
	// DeleteDocument removes a document; deleting a missing document succeeds.
	DeleteDocument(ctx context.Context, id string) error

	Query(ctx context.Context, store *Store, text string) (*Answer, error)
}

// GetOrCreate returns the store labelled label, creating it when missing.
func GetOrCreate(ctx context.Context, backend Backend, label string) (*Store, error) {
	store, err := backend.FindStore(ctx, label)
	if err != nil {
		return nil, fmt.Errorf("find store %q: %w", label, err)
	}
	if store != nil {
		return store, nil
	}

	store, err = backend.CreateStore(ctx, label)
	if err != nil {
		return nil, fmt.Errorf("create store %q: %w", label, err)
	}
	slog.Info("store created", "label", label, "name", store.Name)
	return store, nil
}
