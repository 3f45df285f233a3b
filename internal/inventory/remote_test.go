package inventory

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/openmined/docsync/internal/filestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	docs []filestore.Document
	err  error // yielded after docs
}

func (f *fakeLister) ListDocuments(context.Context, *filestore.Store) iter.Seq2[filestore.Document, error] {
	return func(yield func(filestore.Document, error) bool) {
		for _, d := range f.docs {
			if !yield(d, nil) {
				return
			}
		}
		if f.err != nil {
			yield(filestore.Document{}, f.err)
		}
	}
}

func TestReadRemote(t *testing.T) {
	lister := &fakeLister{docs: []filestore.Document{
		{ID: "d3", DisplayName: "report.pdf"},
		{ID: "d2", DisplayName: "notes__abcdef01.md", Metadata: map[string]string{filestore.MetaSHA256: "abcdef01ff"}},
		{ID: "d1", DisplayName: "notes__abcdef01.md"},
		{ID: "d4", DisplayName: "my%20file__0123abcd.txt"},
	}}

	docs, err := ReadRemote(context.Background(), lister, &filestore.Store{})
	require.NoError(t, err)
	require.Len(t, docs, 4)

	assert.Equal(t, RemoteDocument{ID: "d4", Identifier: "my%20file__0123abcd.txt", Filename: "my file.txt", Hash: "0123abcd"}, docs[0])
	assert.Equal(t, "d1", docs[1].ID)
	assert.Equal(t, "d2", docs[2].ID)
	assert.Equal(t, "abcdef01ff", docs[2].FullHash)
	assert.Equal(t, "notes.md", docs[2].Filename)
	assert.Equal(t, RemoteDocument{ID: "d3", Identifier: "report.pdf", Filename: "report.pdf", Legacy: true}, docs[3])
}

func TestReadRemote_ErrorDiscardsPartialListing(t *testing.T) {
	boom := errors.New("page 2 failed")
	lister := &fakeLister{
		docs: []filestore.Document{{ID: "d1", DisplayName: "a__00000000.md"}},
		err:  boom,
	}

	docs, err := ReadRemote(context.Background(), lister, &filestore.Store{})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, docs)
}
