package inventory

import (
	"context"
	"iter"
	"sort"

	"github.com/openmined/docsync/internal/filestore"
	"github.com/openmined/docsync/internal/fingerprint"
)

// DocumentLister is the slice of filestore.Backend the remote reader needs.
type DocumentLister interface {
	ListDocuments(ctx context.Context, store *filestore.Store) iter.Seq2[filestore.Document, error]
}

// RemoteDocument is a document already in the store, decoded.
type RemoteDocument struct {
	ID         string
	Identifier string
	Filename   string // raw identifier when Legacy
	Hash       string // truncated hash from the identifier, empty when Legacy
	FullHash   string // from store metadata, may be empty
	Legacy     bool
}

func NewRemoteDocument(doc filestore.Document) RemoteDocument {
	rd := RemoteDocument{
		ID:         doc.ID,
		Identifier: doc.DisplayName,
		FullHash:   doc.Metadata[filestore.MetaSHA256],
	}
	if decoded, ok := fingerprint.Decode(doc.DisplayName); ok {
		rd.Filename = decoded.Filename
		rd.Hash = decoded.Hash
	} else {
		rd.Filename = doc.DisplayName
		rd.Legacy = true
	}
	return rd
}

// ReadRemote lists every document in store. Any listing error discards the
// documents read so far.
func ReadRemote(ctx context.Context, lister DocumentLister, store *filestore.Store) ([]RemoteDocument, error) {
	var docs []RemoteDocument
	for doc, err := range lister.ListDocuments(ctx, store) {
		if err != nil {
			return nil, err
		}
		docs = append(docs, NewRemoteDocument(doc))
	}

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Identifier != docs[j].Identifier {
			return docs[i].Identifier < docs[j].Identifier
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}
