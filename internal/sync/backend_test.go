package sync

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/openmined/docsync/internal/filestore"
	"github.com/openmined/docsync/internal/fingerprint"
	"github.com/openmined/docsync/internal/inventory"
	"github.com/openmined/docsync/internal/retry"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

type memDoc struct {
	store string
	doc   filestore.Document
}

// memBackend is an in-memory filestore.Backend that can inject failures.
type memBackend struct {
	mu     sync.Mutex
	stores map[string]*filestore.Store
	docs   map[string]memDoc
	nextID int
	seq    int

	// injected behaviour, keyed by document identifier
	uploadFailures map[string]int   // transient failures before success
	opFailures     map[string]error // operation finishes with this error
	deleteErrors   map[string]error // keyed by document id
	pollsUntilDone int
	neverDone      bool
	pollErrors     int // transient errors returned by GetOperation first
	uploadDelay    time.Duration

	events        []string
	uploadAttempt map[string]int
	uploadedPaths []string
	pathExisted   []bool
	startSeq      map[string]int
	endSeq        map[string]int
	inflight      int
	maxInflight   int
	polls         map[string]int
}

func newMemBackend() *memBackend {
	return &memBackend{
		stores:         map[string]*filestore.Store{},
		docs:           map[string]memDoc{},
		uploadFailures: map[string]int{},
		opFailures:     map[string]error{},
		deleteErrors:   map[string]error{},
		uploadAttempt:  map[string]int{},
		startSeq:       map[string]int{},
		endSeq:         map[string]int{},
		polls:          map[string]int{},
	}
}

func (m *memBackend) FindStore(_ context.Context, label string) (*filestore.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stores[label], nil
}

func (m *memBackend) CreateStore(_ context.Context, label string) (*filestore.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &filestore.Store{Name: "stores/" + label, DisplayName: label}
	m.stores[label] = s
	return s, nil
}

func (m *memBackend) DeleteStore(_ context.Context, store *filestore.Store) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, store.DisplayName)
	for id, d := range m.docs {
		if d.store == store.Name {
			delete(m.docs, id)
		}
	}
	return nil
}

func (m *memBackend) ListDocuments(_ context.Context, store *filestore.Store) iter.Seq2[filestore.Document, error] {
	return func(yield func(filestore.Document, error) bool) {
		for _, d := range m.storeDocs(store.Name) {
			if !yield(d, nil) {
				return
			}
		}
	}
}

func (m *memBackend) storeDocs(storeName string) []filestore.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []filestore.Document
	for _, d := range m.docs {
		if d.store == storeName {
			out = append(out, d.doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memBackend) addDoc(storeName, identifier string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := fmt.Sprintf("doc-%03d", m.nextID)
	m.docs[id] = memDoc{store: storeName, doc: filestore.Document{ID: id, DisplayName: identifier}}
	return id
}

func (m *memBackend) UploadDocument(_ context.Context, store *filestore.Store, req filestore.UploadRequest) (*filestore.Operation, error) {
	m.mu.Lock()
	m.seq++
	m.startSeq[req.DisplayName] = m.seq
	m.events = append(m.events, "upload:"+req.DisplayName)
	m.uploadAttempt[req.DisplayName]++
	m.uploadedPaths = append(m.uploadedPaths, req.Path)
	_, statErr := os.Stat(req.Path)
	m.pathExisted = append(m.pathExisted, statErr == nil)
	m.inflight++
	m.maxInflight = max(m.maxInflight, m.inflight)
	m.mu.Unlock()

	time.Sleep(m.uploadDelay)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inflight--
	m.seq++
	m.endSeq[req.DisplayName] = m.seq

	if m.uploadFailures[req.DisplayName] > 0 {
		m.uploadFailures[req.DisplayName]--
		return nil, errTransient
	}

	opName := "operations/" + req.DisplayName
	if err := m.opFailures[req.DisplayName]; err != nil {
		return &filestore.Operation{Name: opName, Done: true, Err: err}, nil
	}

	m.nextID++
	id := fmt.Sprintf("doc-%03d", m.nextID)
	m.docs[id] = memDoc{store: store.Name, doc: filestore.Document{
		ID:          id,
		DisplayName: req.DisplayName,
		MimeType:    req.MimeType,
		Metadata:    map[string]string{filestore.MetaSHA256: req.Hash},
	}}
	return &filestore.Operation{Name: opName, Done: m.pollsUntilDone == 0 && !m.neverDone}, nil
}

func (m *memBackend) GetOperation(_ context.Context, op *filestore.Operation) (*filestore.Operation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pollErrors > 0 {
		m.pollErrors--
		return nil, errTransient
	}
	m.polls[op.Name]++
	done := !m.neverDone && m.polls[op.Name] >= m.pollsUntilDone
	return &filestore.Operation{Name: op.Name, Done: done}, nil
}

func (m *memBackend) DeleteDocument(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, "delete:"+id)
	if err := m.deleteErrors[id]; err != nil {
		return err
	}
	delete(m.docs, id)
	return nil
}

func (m *memBackend) Query(context.Context, *filestore.Store, string) (*filestore.Answer, error) {
	return nil, filestore.ErrQueryUnsupported
}

var _ filestore.Backend = (*memBackend)(nil)

func testExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		Concurrency:  DefaultConcurrency,
		Retry:        retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond},
		PollInterval: time.Millisecond,
		PollTimeout:  200 * time.Millisecond,
	}
}

// writeLocal creates name under dir and returns its inventory entry.
func writeLocal(t *testing.T, dir, name, content string) inventory.LocalFile {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	hash := fingerprint.Sum([]byte(content))
	return inventory.LocalFile{
		Path:       path,
		Filename:   name,
		Hash:       hash,
		Identifier: fingerprint.Encode(name, hash),
		Size:       int64(len(content)),
	}
}
