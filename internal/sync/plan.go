// Package sync computes and applies the minimal set of remote mutations that
// make a document store mirror a set of local files.
package sync

import (
	"slices"
	"sort"
	"strings"

	"github.com/openmined/docsync/internal/inventory"
)

// Update replaces Remote with Local.
type Update struct {
	Local  inventory.LocalFile
	Remote inventory.RemoteDocument
}

// Plan is the outcome of Diff. Every slice is sorted.
type Plan struct {
	ToAdd     []inventory.LocalFile
	ToUpdate  []Update
	ToDelete  []inventory.RemoteDocument
	Unchanged int
}

func (p *Plan) HasChanges() bool {
	return len(p.ToAdd) > 0 || len(p.ToUpdate) > 0 || len(p.ToDelete) > 0
}

// Deletes returns every document to remove: ToDelete plus the stale side of
// each update.
func (p *Plan) Deletes() []inventory.RemoteDocument {
	out := make([]inventory.RemoteDocument, 0, len(p.ToDelete)+len(p.ToUpdate))
	out = append(out, p.ToDelete...)
	for _, u := range p.ToUpdate {
		out = append(out, u.Remote)
	}
	return out
}

// Uploads returns every file to upload: ToAdd plus the fresh side of each update.
func (p *Plan) Uploads() []inventory.LocalFile {
	out := make([]inventory.LocalFile, 0, len(p.ToAdd)+len(p.ToUpdate))
	out = append(out, p.ToAdd...)
	for _, u := range p.ToUpdate {
		out = append(out, u.Local)
	}
	return out
}

// Diff classifies local files and remote documents. Filename joins the two
// sides; the identifier (and the full hash, when the store kept it) decides
// whether a pair is unchanged. Remote documents left unclaimed are deleted,
// including extra copies of a local filename. The result does not depend on
// input order.
func Diff(local []inventory.LocalFile, remote []inventory.RemoteDocument) *Plan {
	files := slices.Clone(local)
	sortLocal(files)
	docs := slices.Clone(remote)
	sortRemote(docs)

	byFilename := make(map[string][]int, len(docs))
	for i, doc := range docs {
		byFilename[doc.Filename] = append(byFilename[doc.Filename], i)
	}
	claimed := make([]bool, len(docs))

	plan := &Plan{}
	for _, f := range files {
		candidates := byFilename[f.Filename]

		if i, ok := exactMatch(f, docs, candidates, claimed); ok {
			claimed[i] = true
			plan.Unchanged++
			continue
		}

		if i, ok := firstUnclaimed(candidates, claimed); ok {
			claimed[i] = true
			plan.ToUpdate = append(plan.ToUpdate, Update{Local: f, Remote: docs[i]})
			continue
		}

		plan.ToAdd = append(plan.ToAdd, f)
	}

	for i, doc := range docs {
		if !claimed[i] {
			plan.ToDelete = append(plan.ToDelete, doc)
		}
	}

	return plan
}

func exactMatch(f inventory.LocalFile, docs []inventory.RemoteDocument, candidates []int, claimed []bool) (int, bool) {
	for _, i := range candidates {
		if claimed[i] || docs[i].Identifier != f.Identifier {
			continue
		}
		if docs[i].FullHash != "" && !strings.EqualFold(docs[i].FullHash, f.Hash) {
			continue
		}
		return i, true
	}
	return 0, false
}

func firstUnclaimed(candidates []int, claimed []bool) (int, bool) {
	for _, i := range candidates {
		if !claimed[i] {
			return i, true
		}
	}
	return 0, false
}

func sortLocal(files []inventory.LocalFile) {
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Filename != files[j].Filename {
			return files[i].Filename < files[j].Filename
		}
		return files[i].Path < files[j].Path
	})
}

func sortRemote(docs []inventory.RemoteDocument) {
	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].Filename != docs[j].Filename {
			return docs[i].Filename < docs[j].Filename
		}
		if docs[i].Identifier != docs[j].Identifier {
			return docs[i].Identifier < docs[j].Identifier
		}
		return docs[i].ID < docs[j].ID
	})
}
