package inventory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExtensionSet(t *testing.T) {
	set := NewExtensionSet([]string{"MD", ".txt", " pdf ", ""})
	assert.True(t, set.Contains(".md"))
	assert.True(t, set.Contains(".txt"))
	assert.True(t, set.Contains(".pdf"))
	assert.Equal(t, 3, set.Cardinality())
}

func TestDetectMimeType(t *testing.T) {
	dir := t.TempDir()
	sniffed := filepath.Join(dir, "page.unknownext")
	require.NoError(t, os.WriteFile(sniffed, []byte("%PDF-1.7\n"), 0o644))

	tests := []struct {
		path string
		want string
	}{
		{"README.md", "text/plain"},
		{"main.GO", "text/plain"},
		{"config.yaml", "text/plain"},
		{"report.pdf", "application/pdf"},
		{"table.csv", "text/csv"},
		{"slides.pptx", "application/vnd.openxmlformats-officedocument.presentationml.presentation"},
		{sniffed, "application/pdf"},
		{filepath.Join(dir, "missing.bin"), "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(filepath.Base(tt.path), func(t *testing.T) {
			assert.Equal(t, tt.want, DetectMimeType(tt.path))
		})
	}
}
