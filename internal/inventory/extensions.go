package inventory

import (
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gabriel-vasile/mimetype"
)

// DefaultExtensions are the document types the remote index accepts.
var DefaultExtensions = []string{
	".md", ".txt", ".pdf", ".html", ".htm", ".csv", ".tsv", ".json", ".xml",
	".yaml", ".yml", ".toml", ".rst", ".tex", ".rtf",
	".doc", ".docx", ".odt", ".xls", ".xlsx", ".ppt", ".pptx",
	".py", ".go", ".js", ".ts", ".tsx", ".jsx", ".java", ".c", ".h", ".cc",
	".cpp", ".hpp", ".cs", ".rb", ".rs", ".php", ".sh", ".sql", ".ipynb", ".log",
}

// NewExtensionSet normalizes exts ("MD", ".md" and "md" are the same entry).
func NewExtensionSet(exts []string) mapset.Set[string] {
	set := mapset.NewSetWithSize[string](len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set.Add(ext)
	}
	return set
}

var knownMimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".html": "text/html",
	".htm":  "text/html",
	".csv":  "text/csv",
	".tsv":  "text/tab-separated-values",
	".json": "application/json",
	".xml":  "application/xml",
	".rtf":  "application/rtf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".odt":  "application/vnd.oasis.opendocument.text",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// source and markup formats the index only accepts as plain text
var textLike = mapset.NewSet(
	".md", ".txt", ".yaml", ".yml", ".toml", ".rst", ".tex", ".log", ".ipynb",
	".py", ".go", ".js", ".ts", ".tsx", ".jsx", ".java", ".c", ".h", ".cc",
	".cpp", ".hpp", ".cs", ".rb", ".rs", ".php", ".sh", ".sql",
)

// DetectMimeType picks the upload content type for path: the extension table
// first, then content sniffing.
func DetectMimeType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if textLike.Contains(ext) {
		return "text/plain"
	}
	if mt, ok := knownMimeTypes[ext]; ok {
		return mt
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "application/octet-stream"
	}
	return mt.String()
}
