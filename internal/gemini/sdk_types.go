package gemini

import (
	"fmt"
	"runtime"

	"github.com/openmined/docsync/internal/version"
)

const (
	HeaderAPIKey = "x-goog-api-key"

	headerUploadProtocol      = "X-Goog-Upload-Protocol"
	headerUploadCommand       = "X-Goog-Upload-Command"
	headerUploadURL           = "X-Goog-Upload-URL"
	headerUploadOffset        = "X-Goog-Upload-Offset"
	headerUploadContentLength = "X-Goog-Upload-Header-Content-Length"
	headerUploadContentType   = "X-Goog-Upload-Header-Content-Type"

	// maxPageSize is the largest page the documents endpoint accepts.
	maxPageSize = 20
)

var UserAgent = fmt.Sprintf("docsync/%s (%s; %s; %s)", version.Version, version.Revision, runtime.GOOS, runtime.GOARCH)

// ListParams are the pagination parameters shared by list endpoints.
type ListParams struct {
	PageSize  int
	PageToken string
}

func (p *ListParams) query() map[string]string {
	q := map[string]string{}
	if p == nil {
		return q
	}
	if p.PageSize > 0 {
		q["pageSize"] = fmt.Sprint(min(p.PageSize, maxPageSize))
	}
	if p.PageToken != "" {
		q["pageToken"] = p.PageToken
	}
	return q
}

// CustomMetadata is a user supplied key/value attached to a document.
type CustomMetadata struct {
	Key          string   `json:"key"`
	StringValue  string   `json:"stringValue,omitempty"`
	NumericValue *float64 `json:"numericValue,omitempty"`
}

// Status is the google.rpc.Status carried by failed operations.
type Status struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (s *Status) Error() string {
	return fmt.Sprintf("operation error: %d - %s", s.Code, s.Message)
}
