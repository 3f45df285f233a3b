package gemini

import "time"

// Document is a file imported into a store.
type Document struct {
	Name           string           `json:"name"`
	DisplayName    string           `json:"displayName"`
	CustomMetadata []CustomMetadata `json:"customMetadata,omitempty"`
	CreateTime     time.Time        `json:"createTime"`
	UpdateTime     time.Time        `json:"updateTime"`
	State          string           `json:"state"`
	SizeBytes      string           `json:"sizeBytes,omitempty"`
	MimeType       string           `json:"mimeType,omitempty"`
}

// ListDocumentsResponse is one page of documents.
type ListDocumentsResponse struct {
	Documents     []*Document `json:"documents"`
	NextPageToken string      `json:"nextPageToken"`
}
