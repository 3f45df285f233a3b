package gemini

import "time"

// FileSearchStore is a named collection of indexed documents.
type FileSearchStore struct {
	Name                  string    `json:"name"`
	DisplayName           string    `json:"displayName"`
	CreateTime            time.Time `json:"createTime"`
	UpdateTime            time.Time `json:"updateTime"`
	ActiveDocumentsCount  string    `json:"activeDocumentsCount,omitempty"`
	PendingDocumentsCount string    `json:"pendingDocumentsCount,omitempty"`
	FailedDocumentsCount  string    `json:"failedDocumentsCount,omitempty"`
	SizeBytes             string    `json:"sizeBytes,omitempty"`
}

// CreateStoreParams represents the parameters for creating a store
type CreateStoreParams struct {
	DisplayName string `json:"displayName"`
}

// ListStoresResponse is one page of stores.
type ListStoresResponse struct {
	FileSearchStores []*FileSearchStore `json:"fileSearchStores"`
	NextPageToken    string             `json:"nextPageToken"`
}

// ===================================================================================================

// UploadParams represents the parameters for uploading a file into a store
type UploadParams struct {
	StoreName      string
	FilePath       string
	DisplayName    string
	MimeType       string
	CustomMetadata []CustomMetadata
}

type uploadMetadata struct {
	DisplayName    string           `json:"displayName,omitempty"`
	MimeType       string           `json:"mimeType,omitempty"`
	CustomMetadata []CustomMetadata `json:"customMetadata,omitempty"`
}
