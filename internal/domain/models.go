package domain

import (
	"io"
	"time"
)

// StoredImage is an object written under the upload prefix. It is never
// mutated or deleted once stored.
type StoredImage struct {
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
	PublicURL string    `json:"public_url"`
}

// File is a user-selected file handed to the uploader.
type File struct {
	Name   string
	Size   int64
	Reader io.Reader
}

type UploadResult struct {
	Path      string `json:"path"`
	PublicURL string `json:"publicUrl"`
}

type SortOrder string

const (
	SortCreatedAtDesc SortOrder = "created_at_desc"
	SortCreatedAtAsc  SortOrder = "created_at_asc"
)

// ListOptions bounds a listing call. The gallery always uses offset 0 and
// its configured limit.
type ListOptions struct {
	Limit  int
	Offset int
	SortBy SortOrder
}

// ObjectInfo is what the object store reports for a listed object.
type ObjectInfo struct {
	Path      string
	CreatedAt time.Time
	Size      int64
}
