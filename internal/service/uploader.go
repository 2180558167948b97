package service

import (
	"context"
	"io"
)

// UploadResult echoes what the blob storage recorded for one object.
type UploadResult struct {
	URL  string
	Name string
	Size int64
}

// FileUploader abstracts the external blob storage collaborator.
type FileUploader interface {
	Upload(ctx context.Context, folder, name string, reader io.Reader, size int64) (UploadResult, error)
}
