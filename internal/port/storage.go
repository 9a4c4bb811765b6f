package port

import "context"

// StoredObject is a document fetched from object storage.
type StoredObject struct {
	Key         string
	Body        []byte
	ContentType string
	Size        int64
}

// ObjectStorage abstracts read access to uploaded documents. Uploading is
// handled by the client application.
type ObjectStorage interface {
	Download(ctx context.Context, bucket, key string) (*StoredObject, error)
}
