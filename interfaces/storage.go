package interfaces

import "context"

// StorageService is the object-storage collaborator holding uploaded
// report PDFs. File storage itself is outside this core.
type StorageService interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}
