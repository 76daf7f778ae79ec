package port

import "context"

// FileStorage keeps raw files such as uploaded import workbooks
type FileStorage interface {
	Save(ctx context.Context, path string, content []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
	GetFullPath(relativePath string) string
}
