package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

var (
	ErrDisallowedType = errors.New("file type not allowed")
	ErrNotFound       = errors.New("object not found")
)

// AllowedExtensions lists the accepted upload formats: images, PDF and
// common office documents.
var AllowedExtensions = []string{"jpg", "jpeg", "png", "pdf", "doc", "docx", "xls", "xlsx"}

type PutInput struct {
	Folder      string
	FileName    string
	ContentType string
	Body        io.Reader
	Size        int64
}

// Object is a stored blob. Handle is opaque to callers and is the only
// thing needed to delete it later.
type Object struct {
	URL    string
	Handle string
}

type ObjectStorage interface {
	Put(ctx context.Context, in PutInput) (*Object, error)
	Delete(ctx context.Context, handle string) error
}

// Extension returns the lower-cased extension of fileName without the dot.
func Extension(fileName string) string {
	return strings.TrimPrefix(strings.ToLower(path.Ext(fileName)), ".")
}

func CheckAllowed(fileName string) error {
	ext := Extension(fileName)

	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}

	if ext == "" {
		return fmt.Errorf("%w: %q has no extension", ErrDisallowedType, fileName)
	}

	return fmt.Errorf("%w: .%s", ErrDisallowedType, ext)
}
