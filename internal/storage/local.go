package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Local keeps files on disk under Dir and serves them from BaseURL.
// The handle is the slash-separated path relative to Dir.
type Local struct {
	Dir     string
	BaseURL string
}

func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}

	return &Local{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *Local) Put(ctx context.Context, in PutInput) (*Object, error) {
	if err := CheckAllowed(in.FileName); err != nil {
		return nil, err
	}

	key := path.Join(in.Folder, uuid.NewString()+"."+Extension(in.FileName))

	target, err := l.resolve(key)

	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("creating folder: %w", err)
	}

	f, err := os.Create(target)

	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}

	if _, err := io.Copy(f, contextReader{ctx: ctx, r: in.Body}); err != nil {
		f.Close()
		_ = os.Remove(target)
		return nil, fmt.Errorf("writing file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(target)
		return nil, fmt.Errorf("writing file: %w", err)
	}

	return &Object{URL: l.BaseURL + "/" + key, Handle: key}, nil
}

func (l *Local) Delete(ctx context.Context, handle string) error {
	target, err := l.resolve(handle)

	if err != nil {
		return err
	}

	if err := os.Remove(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}

		return fmt.Errorf("removing file: %w", err)
	}

	return nil
}

func (l *Local) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)

	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}

	return filepath.Join(l.Dir, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}

	return c.r.Read(p)
}
