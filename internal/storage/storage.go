package storage

import "io"

type FileInfo struct {
	Filename    string
	ContentType string
	Size        int64
}

// Store holds the screenshot objects an analysis document refers to by
// storage key. A missing object is an expected state; callers render a
// placeholder instead of failing the whole frame.
type Store interface {
	Save(r io.Reader, info FileInfo) (string, error)
	Open(key string) (io.ReadSeekCloser, error)
	Delete(key string) error
}
