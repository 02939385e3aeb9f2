// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sharedfile

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Ownership selects whether a TempFile removes the underlying file when it
// is closed.
type Ownership uint8

const (
	// Owned removes the file on Close.
	Owned Ownership = iota
	// Borrowed leaves the file in place on Close.
	Borrowed
)

// TempFile is the default Backing: a file on disk held open by an anchor
// handle, with an additional *os.File opened per view so every reader and
// the writer own their own file offset.
type TempFile struct {
	anchor    *os.File
	path      string
	ownership Ownership
}

// NewTempFile creates an Owned TempFile in the default directory for
// temporary files.
func NewTempFile() (*TempFile, error) {
	return NewTempFileIn(os.TempDir())
}

// NewTempFileIn creates an Owned TempFile in dir. The file name is a fresh
// UUID, so concurrent callers never collide.
func NewTempFileIn(dir string) (*TempFile, error) {
	path := filepath.Join(dir, uuid.NewString())
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, err
	}
	return &TempFile{anchor: f, path: path, ownership: Owned}, nil
}

// FromExistingFile wraps the pre-existing file at path. With Owned the file
// is removed when the TempFile is closed; with Borrowed it is left behind.
func FromExistingFile(path string, ownership Ownership) (*TempFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o600)
	if err != nil {
		return nil, err
	}
	return &TempFile{anchor: f, path: path, ownership: ownership}, nil
}

// FilePath returns the path of the underlying file.
func (t *TempFile) FilePath() string { return t.path }

// OpenRO opens a new read-only view positioned at offset 0.
func (t *TempFile) OpenRO() (FileView, error) {
	f, err := os.OpenFile(t.path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	return osView{f}, nil
}

// OpenRW opens a new read-write view positioned at offset 0.
func (t *TempFile) OpenRW() (FileView, error) {
	f, err := os.OpenFile(t.path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return osView{f}, nil
}

// SyncData commits file data to stable storage. The kernel page cache is
// shared across all views of the file, so syncing through the anchor handle
// covers bytes written through any view.
func (t *TempFile) SyncData() error { return t.anchor.Sync() }

// SyncAll commits file data and metadata to stable storage.
func (t *TempFile) SyncAll() error { return t.anchor.Sync() }

// Close closes the anchor handle and, for Owned files, removes the file
// from disk. Views opened earlier stay usable until they are closed.
func (t *TempFile) Close() error {
	err := t.anchor.Close()
	if t.ownership == Owned {
		if rerr := os.Remove(t.path); err == nil {
			err = rerr
		}
	}
	return err
}

// osView adapts an *os.File to FileView. Writes go straight to the kernel,
// so Flush has nothing to push down.
type osView struct {
	f *os.File
}

func (v osView) Read(p []byte) (int, error)  { return v.f.Read(p) }
func (v osView) Write(p []byte) (int, error) { return v.f.Write(p) }

func (v osView) Seek(offset int64, whence int) (int64, error) {
	return v.f.Seek(offset, whence)
}

func (v osView) Close() error { return v.f.Close() }
func (v osView) Flush() error { return nil }

func (v osView) FilePath() string { return v.f.Name() }
