// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sharedfile provides a single-writer, multiple-reader view over one
// on-disk file within the same process.
//
// Semantics and design:
//   - Spillover streaming: large byte payloads flow through the disk instead
//     of process memory. One producer appends while any number of consumers
//     read concurrently; consumers never observe a premature end-of-file
//     while the producer is still appending.
//   - Frontier publication: writes advance an in-flight byte count only.
//     A successful Flush, SyncData or SyncAll promotes it to the committed
//     frontier and wakes every parked reader. Reads are clamped to the
//     frontier, so stale bytes in a pre-allocated or reused file are never
//     returned.
//   - io compatibility: Writer and Reader implement the standard io
//     interfaces (io.Writer, io.ReaderFrom, io.Reader, io.Seeker,
//     io.WriterTo, io.Closer) and compose with io.Copy and friends.
//   - Blocking policy: readers park at the frontier by default. WithNonblock
//     surfaces iox.ErrWouldBlock (re-exposed as sharedfile.ErrWouldBlock) as
//     a control-flow signal instead; WithRetryDelay polls on a fixed
//     interval.
//
// The coordination state lives in process memory; sharing the file across
// processes, concurrent writers, and durability beyond an explicit sync are
// all out of scope.
package sharedfile

import "io"

// SharedFile coordinates one writer and any number of readers over a single
// backing file. The backing file stays open until Close is called; Close
// does not wait for the writer or the readers to be released.
type SharedFile struct {
	sentinel *sentinel
}

// New creates a SharedFile over a fresh temporary file in the default
// directory for temporary files.
func New() (*SharedFile, error) {
	backing, err := NewTempFile()
	if err != nil {
		return nil, err
	}
	return From(backing), nil
}

// NewIn creates a SharedFile over a fresh temporary file in dir.
func NewIn(dir string) (*SharedFile, error) {
	backing, err := NewTempFileIn(dir)
	if err != nil {
		return nil, err
	}
	return From(backing), nil
}

// FromPath creates a SharedFile over the pre-existing file at path. The
// file's current on-disk length is irrelevant: readers only ever observe
// bytes published by the writer, so a pre-allocated or reused file does not
// leak its old contents.
func FromPath(path string, ownership Ownership) (*SharedFile, error) {
	backing, err := FromExistingFile(path, ownership)
	if err != nil {
		return nil, err
	}
	return From(backing), nil
}

// From creates a SharedFile over an arbitrary backing capability.
func From(backing Backing) *SharedFile {
	return &SharedFile{sentinel: newSentinel(backing)}
}

// Writer opens a read-write view and returns the writer for the file.
//
// Note that this operation can result in odd behavior if the file is
// accessed multiple times for write access. User code must make sure that
// only one meaningful write is performed at the same time.
func (f *SharedFile) Writer() (*Writer, error) {
	view, err := f.sentinel.backing.OpenRW()
	if err != nil {
		return nil, err
	}
	return &Writer{file: view, sentinel: f.sentinel}, nil
}

// Reader opens an independent read-only view positioned at offset 0 and
// returns a reader for the file.
func (f *SharedFile) Reader(opts ...Option) (*Reader, error) {
	view, err := f.sentinel.backing.OpenRO()
	if err != nil {
		return nil, err
	}
	return newReader(view, f.sentinel, opts...), nil
}

// FilePath reports the path of the backing file when the backing capability
// supports it.
func (f *SharedFile) FilePath() (string, bool) {
	if p, ok := f.sentinel.backing.(FilePather); ok {
		return p.FilePath(), true
	}
	return "", false
}

// Close releases the backing file. Views held by outstanding readers and
// writers stay open; Close only drops the anchor that, for an Owned
// temporary file, removes it from disk. With the default TempFile backing,
// the writer's SyncData, SyncAll and Complete fail to sync after Close, and
// opening new views (Reader, Writer, Fork) fails once an Owned file has
// been removed.
func (f *SharedFile) Close() error {
	if c, ok := f.sentinel.backing.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
