// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sharedfile

import "io"

// FileView is one independent OS-level open of the backing file. Each view
// keeps its own cursor, so the writer and every reader advance without
// disturbing each other.
type FileView interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer

	// Flush pushes application-level write buffers down to the operating
	// system. Views without such a buffer return nil.
	Flush() error
}

// Backing is the storage capability a SharedFile coordinates over. The
// implementation owns creation and destruction of the underlying file; the
// shared-file layer only opens views on it and asks for durability.
type Backing interface {
	// OpenRO opens a new read-only view positioned at offset 0.
	OpenRO() (FileView, error)
	// OpenRW opens a new read-write view.
	OpenRW() (FileView, error)
	// SyncData flushes file data to stable storage.
	SyncData() error
	// SyncAll flushes file data and metadata to stable storage.
	SyncAll() error
}

// FilePather is an optional capability of backings and views that can
// report the path of the underlying file.
type FilePather interface {
	FilePath() string
}
