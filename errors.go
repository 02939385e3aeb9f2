// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sharedfile

import (
	"errors"

	"code.hybscloud.com/iox"
)

var (
	// ErrFileClosed reports an operation against a stream that is no longer
	// usable: reading after the writer failed, or a non-empty write after
	// the stream was completed.
	ErrFileClosed = errors.New("sharedfile: file already closed")

	// ErrWritingFailed reports that the writer observed an unrecoverable
	// I/O failure earlier; the stream can be neither appended to nor
	// completed.
	ErrWritingFailed = errors.New("sharedfile: writing to the file failed")

	// ErrSync reports that Complete could not synchronize the file with the
	// underlying storage. The failed sync counts as a writer I/O failure:
	// the stream is moved to its failed phase, so a later completion
	// attempt cannot wedge the state and readers observe ErrFileClosed.
	ErrSync = errors.New("sharedfile: failed to synchronize the file with the underlying storage")
)

// ErrWouldBlock is provided as a package-level alias so callers can match
// the semantic control-flow error without importing iox directly.
//
// It is an expected, non-failure signal returned by nonblocking readers
// that caught up with the producer's frontier: no further progress is
// possible without waiting.
//
// Caller action: retry after the writer publishes more data, or construct
// the reader with WithBlock / WithRetryDelay to wait inside Read instead.
var ErrWouldBlock = iox.ErrWouldBlock
