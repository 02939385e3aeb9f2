// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sharedfile

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// SizeKind discriminates FileSize values.
type SizeKind uint8

const (
	// SizeAtLeast: the file is still being written; at least Bytes exist.
	SizeAtLeast SizeKind = iota
	// SizeExactly: the write completed; the file holds exactly Bytes.
	SizeExactly
	// SizeError: writing failed; reading may not complete.
	SizeError
)

// FileSize reports what is known about the size of a shared file.
type FileSize struct {
	Kind SizeKind
	// Bytes is the minimum size for SizeAtLeast and the final size for
	// SizeExactly. Zero for SizeError.
	Bytes uint64
}

// Reader consumes a shared file while it may still be written. Reads are
// clamped to the committed frontier and, by default, park at the frontier
// instead of reporting a premature end of file. io.EOF is only returned
// once the writer completed and every committed byte was delivered.
//
// Reader implements io.Reader, io.Seeker, io.WriterTo and io.Closer.
type Reader struct {
	// id keys this reader's entry in the waker table. Time-ordered and
	// process-unique; it never leaves the process.
	id       uuid.UUID
	file     FileView
	sentinel *sentinel

	// bytesRead is the reader's logical offset: bytes already delivered to
	// the consumer, adjusted by Seek.
	bytesRead uint64

	retryDelay time.Duration

	// reusable scratch buffer for the WriteTo fast path
	buf []byte
}

func newReader(file FileView, s *sentinel, opts ...Option) *Reader {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}
	return &Reader{
		id:         newReaderID(),
		file:       file,
		sentinel:   s,
		retryDelay: o.RetryDelay,
	}
}

// newReaderID returns a time-ordered process-unique identifier.
func newReaderID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// Fork creates an independent reader over the same shared file, with a
// fresh identity and a fresh view positioned at offset 0. The fork inherits
// this reader's blocking policy unless opts override it.
func (r *Reader) Fork(opts ...Option) (*Reader, error) {
	view, err := r.sentinel.backing.OpenRO()
	if err != nil {
		return nil, err
	}
	o := Options{RetryDelay: r.retryDelay}
	for _, fn := range opts {
		fn(&o)
	}
	return &Reader{
		id:         newReaderID(),
		file:       view,
		sentinel:   r.sentinel,
		retryDelay: o.RetryDelay,
	}, nil
}

// FileSize reports the known size of the shared file without blocking.
func (r *Reader) FileSize() FileSize {
	st := r.sentinel.loadState()
	switch st.phase {
	case writeCompleted:
		return FileSize{Kind: SizeExactly, Bytes: st.committed}
	case writeFailed:
		return FileSize{Kind: SizeError}
	default:
		return FileSize{Kind: SizeAtLeast, Bytes: st.committed}
	}
}

// Read fills p with at most the committed bytes remaining at the reader's
// offset. At the producer's frontier the call parks until the writer
// publishes more data (or returns ErrWouldBlock / polls, per the
// construction options). After the writer failed, Read reports
// ErrFileClosed.
func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for {
		st := r.sentinel.loadState()
		var available uint64
		switch st.phase {
		case writePending:
			if r.bytesRead >= st.committed {
				// Caught up with the frontier; nothing to deliver this poll.
				if err := r.waitFrontier(st); err != nil {
					return 0, err
				}
				continue
			}
			available = st.committed - r.bytesRead
		case writeCompleted:
			if r.bytesRead >= st.committed {
				return 0, io.EOF
			}
			available = st.committed - r.bytesRead
		case writeFailed:
			return 0, ErrFileClosed
		}

		// Clamp to the frontier: the file on disk may be longer than the
		// producer's logical stream (pre-allocated or reused files), and
		// those stale bytes must never surface.
		limit := uint64(len(p))
		if limit > available {
			limit = available
		}
		n, err := r.file.Read(p[:limit])
		if n > 0 {
			r.sentinel.removeReaderWaker(r.id)
			r.bytesRead += uint64(n)
			if err == io.EOF {
				// Below the frontier a view-level EOF is not the end of the
				// stream; the next poll decides.
				err = nil
			}
			return n, err
		}
		if err != nil && err != io.EOF {
			return 0, err
		}
		// Zero bytes below the frontier: the view has not caught up with a
		// published write yet. Wait for the next publication and retry.
		if err := r.waitFrontier(st); err != nil {
			return 0, err
		}
	}
}

// waitFrontier blocks until the shared state moves past the snapshot the
// caller decided on, following the reader's blocking policy.
//
// The parking protocol registers the wake channel first and re-loads the
// state afterwards: a publication that raced the registration is caught by
// the re-load, and any later one finds the channel registered. A wake can
// never be lost in between.
func (r *Reader) waitFrontier(seen writeState) error {
	if r.retryDelay < 0 {
		return ErrWouldBlock
	}
	if r.retryDelay > 0 {
		time.Sleep(r.retryDelay)
		return nil
	}
	ch := make(chan struct{})
	r.sentinel.registerReaderWaker(r.id, ch)
	if r.sentinel.loadState() != seen {
		r.sentinel.removeReaderWaker(r.id)
		return nil
	}
	<-ch
	return nil
}

// Seek delegates to the backing view and moves the reader's logical offset
// without consulting the shared state. Seeking past the committed frontier
// is allowed: subsequent reads fall under the usual clamp and park until
// the frontier passes the new offset.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	pos, err := r.file.Seek(offset, whence)
	if err != nil {
		return pos, err
	}
	r.bytesRead = uint64(pos)
	return pos, nil
}

// WriteTo implements io.WriterTo. It drains the shared file into dst until
// the end of the stream, honoring the frontier exactly like Read. In
// nonblocking mode it returns early with ErrWouldBlock when it catches up
// with the producer; the byte count already transferred is still reported.
func (r *Reader) WriteTo(dst io.Writer) (int64, error) {
	if r.buf == nil {
		r.buf = make([]byte, 32*1024)
	}
	var total int64
	for {
		n, err := r.Read(r.buf)
		if n > 0 {
			off := 0
			for off < n {
				wn, werr := dst.Write(r.buf[off:n])
				if wn > 0 {
					total += int64(wn)
					off += wn
				}
				if werr != nil {
					return total, werr
				}
				if wn == 0 {
					return total, io.ErrShortWrite
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				return total, nil
			}
			return total, err
		}
	}
}

// Close removes the reader from the waker table and closes its view, so the
// writer never wakes a defunct reader and the view's descriptor is
// released.
func (r *Reader) Close() error {
	r.sentinel.removeReaderWaker(r.id)
	return r.file.Close()
}
