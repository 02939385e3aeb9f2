// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sharedfile

import "io"

// Writer appends bytes to a shared file and publishes progress to readers.
//
// Successful writes advance only the in-flight byte count: readers observe
// the bytes after the next Flush, SyncData, SyncAll or completion. Any I/O
// error observed by the writer is terminal; the stream moves to its failed
// phase and every parked reader is woken so it surfaces the condition.
//
// Writer implements io.Writer, io.ReaderFrom and io.Closer.
type Writer struct {
	file     FileView
	sentinel *sentinel

	// reusable scratch buffer for the ReadFrom fast path
	buf []byte
}

// Write appends p to the file. It returns the byte count accepted by the
// backing view, which is what the in-flight counter advances by.
//
// After the stream completed, non-empty writes fail with ErrFileClosed;
// empty writes are tolerated.
func (w *Writer) Write(p []byte) (int, error) {
	st := w.sentinel.loadState()
	switch st.phase {
	case writeCompleted:
		if len(p) == 0 {
			return 0, nil
		}
		return 0, ErrFileClosed
	case writeFailed:
		return 0, ErrWritingFailed
	}
	n, err := w.file.Write(p)
	if err != nil {
		w.fail()
		return n, err
	}
	w.sentinel.storeState(writeState{
		phase:     writePending,
		committed: st.committed,
		written:   st.written + uint64(n),
	})
	return n, nil
}

// WriteVectored writes the slices of bufs in order and returns the total
// byte count accepted by the backing view.
func (w *Writer) WriteVectored(bufs [][]byte) (int, error) {
	var total int
	for _, b := range bufs {
		n, err := w.Write(b)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// ReadFrom implements io.ReaderFrom. It appends src in 32KiB chunks and
// publishes the frontier after each chunk, so concurrent readers make
// progress while the transfer is still running.
func (w *Writer) ReadFrom(src io.Reader) (int64, error) {
	if w.buf == nil {
		w.buf = make([]byte, 32*1024)
	}
	var total int64
	for {
		n, rerr := src.Read(w.buf)
		if n > 0 {
			wn, werr := w.Write(w.buf[:n])
			total += int64(wn)
			if werr != nil {
				return total, werr
			}
			if wn != n {
				return total, io.ErrShortWrite
			}
			if err := w.Flush(); err != nil {
				return total, err
			}
		}
		if rerr != nil {
			if rerr == io.EOF {
				return total, nil
			}
			return total, rerr
		}
	}
}

// Flush pushes buffered bytes down to the operating system and publishes
// the frontier: every byte accepted so far becomes visible to readers.
func (w *Writer) Flush() error {
	if err := w.file.Flush(); err != nil {
		w.fail()
		return err
	}
	w.publish()
	return nil
}

// SyncData commits file data to stable storage and publishes the frontier.
func (w *Writer) SyncData() error {
	return w.syncThen(w.sentinel.backing.SyncData)
}

// SyncAll commits file data and metadata to stable storage and publishes
// the frontier.
func (w *Writer) SyncAll() error {
	return w.syncThen(w.sentinel.backing.SyncAll)
}

func (w *Writer) syncThen(sync func() error) error {
	if err := w.file.Flush(); err != nil {
		w.fail()
		return err
	}
	if err := sync(); err != nil {
		w.fail()
		return err
	}
	w.publish()
	return nil
}

// Complete syncs data and metadata to disk and completes the stream.
//
// When the sync fails the stream still reaches a terminal phase, the failed
// one, so a later completion attempt cannot wedge the state; Complete then
// returns ErrSync and readers observe ErrFileClosed. The writer is unusable
// afterwards.
func (w *Writer) Complete() error {
	if err := w.SyncAll(); err != nil {
		w.finalize()
		_ = w.file.Close()
		return ErrSync
	}
	err := w.finalize()
	_ = w.file.Close()
	return err
}

// CompleteWithoutSync completes the stream without syncing. Bytes that were
// never flushed may not be durable on disk; use Complete when that matters.
// The writer is unusable afterwards.
func (w *Writer) CompleteWithoutSync() error {
	err := w.finalize()
	_ = w.file.Close()
	return err
}

// Close shuts down the writer's view and completes the stream, promoting
// any unpublished bytes first. Close does not sync the operating system
// buffers; call SyncData, SyncAll or Complete beforehand when durability of
// the tail is required.
func (w *Writer) Close() error {
	if err := w.file.Close(); err != nil {
		w.fail()
		return err
	}
	return w.finalize()
}

// FilePath reports the path of the file when the backing view supports it.
func (w *Writer) FilePath() (string, bool) {
	if p, ok := w.file.(FilePather); ok {
		return p.FilePath(), true
	}
	return "", false
}

// publish promotes the in-flight byte count to the committed frontier and
// wakes every parked reader. Promotion is the single point at which readers
// become eligible to observe new bytes.
func (w *Writer) publish() {
	st := w.sentinel.loadState()
	if st.phase == writePending {
		w.sentinel.storeState(writeState{
			phase:     writePending,
			committed: st.written,
			written:   st.written,
		})
	}
	w.sentinel.wakeReaders()
}

// finalize moves the stream to its terminal phase. Unpublished bytes are
// promoted first, so the final size is the full in-flight count. Completing
// twice is a no-op; completing a failed stream reports ErrWritingFailed.
// Readers are woken either way.
func (w *Writer) finalize() error {
	st := w.sentinel.loadState()
	var err error
	switch st.phase {
	case writePending:
		w.sentinel.storeState(writeState{
			phase:     writeCompleted,
			committed: st.written,
			written:   st.written,
		})
	case writeFailed:
		err = ErrWritingFailed
	}
	w.sentinel.wakeReaders()
	return err
}

// fail marks the stream broken and wakes readers so they observe the error
// on their next poll. Failure is terminal.
func (w *Writer) fail() {
	st := w.sentinel.loadState()
	if st.phase == writePending {
		w.sentinel.storeState(writeState{phase: writeFailed})
	}
	w.sentinel.wakeReaders()
}
