// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sharedfile_test

import (
	"encoding/binary"
	"io"
	"testing"

	"golang.org/x/sync/errgroup"

	"code.hybscloud.com/sharedfile"
)

// numValuesNoDelay is the number of uint16 values streamed through the file.
const numValuesNoDelay = 1 << 20

// TestNoDelayStreaming writes a large sequence while a concurrently started
// reader drains it, with no artificial delays on either side.
func TestNoDelayStreaming(t *testing.T) {
	t.Parallel()

	file, err := sharedfile.NewIn(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer file.Close()

	// Start the reader before anything was written.
	r, err := file.Reader()
	if err != nil {
		t.Fatalf("reader: %v", err)
	}
	defer r.Close()
	if fs := r.FileSize(); fs.Kind != sharedfile.SizeAtLeast || fs.Bytes != 0 {
		t.Fatalf("file size = %+v, want AtLeast(0)", fs)
	}

	var got []byte
	var g errgroup.Group
	g.Go(func() error {
		got = drainReader(t, r)
		return nil
	})
	g.Go(func() error {
		w, err := file.Writer()
		if err != nil {
			return err
		}
		var b [2]byte
		for i := 0; i < numValuesNoDelay; i++ {
			binary.LittleEndian.PutUint16(b[:], uint16(i))
			if _, err := w.Write(b[:]); err != nil {
				return err
			}
			if i%4096 == 0 {
				if err := w.Flush(); err != nil {
					return err
				}
			}
		}
		return w.Complete()
	})
	if err := g.Wait(); err != nil {
		t.Fatalf("stream: %v", err)
	}

	validateSequence(t, got, numValuesNoDelay)
}

// drainReader reads the shared file to end of stream.
func drainReader(t *testing.T, r *sharedfile.Reader) []byte {
	t.Helper()
	var results []byte
	buf := make([]byte, 1024)
	for {
		n, err := r.Read(buf)
		results = append(results, buf[:n]...)
		if err == io.EOF {
			return results
		}
		if err != nil {
			t.Errorf("read: %v", err)
			return results
		}
	}
}

// validateSequence checks that got is the little-endian concatenation of
// 0..count as uint16.
func validateSequence(t *testing.T, got []byte, count int) {
	t.Helper()
	if len(got) != 2*count {
		t.Fatalf("read %d bytes, want %d", len(got), 2*count)
	}
	for i := 0; i < count; i++ {
		v := binary.LittleEndian.Uint16(got[2*i:])
		if v != uint16(i) {
			t.Fatalf("value[%d] = %d, want %d", i, v, uint16(i))
		}
	}
}
