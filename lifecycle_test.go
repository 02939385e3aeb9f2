// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sharedfile_test

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/sharedfile"
)

// TestEarlyClose drops the writer after writing without any sync. Close
// still finalizes the stream, promoting the unpublished tail, and a later
// reader sees the exact size. Durability of the tail is the caller's
// responsibility and is not asserted here.
func TestEarlyClose(t *testing.T) {
	t.Parallel()

	file, err := sharedfile.NewIn(t.TempDir())
	require.NoError(t, err)
	defer file.Close()

	w, err := file.Writer()
	require.NoError(t, err)
	payload := []byte("tail that was never synced")
	_, err = w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := file.Reader()
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t,
		sharedfile.FileSize{Kind: sharedfile.SizeExactly, Bytes: uint64(len(payload))},
		r.FileSize())

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestCompleteWithoutSync(t *testing.T) {
	t.Parallel()

	file, err := sharedfile.NewIn(t.TempDir())
	require.NoError(t, err)
	defer file.Close()

	w, err := file.Writer()
	require.NoError(t, err)
	_, err = w.Write([]byte("abc"))
	require.NoError(t, err)
	require.NoError(t, w.CompleteWithoutSync())

	r, err := file.Reader()
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t,
		sharedfile.FileSize{Kind: sharedfile.SizeExactly, Bytes: 3},
		r.FileSize())
}

// TestCompleteIsIdempotent: completing an already completed stream must not
// fail or disturb the final size.
func TestCompleteIsIdempotent(t *testing.T) {
	t.Parallel()

	file, err := sharedfile.NewIn(t.TempDir())
	require.NoError(t, err)
	defer file.Close()

	w, err := file.Writer()
	require.NoError(t, err)
	_, err = w.Write([]byte("abc"))
	require.NoError(t, err)
	require.NoError(t, w.CompleteWithoutSync())
	require.NoError(t, w.CompleteWithoutSync())

	r, err := file.Reader()
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t,
		sharedfile.FileSize{Kind: sharedfile.SizeExactly, Bytes: 3},
		r.FileSize())
}

// TestOwnedTempFileRemovedOnClose: closing the facade removes an Owned
// temporary file, while Borrowed files survive.
func TestOwnedTempFileRemovedOnClose(t *testing.T) {
	t.Parallel()

	file, err := sharedfile.NewIn(t.TempDir())
	require.NoError(t, err)
	path, ok := file.FilePath()
	require.True(t, ok)
	require.FileExists(t, path)

	require.NoError(t, file.Close())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestBorrowedFileSurvivesClose(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	seed, err := sharedfile.NewIn(dir)
	require.NoError(t, err)
	path, ok := seed.FilePath()
	require.True(t, ok)

	borrowed, err := sharedfile.FromPath(path, sharedfile.Borrowed)
	require.NoError(t, err)
	require.NoError(t, borrowed.Close())
	require.FileExists(t, path)

	require.NoError(t, seed.Close())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

// TestReaderOutlivesFacadeClose: a reader opened before the facade releases
// an Owned file keeps its view usable (the descriptor outlives the unlink).
func TestReaderOutlivesFacadeClose(t *testing.T) {
	t.Parallel()

	file, err := sharedfile.NewIn(t.TempDir())
	require.NoError(t, err)

	w, err := file.Writer()
	require.NoError(t, err)
	_, err = w.Write([]byte("unlinked but readable"))
	require.NoError(t, err)
	require.NoError(t, w.Complete())

	r, err := file.Reader()
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, file.Close())

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte("unlinked but readable"), got)
}
