package decoder

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestEvents(t *testing.T, events ...[]uint32) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "events.dat")
	writer, err := CreateEventFile(filename)
	require.NoError(t, err)
	for _, event := range events {
		require.NoError(t, writer.WriteEvent(event))
	}
	require.NoError(t, writer.Close())
	return filename
}

func TestEventFileRoundTrip(t *testing.T) {
	first := []uint32{4, GO_EVENT<<16 | 0x01<<8 | 0xCC, 1000, 0, 25}
	second := []uint32{2, 42<<16 | 0x01<<8, 0xdeadbeef}
	filename := writeTestEvents(t, first, second)

	file, err := OpenEventFile(filename)
	require.NoError(t, err)
	defer file.Close()

	buffer, err := file.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, first, buffer)

	buffer, err = file.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, second, buffer)

	_, err = file.ReadEvent()
	assert.Equal(t, io.EOF, err)
}

func TestEventFileCountAndRewind(t *testing.T) {
	event := []uint32{1, 0}
	filename := writeTestEvents(t, event, event, event)

	file, err := OpenEventFile(filename)
	require.NoError(t, err)
	defer file.Close()

	count, err := file.CountEvents()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// Counting rewinds, so the first event is readable again.
	buffer, err := file.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, event, buffer)
}

func TestEventFileTruncated(t *testing.T) {
	filename := writeTestEvents(t, []uint32{4, 1, 2, 3, 4})
	// Cut the file in the middle of the event body.
	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filename, data[:10], 0o644))

	file, err := OpenEventFile(filename)
	require.NoError(t, err)
	defer file.Close()

	_, err = file.ReadEvent()
	require.Error(t, err)
	var readErr *ErrReadEvent
	assert.ErrorAs(t, err, &readErr)
}

func TestEventFileGarbageLength(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "garbage.dat")
	require.NoError(t, os.WriteFile(filename, []byte{0xff, 0xff, 0xff, 0xff}, 0o644))

	file, err := OpenEventFile(filename)
	require.NoError(t, err)
	defer file.Close()

	_, err = file.ReadEvent()
	require.Error(t, err)
	assert.NotEqual(t, io.EOF, err)
}

func TestOpenEventFileMissing(t *testing.T) {
	_, err := OpenEventFile(filepath.Join(t.TempDir(), "does-not-exist.dat"))
	require.Error(t, err)
	var openErr *ErrOpenFile
	assert.ErrorAs(t, err, &openErr)
}

func TestWriteEventLengthMismatch(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "events.dat")
	writer, err := CreateEventFile(filename)
	require.NoError(t, err)
	defer writer.Close()

	assert.Error(t, writer.WriteEvent([]uint32{5, 1, 2}))
	assert.Error(t, writer.WriteEvent(nil))
}
