package decoder

import (
	"encoding/binary"
	"errors"
	"io"
	"os"
)

// Word buffers larger than this are assumed to be garbage rather than a
// real event. 16M words is far beyond any DAQ event size.
const maxEventWords = 1 << 24

// EventFile reads raw CODA event buffers from a file. Each event is
// stored as its on-wire word sequence: a length word followed by that
// many 32-bit words, little-endian as produced by the DAQ front-ends.
type EventFile struct {
	file *os.File
}

func OpenEventFile(filename string) (*EventFile, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	return &EventFile{file: file}, nil
}

// ReadEvent returns the next event buffer, including its leading length
// word. Returns io.EOF at the end of the file.
func (f *EventFile) ReadEvent() ([]uint32, error) {
	var length uint32
	if err := binary.Read(f.file, binary.LittleEndian, &length); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, &ErrReadEvent{Err: err}
	}
	if length > maxEventWords {
		return nil, &ErrReadEvent{Err: formatErrorf("event length %d words is not credible", length)}
	}
	buffer := make([]uint32, length+1)
	buffer[0] = length
	if err := binary.Read(f.file, binary.LittleEndian, buffer[1:]); err != nil {
		return nil, &ErrReadEvent{Err: err}
	}
	return buffer, nil
}

// CountEvents counts the remaining events and rewinds the file.
func (f *EventFile) CountEvents() (int, error) {
	count := 0
	for {
		_, err := f.ReadEvent()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, err
		}
		count++
	}
	return count, f.Rewind()
}

// Rewind goes back to the beginning of the file.
func (f *EventFile) Rewind() error {
	_, err := f.file.Seek(0, io.SeekStart)
	return err
}

func (f *EventFile) Close() error {
	return f.file.Close()
}

// EventFileWriter writes raw CODA event buffers, the mirror of
// EventFile. Used by the mock event generator.
type EventFileWriter struct {
	file *os.File
}

func CreateEventFile(filename string) (*EventFileWriter, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	return &EventFileWriter{file: file}, nil
}

// WriteEvent writes one event buffer. The buffer must already carry its
// leading length word and satisfy len(buffer) == buffer[0]+1.
func (w *EventFileWriter) WriteEvent(buffer []uint32) error {
	if len(buffer) == 0 || uint64(len(buffer)) != uint64(buffer[0])+1 {
		return formatErrorf("event buffer of %d words does not match its length word", len(buffer))
	}
	return binary.Write(w.file, binary.LittleEndian, buffer)
}

func (w *EventFileWriter) Close() error {
	return w.file.Close()
}
