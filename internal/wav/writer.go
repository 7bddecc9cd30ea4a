// Package wav writes PCM S16LE audio into a RIFF/WAVE container.
package wav

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const headerSize = 44

// Writer is a strictly ordered PCM sink. The header is written with
// placeholder sizes at open and patched on Close, so the file is only
// a valid WAV after Close returns.
type Writer struct {
	file          *os.File
	buf           *bufio.Writer
	sampleRate    uint32
	channels      uint16
	bitsPerSample uint16
	dataSize      uint32
	closed        bool
}

// NewWriter creates the file and writes the placeholder header.
// Only 16-bit PCM is supported.
func NewWriter(path string, sampleRate uint32, channels, bitsPerSample uint16) (*Writer, error) {
	if bitsPerSample != 16 {
		return nil, fmt.Errorf("only 16-bit PCM supported, got %d", bitsPerSample)
	}
	if channels == 0 {
		return nil, fmt.Errorf("channel count must be positive")
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := &Writer{
		file:          f,
		buf:           bufio.NewWriterSize(f, 1<<20),
		sampleRate:    sampleRate,
		channels:      channels,
		bitsPerSample: bitsPerSample,
	}
	if err := w.writeHeader(); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeHeader() error {
	byteRate := w.sampleRate * uint32(w.channels) * uint32(w.bitsPerSample) / 8
	blockAlign := w.channels * w.bitsPerSample / 8

	fields := []any{
		[]byte("RIFF"),
		uint32(0), // ChunkSize, patched on Close
		[]byte("WAVE"),
		[]byte("fmt "),
		uint32(16), // PCM fmt chunk size
		uint16(1),  // PCM format tag
		w.channels,
		w.sampleRate,
		byteRate,
		blockAlign,
		w.bitsPerSample,
		[]byte("data"),
		uint32(0), // Subchunk2Size, patched on Close
	}
	for _, f := range fields {
		if err := binary.Write(w.buf, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return w.buf.Flush()
}

// Write appends raw PCM bytes.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, io.ErrClosedPipe
	}
	n, err := w.buf.Write(p)
	w.dataSize += uint32(n)
	return n, err
}

// Flush forces buffered samples to disk without finalizing the header.
func (w *Writer) Flush() error {
	if w.closed {
		return nil
	}
	return w.buf.Flush()
}

// Close patches the RIFF sizes and closes the file. Safe to call more
// than once, and valid even when no samples were ever written.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return err
	}
	if err := w.patchSize(4, uint32(headerSize-8)+w.dataSize); err != nil {
		w.file.Close()
		return err
	}
	if err := w.patchSize(40, w.dataSize); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

func (w *Writer) patchSize(offset int64, v uint32) error {
	if _, err := w.file.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	return binary.Write(w.file, binary.LittleEndian, v)
}

// DataSize returns the number of PCM bytes written so far.
func (w *Writer) DataSize() uint32 { return w.dataSize }
