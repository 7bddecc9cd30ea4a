package mix

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func pcm(samples ...int16) []byte {
	b := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(b[i*2:], uint16(s))
	}
	return b
}

func samples(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return out
}

func TestMixPairAverages(t *testing.T) {
	var sink bytes.Buffer
	m := NewMixer(&sink, 0, nil)

	m.PushSecondary(pcm(100, -100, 32767, -32768))
	m.PushPrimary(pcm(300, 100, 32767, -32768))

	got := samples(sink.Bytes())
	want := []int16{200, 0, 32767, -32768}
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestMixAgainstSilenceHalves(t *testing.T) {
	var sink bytes.Buffer
	m := NewMixer(&sink, 0, nil)

	m.PushPrimary(pcm(1000, -1000, 1, -1, 0))

	got := samples(sink.Bytes())
	want := []int16{500, -500, 0, -1, 0} // arithmetic shift rounds toward -inf
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

// The remainder-carry rule must make split secondary frames
// indistinguishable from one concatenated frame.
func TestRemainderCarryAssociative(t *testing.T) {
	primary := pcm(100, 200, 300, 400)

	var whole bytes.Buffer
	mw := NewMixer(&whole, 0, nil)
	mw.PushSecondary(pcm(10, 20, 30, 40))
	mw.PushPrimary(primary)

	var split bytes.Buffer
	ms := NewMixer(&split, 0, nil)
	ms.PushSecondary(pcm(10, 20))
	ms.PushSecondary(pcm(30, 40))
	ms.PushPrimary(primary)

	if !bytes.Equal(whole.Bytes(), split.Bytes()) {
		t.Fatalf("split secondary frames produced different output: %v vs %v",
			samples(whole.Bytes()), samples(split.Bytes()))
	}
}

// A long primary frame against a short secondary head mixes the prefix,
// pops the short frame and carries the primary remainder forward.
func TestPrimaryRemainderCarries(t *testing.T) {
	var sink bytes.Buffer
	m := NewMixer(&sink, 0, nil)

	m.PushSecondary(pcm(100, 100))
	m.PushPrimary(pcm(100, 100, 100, 100))

	got := samples(sink.Bytes())
	want := []int16{100, 100, 50, 50}
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

// Secondary audio alone must never advance the output; total output
// length always equals the primary stream's length.
func TestSecondaryNeverExtendsOutput(t *testing.T) {
	var sink bytes.Buffer
	m := NewMixer(&sink, 0, nil)

	m.PushSecondary(make([]byte, 960*2*2))
	m.PushSecondary(make([]byte, 960*2*2))
	if sink.Len() != 0 {
		t.Fatalf("secondary-only push produced %d bytes of output", sink.Len())
	}

	const primaryBytes = 1920 * 2 * 2
	for i := 0; i < 10; i++ {
		m.PushPrimary(make([]byte, primaryBytes))
		m.PushSecondary(make([]byte, 960*2*2))
	}
	m.Flush()

	if sink.Len() != 10*primaryBytes {
		t.Fatalf("expected %d output bytes, got %d", 10*primaryBytes, sink.Len())
	}
}

type failingWriter struct{ writes int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.writes++
	return 0, errors.New("disk full")
}

func TestWriteFailureDropsBufferOnly(t *testing.T) {
	w := &failingWriter{}
	m := NewMixer(w, 0, nil)

	m.PushPrimary(pcm(1, 2, 3, 4))
	m.PushPrimary(pcm(5, 6, 7, 8))

	if w.writes != 2 {
		t.Fatalf("expected 2 attempted writes, got %d", w.writes)
	}
	if m.Written() != 0 {
		t.Fatalf("failed writes must not count as written, got %d", m.Written())
	}
	if buffered := m.primary.Buffered(); buffered != 0 {
		t.Fatalf("failed buffers should be dropped, %d bytes still queued", buffered)
	}
}
