// Package audio handles the encoded clip format of segment audio and the
// reconstruction of a document's segments into one continuous track with
// subtitle timings.
package audio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// DefaultSampleRate is the synthesis output rate in Hz. All clips in one
// document share it.
const DefaultSampleRate = 24000

// bytesPerSample for PCM16LE mono.
const bytesPerSample = 2

// EncodeClip compresses raw PCM16LE mono samples into the stored clip form.
// JSON marshalling of the result yields the base64 payload the editor ships
// around.
func EncodeClip(pcm []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(pcm); err != nil {
		return nil, fmt.Errorf("compress clip: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress clip: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeClip decompresses a stored clip back into raw PCM16LE samples.
func DecodeClip(clip []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(clip))
	if err != nil {
		return nil, fmt.Errorf("decompress clip: %w", err)
	}
	defer zr.Close()

	pcm, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompress clip: %w", err)
	}
	return pcm, nil
}

// Duration returns the playback length in seconds of raw PCM16LE mono
// samples at the given rate.
func Duration(pcm []byte, sampleRate int) float64 {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	samples := len(pcm) / bytesPerSample
	return float64(samples) / float64(sampleRate)
}

// Decoder memoizes decoded PCM per segment position so repeated
// reconstruction does not decompress unchanged clips again.
//
// An entry is only reused while the clip at that position is the same slice
// it was decoded from; a replaced audio reference (regenerate, undo) misses
// the cache. Structural edits shift positions, so callers must Reset after
// insert or delete.
type Decoder struct {
	sampleRate int
	entries    map[int]decodeEntry
}

type decodeEntry struct {
	clip []byte
	pcm  []byte
}

// NewDecoder creates a decoder for clips recorded at the given sample rate.
func NewDecoder(sampleRate int) *Decoder {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Decoder{
		sampleRate: sampleRate,
		entries:    make(map[int]decodeEntry),
	}
}

// SampleRate returns the decoder's sample rate.
func (d *Decoder) SampleRate() int {
	return d.sampleRate
}

// Decode returns the PCM for the clip at the given segment position,
// decompressing at most once per distinct clip reference.
func (d *Decoder) Decode(index int, clip []byte) ([]byte, error) {
	if e, ok := d.entries[index]; ok && sameClip(e.clip, clip) {
		return e.pcm, nil
	}

	pcm, err := DecodeClip(clip)
	if err != nil {
		return nil, err
	}
	d.entries[index] = decodeEntry{clip: clip, pcm: pcm}
	return pcm, nil
}

// Invalidate drops the cached entry for one segment position.
func (d *Decoder) Invalidate(index int) {
	delete(d.entries, index)
}

// Reset drops every cached entry. Required after insert/delete, where
// positions shift and a stale entry could describe a different segment.
func (d *Decoder) Reset() {
	clear(d.entries)
}

// sameClip reports whether two clips are the identical backing slice.
func sameClip(a, b []byte) bool {
	return len(a) > 0 && len(a) == len(b) && &a[0] == &b[0]
}
