// Package synth talks to the upstream TTS engine that turns segment text
// into audio. The engine lives behind an HTTP API; everything in this
// repository depends only on the Synthesizer interface.
package synth

import (
	"context"

	"github.com/vorojar/Qwen3-TTS/internal/domain"
)

// Params carries everything the engine needs besides the text itself.
type Params struct {
	Language string
	Instruct string
	Voice    domain.VoiceConfig
}

// Result is one finished synthesis: the encoded clip ready to store on a
// segment, and its playback duration in seconds.
type Result struct {
	Audio    []byte
	Duration float64
}

// Synthesizer produces audio for one segment of text.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, params Params) (*Result, error)
}
