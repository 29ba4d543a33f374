package synth

import (
	"context"
	"sync"
	"unicode/utf8"

	"github.com/vorojar/Qwen3-TTS/internal/audio"
)

// Call records one synthesis request made against the mock.
type Call struct {
	Text   string
	Params Params
}

// Mock is a scriptable in-memory Synthesizer for tests. By default it
// produces a silent clip lasting 0.1 seconds per rune of text, so tests get
// deterministic durations without an engine.
type Mock struct {
	mu         sync.Mutex
	sampleRate int
	calls      []Call
	script     func(text string, params Params) (*Result, error)
	err        error
}

// NewMock creates a mock synthesizer producing clips at the given rate.
func NewMock(sampleRate int) *Mock {
	if sampleRate <= 0 {
		sampleRate = audio.DefaultSampleRate
	}
	return &Mock{sampleRate: sampleRate}
}

// SetScript replaces the default clip generation with a custom function.
func (m *Mock) SetScript(fn func(text string, params Params) (*Result, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = fn
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (m *Mock) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns a copy of every request made so far.
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]Call, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// Synthesize implements Synthesizer.
func (m *Mock) Synthesize(ctx context.Context, text string, params Params) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.calls = append(m.calls, Call{Text: text, Params: params})
	script, err := m.script, m.err
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if script != nil {
		return script(text, params)
	}

	seconds := 0.1 * float64(utf8.RuneCountInString(text))
	pcm := make([]byte, int(seconds*float64(m.sampleRate))*2)
	clip, encErr := audio.EncodeClip(pcm)
	if encErr != nil {
		return nil, encErr
	}
	return &Result{Audio: clip, Duration: seconds}, nil
}
