package providers

import (
	"github.com/samber/do/v2"

	"github.com/vorojar/Qwen3-TTS/internal/config"
	"github.com/vorojar/Qwen3-TTS/internal/logger"
	"github.com/vorojar/Qwen3-TTS/internal/synth"
)

// ProvideSynthesizer provides the HTTP client for the upstream TTS engine.
func ProvideSynthesizer(i do.Injector) (synth.Synthesizer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := synth.NewClient(synth.Config{
		Endpoint:          cfg.Synthesis.Endpoint,
		RequestsPerSecond: cfg.Synthesis.RequestsPerSecond,
		Timeout:           cfg.Synthesis.Timeout,
	}, cfg.Audio.SampleRate, log.Logger)

	log.Info("Synthesis client configured",
		"endpoint", cfg.Synthesis.Endpoint,
		"rps", cfg.Synthesis.RequestsPerSecond,
	)

	return client, nil
}
