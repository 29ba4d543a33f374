package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/vorojar/Qwen3-TTS/internal/audio"
	"github.com/vorojar/Qwen3-TTS/internal/config"
	"github.com/vorojar/Qwen3-TTS/internal/editor"
	"github.com/vorojar/Qwen3-TTS/internal/logger"
	"github.com/vorojar/Qwen3-TTS/internal/migrate"
	"github.com/vorojar/Qwen3-TTS/internal/session"
	"github.com/vorojar/Qwen3-TTS/internal/synth"
)

// ProvideEditor provides the document editor over the configured
// synthesizer and audio pipeline.
func ProvideEditor(i do.Injector) (*editor.Editor, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	synthesizer := do.MustInvoke[synth.Synthesizer](i)

	decoder := audio.NewDecoder(cfg.Audio.SampleRate)
	assembler := audio.NewAssembler(decoder, cfg.Audio.BaseGap)

	return editor.New(synthesizer, assembler, log.Logger), nil
}

// SessionHandle wraps the session controller so shutdown flushes the open
// document to the store.
type SessionHandle struct {
	*session.Controller
}

// Shutdown implements do.Shutdownable.
func (h *SessionHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	h.Flush(ctx)
	return nil
}

// ProvideSession provides the started session controller. Starting runs the
// legacy-session migration and opens the last edited document.
func ProvideSession(i do.Injector) (*SessionHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	ed := do.MustInvoke[*editor.Editor](i)

	migrator := migrate.New(storeHandle.Store, log.Logger)
	controller := session.New(storeHandle.Store, ed, migrator, log.Logger)

	if err := controller.Start(context.Background()); err != nil {
		return nil, err
	}

	projectID, chapterID := controller.CurrentIDs()
	log.Info("Session restored", "project_id", projectID, "chapter_id", chapterID)

	return &SessionHandle{Controller: controller}, nil
}
