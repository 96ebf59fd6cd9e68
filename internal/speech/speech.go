// internal/speech/speech.go
package speech

import (
	"context"

	"bus-enquiry-engine/internal/common/logger"
)

// Synthesizer voices one rendered answer. The engine only depends on this
// interface; the kiosk build plugs in the real TTS backend.
type Synthesizer interface {
	Speak(ctx context.Context, text, lang string) error
}

// NoOp logs instead of speaking. Used in tests and headless deployments.
type NoOp struct {
	log logger.Logger
}

func NewNoOp(log logger.Logger) *NoOp {
	return &NoOp{log: log}
}

func (n *NoOp) Speak(_ context.Context, text, lang string) error {
	n.log.Info("speech suppressed", map[string]interface{}{
		"lang":  lang,
		"chars": len(text),
	})
	return nil
}
