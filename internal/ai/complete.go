package ai

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ayush/research-workspace/backend/internal/apperr"
	"github.com/ayush/research-workspace/backend/internal/logger"
)

// rawPreviewLen bounds how much of a malformed model response gets logged.
const rawPreviewLen = 500

// Complete runs prompt through gen and decodes the normalized response into
// out. Any failure is returned as an *apperr.Error; nothing is retried.
func Complete(ctx context.Context, gen Generator, log *zap.Logger, prompt string, shape Shape, out interface{}) error {
	raw, err := gen.Generate(ctx, prompt)
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return ae
		}
		return apperr.Upstream(0, err)
	}

	if err := Decode(raw, shape, out); err != nil {
		log.Error("malformed model response",
			zap.Error(err),
			zap.Int("raw_len", len(raw)),
			zap.String("raw_preview", logger.Preview(raw, rawPreviewLen)),
		)
		return err
	}
	return nil
}
