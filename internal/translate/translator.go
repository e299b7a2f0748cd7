// Package translate turns recognized text into the target language.
package translate

import "context"

// Translator converts text between a fixed language pair. Failures carry a
// human-readable message for display.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}
