// Package validate enforces the submission contract for raw claims before
// they enter the stream. The sink applies its own document-level checks;
// this package is the producer-side gate.
package validate

import (
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/truthstream/truthstream/internal/model"
)

// MaxTextLen is the longest claim text accepted from producers, in bytes.
const MaxTextLen = 1000

var (
	// ErrInvalid marks all submission validation failures.
	ErrInvalid = errors.New("invalid claim submission")

	errEmptyText       = errors.Mark(errors.New("text is required"), ErrInvalid)
	errTextTooLong     = errors.Mark(errors.Newf("text exceeds %d bytes", MaxTextLen), ErrInvalid)
	errTextNotUTF8     = errors.Mark(errors.New("text is not valid UTF-8"), ErrInvalid)
	errUnknownCategory = errors.Mark(errors.New("unknown category"), ErrInvalid)
	errEmptySource     = errors.Mark(errors.New("source is required"), ErrInvalid)
)

// Submission checks a user-submitted claim against the producer contract:
// non-empty UTF-8 text up to MaxTextLen bytes, a recognized category, and a
// non-empty source. Returned errors match ErrInvalid via errors.Is.
func Submission(text, category, source string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errEmptyText
	}
	if len(text) > MaxTextLen {
		return errTextTooLong
	}
	if !utf8.ValidString(text) {
		return errTextNotUTF8
	}
	if !knownCategory(category) {
		return errUnknownCategory
	}
	if strings.TrimSpace(source) == "" {
		return errEmptySource
	}
	return nil
}

func knownCategory(category string) bool {
	for _, c := range model.Categories() {
		if c == category {
			return true
		}
	}
	return false
}
