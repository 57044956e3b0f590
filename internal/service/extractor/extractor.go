package extractor

import (
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

type extractFunc func(data []byte) (string, error)

// Extractor turns raw file bytes into comparable text. Dispatch is a lookup
// table keyed by the lowercased file extension; anything unrecognized is read
// as plain text. Extract never fails: unreadable or corrupt input degrades to
// an empty string, which the scorer treats as insufficient content.
type Extractor struct {
	byExt  map[string]extractFunc
	logger zerolog.Logger
}

func New(logger zerolog.Logger) *Extractor {
	return &Extractor{
		byExt: map[string]extractFunc{
			".txt":  extractPlainText,
			".pdf":  extractPDF,
			".docx": extractDOCX,
			".doc":  extractDOCX,
			".xlsx": extractXLSX,
			".xls":  extractXLSX,
		},
		logger: logger,
	}
}

// Extract picks the extractor for the file's extension and runs it. Panics
// from the format parsers are recovered here so one malformed student upload
// never takes down a whole run.
func (e *Extractor) Extract(path string, data []byte) (text string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Debug().
				Str("path", path).
				Interface("panic", r).
				Msg("Extractor panicked, treating file as empty")
			text = ""
		}
	}()

	ext := strings.ToLower(filepath.Ext(path))

	fn, ok := e.byExt[ext]
	if !ok {
		fn = extractPlainText
	}

	out, err := fn(data)
	if err != nil {
		e.logger.Debug().
			Err(err).
			Str("path", path).
			Str("ext", ext).
			Msg("Extraction failed, treating file as empty")
		return ""
	}

	return out
}

// extractPlainText decodes bytes as UTF-8, replacing invalid sequences
// instead of failing. Also the fallback for unrecognized extensions.
func extractPlainText(data []byte) (string, error) {
	return strings.ToValidUTF8(string(data), "�"), nil
}
