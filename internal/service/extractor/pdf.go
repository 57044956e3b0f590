package extractor

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF pulls plain text page by page. A page that fails to decode is
// skipped so the rest of the document still contributes text.
func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, text)
	}

	return strings.Join(pages, "\n"), nil
}
