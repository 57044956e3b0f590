package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fumiama/go-docx"
)

// extractDOCX concatenates paragraph text in document order. Legacy .doc
// files go through the same parser and degrade to empty when it rejects them.
func extractDOCX(data []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var paragraphs []string
	for _, item := range doc.Document.Body.Items {
		if para, ok := item.(*docx.Paragraph); ok {
			paragraphs = append(paragraphs, fmt.Sprint(para))
		}
	}

	return strings.Join(paragraphs, "\n"), nil
}
