package extractor

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newExtractor() *Extractor {
	return New(zerolog.Nop())
}

func TestExtract_PlainText(t *testing.T) {
	e := newExtractor()

	assert.Equal(t, "hello world", e.Extract("essay.txt", []byte("hello world")))
}

func TestExtract_PlainText_InvalidUTF8(t *testing.T) {
	e := newExtractor()

	// Invalid bytes are replaced, never dropped wholesale.
	out := e.Extract("essay.txt", []byte{'o', 'k', 0xff, 0xfe, '!'})
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "�")
}

func TestExtract_UnknownExtensionFallsBackToPlainText(t *testing.T) {
	e := newExtractor()

	assert.Equal(t, "source code", e.Extract("main.rs", []byte("source code")))
	assert.Equal(t, "no extension", e.Extract("README", []byte("no extension")))
}

func TestExtract_ExtensionCaseInsensitive(t *testing.T) {
	e := newExtractor()

	assert.Equal(t, "shouting", e.Extract("ESSAY.TXT", []byte("shouting")))
}

func TestExtract_CorruptPDF(t *testing.T) {
	e := newExtractor()

	assert.Empty(t, e.Extract("essay.pdf", []byte("not a pdf at all")))
	assert.Empty(t, e.Extract("essay.pdf", nil))
}

func TestExtract_CorruptDOCX(t *testing.T) {
	e := newExtractor()

	assert.Empty(t, e.Extract("essay.docx", []byte("not a zip archive")))
	assert.Empty(t, e.Extract("essay.doc", []byte{0x00, 0x01, 0x02}))
}

func TestExtract_CorruptXLSX(t *testing.T) {
	e := newExtractor()

	assert.Empty(t, e.Extract("grades.xlsx", []byte("garbage")))
}

func TestExtract_XLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "student"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "answer"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "row two"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	e := newExtractor()
	out := e.Extract("grades.xlsx", buf.Bytes())

	// Cells join with spaces, rows with newlines; empty cells vanish.
	assert.Equal(t, "student answer\nrow two", out)
}

func TestExtract_XLSX_EmptyWorkbook(t *testing.T) {
	f := excelize.NewFile()

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	e := newExtractor()
	assert.Empty(t, e.Extract("grades.xlsx", buf.Bytes()))
}
