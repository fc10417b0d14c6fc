package docx

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readPart(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			require.NoError(t, err)
			defer rc.Close()
			body, err := io.ReadAll(rc)
			require.NoError(t, err)
			return string(body)
		}
	}
	t.Fatalf("part %s not found", name)
	return ""
}

func TestDocumentPackage(t *testing.T) {
	doc := New()
	doc.Add(Paragraph{
		Align: AlignCenter,
		Runs:  []Run{{Text: "ANN LEE", Bold: true, SizePt: 24, Color: "2E7D32", Font: "Arial"}},
	})
	doc.Add(Paragraph{BorderBottom: true, BorderColor: "2E7D32", Runs: []Run{{Text: "EXPERIENCE"}}})
	doc.AddText("R&D <lead>\nsecond line", Run{Italic: true})

	data, err := doc.Bytes()
	require.NoError(t, err)

	assert.Contains(t, readPart(t, data, "[Content_Types].xml"), "wordprocessingml")

	body := readPart(t, data, "word/document.xml")
	assert.Contains(t, body, `<w:jc w:val="center">`)
	assert.Contains(t, body, `<w:sz w:val="48">`)
	assert.Contains(t, body, `<w:color w:val="2E7D32">`)
	assert.Contains(t, body, `w:ascii="Arial"`)
	assert.Contains(t, body, `<w:b></w:b>`)
	assert.Contains(t, body, `<w:i></w:i>`)
	assert.Contains(t, body, `<w:bottom w:val="single"`)
	assert.Contains(t, body, `w:color="2E7D32"`)
	assert.Contains(t, body, "R&amp;D &lt;lead&gt;")
	assert.Contains(t, body, "<w:br")
	assert.Contains(t, body, "second line")
	assert.Equal(t, 3, doc.Len())
}

func TestParagraphSpacing(t *testing.T) {
	doc := New()
	doc.Add(Paragraph{SpacingBefore: 6, SpacingAfter: 4, Runs: []Run{{Text: "Summary"}}})

	data, err := doc.Bytes()
	require.NoError(t, err)

	body := readPart(t, data, "word/document.xml")
	assert.Contains(t, body, `w:before="120"`)
	assert.Contains(t, body, `w:after="80"`)
}

func TestPlainParagraphHasNoProperties(t *testing.T) {
	assert.Nil(t, paragraphProps(Paragraph{Align: AlignLeft}))
	assert.Nil(t, buildRun(Run{Text: "plain"}).Property)
	assert.Len(t, buildRun(Run{Text: "a\nb"}).Children, 3)
}
