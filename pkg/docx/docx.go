// Package docx builds .docx documents made of styled paragraphs on top of
// godocx.
package docx

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/wml/ctypes"
	"github.com/gomutex/godocx/wml/stypes"
)

const ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
)

// Run is a span of text sharing one format.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
	// SizePt is the font size in points; zero keeps the default.
	SizePt int
	// Color is a hex RGB value such as "2E7D32".
	Color string
	Font  string
}

// Paragraph is a block of runs.
type Paragraph struct {
	Runs         []Run
	Align        Alignment
	BorderBottom bool
	BorderColor  string
	// SpacingAfter is expressed in points.
	SpacingAfter  int
	SpacingBefore int
}

// Document accumulates paragraphs in order.
type Document struct {
	paragraphs []Paragraph
}

func New() *Document {
	return &Document{}
}

func (d *Document) Add(p Paragraph) {
	d.paragraphs = append(d.paragraphs, p)
}

// AddText appends a single-run paragraph.
func (d *Document) AddText(text string, run Run) {
	run.Text = text
	d.Add(Paragraph{Runs: []Run{run}})
}

func (d *Document) Len() int {
	return len(d.paragraphs)
}

// Bytes renders the document as a .docx archive.
func (d *Document) Bytes() ([]byte, error) {
	root, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("docx: new document: %w", err)
	}
	defer root.Close()

	for _, p := range d.paragraphs {
		ct := root.AddEmptyParagraph().GetCT()
		ct.Property = paragraphProps(p)
		for _, r := range p.Runs {
			ct.Children = append(ct.Children, ctypes.ParagraphChild{Run: buildRun(r)})
		}
	}

	var buf bytes.Buffer
	if err := root.Write(&buf); err != nil {
		return nil, fmt.Errorf("docx: write: %w", err)
	}
	return buf.Bytes(), nil
}

func paragraphProps(p Paragraph) *ctypes.ParagraphProp {
	centered := p.Align != "" && p.Align != AlignLeft
	if !p.BorderBottom && !centered && p.SpacingBefore == 0 && p.SpacingAfter == 0 {
		return nil
	}

	props := ctypes.DefaultParaProperty()
	if p.BorderBottom {
		color := p.BorderColor
		if color == "" {
			color = "auto"
		}
		space := "1"
		props.Border = &ctypes.ParaBorder{
			Bottom: &ctypes.Border{Val: stypes.BorderStyleSingle, Color: &color, Space: &space},
		}
	}
	if p.SpacingBefore > 0 || p.SpacingAfter > 0 {
		// Spacing is in twentieths of a point.
		before := uint64(p.SpacingBefore * 20)
		after := uint64(p.SpacingAfter * 20)
		props.Spacing = &ctypes.Spacing{Before: &before, After: &after}
	}
	if centered {
		props.Justification = ctypes.NewGenSingleStrVal(stypes.Justification(p.Align))
	}
	return props
}

func buildRun(r Run) *ctypes.Run {
	run := &ctypes.Run{}

	props := &ctypes.RunProperty{}
	styled := false
	if r.Font != "" {
		props.Fonts = &ctypes.RunFonts{Ascii: r.Font, HAnsi: r.Font, CS: r.Font}
		styled = true
	}
	if r.Bold {
		props.Bold = &ctypes.OnOff{}
		styled = true
	}
	if r.Italic {
		props.Italic = &ctypes.OnOff{}
		styled = true
	}
	if r.Color != "" {
		props.Color = ctypes.NewColor(r.Color)
		styled = true
	}
	if r.SizePt > 0 {
		// Size is in half-points.
		props.Size = ctypes.NewFontSize(uint64(r.SizePt * 2))
		styled = true
	}
	if styled {
		run.Property = props
	}

	for i, line := range strings.Split(r.Text, "\n") {
		if i > 0 {
			run.Children = append(run.Children, ctypes.RunChild{Break: &ctypes.Break{}})
		}
		run.Children = append(run.Children, ctypes.RunChild{Text: ctypes.TextFromString(line)})
	}
	return run
}
