package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/termmark/internal/semantic"
	"github.com/dshills/termmark/internal/terminal"
)

// convertColor maps an engine color to tcell.
func convertColor(c terminal.Color) tcell.Color {
	switch c.Kind {
	case terminal.ColorIndexed:
		return tcell.PaletteColor(int(c.Index))
	case terminal.ColorRGB:
		return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	default:
		return tcell.ColorDefault
	}
}

// convertStyle maps an engine cell's colors and attributes to a tcell
// style.
func convertStyle(cell terminal.Cell) tcell.Style {
	style := tcell.StyleDefault.
		Foreground(convertColor(cell.FG)).
		Background(convertColor(cell.BG))

	if cell.Attr.Has(terminal.AttrBold) {
		style = style.Bold(true)
	}
	if cell.Attr.Has(terminal.AttrDim) {
		style = style.Dim(true)
	}
	if cell.Attr.Has(terminal.AttrItalic) {
		style = style.Italic(true)
	}
	if cell.Attr.Has(terminal.AttrUnderline) {
		style = style.Underline(true)
	}
	if cell.Attr.Has(terminal.AttrBlink) {
		style = style.Blink(true)
	}
	if cell.Attr.Has(terminal.AttrReverse) {
		style = style.Reverse(true)
	}
	if cell.Attr.Has(terminal.AttrStrike) {
		style = style.StrikeThrough(true)
	}
	return style
}

// overlaySegments adjusts a style for the semantic segments covering
// the column.
func overlaySegments(style tcell.Style, segments []semantic.Segment, col int) tcell.Style {
	for _, seg := range segments {
		if col < seg.Start || col >= seg.End {
			continue
		}
		switch seg.Kind {
		case semantic.SegmentHyperlink:
			style = style.Underline(true).Url(seg.Metadata)
		case semantic.SegmentPrompt:
			style = style.Dim(true)
		case semantic.SegmentAnnotation:
			style = style.Italic(true)
		}
	}
	return style
}

// cursorStyle maps the engine's cursor shape to tcell.
func cursorStyle(shape semantic.CursorShape) tcell.CursorStyle {
	switch shape {
	case semantic.CursorBarLeft:
		return tcell.CursorStyleSteadyBar
	case semantic.CursorUnderline:
		return tcell.CursorStyleSteadyUnderline
	default:
		return tcell.CursorStyleSteadyBlock
	}
}
