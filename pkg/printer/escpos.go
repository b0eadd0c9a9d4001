package printer

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// ESC/POS command bytes
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Text alignment
const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

// Character size (GS !)
const (
	FontNormal = 0x00
	FontDouble = 0x11
)

const defaultWidth = 32

// Document builds an ESC/POS byte stream line by line.
type Document struct {
	buf   bytes.Buffer
	width int
}

// NewDocument starts a document for a printer with charWidth columns.
func NewDocument(charWidth int) *Document {
	if charWidth <= 0 {
		charWidth = defaultWidth
	}
	d := &Document{width: charWidth}
	d.buf.Write([]byte{ESC, '@'})
	return d
}

// Width returns the number of columns per line.
func (d *Document) Width() int {
	return d.width
}

func (d *Document) SetAlign(align int) *Document {
	d.buf.Write([]byte{ESC, 'a', byte(align)})
	return d
}

func (d *Document) SetBold(on bool) *Document {
	b := byte(0)
	if on {
		b = 1
	}
	d.buf.Write([]byte{ESC, 'E', b})
	return d
}

func (d *Document) SetFontSize(size byte) *Document {
	d.buf.Write([]byte{GS, '!', size})
	return d
}

// Text writes s clipped to the line width.
func (d *Document) Text(s string) *Document {
	d.buf.WriteString(clip(s, d.width))
	d.buf.WriteByte(LF)
	return d
}

// Feed writes n empty lines.
func (d *Document) Feed(n int) *Document {
	for i := 0; i < n; i++ {
		d.buf.WriteByte(LF)
	}
	return d
}

// Rule prints a full-width line of char.
func (d *Document) Rule(char rune) *Document {
	d.buf.WriteString(strings.Repeat(string(char), d.width))
	d.buf.WriteByte(LF)
	return d
}

// Row prints left flush left and right flush right on one line.
// The left side is clipped so the right side always fits.
func (d *Document) Row(left, right string) *Document {
	rightLen := utf8.RuneCountInString(right)
	left = clip(left, d.width-rightLen-1)
	spaces := d.width - utf8.RuneCountInString(left) - rightLen
	if spaces < 1 {
		spaces = 1
	}
	d.buf.WriteString(left)
	d.buf.WriteString(strings.Repeat(" ", spaces))
	d.buf.WriteString(right)
	d.buf.WriteByte(LF)
	return d
}

// Cut feeds the paper past the tear bar and partially cuts it.
func (d *Document) Cut() *Document {
	d.Feed(3)
	d.buf.Write([]byte{GS, 'V', 0x01})
	return d
}

// Bytes returns the accumulated byte stream.
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

func clip(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width])
}
