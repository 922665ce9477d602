// Package export converts a markdown study summary into downloadable PDF and DOCX documents.
package export

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/forPelevin/gomoji"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type Kind int

const (
	Body Kind = iota
	Heading1
	Heading2
)

// Block is one paragraph of exported text.
type Block struct {
	Kind Kind
	Text string
	// Indent is the list nesting depth, 0 outside lists.
	Indent int
}

// Style is how a block kind is rendered in each format.
type Style struct {
	PDFSize    float64
	DOCXSize   int // half-points
	Bold       bool
	FontFamily string
}

var styles = map[Kind]Style{
	Heading1: {PDFSize: 22, DOCXSize: 32, Bold: true, FontFamily: "Arial"},
	Heading2: {PDFSize: 18, DOCXSize: 28, Bold: true, FontFamily: "Arial"},
	Body:     {PDFSize: 14, DOCXSize: 24, FontFamily: "Arial"},
}

func StyleFor(k Kind) Style {
	if s, ok := styles[k]; ok {
		return s
	}
	return styles[Body]
}

// Parse walks the markdown document and returns its text blocks in order. Emoji are
// removed and blocks left empty are dropped.
func Parse(markdown string) []Block {
	src := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var blocks []Block
	add := func(k Kind, s string, indent int) {
		s = strings.Join(strings.Fields(gomoji.RemoveEmojis(s)), " ")
		if s == "" {
			return
		}
		blocks = append(blocks, Block{Kind: k, Text: s, Indent: indent})
	}

	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			kind := Body
			switch n.Level {
			case 1:
				kind = Heading1
			case 2:
				kind = Heading2
			}
			add(kind, inlineText(n, src), 0)
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.TextBlock:
			add(Body, listMarker(n)+inlineText(n, src), listDepth(n))
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				add(Body, string(seg.Value(src)), listDepth(n))
			}
			return ast.WalkSkipChildren, nil
		case *ast.HTMLBlock, *ast.ThematicBreak:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return blocks
}

func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			buf.Write(c.Segment.Value(src))
			if c.SoftLineBreak() || c.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(c.Value)
		case *ast.AutoLink:
			buf.Write(c.Label(src))
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

// listMarker returns the bullet or number for the first paragraph of a list item.
func listMarker(n ast.Node) string {
	item, ok := n.Parent().(*ast.ListItem)
	if !ok || item.FirstChild() != n {
		return ""
	}
	list, ok := item.Parent().(*ast.List)
	if !ok {
		return ""
	}
	if !list.IsOrdered() {
		return "• "
	}
	pos := list.Start
	for s := item.PreviousSibling(); s != nil; s = s.PreviousSibling() {
		pos++
	}
	return strconv.Itoa(pos) + ". "
}

func listDepth(n ast.Node) int {
	depth := 0
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == ast.KindList {
			depth++
		}
	}
	return depth
}
