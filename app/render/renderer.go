package render

import (
	"log/slog"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Renderer converts HTML into newline-terminated text lines without
// wrapping. All markup is delegated to a Decorator.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Run(body string, dec Decorator) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		slog.Warn("Failed to parse HTML, returning raw body", "error", err)
		return body
	}

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	w := &walker{}
	b := &block{}
	w.formatSelection(b, root, dec)

	lines := b.finish()
	lines = append(lines, dec.Finalise(w.links)...)
	if len(lines) == 0 {
		return ""
	}

	return norm.NFC.String(strings.Join(lines, "\n") + "\n")
}

// walker holds state shared by every block of a single render pass.
type walker struct {
	links     []string
	listDepth int
}

func (w *walker) formatSelection(b *block, sel *goquery.Selection, dec Decorator) {
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		node := s.Nodes[0]

		switch node.Type {
		case html.TextNode:
			b.writeText(node.Data)
		case html.ElementNode:
			w.formatElement(b, s, goquery.NodeName(s), dec)
		}
	})
}

func (w *walker) formatElement(b *block, s *goquery.Selection, tag string, dec Decorator) {
	switch tag {
	case "script", "style", "head", "title", "noscript", "template":
		return

	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(tag[1] - '0')
		b.startBlock(true)
		sub := &block{}
		w.formatSelection(sub, s, dec)
		b.appendPrefixed(sub.finish(), dec.HeaderPrefix(level), dec.HeaderPrefix(level))
		b.endBlock(true)

	case "p", "table", "hr":
		b.startBlock(true)
		w.formatSelection(b, s, dec)
		b.endBlock(true)

	case "pre":
		b.startBlock(true)
		wasPre := b.pre
		b.pre = true
		w.formatSelection(b, s, dec)
		b.pre = wasPre
		b.endBlock(true)

	case "blockquote":
		b.startBlock(true)
		sub := &block{}
		w.formatSelection(sub, s, dec.Subblock())
		b.appendPrefixed(sub.finish(), dec.QuotePrefix(), dec.QuotePrefix())
		b.endBlock(true)

	case "ul", "ol":
		w.formatList(b, s, tag == "ol", dec)

	case "div", "section", "article", "main", "header", "footer", "nav", "aside",
		"figure", "figcaption", "address", "center", "details", "summary",
		"dl", "dt", "dd", "li", "tr", "tbody", "thead", "tfoot", "form":
		b.startBlock(false)
		w.formatSelection(b, s, dec)
		b.endBlock(false)

	case "br":
		b.breakLine()

	case "td", "th":
		b.writeText(" ")
		w.formatSelection(b, s, dec)
		b.writeText(" ")

	case "a":
		href, ok := s.Attr("href")
		if !ok {
			w.formatSelection(b, s, dec)
			return
		}
		w.links = append(w.links, href)
		b.writeInline(dec.LinkStart(href))
		w.formatSelection(b, s, dec)
		b.writeClose(dec.LinkEnd())

	case "em", "i":
		w.formatInline(b, s, dec.EmStart(), dec.EmEnd(), dec)

	case "strong", "b":
		w.formatInline(b, s, dec.StrongStart(), dec.StrongEnd(), dec)

	case "s", "strike", "del":
		w.formatInline(b, s, dec.StrikeoutStart(), dec.StrikeoutEnd(), dec)

	case "code", "tt", "kbd", "samp":
		if b.pre {
			w.formatSelection(b, s, dec)
			return
		}
		w.formatInline(b, s, dec.CodeStart(), dec.CodeEnd(), dec)

	case "img":
		src, _ := s.Attr("src")
		if src == "" {
			return
		}
		title, _ := s.Attr("alt")
		if title == "" {
			title, _ = s.Attr("title")
		}
		b.writeInline(dec.Image(src, title))

	default:
		w.formatSelection(b, s, dec)
	}
}

func (w *walker) formatInline(b *block, s *goquery.Selection, start, end string, dec Decorator) {
	b.writeInline(start)
	w.formatSelection(b, s, dec)
	b.writeClose(end)
}

// formatList renders each item as its own sub-block. Only top-level lists
// are separated from surrounding paragraphs by blank lines.
func (w *walker) formatList(b *block, s *goquery.Selection, ordered bool, dec Decorator) {
	spaced := w.listDepth == 0
	b.startBlock(spaced)

	index := 1
	if start, ok := s.Attr("start"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(start)); err == nil {
			index = n
		}
	}

	w.listDepth++
	s.Children().Each(func(_ int, li *goquery.Selection) {
		if goquery.NodeName(li) != "li" {
			w.formatElement(b, li, goquery.NodeName(li), dec)
			return
		}

		prefix := dec.UnorderedItemPrefix()
		if ordered {
			prefix = dec.OrderedItemPrefix(index)
			index++
		}

		sub := &block{}
		w.formatSelection(sub, li, dec.Subblock())
		lines := sub.finish()
		if len(lines) == 0 {
			lines = []string{""}
		}
		b.appendPrefixed(lines, prefix, strings.Repeat(" ", utf8.RuneCountInString(prefix)))
	})
	w.listDepth--

	b.endBlock(spaced)
}

// block accumulates the lines of one rendering context.
type block struct {
	lines    []string
	line     strings.Builder
	lineOpen bool
	space    bool // a collapsed space is due before the next word
	blank    bool // a blank line is due before the next line
	pre      bool
}

func (b *block) writeText(text string) {
	if text == "" {
		return
	}

	if b.pre {
		for i, part := range strings.Split(text, "\n") {
			if i > 0 {
				b.breakLine()
			}
			if part != "" {
				b.openLine()
				b.line.WriteString(part)
			}
		}
		return
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		if b.line.Len() > 0 {
			b.space = true
		}
		return
	}

	first, _ := utf8.DecodeRuneInString(text)
	if unicode.IsSpace(first) && b.line.Len() > 0 {
		b.space = true
	}

	b.writeInline(strings.Join(words, " "))

	last, _ := utf8.DecodeLastRuneInString(text)
	b.space = unicode.IsSpace(last)
}

// writeInline writes an opening fragment or word, emitting any pending space first.
func (b *block) writeInline(s string) {
	if s == "" {
		return
	}
	b.openLine()
	if b.space && b.line.Len() > 0 {
		b.line.WriteByte(' ')
	}
	b.space = false
	b.line.WriteString(s)
}

// writeClose writes a closing fragment directly after the preceding text,
// keeping a pending space for the next word.
func (b *block) writeClose(s string) {
	if s == "" {
		return
	}
	b.openLine()
	b.line.WriteString(s)
}

func (b *block) openLine() {
	if b.lineOpen {
		return
	}
	if b.blank && len(b.lines) > 0 {
		b.lines = append(b.lines, "")
	}
	b.blank = false
	b.lineOpen = true
}

func (b *block) flushLine() {
	if !b.lineOpen {
		return
	}
	b.lines = append(b.lines, b.line.String())
	b.line.Reset()
	b.lineOpen = false
	b.space = false
}

func (b *block) breakLine() {
	b.openLine()
	b.flushLine()
}

func (b *block) startBlock(spaced bool) {
	b.flushLine()
	if spaced {
		b.blank = true
	}
}

func (b *block) endBlock(spaced bool) {
	b.flushLine()
	if spaced {
		b.blank = true
	}
}

func (b *block) appendPrefixed(lines []string, first, rest string) {
	for i, l := range lines {
		prefix := rest
		if i == 0 {
			prefix = first
		}
		b.openLine()
		if l == "" {
			b.line.WriteString(strings.TrimRight(prefix, " "))
		} else {
			b.line.WriteString(prefix)
			b.line.WriteString(l)
		}
		b.flushLine()
	}
}

func (b *block) finish() []string {
	b.flushLine()
	return b.lines
}
