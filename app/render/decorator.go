package render

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrUnknownStyle = errors.New("unknown decorator style")

type Style string

const (
	StyleMarkdown Style = "markdown"
	StylePlain    Style = "plain"
)

func ParseStyle(s string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case StyleMarkdown:
		return StyleMarkdown, nil
	case StylePlain:
		return StylePlain, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStyle, s)
	}
}

// Decorator maps inline and block markup to text fragments. Implementations
// carry the target of the currently open link between LinkStart and LinkEnd.
type Decorator interface {
	LinkStart(url string) string
	LinkEnd() string
	EmStart() string
	EmEnd() string
	StrongStart() string
	StrongEnd() string
	StrikeoutStart() string
	StrikeoutEnd() string
	CodeStart() string
	CodeEnd() string
	Image(src, title string) string
	HeaderPrefix(level int) string
	QuotePrefix() string
	UnorderedItemPrefix() string
	OrderedItemPrefix(i int) string
	// Finalise receives every link URL seen in the document and returns
	// lines to append after it.
	Finalise(links []string) []string
	// Subblock returns an independent copy for a nested block.
	Subblock() Decorator
}

// NewDecorator returns a fresh decorator for the style.
func NewDecorator(style Style) (Decorator, error) {
	switch style {
	case StyleMarkdown:
		return NewMarkdownDecorator(), nil
	case StylePlain:
		return NewPlainDecorator(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStyle, style)
	}
}

// markup holds the decorations shared by both styles.
type markup struct {
	currentLink string
}

func (markup) EmStart() string        { return "*" }
func (markup) EmEnd() string          { return "*" }
func (markup) StrongStart() string    { return "**" }
func (markup) StrongEnd() string      { return "**" }
func (markup) StrikeoutStart() string { return "~~" }
func (markup) StrikeoutEnd() string   { return "~~" }
func (markup) CodeStart() string      { return "`" }
func (markup) CodeEnd() string        { return "`" }

func (markup) HeaderPrefix(level int) string {
	return strings.Repeat("#", level) + " "
}

func (markup) QuotePrefix() string         { return "> " }
func (markup) UnorderedItemPrefix() string { return "* " }

func (markup) OrderedItemPrefix(i int) string {
	return strconv.Itoa(i) + ". "
}

// Finalise drops the trailing link list; links are rendered inline.
func (markup) Finalise(links []string) []string {
	return nil
}

// MarkdownDecorator renders links and images as markdown.
type MarkdownDecorator struct {
	markup
}

func NewMarkdownDecorator() *MarkdownDecorator {
	return &MarkdownDecorator{}
}

func (d *MarkdownDecorator) LinkStart(url string) string {
	d.currentLink = url
	return "["
}

func (d *MarkdownDecorator) LinkEnd() string {
	return "](" + d.currentLink + ")"
}

func (d *MarkdownDecorator) Image(src, title string) string {
	return "[" + title + "](" + src + ")"
}

func (d *MarkdownDecorator) Subblock() Decorator {
	c := *d
	return &c
}

// PlainDecorator leaves link text unmarked and appends the target in parentheses.
type PlainDecorator struct {
	markup
}

func NewPlainDecorator() *PlainDecorator {
	return &PlainDecorator{}
}

func (d *PlainDecorator) LinkStart(url string) string {
	d.currentLink = url
	return ""
}

func (d *PlainDecorator) LinkEnd() string {
	return " (" + d.currentLink + ")"
}

func (d *PlainDecorator) Image(src, title string) string {
	return " " + title + " (" + src + ")"
}

func (d *PlainDecorator) Subblock() Decorator {
	c := *d
	return &c
}

var (
	_ Decorator = (*MarkdownDecorator)(nil)
	_ Decorator = (*PlainDecorator)(nil)
)
