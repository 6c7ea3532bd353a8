package feed

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/lysyi3m/cros-releases/app/render"
)

var chromeOSCategories = []string{
	"ChromeOS",
	"Chrome OS",
	"ChromeOS Flex",
	"Chrome OS Flex",
}

var underlineReplacer = strings.NewReplacer("<u>", "<strong>", "</u>", "</strong>")

type Options struct {
	Style      render.Style
	Unfiltered bool
}

// Assembler turns feed entries into releases: category filter, HTML
// rendering, boilerplate filtering.
type Assembler struct {
	renderer *render.Renderer
	filterer *Filterer
}

func NewAssembler(renderer *render.Renderer, filterer *Filterer) *Assembler {
	return &Assembler{
		renderer: renderer,
		filterer: filterer,
	}
}

func (a *Assembler) Run(entries []Entry, opts Options) ([]Release, error) {
	if _, err := render.NewDecorator(opts.Style); err != nil {
		return nil, fmt.Errorf("failed to select decorator: %w", err)
	}

	releases := make([]Release, 0, len(entries))
	excluded := 0
	incomplete := 0

	for _, entry := range entries {
		if !IsChromeOSEntry(entry) {
			excluded++
			continue
		}

		if entry.Title == "" || entry.Content == "" || entry.Updated == nil {
			slog.Debug("Entry incomplete, skipping", "title", entry.Title, "link", entry.Link)
			incomplete++
			continue
		}

		// Each entry gets its own decorator so link state never leaks across entries.
		dec, _ := render.NewDecorator(opts.Style)
		rendered := a.renderer.Run(underlineReplacer.Replace(entry.Content), dec)
		summary, content := a.filterer.Run(rendered, !opts.Unfiltered)

		releases = append(releases, Release{
			Title:     entry.Title,
			Summary:   summary,
			Content:   content,
			Timestamp: *entry.Updated,
			Link:      entry.Link,
		})
	}

	slog.Debug("Entries assembled",
		"total", len(entries),
		"excluded", excluded,
		"incomplete", incomplete,
		"releases", len(releases))

	return releases, nil
}

// IsChromeOSEntry reports whether the entry carries one of the ChromeOS category terms.
func IsChromeOSEntry(entry Entry) bool {
	for _, category := range entry.Categories {
		if slices.Contains(chromeOSCategories, category) {
			return true
		}
	}
	return false
}
