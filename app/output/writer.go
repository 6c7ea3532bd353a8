package output

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/cros-releases/app/feed"
)

const banner = "============"

// Writer emits processed releases in one of the supported formats.
type Writer struct {
	out      io.Writer
	notifier Notifier
	banner   lipgloss.Style
}

func NewWriter(out io.Writer, notifier Notifier) *Writer {
	// Colour only when out is a terminal.
	renderer := lipgloss.NewRenderer(out)

	return &Writer{
		out:      out,
		notifier: notifier,
		banner:   renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
	}
}

func (w *Writer) Run(releases []feed.Release, format Format) error {
	switch format {
	case FormatJSON:
		return w.writeJSON(releases)
	case FormatPretty:
		return w.writePretty(releases)
	case FormatYAML:
		return w.writeYAML(releases)
	case FormatRSS:
		_, err := io.WriteString(w.out, renderRSS(releases))
		if err != nil {
			return fmt.Errorf("failed to write rss: %w", err)
		}
		return nil
	case FormatNotification:
		return w.notify(releases)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func (w *Writer) writeJSON(releases []feed.Release) error {
	if releases == nil {
		releases = []feed.Release{}
	}

	data, err := json.Marshal(releases)
	if err != nil {
		return fmt.Errorf("failed to encode releases: %w", err)
	}

	if _, err := fmt.Fprintf(w.out, "%s\n", data); err != nil {
		return fmt.Errorf("failed to write json: %w", err)
	}
	return nil
}

func (w *Writer) writePretty(releases []feed.Release) error {
	if len(releases) == 0 {
		return nil
	}

	top := w.banner.Render(banner)
	blocks := make([]string, 0, len(releases))
	for _, release := range releases {
		released := release.Timestamp.Local().Format("02/01/2006 15:04")
		blocks = append(blocks, fmt.Sprintf("%s\n%s\nReleased at %s\n%s\n%s",
			top, release.Title, released, top, release.Content))
	}

	if _, err := fmt.Fprintln(w.out, strings.Join(blocks, "\n")); err != nil {
		return fmt.Errorf("failed to write releases: %w", err)
	}
	return nil
}

func (w *Writer) writeYAML(releases []feed.Release) error {
	if releases == nil {
		releases = []feed.Release{}
	}

	encoder := yaml.NewEncoder(w.out)
	encoder.SetIndent(2)
	if err := encoder.Encode(releases); err != nil {
		return fmt.Errorf("failed to encode releases: %w", err)
	}
	return encoder.Close()
}

func (w *Writer) notify(releases []feed.Release) error {
	if w.notifier == nil {
		return fmt.Errorf("notification output requires a notifier")
	}

	for _, release := range releases {
		title := fmt.Sprintf("ChromeOS Release on %s", release.Timestamp.Local().Format("2006/01/02"))
		if err := w.notifier.Notify(title, release.Summary); err != nil {
			return fmt.Errorf("failed to send notification for %q: %w", release.Title, err)
		}
		slog.Debug("Notification sent", "title", release.Title)
	}
	return nil
}
