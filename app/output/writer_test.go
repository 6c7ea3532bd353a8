package output

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/cros-releases/app/feed"
)

type notification struct {
	title   string
	message string
}

type fakeNotifier struct {
	sent []notification
	err  error
}

func (n *fakeNotifier) Notify(title, message string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification{title: title, message: message})
	return nil
}

func sampleReleases() []feed.Release {
	return []feed.Release{
		{
			Title:     "Stable Channel Update for ChromeOS",
			Summary:   "The Stable channel is being updated to 124.0.6367.95",
			Content:   "The Stable channel is being updated to 124.0.6367.95\n",
			Timestamp: time.Date(2024, 5, 2, 17, 4, 0, 0, time.UTC),
			Link:      "https://chromereleases.googleblog.com/2024/05/stable.html",
		},
		{
			Title:     "Beta Channel Update for ChromeOS",
			Summary:   "",
			Content:   "Beta <notes> & fixes\n",
			Timestamp: time.Date(2024, 4, 30, 9, 15, 0, 0, time.UTC),
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{" Pretty ", FormatPretty, false},
		{"YAML", FormatYAML, false},
		{"rss", FormatRSS, false},
		{"notification", FormatNotification, false},
		{"xml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("ParseFormat(%q) error = %v, want ErrUnknownFormat", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	releases := sampleReleases()

	if err := NewWriter(&buf, nil).Run(releases, FormatJSON); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var got []feed.Release
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if diff := cmp.Diff(releases, got); diff != "" {
		t.Errorf("decoded releases mismatch (-want +got):\n%s", diff)
	}
	if strings.Count(buf.String(), `"link"`) != 1 {
		t.Errorf("expected link to be omitted when empty:\n%s", buf.String())
	}
}

func TestWriterJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf, nil).Run(nil, FormatJSON); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := buf.String(); got != "[]\n" {
		t.Errorf("Run(nil) = %q, want %q", got, "[]\n")
	}
}

func TestWriterPretty(t *testing.T) {
	var buf bytes.Buffer
	releases := sampleReleases()

	if err := NewWriter(&buf, nil).Run(releases, FormatPretty); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := "============\n" +
		"Stable Channel Update for ChromeOS\n" +
		"Released at " + releases[0].Timestamp.Local().Format("02/01/2006 15:04") + "\n" +
		"============\n" +
		"The Stable channel is being updated to 124.0.6367.95\n" +
		"\n" +
		"============\n" +
		"Beta Channel Update for ChromeOS\n" +
		"Released at " + releases[1].Timestamp.Local().Format("02/01/2006 15:04") + "\n" +
		"============\n" +
		"Beta <notes> & fixes\n" +
		"\n"

	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("pretty output mismatch (-want +got):\n%s", diff)
	}
}

func TestWriterPrettyEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf, nil).Run(nil, FormatPretty); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Run(nil) wrote %q, want nothing", buf.String())
	}
}

func TestWriterYAML(t *testing.T) {
	var buf bytes.Buffer
	releases := sampleReleases()

	if err := NewWriter(&buf, nil).Run(releases, FormatYAML); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var got []feed.Release
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid YAML: %v\n%s", err, buf.String())
	}
	if diff := cmp.Diff(releases, got); diff != "" {
		t.Errorf("decoded releases mismatch (-want +got):\n%s", diff)
	}
}

func TestWriterRSS(t *testing.T) {
	var buf bytes.Buffer
	releases := sampleReleases()

	if err := NewWriter(&buf, nil).Run(releases, FormatRSS); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	output := buf.String()

	var doc struct {
		Channel struct {
			Title string `xml:"title"`
			Items []struct {
				Title       string `xml:"title"`
				Link        string `xml:"link"`
				Description string `xml:"description"`
				Content     string `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
				PubDate     string `xml:"pubDate"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	if err := xml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid XML: %v\n%s", err, output)
	}

	if doc.Channel.Title != channelTitle {
		t.Errorf("channel title = %q, want %q", doc.Channel.Title, channelTitle)
	}
	if len(doc.Channel.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(doc.Channel.Items))
	}

	first := doc.Channel.Items[0]
	if first.Description != releases[0].Summary {
		t.Errorf("description = %q, want summary %q", first.Description, releases[0].Summary)
	}
	if first.PubDate != "Thu, 02 May 2024 17:04:00 +0000" {
		t.Errorf("pubDate = %q", first.PubDate)
	}

	second := doc.Channel.Items[1]
	if second.Description != releases[1].Title {
		t.Errorf("description = %q, want title fallback", second.Description)
	}
	if second.Content != releases[1].Content {
		t.Errorf("content = %q, want %q", second.Content, releases[1].Content)
	}
	if second.Link != "" {
		t.Errorf("link = %q, want none", second.Link)
	}
	if strings.Contains(output, "Beta <notes>") {
		t.Error("content was not escaped")
	}
}

func TestWriterNotification(t *testing.T) {
	notifier := &fakeNotifier{}
	releases := sampleReleases()

	if err := NewWriter(&bytes.Buffer{}, notifier).Run(releases, FormatNotification); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []notification{
		{
			title:   "ChromeOS Release on " + releases[0].Timestamp.Local().Format("2006/01/02"),
			message: releases[0].Summary,
		},
		{
			title:   "ChromeOS Release on " + releases[1].Timestamp.Local().Format("2006/01/02"),
			message: "",
		},
	}
	if diff := cmp.Diff(want, notifier.sent, cmp.AllowUnexported(notification{})); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestWriterNotificationError(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("no dbus")}

	err := NewWriter(&bytes.Buffer{}, notifier).Run(sampleReleases(), FormatNotification)
	if err == nil {
		t.Fatal("Run() error = nil, want notifier failure")
	}
	if !strings.Contains(err.Error(), "no dbus") {
		t.Errorf("Run() error = %v, want wrapped notifier error", err)
	}
}

func TestWriterUnknownFormat(t *testing.T) {
	err := NewWriter(&bytes.Buffer{}, nil).Run(sampleReleases(), Format("csv"))
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Run() error = %v, want ErrUnknownFormat", err)
	}
}
