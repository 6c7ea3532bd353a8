package output

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/lysyi3m/cros-releases/app/cfg"
	"github.com/lysyi3m/cros-releases/app/feed"
)

const (
	channelTitle       = "ChromeOS Releases"
	channelLink        = "https://chromereleases.googleblog.com/"
	channelDescription = "ChromeOS release announcements from the Chrome Releases blog"
)

// renderRSS re-publishes releases as an RSS 2.0 channel. The summary becomes
// the item description and the rendered text goes into content:encoded.
func renderRSS(releases []feed.Release) string {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">`)
	buf.WriteString("\n  <channel>\n")

	writeElement(&buf, "title", channelTitle, 4)
	writeElement(&buf, "link", channelLink, 4)
	writeElement(&buf, "description", channelDescription, 4)

	lastBuildDate := time.Now()
	if len(releases) > 0 {
		lastBuildDate = releases[0].Timestamp
	}
	writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	writeElement(&buf, "generator", fmt.Sprintf("cros-releases/%s", cfg.GetVersion()), 4)

	for _, release := range releases {
		writeItem(&buf, release)
	}

	buf.WriteString("  </channel>\n</rss>\n")

	return buf.String()
}

func writeItem(buf *bytes.Buffer, release feed.Release) {
	buf.WriteString("    <item>\n")

	if release.Link != "" {
		buf.WriteString("      <guid isPermaLink=\"true\">")
		xml.EscapeText(buf, []byte(release.Link))
		buf.WriteString("</guid>\n")
	}

	writeElement(buf, "title", release.Title, 6)
	writeElement(buf, "link", release.Link, 6)
	writeElement(buf, "description", cmp.Or(release.Summary, release.Title), 6)

	if release.Content != "" {
		buf.WriteString("      <content:encoded>")
		xml.EscapeText(buf, []byte(release.Content))
		buf.WriteString("</content:encoded>\n")
	}

	writeElement(buf, "pubDate", release.Timestamp.Format(time.RFC1123Z), 6)

	buf.WriteString("    </item>\n")
}

func writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}
