package feed

import (
	"strings"
)

// trailingLines is the number of footer lines every announcement ends with.
const trailingLines = 4

var (
	updatePatterns = []string{
		"is being updated",
		"has been updated",
		"is updated in",
		"was updated in",
		"has been promoted to",
		"A new LT",
		"The new LT",
	}

	referencePatterns = []string{
		"See the latest release",
		"Release notes for",
	}

	securityFixPatterns = []string{
		"This update contains selective Security fixes",
		"This update contains selected Security fixes",
		"This update contains multiple Security fixes",
		"ChromeOS Vulnerability Bug Fixes",
		"Security Fixes And Rewards",
	}
)

const summaryCutoff = "Want to know"

// filterState only ever moves from stateActive to stateInactive.
type filterState int

const (
	stateActive filterState = iota
	stateInactive
)

// Filterer strips announcement boilerplate from rendered release text and
// picks the summary line.
type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run filters the rendered text of one entry. With enabled false the text is
// returned unchanged and the summary is empty.
func (f *Filterer) Run(text string, enabled bool) (string, string) {
	if !enabled {
		return "", text
	}

	lines := strings.Split(text, "\n")
	lines = DedupLines(lines)
	lines = DropTrailing(lines, trailingLines)

	state := stateActive
	summary := ""
	filtered := make([]string, 0, len(lines))

	for _, line := range lines {
		if state == stateInactive {
			filtered = append(filtered, line)
			continue
		}

		switch {
		case containsAny(line, updatePatterns):
			formatted := summaryLine(line)
			summary = formatted
			filtered = append(filtered, formatted)
		case containsAny(line, referencePatterns):
			filtered = append(filtered, line)
		case containsAny(line, securityFixPatterns):
			filtered = append(filtered, "", line)
			state = stateInactive
		}
	}

	return summary, strings.Join(filtered, "\n")
}

// DedupLines collapses runs of identical adjacent lines into one.
func DedupLines(lines []string) []string {
	result := make([]string, 0, len(lines))
	for i, line := range lines {
		if i > 0 && line == lines[i-1] {
			continue
		}
		result = append(result, line)
	}
	return result
}

// DropTrailing removes the last n lines, or all of them when there are fewer.
func DropTrailing(lines []string, n int) []string {
	if len(lines) <= n {
		return lines[:0]
	}
	return lines[:len(lines)-n]
}

func summaryLine(line string) string {
	before, _, _ := strings.Cut(line, summaryCutoff)
	return strings.TrimSpace(before)
}

func containsAny(line string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(line, pattern) {
			return true
		}
	}
	return false
}
