package output

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownFormat = errors.New("unknown output format")

type Format string

const (
	FormatJSON         Format = "json"
	FormatPretty       Format = "pretty"
	FormatYAML         Format = "yaml"
	FormatRSS          Format = "rss"
	FormatNotification Format = "notification"
)

func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatJSON, FormatPretty, FormatYAML, FormatRSS, FormatNotification:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}
