package summarizer

import (
	"strings"

	"postdigest/internal/domain"
)

var (
	titleMarkers   = []string{"TITLE:", "TITRE:"}
	summaryMarkers = []string{"SUMMARY:", "RESUME:", "RÉSUMÉ:"}
)

// ParseTagged extracts the title and summary lines from a model response.
// Missing tags leave the corresponding field empty.
func ParseTagged(response string) domain.Summary {
	var s domain.Summary

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*_# ")

		if v, ok := cutMarker(line, titleMarkers); ok && s.Title == "" {
			s.Title = v
			continue
		}

		if v, ok := cutMarker(line, summaryMarkers); ok && s.Synopsis == "" {
			s.Synopsis = v
		}
	}

	return s
}

func cutMarker(line string, markers []string) (string, bool) {
	for _, marker := range markers {
		if len(line) < len(marker) || !strings.EqualFold(line[:len(marker)], marker) {
			continue
		}

		value := line[len(marker):]
		value = strings.TrimLeft(value, "*_ ")
		value = strings.TrimRight(value, "*_ ")

		return strings.TrimSpace(value), true
	}

	return "", false
}
