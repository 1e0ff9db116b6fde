package utils

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/amaumene/cinematheque/internal/models"
)

// ParseQuality maps free text to a quality tier.
// Returns false when the text does not name a known tier.
func ParseQuality(value string) (models.Quality, bool) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "SD":
		return models.QualitySD, true
	case "HD", "720P":
		return models.QualityHD, true
	case "FHD", "1080P":
		return models.QualityFHD, true
	case "4K", "UHD", "2160P":
		return models.Quality4K, true
	case "8K", "4320P":
		return models.Quality8K, true
	default:
		return "", false
	}
}

var leadingNumberRegex = regexp.MustCompile(`^\s*[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseSize reads the leading number of a free-text file size ("4.5 GB" -> 4.5).
// Missing or non-numeric sizes are 0.
func ParseSize(value string) float64 {
	match := leadingNumberRegex.FindString(value)
	if match == "" {
		return 0
	}
	size, err := strconv.ParseFloat(strings.TrimSpace(match), 64)
	if err != nil {
		return 0
	}
	return size
}

var yearRegex = regexp.MustCompile(`\b(1[89]\d{2}|20\d{2})\b`)

// ExtractYear extracts a 4-digit year from a date or title string
// Returns 0 if no year is found
func ExtractYear(value string) int {
	matches := yearRegex.FindStringSubmatch(value)
	if len(matches) > 1 {
		year, err := strconv.Atoi(matches[1])
		if err == nil {
			return year
		}
	}
	return 0
}
