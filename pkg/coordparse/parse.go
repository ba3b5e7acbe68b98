// Package coordparse reads loosely typed decimal-degree coordinates such as
// "52,26755° N, 22,26155° E", "52.1, 22.3" or "N 52.5; E 21.0".
package coordparse

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/1F47E/nato-grid/pkg/models"
)

// ErrInvalidFormat is returned when text matches none of the accepted formats.
var ErrInvalidFormat = errors.New("invalid coordinate format")

// Formats lists the accepted layouts by example, in matching order.
var Formats = []string{
	"52.26755° N, 22.26155° E",
	"52.26755, 22.26155",
	"N 52.26755, E 22.26155",
}

const (
	number = `([-+]?\d+(?:[.,]\d+)?)`
	degree = `\s*[°º]?\s*`
)

var (
	// hemisphere letters after the magnitude, or degree signs alone
	suffixPattern = regexp.MustCompile(`(?i)^` + number + degree + `([NSEW])?\s*[,;]?\s*` + number + degree + `([NSEW])?$`)
	// bare signed pair
	plainPattern = regexp.MustCompile(`^` + number + `\s*[,;]\s*` + number + `$`)
	// hemisphere letters before the magnitude
	prefixPattern = regexp.MustCompile(`(?i)^([NSEW])\s*` + number + degree + `[,;]?\s*([NSEW])\s*` + number + degree + `$`)
)

type field struct {
	value  string
	letter string
}

// Parse converts text into a location. The result is not checked against
// any bounding box.
func Parse(text string) (models.Location, error) {
	text = strings.TrimSpace(text)

	// The two magnitudes must be apart, otherwise "52.1 N" would read as 5 and 2.1.
	if m := suffixPattern.FindStringSubmatchIndex(text); m != nil && m[3] < m[6] {
		g := func(i int) string {
			if m[2*i] < 0 {
				return ""
			}
			return text[m[2*i]:m[2*i+1]]
		}
		if g(2) != "" || g(4) != "" || strings.ContainsAny(text, "°º") {
			return build(field{g(1), g(2)}, field{g(3), g(4)}, text)
		}
	}
	if m := plainPattern.FindStringSubmatch(text); m != nil {
		return build(field{value: m[1]}, field{value: m[2]}, text)
	}
	if m := prefixPattern.FindStringSubmatch(text); m != nil {
		return build(field{m[2], m[1]}, field{m[4], m[3]}, text)
	}

	return models.Location{}, formatError(text)
}

func build(first, second field, text string) (models.Location, error) {
	a1, a2 := axis(first.letter), axis(second.letter)
	if a1 != "" && a1 == a2 {
		return models.Location{}, fmt.Errorf("%w: %q names the same axis twice", ErrInvalidFormat, text)
	}

	v1, err := signed(first)
	if err != nil {
		return models.Location{}, formatError(text)
	}
	v2, err := signed(second)
	if err != nil {
		return models.Location{}, formatError(text)
	}

	if a1 == "lon" || a2 == "lat" {
		v1, v2 = v2, v1
	}
	return models.Location{Lat: v1, Lon: v2}, nil
}

func axis(letter string) string {
	switch strings.ToUpper(letter) {
	case "N", "S":
		return "lat"
	case "E", "W":
		return "lon"
	}
	return ""
}

// signed parses the magnitude and applies the hemisphere letter, if any.
func signed(f field) (float64, error) {
	v, err := strconv.ParseFloat(strings.Replace(f.value, ",", ".", 1), 64)
	if err != nil {
		return 0, err
	}
	switch strings.ToUpper(f.letter) {
	case "N", "E":
		return math.Abs(v), nil
	case "S", "W":
		return -math.Abs(v), nil
	}
	return v, nil
}

func formatError(text string) error {
	return fmt.Errorf("%w: %q, expected one of: %s", ErrInvalidFormat, text, strings.Join(Formats, " | "))
}

// Format renders a location in the first accepted layout, with six decimals.
func Format(loc models.Location) string {
	ns, ew := "N", "E"
	if loc.Lat < 0 {
		ns = "S"
	}
	if loc.Lon < 0 {
		ew = "W"
	}
	return fmt.Sprintf("%.6f° %s, %.6f° %s", math.Abs(loc.Lat), ns, math.Abs(loc.Lon), ew)
}
