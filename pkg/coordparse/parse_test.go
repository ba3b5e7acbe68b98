package coordparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		lat  float64
		lon  float64
	}{
		{"decimal comma with degrees and hemispheres", "52,26755° N, 22,26155° E", 52.26755, 22.26155},
		{"decimal point with hemispheres", "52.26755 N, 22.26155 E", 52.26755, 22.26155},
		{"no separator", "52.26755°N 22.26155°E", 52.26755, 22.26155},
		{"semicolon", "52.26755° N; 22.26155° E", 52.26755, 22.26155},
		{"degrees only", "52.1°, 22.3°", 52.1, 22.3},
		{"southern and western", "33.8688° S, 151.2093° W", -33.8688, -151.2093},
		{"lowercase letters", "52.5 n, 21.0 e", 52.5, 21.0},
		{"longitude first", "21.0° E, 52.5° N", 52.5, 21.0},
		{"single trailing letter", "52.5, 21.0 E", 52.5, 21.0},
		{"plain pair", "52.1, 22.3", 52.1, 22.3},
		{"plain negative", "-52.1, 22.3", -52.1, 22.3},
		{"plain semicolon", "52.1;22.3", 52.1, 22.3},
		{"plain decimal comma", "52,1, 22,3", 52.1, 22.3},
		{"plain integers", "52, 21", 52, 21},
		{"surrounding whitespace", "   52.1 , 22.3  ", 52.1, 22.3},
		{"prefix north east", "N 52.5, E 21.0", 52.5, 21.0},
		{"prefix south west", "S 52.5, W 21.0", -52.5, -21.0},
		{"prefix no spaces", "N52,5;E21,0", 52.5, 21.0},
		{"prefix longitude first", "E 21.0, N 52.5", 52.5, 21.0},
		{"hemisphere overrides literal sign", "-52.5 N, -21 E", 52.5, 21.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := Parse(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.lat, loc.Lat, 1e-12)
			assert.InDelta(t, tt.lon, loc.Lon, 1e-12)
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{
		"",
		"hello",
		"52.1",
		"52.1 N",
		"52.1°",
		"52.1 22.3",
		"52.1, 22.3, 19.0",
		"N 52.5, S 21.0",
		"52.5 E, 21.0 W",
		"X 52.5, Y 21.0",
		"52.1.2, 22.3",
	} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrInvalidFormat, "input %q", in)
	}
}

func TestParseErrorListsFormats(t *testing.T) {
	_, err := Parse("nowhere")
	require.Error(t, err)
	for _, f := range Formats {
		assert.Contains(t, err.Error(), f)
	}
}

func TestFormat(t *testing.T) {
	loc, err := Parse("52,26755° N, 22,26155° E")
	require.NoError(t, err)
	assert.Equal(t, "52.267550° N, 22.261550° E", Format(loc))

	loc, err = Parse(Format(loc))
	require.NoError(t, err)
	assert.InDelta(t, 52.26755, loc.Lat, 1e-9)

	loc, err = Parse("S 1.5, W 2.5")
	require.NoError(t, err)
	assert.Equal(t, "1.500000° S, 2.500000° W", Format(loc))
}
