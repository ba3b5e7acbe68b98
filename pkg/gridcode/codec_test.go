package gridcode

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/1F47E/nato-grid/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeKnownLocations(t *testing.T) {
	codec := Default()

	tests := []struct {
		name  string
		lat   float64
		lon   float64
		code  string
		short string
	}{
		{"Siedlce", 52.1677, 22.2903,
			"November Victor Sierra Oscar X-ray Lima Golf Alpha Mike Victor Lima Delta", "NVSOXLGAMVLD"},
		{"Warsaw", 52.2297, 21.0122,
			"November Sierra Zulu Golf Whiskey Alpha Whiskey Quebec Oscar Sierra Romeo Mike", "NSZGWAWQOSRM"},
		{"Krakow", 50.0614, 19.9372,
			"Echo Papa Papa Lima Papa Juliett Foxtrot Foxtrot Bravo Uniform Kilo Oscar", "EPPLPJFFBUKO"},
		{"centre", 52.0, 19.0,
			"November November Alpha Alpha Alpha Alpha Alpha Alpha Alpha Alpha Alpha Alpha", "NNAAAAAAAAAA"},
		{"south-west corner", 49.0, 14.0,
			"Alpha Alpha Alpha Alpha Alpha Alpha Alpha Alpha Alpha Alpha Alpha Alpha", "AAAAAAAAAAAA"},
		{"north-east corner", 55.0, 24.0,
			"Zulu Zulu Zulu Zulu Zulu Zulu Zulu Zulu Zulu Zulu Zulu Zulu", "ZZZZZZZZZZZZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := codec.Encode(tt.lat, tt.lon)
			require.NoError(t, err)
			assert.Equal(t, tt.code, code.String())
			assert.Equal(t, tt.short, code.Short())
			assert.Len(t, code, DefaultLength)
		})
	}
}

func TestEncodeOutOfBounds(t *testing.T) {
	codec := Default()

	for _, p := range []models.Location{
		{Lat: 48.9, Lon: 19.0},
		{Lat: 55.1, Lon: 19.0},
		{Lat: 52.0, Lon: 13.99},
		{Lat: 52.0, Lon: 24.01},
		{Lat: math.NaN(), Lon: 19.0},
	} {
		_, err := codec.Encode(p.Lat, p.Lon)
		assert.ErrorIs(t, err, ErrOutOfBounds, "lat=%v lon=%v", p.Lat, p.Lon)
	}
}

func TestDecodeCentre(t *testing.T) {
	codec := Default()

	code, err := codec.Encode(52.0, 19.0)
	require.NoError(t, err)

	loc, err := codec.Decode(code.String())
	require.NoError(t, err)
	assert.InDelta(t, 52.0, loc.Lat, 1e-6)
	assert.InDelta(t, 19.0, loc.Lon, 1e-6)
}

func TestDecodeForms(t *testing.T) {
	codec := Default()
	want := models.Location{Lat: 52.16769998175813, Lon: 22.290299974838447}

	inputs := []string{
		"November Victor Sierra Oscar X-ray Lima Golf Alpha Mike Victor Lima Delta",
		"november victor sierra oscar x-ray lima golf alpha mike victor lima delta",
		"  NOVEMBER   Victor Sierra Oscar X-RAY Lima Golf Alpha Mike Victor Lima Delta ",
		"NVSOXLGAMVLD",
		"nvsoxlgamvld",
		"NVS-OXL-GAM-VLD",
		"N V S O X L G A M V L D",
	}

	for _, in := range inputs {
		loc, err := codec.Decode(in)
		require.NoError(t, err, in)
		assert.InDelta(t, want.Lat, loc.Lat, 1e-9, in)
		assert.InDelta(t, want.Lon, loc.Lon, 1e-9, in)
	}
}

func TestDecodeUnknownWordFallsBackToFirstLetter(t *testing.T) {
	codec := Default()

	// "Nancy" and "Vancouver" are not alphabet symbols but start with the right letters.
	loc, err := codec.Decode("Nancy Vancouver Sierra Oscar X-ray Lima Golf Alpha Mike Victor Lima Delta")
	require.NoError(t, err)

	expected, err := codec.Decode("NVSOXLGAMVLD")
	require.NoError(t, err)
	assert.Equal(t, expected, loc)
}

func TestDecodeInvalid(t *testing.T) {
	codec := Default()

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"only separators", " - - "},
		{"thirteen letters", "XXXXXXXXXXXXX"},
		{"digits", "NVSOXLG4MVLD"},
		{"punctuation", "NVSOX.GAMVLD"},
		{"non ascii letter", "NVSOXŁGAMVLD"},
		{"thirteen words", strings.Repeat("Alpha ", 13)},
		{"word with digit", "Alpha Bravo Charlie Delta Echo Foxtrot Golf Hotel India Juliett Kilo 9ima"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decode(tt.input)
			assert.ErrorIs(t, err, ErrInvalidCode)
		})
	}
}

func TestDecodePrefix(t *testing.T) {
	codec := Default()

	loc, err := codec.Decode("N")
	require.NoError(t, err)
	assert.InDelta(t, 52.0, loc.Lat, 1e-9)
	assert.InDelta(t, 14.0, loc.Lon, 1e-9)

	loc, err = codec.Decode("NN")
	require.NoError(t, err)
	assert.InDelta(t, 52.0, loc.Lat, 1e-9)
	assert.InDelta(t, 19.0, loc.Lon, 1e-9)
}

func TestRoundTripWithinOneCell(t *testing.T) {
	codec := Default()
	latCell, lonCell := codec.Resolution()
	r := rand.New(rand.NewSource(42))
	b := codec.Bounds()

	for i := 0; i < 5000; i++ {
		lat := b.BottomLeft.Lat + r.Float64()*b.LatSpan()
		lon := b.BottomLeft.Lon + r.Float64()*b.LonSpan()

		code, err := codec.Encode(lat, lon)
		require.NoError(t, err)
		require.Len(t, code, DefaultLength)

		loc, err := codec.Decode(code.String())
		require.NoError(t, err)
		assert.LessOrEqual(t, math.Abs(loc.Lat-lat), latCell+1e-12, "lat %v", lat)
		assert.LessOrEqual(t, math.Abs(loc.Lon-lon), lonCell+1e-12, "lon %v", lon)

		short, err := codec.Decode(ShortCode(code.String()))
		require.NoError(t, err)
		assert.Equal(t, loc, short)

		again, err := codec.Encode(lat, lon)
		require.NoError(t, err)
		assert.Equal(t, code, again)
	}
}

func TestDecodedCodeEncodesBack(t *testing.T) {
	world, err := New(models.NewBoundingBox(-90, 90, -180, 180), Letters, 16)
	require.NoError(t, err)
	tight, err := New(models.NewBoundingBox(54.3, 54.4, 18.5, 18.7), NATO, 14)
	require.NoError(t, err)

	for _, codec := range []*Codec{Default(), world, tight} {
		r := rand.New(rand.NewSource(7))
		letters := make([]byte, codec.Length())
		for i := 0; i < 20000; i++ {
			for j := range letters {
				letters[j] = byte('A' + r.Intn(AlphabetSize))
			}
			code := string(letters)

			loc, err := codec.Decode(code)
			require.NoError(t, err)
			again, err := codec.Encode(loc.Lat, loc.Lon)
			require.NoError(t, err, code)
			require.Equal(t, code, again.Short())
		}
	}

	// The shipped catalogue codes
	for _, code := range []string{"NVSNLDXWDHIX", "GOVHGGYYWYMB", "ZZZZZZZZZZZZ", "AAAAAAAAAAAA"} {
		loc, err := Default().Decode(code)
		require.NoError(t, err)
		again, err := Default().Encode(loc.Lat, loc.Lon)
		require.NoError(t, err)
		assert.Equal(t, code, again.Short())
	}
}

func TestLengthInvariantOnEdges(t *testing.T) {
	codec := Default()
	b := codec.Bounds()
	c := b.Center()

	for _, p := range []models.Location{
		b.BottomLeft,
		b.TopRight,
		{Lat: b.BottomLeft.Lat, Lon: b.TopRight.Lon},
		{Lat: b.TopRight.Lat, Lon: b.BottomLeft.Lon},
		c,
		{Lat: c.Lat, Lon: b.TopRight.Lon},
	} {
		code, err := codec.Encode(p.Lat, p.Lon)
		require.NoError(t, err)
		assert.Len(t, code, DefaultLength)
		assert.Len(t, code.Short(), DefaultLength)
	}
}

func TestIsValidCoordinate(t *testing.T) {
	codec := Default()

	assert.True(t, codec.IsValidCoordinate(49.0, 14.0))
	assert.True(t, codec.IsValidCoordinate(55.0, 24.0))
	assert.True(t, codec.IsValidCoordinate(52.0, 19.0))
	assert.False(t, codec.IsValidCoordinate(48.0, 14.0))
	assert.False(t, codec.IsValidCoordinate(49.0, 13.0))
	assert.False(t, codec.IsValidCoordinate(56.0, 24.0))
	assert.False(t, codec.IsValidCoordinate(55.0, 25.0))
}

func TestShortCode(t *testing.T) {
	assert.Equal(t, "NVSOXLG", ShortCode("November Victor Sierra Oscar X-ray Lima Golf"))
	assert.Equal(t, "AB", ShortCode("  Alpha   Bravo "))
	assert.Equal(t, "", ShortCode(""))
}

func TestResolve(t *testing.T) {
	codec := Default()

	code, loc, err := codec.Resolve("nvsoxlgamvld")
	require.NoError(t, err)
	assert.Equal(t, "November Victor Sierra Oscar X-ray Lima Golf Alpha Mike Victor Lima Delta", code.String())
	assert.InDelta(t, 52.1677, loc.Lat, 1e-6)

	code, _, err = codec.Resolve("NN")
	require.NoError(t, err)
	assert.Equal(t, "NNAAAAAAAAAA", code.Short())

	_, _, err = codec.Resolve("123")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestNormalize(t *testing.T) {
	codec := Default()

	for _, tt := range []struct{ in, want string }{
		{"nv-so", "NVSO"},
		{"N V S O", "NVSO"},
		{"November Victor Sierra Oscar X-ray Lima Golf", "NVSOXLG"},
	} {
		got, err := codec.Normalize(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := codec.Normalize("N0")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestNewValidation(t *testing.T) {
	_, err := New(models.NewBoundingBox(55, 49, 14, 24), NATO, 12)
	assert.Error(t, err)

	_, err = New(DefaultBounds(), NATO, 11)
	assert.Error(t, err)

	_, err = New(DefaultBounds(), NATO, 0)
	assert.Error(t, err)

	_, err = New(DefaultBounds(), NATO, MaxLength+2)
	assert.Error(t, err)

	_, err = New(DefaultBounds(), Alphabet{}, 12)
	assert.Error(t, err)

	// Poland at 18 symbols is finer than float64 resolves at those latitudes
	_, err = New(DefaultBounds(), NATO, MaxLength)
	assert.Error(t, err)
	_, err = New(models.NewBoundingBox(0, 1, 0, 1), NATO, 16)
	assert.NoError(t, err)

	c, err := New(models.NewBoundingBox(-90, 90, -180, 180), RAF, 8)
	require.NoError(t, err)
	code, err := c.Encode(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Nan Nan Able Able Able Able Able Able", code.String())
}

func TestOtherAlphabetsRoundTrip(t *testing.T) {
	for _, a := range []Alphabet{RAF, Letters} {
		t.Run(a.Name(), func(t *testing.T) {
			codec, err := New(DefaultBounds(), a, DefaultLength)
			require.NoError(t, err)

			code, err := codec.Encode(52.1677, 22.2903)
			require.NoError(t, err)
			assert.Equal(t, "NVSOXLGAMVLD", code.Short())

			loc, err := codec.Decode(code.String())
			require.NoError(t, err)
			assert.InDelta(t, 52.1677, loc.Lat, 1e-6)
			assert.InDelta(t, 22.2903, loc.Lon, 1e-6)
		})
	}
}

func TestDefaultBoundsIsACopy(t *testing.T) {
	box := DefaultBounds()
	box.BottomLeft.Lat = 0

	assert.Equal(t, 49.0, DefaultBounds().BottomLeft.Lat)
	assert.Equal(t, 49.0, Default().Bounds().BottomLeft.Lat)
}

func TestResolution(t *testing.T) {
	latCell, lonCell := Default().Resolution()
	assert.InDelta(t, 6.0/308915776.0, latCell, 1e-15)
	assert.InDelta(t, 10.0/308915776.0, lonCell, 1e-15)
}

func BenchmarkEncode(b *testing.B) {
	codec := Default()
	for i := 0; i < b.N; i++ {
		_, _ = codec.Encode(52.1677, 22.2903)
	}
}

func BenchmarkDecode(b *testing.B) {
	codec := Default()
	for i := 0; i < b.N; i++ {
		_, _ = codec.Decode("November Victor Sierra Oscar X-ray Lima Golf Alpha Mike Victor Lima Delta")
	}
}
