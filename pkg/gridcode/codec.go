// Package gridcode converts coordinates inside a bounding box into a short
// spoken code and back. Each axis is expanded into base-26 digits; latitude
// digits take the even positions of the code and longitude digits the odd
// ones, every symbol narrowing its axis by a factor of 26.
package gridcode

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/1F47E/nato-grid/pkg/models"
)

const (
	// DefaultLength gives six digits per axis, about a metre for a box a few degrees wide.
	DefaultLength = 12
	// MaxLength is the longest code a float64 in [0, 1) still resolves to one
	// cell. Boxes far from the origin reach that limit earlier; New rejects
	// those lengths.
	MaxLength = 18

	// maxSlack is the largest rounding error, in cells, a codec may carry.
	maxSlack = 1e-2
)

// DefaultBounds returns the box the codec was first built for (Poland).
func DefaultBounds() models.BoundingBox {
	return models.NewBoundingBox(49.0, 55.0, 14.0, 24.0)
}

// Code is an encoded location, one alphabet symbol per digit.
type Code []string

// String joins the symbols with single spaces.
func (c Code) String() string {
	return strings.Join(c, " ")
}

// Short returns the first letter of every symbol.
func (c Code) Short() string {
	var b strings.Builder
	b.Grow(len(c))
	for _, w := range c {
		if w != "" {
			b.WriteByte(w[0])
		}
	}
	return b.String()
}

// Codec encodes and decodes locations for one bounding box and alphabet.
// A Codec is immutable and safe for concurrent use.
type Codec struct {
	bounds   models.BoundingBox
	alphabet Alphabet
	length   int

	cells int64   // cells per axis, 26^(length/2)
	slack float64 // float64 rounding error of a normalised coordinate, in cells
}

// New returns a codec for the given box, alphabet and code length.
func New(bounds models.BoundingBox, alphabet Alphabet, length int) (*Codec, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	if alphabet.name == "" {
		return nil, fmt.Errorf("alphabet is not initialised")
	}
	if length <= 0 || length%2 != 0 {
		return nil, fmt.Errorf("code length must be a positive even number, got %d", length)
	}
	if length > MaxLength {
		return nil, fmt.Errorf("code length %d exceeds maximum %d", length, MaxLength)
	}

	cells := int64(1)
	for i := 0; i < length/2; i++ {
		cells *= AlphabetSize
	}
	slack := roundingSlack(bounds, cells)
	if slack > maxSlack {
		return nil, fmt.Errorf("code length %d is finer than float64 resolves for this box", length)
	}
	return &Codec{bounds: bounds, alphabet: alphabet, length: length, cells: cells, slack: slack}, nil
}

// roundingSlack bounds the error, in cells, of normalising a coordinate of
// bounds and scaling it by cells. The coordinate itself carries half an ulp of
// its magnitude; the subtraction, division and scaling add a few more.
func roundingSlack(bounds models.BoundingBox, cells int64) float64 {
	worst := 0.0
	for _, axis := range [][3]float64{
		{bounds.BottomLeft.Lat, bounds.TopRight.Lat, bounds.LatSpan()},
		{bounds.BottomLeft.Lon, bounds.TopRight.Lon, bounds.LonSpan()},
	} {
		magnitude := math.Max(math.Abs(axis[0]), math.Abs(axis[1]))
		worst = math.Max(worst, magnitude/axis[2]+1)
	}
	const epsilon = 0x1p-52
	return 4 * epsilon * worst * float64(cells)
}

// Default returns the Poland / NATO / 12-symbol codec.
func Default() *Codec {
	c, err := New(DefaultBounds(), NATO, DefaultLength)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Codec) Bounds() models.BoundingBox { return c.bounds }
func (c *Codec) Alphabet() Alphabet         { return c.alphabet }
func (c *Codec) Length() int                { return c.length }

// Resolution returns the size of one cell in degrees of latitude and longitude.
func (c *Codec) Resolution() (latDeg, lonDeg float64) {
	cells := float64(c.cells)
	return c.bounds.LatSpan() / cells, c.bounds.LonSpan() / cells
}

// IsValidCoordinate reports whether lat/lon lie inside the box, edges included.
func (c *Codec) IsValidCoordinate(lat, lon float64) bool {
	return c.bounds.Contains(lat, lon)
}

// Encode converts a coordinate into a Code.
func (c *Codec) Encode(lat, lon float64) (Code, error) {
	if !c.IsValidCoordinate(lat, lon) {
		return nil, fmt.Errorf("%w: (%v, %v) outside lat [%v, %v] lon [%v, %v]", ErrOutOfBounds,
			lat, lon,
			c.bounds.BottomLeft.Lat, c.bounds.TopRight.Lat,
			c.bounds.BottomLeft.Lon, c.bounds.TopRight.Lon)
	}

	latCell := c.cellIndex((lat - c.bounds.BottomLeft.Lat) / c.bounds.LatSpan())
	lonCell := c.cellIndex((lon - c.bounds.BottomLeft.Lon) / c.bounds.LonSpan())

	// Each axis cell index is written as base-26 digits, most significant
	// first; latitude digits go to even positions, longitude to odd ones.
	code := make(Code, c.length)
	for i := c.length/2 - 1; i >= 0; i-- {
		code[2*i] = c.alphabet.Symbol(int(latCell % AlphabetSize))
		code[2*i+1] = c.alphabet.Symbol(int(lonCell % AlphabetSize))
		latCell /= AlphabetSize
		lonCell /= AlphabetSize
	}
	return code, nil
}

// cellIndex maps a normalised coordinate to its cell along one axis. A value
// within the rounding slack below a cell edge belongs to the cell above, so a
// decoded corner encodes back into its own cell. The upper edge of the box
// lands in the last cell.
func (c *Codec) cellIndex(norm float64) int64 {
	n := int64(math.Floor(norm*float64(c.cells) + c.slack))
	if n < 0 {
		return 0
	}
	if n >= c.cells {
		return c.cells - 1
	}
	return n
}

// Decode converts a code, given as symbols or as bare letters, back into the
// south-west corner of its cell. Codes shorter than Length decode to a coarser
// cell. The result is not checked against the bounding box.
func (c *Codec) Decode(input string) (models.Location, error) {
	letters, err := c.letters(input)
	if err != nil {
		return models.Location{}, err
	}

	// Missing trailing digits count as zero.
	var latCell, lonCell int64
	for i := 0; i < c.length; i++ {
		var d int64
		if i < len(letters) {
			d = int64(letters[i] - 'A')
		}
		if i%2 == 0 {
			latCell = latCell*AlphabetSize + d
		} else {
			lonCell = lonCell*AlphabetSize + d
		}
	}

	cells := float64(c.cells)
	return models.Location{
		Lat: c.bounds.BottomLeft.Lat + float64(latCell)/cells*c.bounds.LatSpan(),
		Lon: c.bounds.BottomLeft.Lon + float64(lonCell)/cells*c.bounds.LonSpan(),
	}, nil
}

// letters reduces input to its code letters. A compact input (at most two
// characters per digit once spaces and hyphens are gone) is read letter by
// letter; anything longer is read as symbols separated by whitespace.
func (c *Codec) letters(input string) ([]rune, error) {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return unicode.ToUpper(r)
	}, input)

	var letters []rune
	if len([]rune(stripped)) <= 2*c.length {
		letters = []rune(stripped)
	} else {
		for _, word := range strings.Fields(input) {
			if idx := c.alphabet.Index(word); idx >= 0 {
				letters = append(letters, rune('A'+idx))
				continue
			}
			letters = append(letters, unicode.ToUpper([]rune(word)[0]))
		}
	}

	if len(letters) == 0 || len(letters) > c.length {
		return nil, fmt.Errorf("%w: expected 1 to %d letters, got %d", ErrInvalidCode, c.length, len(letters))
	}
	for _, l := range letters {
		if l < 'A' || l > 'Z' {
			return nil, fmt.Errorf("%w: invalid character %q", ErrInvalidCode, l)
		}
	}
	return letters, nil
}

// Normalize returns input as compact upper-case letters, one per digit.
func (c *Codec) Normalize(input string) (string, error) {
	letters, err := c.letters(input)
	if err != nil {
		return "", err
	}
	return string(letters), nil
}

// Resolve decodes input, checks the result against the box and returns the
// full-length Code of the decoded cell. Missing trailing digits are zero,
// which is what encoding the decoded corner yields.
func (c *Codec) Resolve(input string) (Code, models.Location, error) {
	letters, err := c.letters(input)
	if err != nil {
		return nil, models.Location{}, err
	}
	loc, err := c.Decode(string(letters))
	if err != nil {
		return nil, models.Location{}, err
	}
	if !c.IsValidCoordinate(loc.Lat, loc.Lon) {
		return nil, loc, fmt.Errorf("%w: code %s decodes to (%v, %v)", ErrOutOfBounds, string(letters), loc.Lat, loc.Lon)
	}

	code := make(Code, c.length)
	for i := range code {
		d := 0
		if i < len(letters) {
			d = int(letters[i] - 'A')
		}
		code[i] = c.alphabet.Symbol(d)
	}
	return code, loc, nil
}

// ShortCode returns the first character of every whitespace-separated word.
func ShortCode(code string) string {
	var b strings.Builder
	for _, w := range strings.Fields(code) {
		r := []rune(w)
		b.WriteRune(r[0])
	}
	return b.String()
}
