package gridcode

import (
	"fmt"
	"sort"
	"strings"
)

// AlphabetSize is the radix of the code: one symbol per letter A-Z.
const AlphabetSize = 26

// Alphabet is an ordered set of 26 spoken symbols. Symbol i starts with
// the letter 'A'+i, so the first letter of any symbol identifies its digit.
type Alphabet struct {
	name    string
	symbols [AlphabetSize]string
}

var (
	// NATO is the ICAO/NATO radiotelephony spelling alphabet.
	NATO = mustAlphabet("nato", []string{
		"Alpha", "Bravo", "Charlie", "Delta", "Echo", "Foxtrot", "Golf", "Hotel",
		"India", "Juliett", "Kilo", "Lima", "Mike", "November", "Oscar", "Papa",
		"Quebec", "Romeo", "Sierra", "Tango", "Uniform", "Victor", "Whiskey",
		"X-ray", "Yankee", "Zulu",
	})

	// RAF is the 1943 joint US/UK spelling alphabet.
	RAF = mustAlphabet("raf", []string{
		"Able", "Baker", "Charlie", "Dog", "Easy", "Fox", "George", "How",
		"Item", "Jig", "King", "Love", "Mike", "Nan", "Oboe", "Peter",
		"Queen", "Roger", "Sugar", "Tare", "Uncle", "Victor", "William",
		"X-ray", "Yoke", "Zebra",
	})

	// Letters uses the bare letters as symbols.
	Letters = mustAlphabet("letters", strings.Split("ABCDEFGHIJKLMNOPQRSTUVWXYZ", ""))
)

var builtinAlphabets = map[string]Alphabet{
	NATO.name:    NATO,
	RAF.name:     RAF,
	Letters.name: Letters,
}

// NewAlphabet validates symbols and returns an Alphabet.
func NewAlphabet(name string, symbols []string) (Alphabet, error) {
	var a Alphabet
	if name == "" {
		return a, fmt.Errorf("alphabet name is required")
	}
	if len(symbols) != AlphabetSize {
		return a, fmt.Errorf("alphabet %q: need %d symbols, got %d", name, AlphabetSize, len(symbols))
	}

	// Distinct leading letters also make the symbols distinct.
	for i, s := range symbols {
		if s == "" || strings.ContainsAny(s, " \t\r\n") {
			return a, fmt.Errorf("alphabet %q: symbol %d (%q) must be a single non-empty word", name, i, s)
		}
		want := byte('A' + i)
		if first := s[0] &^ 0x20; first != want {
			return a, fmt.Errorf("alphabet %q: symbol %d (%q) must start with %c", name, i, s, want)
		}
		a.symbols[i] = s
	}
	a.name = name
	return a, nil
}

func mustAlphabet(name string, symbols []string) Alphabet {
	a, err := NewAlphabet(name, symbols)
	if err != nil {
		panic(err)
	}
	return a
}

// AlphabetByName looks up a built-in alphabet ("nato", "raf", "letters").
func AlphabetByName(name string) (Alphabet, error) {
	a, ok := builtinAlphabets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Alphabet{}, fmt.Errorf("unknown alphabet %q (available: %s)",
			name, strings.Join(AlphabetNames(), ", "))
	}
	return a, nil
}

// AlphabetNames lists the built-in alphabets in sorted order.
func AlphabetNames() []string {
	names := make([]string, 0, len(builtinAlphabets))
	for n := range builtinAlphabets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (a Alphabet) Name() string { return a.name }

// Symbol returns the symbol for digit i (0-25).
func (a Alphabet) Symbol(i int) string {
	return a.symbols[i]
}

// Symbols returns a copy of the ordered symbol list.
func (a Alphabet) Symbols() []string {
	out := make([]string, AlphabetSize)
	copy(out, a.symbols[:])
	return out
}

// Index returns the digit of word, matched case-insensitively, or -1.
func (a Alphabet) Index(word string) int {
	for i, s := range a.symbols {
		if strings.EqualFold(s, word) {
			return i
		}
	}
	return -1
}
