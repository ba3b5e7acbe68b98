package share

import (
	"testing"

	"github.com/1F47E/nato-grid/pkg/gridcode"
	"github.com/1F47E/nato-grid/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareURL(t *testing.T) {
	codec := gridcode.Default()
	code, err := codec.Encode(52.1677, 22.2903)
	require.NoError(t, err)

	link, err := ShareURL("https://grid.example.com/map", code)
	require.NoError(t, err)
	assert.Equal(t, "https://grid.example.com/map?c=NVSOXLGAMVLD", link)

	link, err = ShareURL("https://grid.example.com/?c=AAAA&z=7#top", code)
	require.NoError(t, err)
	assert.Equal(t, "https://grid.example.com/?c=NVSOXLGAMVLD&z=7", link)

	_, err = ShareURL("not a url", code)
	assert.Error(t, err)
}

func TestShareLinkRoundTrip(t *testing.T) {
	codec := gridcode.Default()
	code, err := codec.Encode(50.0614, 19.9372)
	require.NoError(t, err)

	link, err := ShareURL("https://grid.example.com/", code)
	require.NoError(t, err)

	short, err := CodeFromURL(link)
	require.NoError(t, err)

	fromLink, err := codec.Decode(short)
	require.NoError(t, err)
	fromCode, err := codec.Decode(code.String())
	require.NoError(t, err)
	assert.Equal(t, fromCode, fromLink)
}

func TestCodeFromURLMissing(t *testing.T) {
	_, err := CodeFromURL("https://grid.example.com/?z=7")
	assert.Error(t, err)

	_, err = CodeFromURL("https://grid.example.com/?c=")
	assert.Error(t, err)
}

func TestLinks(t *testing.T) {
	links := Links(models.Location{Lat: 52.2297, Lon: 21.0122})
	assert.Equal(t, "https://maps.apple.com/?q=52.2297,21.0122", links.Apple)
	assert.Equal(t, "https://maps.google.com/?q=52.2297,21.0122", links.Google)
	assert.Equal(t, "https://waze.com/ul?ll=52.2297,21.0122", links.Waze)
}
