// Package share builds links around grid codes: the ?c=<shortcode> share
// link and links that open a location in external map apps.
package share

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/1F47E/nato-grid/pkg/gridcode"
	"github.com/1F47E/nato-grid/pkg/models"
)

// QueryParam carries the short code in share links.
const QueryParam = "c"

// ShareURL appends the short form of code to base as ?c=<shortcode>,
// replacing any code already present.
func ShareURL(base string, code gridcode.Code) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", base, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid base url %q: scheme and host are required", base)
	}

	q := u.Query()
	q.Set(QueryParam, code.Short())
	u.RawQuery = q.Encode()
	u.Fragment = ""
	return u.String(), nil
}

// CodeFromURL extracts the code carried by a share link.
func CodeFromURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid share url: %w", err)
	}
	code := strings.TrimSpace(u.Query().Get(QueryParam))
	if code == "" {
		return "", fmt.Errorf("share url %q has no %q parameter", raw, QueryParam)
	}
	return code, nil
}

// MapLinks opens a location in third-party map applications.
type MapLinks struct {
	Apple  string `json:"apple_maps"`
	Google string `json:"google_maps"`
	Waze   string `json:"waze"`
}

// Links returns map application links for loc.
func Links(loc models.Location) MapLinks {
	ll := formatCoord(loc.Lat) + "," + formatCoord(loc.Lon)
	return MapLinks{
		Apple:  "https://maps.apple.com/?q=" + ll,
		Google: "https://maps.google.com/?q=" + ll,
		Waze:   "https://waze.com/ul?ll=" + ll,
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
