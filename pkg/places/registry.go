// Package places keeps a registry of named locations, each tied to its grid
// code, backed by an R-Tree for nearest and bounding box lookups.
package places

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/1F47E/nato-grid/pkg/gridcode"
	"github.com/1F47E/nato-grid/pkg/models"
	"github.com/dhconnelly/rtreego"
	"github.com/golang/geo/s2"
)

const (
	tolerance   = 0.00001
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
	earthRadius = 6371.0 // km
)

// ErrNotFound is returned when a place lookup has no match.
var ErrNotFound = errors.New("place not found")

// spatialPlace wraps a place to implement rtreego.Spatial interface
type spatialPlace struct {
	*models.Place
	rect rtreego.Rect
}

func (sp *spatialPlace) Bounds() rtreego.Rect {
	return sp.rect
}

// Neighbor is a place returned by a proximity search.
type Neighbor struct {
	Place      *models.Place `json:"place"`
	DistanceKm float64       `json:"distance_km"`
}

// Registry is a thread-safe index of named places
type Registry struct {
	codec     *gridcode.Codec
	tree      *rtreego.Rtree
	mu        sync.RWMutex
	itemCount atomic.Int64

	byID   map[string]*models.Place
	byName map[string]*models.Place
	byCode map[string][]*models.Place
}

// NewRegistry creates an empty registry whose codes are produced by codec
func NewRegistry(codec *gridcode.Codec) *Registry {
	return &Registry{
		codec:  codec,
		tree:   rtreego.NewTree(dimensions, minChildren, maxChildren),
		byID:   make(map[string]*models.Place),
		byName: make(map[string]*models.Place),
		byCode: make(map[string][]*models.Place),
	}
}

// Codec returns the codec used to reconcile codes and locations.
func (r *Registry) Codec() *gridcode.Codec {
	return r.codec
}

// Add indexes copies of places; the caller's values are not modified. A place
// given by code gets its location from the code; a place given by location
// gets its short code. When both are given the location is kept and the code
// must be a prefix of its encoding. Names and IDs must be unique. Either the
// whole batch is added or none of it.
func (r *Registry) Add(places ...*models.Place) error {
	resolved := make([]*models.Place, 0, len(places))
	for _, p := range places {
		if p == nil {
			continue
		}
		rp, err := r.resolve(p)
		if err != nil {
			return err
		}
		resolved = append(resolved, rp)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	names := make(map[string]struct{}, len(resolved))
	ids := make(map[string]struct{}, len(resolved))
	for _, p := range resolved {
		key := nameKey(p.Name)
		if _, dup := r.byName[key]; dup {
			return fmt.Errorf("place %q already registered", p.Name)
		}
		if _, dup := names[key]; dup {
			return fmt.Errorf("place %q listed twice", p.Name)
		}
		names[key] = struct{}{}

		if p.ID == "" {
			continue
		}
		if _, dup := r.byID[p.ID]; dup {
			return fmt.Errorf("place %q: id %q already registered", p.Name, p.ID)
		}
		if _, dup := ids[p.ID]; dup {
			return fmt.Errorf("place %q: id %q listed twice", p.Name, p.ID)
		}
		ids[p.ID] = struct{}{}
	}

	next := r.itemCount.Load()
	for _, p := range resolved {
		for p.ID == "" {
			next++
			id := fmt.Sprintf("place_%d", next)
			_, taken := r.byID[id]
			if _, inBatch := ids[id]; !taken && !inBatch {
				p.ID = id
			}
		}
		pt := rtreego.Point{p.Location.Lat, p.Location.Lon}
		r.tree.Insert(&spatialPlace{p, pt.ToRect(tolerance)})
		r.byID[p.ID] = p
		r.byName[nameKey(p.Name)] = p
		r.byCode[p.Code] = append(r.byCode[p.Code], p)
		r.itemCount.Add(1)
	}
	return nil
}

// resolve returns a copy of p with both its code and location filled in.
func (r *Registry) resolve(p *models.Place) (*models.Place, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("place %q: name is required", p.ID)
	}
	out := &models.Place{ID: p.ID, Name: p.Name}

	switch {
	case p.Code != "" && p.Location != nil:
		letters, err := r.codec.Normalize(p.Code)
		if err != nil {
			return nil, fmt.Errorf("place %q: %w", p.Name, err)
		}
		code, err := r.codec.Encode(p.Location.Lat, p.Location.Lon)
		if err != nil {
			return nil, fmt.Errorf("place %q: %w", p.Name, err)
		}
		if !strings.HasPrefix(code.Short(), letters) {
			return nil, fmt.Errorf("place %q: code %s does not match location (%v, %v), which encodes to %s",
				p.Name, letters, p.Location.Lat, p.Location.Lon, code.Short())
		}
		loc := *p.Location
		out.Code, out.Location = code.Short(), &loc

	case p.Code != "":
		code, loc, err := r.codec.Resolve(p.Code)
		if err != nil {
			return nil, fmt.Errorf("place %q: %w", p.Name, err)
		}
		out.Code, out.Location = code.Short(), &loc

	case p.Location != nil:
		code, err := r.codec.Encode(p.Location.Lat, p.Location.Lon)
		if err != nil {
			return nil, fmt.Errorf("place %q: %w", p.Name, err)
		}
		loc := *p.Location
		out.Code, out.Location = code.Short(), &loc

	default:
		return nil, fmt.Errorf("place %q: either code or location is required", p.Name)
	}
	return out, nil
}

// Nearest returns up to n places ordered by great-circle distance from center
func (r *Registry) Nearest(center models.Location, n int) []Neighbor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n <= 0 || r.itemCount.Load() == 0 {
		return nil
	}

	// The tree ranks by planar degree distance. Its n nearest give a radius
	// that holds at least n places; every place inside that radius is then
	// ranked by great-circle distance.
	candidates := r.tree.NearestNeighbors(n, rtreego.Point{center.Lat, center.Lon})
	radius := 0.0
	for _, c := range candidates {
		if sp, ok := c.(*spatialPlace); ok && sp.Place != nil {
			radius = math.Max(radius, Distance(center.Lat, center.Lon, sp.Location.Lat, sp.Location.Lon))
		}
	}

	var results []rtreego.Spatial
	if rect, ok := capRect(center, radius); ok {
		results = r.tree.SearchIntersect(rect)
	} else {
		results = make([]rtreego.Spatial, 0, len(r.byID))
		for _, p := range r.byID {
			results = append(results, &spatialPlace{Place: p})
		}
	}

	neighbors := make([]Neighbor, 0, len(results))
	for _, result := range results {
		sp, ok := result.(*spatialPlace)
		if !ok || sp.Place == nil {
			continue
		}
		neighbors = append(neighbors, Neighbor{
			Place:      sp.Place,
			DistanceKm: Distance(center.Lat, center.Lon, sp.Location.Lat, sp.Location.Lon),
		})
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		if neighbors[i].DistanceKm != neighbors[j].DistanceKm {
			return neighbors[i].DistanceKm < neighbors[j].DistanceKm
		}
		return nameKey(neighbors[i].Place.Name) < nameKey(neighbors[j].Place.Name)
	})
	if len(neighbors) > n {
		neighbors = neighbors[:n]
	}
	return neighbors
}

// capRect returns the lat/lon rectangle holding every point within km of
// center. It reports false when the cap reaches a pole or crosses the
// antimeridian, where no single rectangle covers it.
func capRect(center models.Location, km float64) (rtreego.Rect, bool) {
	angle := km/earthRadius + 1e-12
	dLat := angle * 180 / math.Pi
	minLat, maxLat := center.Lat-dLat, center.Lat+dLat
	if minLat <= -90 || maxLat >= 90 || angle >= math.Pi/2 {
		return rtreego.Rect{}, false
	}

	dLon := math.Asin(math.Sin(angle)/math.Cos(center.Lat*math.Pi/180)) * 180 / math.Pi
	minLon, maxLon := center.Lon-dLon, center.Lon+dLon
	if minLon < -180 || maxLon > 180 {
		return rtreego.Rect{}, false
	}

	rect, err := rtreego.NewRect(
		rtreego.Point{minLat - tolerance, minLon - tolerance},
		[]float64{maxLat - minLat + 2*tolerance, maxLon - minLon + 2*tolerance},
	)
	if err != nil {
		return rtreego.Rect{}, false
	}
	return rect, true
}

// Within returns all places inside the given bounding box
func (r *Registry) Within(box models.BoundingBox) ([]*models.Place, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bottomLeft := rtreego.Point{box.BottomLeft.Lat, box.BottomLeft.Lon}
	bounds, err := rtreego.NewRect(bottomLeft, []float64{box.LatSpan(), box.LonSpan()})
	if err != nil {
		return nil, fmt.Errorf("invalid bounding box: %w", err)
	}

	results := r.tree.SearchIntersect(bounds)

	found := make([]*models.Place, 0, len(results))
	for _, result := range results {
		sp, ok := result.(*spatialPlace)
		if !ok || sp.Place == nil {
			continue
		}
		if box.Contains(sp.Location.Lat, sp.Location.Lon) {
			found = append(found, sp.Place)
		}
	}
	sortByName(found)
	return found, nil
}

// ByName finds a place by name, ignoring case
func (r *Registry) ByName(name string) (*models.Place, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byName[nameKey(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return p, nil
}

// ByCode returns every place sharing the given code, in either full or short form
func (r *Registry) ByCode(code string) ([]*models.Place, error) {
	resolved, _, err := r.codec.Resolve(code)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := r.byCode[resolved.Short()]
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: code %s", ErrNotFound, resolved.Short())
	}
	out := make([]*models.Place, len(matches))
	copy(out, matches)
	return out, nil
}

// All returns every place sorted by name
func (r *Registry) All() []*models.Place {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Place, 0, len(r.byName))
	for _, p := range r.byName {
		out = append(out, p)
	}
	sortByName(out)
	return out
}

// Count returns the number of indexed places
func (r *Registry) Count() int64 {
	return r.itemCount.Load()
}

// Clear removes all places from the registry
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tree = rtreego.NewTree(dimensions, minChildren, maxChildren)
	r.byID = make(map[string]*models.Place)
	r.byName = make(map[string]*models.Place)
	r.byCode = make(map[string][]*models.Place)
	r.itemCount.Store(0)
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func sortByName(places []*models.Place) {
	sort.Slice(places, func(i, j int) bool {
		return nameKey(places[i].Name) < nameKey(places[j].Name)
	})
}

// Distance returns the great-circle distance between two points in kilometers
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	a := s2.LatLngFromDegrees(lat1, lon1)
	b := s2.LatLngFromDegrees(lat2, lon2)
	return a.Distance(b).Radians() * earthRadius
}
