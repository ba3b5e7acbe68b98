package places

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/1F47E/nato-grid/pkg/models"
)

// IndexData represents the serializable form of the registry
type IndexData struct {
	Places []*models.Place
	Count  int64
	// Box and alphabet the codes were produced with
	Bounds   models.BoundingBox
	Alphabet string
	Length   int
}

// SaveToFile saves the registry to a binary file
func (r *Registry) SaveToFile(filename string) error {
	places := r.All()

	bounds := r.codec.Bounds()
	data := IndexData{
		Places:   places,
		Count:    int64(len(places)),
		Bounds:   bounds,
		Alphabet: r.codec.Alphabet().Name(),
		Length:   r.codec.Length(),
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode data: %w", err)
	}

	return nil
}

// LoadFromFile replaces the registry contents with a snapshot written by SaveToFile.
// The snapshot must come from a codec with the same box and code length.
func (r *Registry) LoadFromFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var data IndexData
	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(&data); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}

	if data.Bounds != r.codec.Bounds() || data.Length != r.codec.Length() {
		return fmt.Errorf("index %s was built for a different grid (bounds %+v, length %d)",
			filename, data.Bounds, data.Length)
	}

	// Rebuild aside so a bad snapshot leaves the current contents in place
	fresh := NewRegistry(r.codec)
	if err := fresh.Add(data.Places...); err != nil {
		return fmt.Errorf("failed to index places: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tree = fresh.tree
	r.byID = fresh.byID
	r.byName = fresh.byName
	r.byCode = fresh.byCode
	r.itemCount.Store(fresh.itemCount.Load())

	return nil
}
