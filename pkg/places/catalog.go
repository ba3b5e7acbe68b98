package places

import (
	"fmt"
	"io"
	"os"

	"github.com/1F47E/nato-grid/pkg/models"
	"gopkg.in/yaml.v3"
)

// Catalog is the YAML file layout for a list of places.
//
//	places:
//	  - name: Home
//	    code: NVSNLDXWDHIX
//	  - name: Old Town
//	    location: {lat: 50.0614, lon: 19.9372}
type Catalog struct {
	Places []*models.Place `yaml:"places"`
}

// ReadCatalog decodes a catalog from r
func ReadCatalog(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		if err == io.EOF {
			return &c, nil
		}
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return &c, nil
}

// LoadCatalog reads a catalog file and adds its places to the registry
func (r *Registry) LoadCatalog(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer file.Close()

	c, err := ReadCatalog(file)
	if err != nil {
		return err
	}
	return r.Add(c.Places...)
}

// WriteCatalog encodes every place in the registry as YAML
func (r *Registry) WriteCatalog(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Catalog{Places: r.All()}); err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	return enc.Close()
}
