package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/1F47E/nato-grid/pkg/config"
	"github.com/1F47E/nato-grid/pkg/models"
	"github.com/1F47E/nato-grid/pkg/places"
)

func main() {
	var (
		configFile = flag.String("config", "", "Config file path (default ./config.yaml)")
		indexFile  = flag.String("i", "", "Index file path (default places.index from config)")
		queryType  = flag.String("t", "code", "Query type: code, name, box, nearest")
		code       = flag.String("code", "", "Grid code (code query, or nearest center)")
		name       = flag.String("name", "", "Place name (name query)")
		// Box query parameters
		minLat = flag.Float64("min-lat", 0, "Minimum latitude (box query)")
		maxLat = flag.Float64("max-lat", 0, "Maximum latitude (box query)")
		minLon = flag.Float64("min-lon", 0, "Minimum longitude (box query)")
		maxLon = flag.Float64("max-lon", 0, "Maximum longitude (box query)")
		// Nearest query parameters
		centerLat = flag.Float64("lat", 0, "Center latitude (nearest query)")
		centerLon = flag.Float64("lon", 0, "Center longitude (nearest query)")
		k         = flag.Int("k", 10, "Number of nearest places (nearest query)")
		// Output format
		outputJSON = flag.Bool("json", false, "Output results as JSON")
		limit      = flag.Int("limit", 100, "Maximum number of results to display")
	)
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	codec, err := cfg.Codec()
	if err != nil {
		log.Fatalf("Failed to build codec: %v", err)
	}
	if *indexFile == "" {
		*indexFile = cfg.Places.Index
	}

	log.Printf("Loading index from %s...\n", *indexFile)
	registry := places.NewRegistry(codec)
	if err := registry.LoadFromFile(*indexFile); err != nil {
		log.Fatalf("Failed to load index: %v", err)
	}
	log.Printf("Index loaded with %d places\n", registry.Count())

	var (
		results   []*models.Place
		distances map[*models.Place]float64
	)

	switch *queryType {
	case "code":
		if *code == "" {
			log.Fatal("Code query requires --code")
		}
		results, err = registry.ByCode(*code)
		if err != nil {
			log.Fatalf("Code query failed: %v", err)
		}
		log.Printf("Code query found %d places\n", len(results))

	case "name":
		if *name == "" {
			log.Fatal("Name query requires --name")
		}
		place, err := registry.ByName(*name)
		if err != nil {
			log.Fatalf("Name query failed: %v", err)
		}
		results = []*models.Place{place}

	case "box":
		if *minLat == 0 && *maxLat == 0 && *minLon == 0 && *maxLon == 0 {
			log.Fatal("Box query requires --min-lat, --max-lat, --min-lon, --max-lon")
		}
		results, err = registry.Within(models.NewBoundingBox(*minLat, *maxLat, *minLon, *maxLon))
		if err != nil {
			log.Fatalf("Box query failed: %v", err)
		}
		log.Printf("Box query found %d places\n", len(results))

	case "nearest":
		center := models.Location{Lat: *centerLat, Lon: *centerLon}
		if *code != "" {
			if _, center, err = codec.Resolve(*code); err != nil {
				log.Fatalf("Invalid center code: %v", err)
			}
		} else if *centerLat == 0 && *centerLon == 0 {
			log.Fatal("Nearest query requires --code or --lat and --lon for center point")
		}
		neighbors := registry.Nearest(center, *k)
		distances = make(map[*models.Place]float64, len(neighbors))
		for _, n := range neighbors {
			results = append(results, n.Place)
			distances[n.Place] = n.DistanceKm
		}
		log.Printf("Found %d nearest places\n", len(results))

	default:
		log.Fatalf("Unknown query type: %s", *queryType)
	}

	// Limit results if needed
	if len(results) > *limit {
		log.Printf("Showing first %d results (use --limit to see more)\n", *limit)
		results = results[:*limit]
	}

	if *outputJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results); err != nil {
			log.Fatalf("Failed to encode results: %v", err)
		}
		return
	}

	for i, place := range results {
		if d, ok := distances[place]; ok {
			fmt.Printf("%d. %s [%s]: (%.6f, %.6f) - %.2f km\n",
				i+1, place.Name, place.Code, place.Location.Lat, place.Location.Lon, d)
		} else {
			fmt.Printf("%d. %s [%s]: (%.6f, %.6f)\n",
				i+1, place.Name, place.Code, place.Location.Lat, place.Location.Lon)
		}
	}
}
