package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/1F47E/nato-grid/pkg/config"
	"github.com/1F47E/nato-grid/pkg/models"
	"github.com/1F47E/nato-grid/pkg/places"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Config file path (default ./config.yaml)")
		catalogFile = flag.String("f", "", "YAML catalogue of places (default places.file from config)")
		outputFile  = flag.String("o", "", "Output index path (default places.index from config)")
		numRandom   = flag.Int("n", 0, "Number of random places to generate inside the grid")
		workers     = flag.Int("w", runtime.NumCPU(), "Number of worker goroutines")
		seed        = flag.Int64("seed", time.Now().UnixNano(), "Random seed")
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
	if *catalogFile == "" {
		*catalogFile = cfg.Places.File
	}
	if *outputFile == "" {
		*outputFile = cfg.Places.Index
	}

	registry := places.NewRegistry(codec)
	startTime := time.Now()

	if *catalogFile != "" {
		log.Printf("Loading catalogue %s...\n", *catalogFile)
		if err := registry.LoadCatalog(*catalogFile); err != nil {
			log.Fatalf("Failed to load catalogue: %v", err)
		}
	}

	if *numRandom > 0 {
		box := codec.Bounds()
		log.Printf("Generating %d random places with %d workers...\n", *numRandom, *workers)
		log.Printf("Grid bounds: lat[%.2f, %.2f], lon[%.2f, %.2f]\n",
			box.BottomLeft.Lat, box.TopRight.Lat, box.BottomLeft.Lon, box.TopRight.Lon)

		generated := generateRandomPlaces(*numRandom, box, *workers, *seed)
		if err := registry.Add(generated...); err != nil {
			log.Fatalf("Failed to index places: %v", err)
		}
	}

	if registry.Count() == 0 {
		log.Fatal("Nothing to index: pass -f with a catalogue or -n for random places")
	}

	indexTime := time.Since(startTime)
	log.Printf("Indexed %d places in %v (%.2f places/sec)\n",
		registry.Count(), indexTime, float64(registry.Count())/indexTime.Seconds())

	// Ensure output directory exists
	if err := os.MkdirAll(filepath.Dir(*outputFile), 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	log.Printf("Saving index to %s...\n", *outputFile)
	startTime = time.Now()
	if err := registry.SaveToFile(*outputFile); err != nil {
		log.Fatalf("Failed to save index: %v", err)
	}
	log.Printf("Index saved in %v\n", time.Since(startTime))

	if fileInfo, err := os.Stat(*outputFile); err == nil {
		log.Printf("Index file size: %.2f KB\n", float64(fileInfo.Size())/1024)
	}
	log.Printf("Total places indexed: %d\n", registry.Count())
}

// generateRandomPlaces spreads n synthetic places uniformly over box.
func generateRandomPlaces(n int, box models.BoundingBox, workers int, seed int64) []*models.Place {
	generated := make([]*models.Place, n)
	if workers < 1 {
		workers = 1
	}

	perWorker := n / workers
	remainder := n % workers

	type workRange struct {
		start, end int
	}
	work := make(chan workRange, workers)
	done := make(chan bool, workers)

	for w := 0; w < workers; w++ {
		go func(workerID int) {
			// Each worker gets its own random generator to avoid contention
			r := rand.New(rand.NewSource(seed + int64(workerID)))

			for wr := range work {
				for i := wr.start; i < wr.end; i++ {
					generated[i] = &models.Place{
						Name: fmt.Sprintf("random_%d", i),
						Location: &models.Location{
							Lat: box.BottomLeft.Lat + r.Float64()*box.LatSpan(),
							Lon: box.BottomLeft.Lon + r.Float64()*box.LonSpan(),
						},
					}
				}
			}
			done <- true
		}(w)
	}

	start := 0
	for w := 0; w < workers; w++ {
		size := perWorker
		if w < remainder {
			size++
		}
		work <- workRange{start: start, end: start + size}
		start += size
	}
	close(work)

	for w := 0; w < workers; w++ {
		<-done
	}
	return generated
}
