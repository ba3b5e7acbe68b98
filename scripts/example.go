package main

import (
	"fmt"
	"log"

	"github.com/1F47E/nato-grid/pkg/coordparse"
	"github.com/1F47E/nato-grid/pkg/gridcode"
	"github.com/1F47E/nato-grid/pkg/models"
	"github.com/1F47E/nato-grid/pkg/places"
	"github.com/1F47E/nato-grid/pkg/share"
)

func main() {
	// The default grid covers Poland with 12 NATO words
	codec := gridcode.Default()

	// Example 1: Encode a coordinate
	fmt.Println("=== Encode ===")
	code, err := codec.Encode(52.1677, 22.2903)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Siedlce: %s\n", code)
	fmt.Printf("Short:   %s\n\n", code.Short())

	// Example 2: Decode a full, short or partial code
	fmt.Println("=== Decode ===")
	for _, input := range []string{code.String(), code.Short(), "NV"} {
		loc, err := codec.Decode(input)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%-12.12s -> %s\n", input, coordparse.Format(loc))
	}
	fmt.Println()

	// Example 3: Read loosely written coordinates
	fmt.Println("=== Parse ===")
	for _, text := range []string{"52,26755° N, 22,26155° E", "52.26755, 22.26155", "E 22.26155; N 52.26755"} {
		loc, err := coordparse.Parse(text)
		if err != nil {
			log.Fatal(err)
		}
		c, err := codec.Encode(loc.Lat, loc.Lon)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%-26s -> %s\n", text, c.Short())
	}
	fmt.Println()

	// Example 4: Share links
	fmt.Println("=== Share ===")
	link, err := share.ShareURL("https://grid.example.com/", code)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(link)
	links := share.Links(models.Location{Lat: 52.1677, Lon: 22.2903})
	fmt.Printf("%s\n%s\n%s\n\n", links.Apple, links.Google, links.Waze)

	// Example 5: Named places
	fmt.Println("=== Places ===")
	registry := places.NewRegistry(codec)
	err = registry.Add(
		&models.Place{Name: "Warsaw", Location: &models.Location{Lat: 52.2297, Lon: 21.0122}},
		&models.Place{Name: "Krakow", Location: &models.Location{Lat: 50.0614, Lon: 19.9372}},
		&models.Place{Name: "Gdansk", Location: &models.Location{Lat: 54.3520, Lon: 18.6466}},
		&models.Place{Name: "Siedlce", Code: code.Short()},
	)
	if err != nil {
		log.Fatal(err)
	}
	for _, n := range registry.Nearest(models.Location{Lat: 52.0, Lon: 21.5}, 2) {
		fmt.Printf("%-8s %s  %.1f km\n", n.Place.Name, n.Place.Code, n.DistanceKm)
	}
}
