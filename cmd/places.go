package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/1F47E/nato-grid/pkg/models"
	"github.com/1F47E/nato-grid/pkg/places"
	"github.com/1F47E/nato-grid/pkg/postgis"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	numNeighbors int
	listBox      []float64
)

var placesCmd = &cobra.Command{
	Use:   "places",
	Short: "Work with the registry of named places",
}

var placesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every known place with its code",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry()
		if err != nil {
			return err
		}
		all := registry.All()
		if len(listBox) > 0 {
			if len(listBox) != 4 {
				return fmt.Errorf("--box takes min-lat,max-lat,min-lon,max-lon, got %d values", len(listBox))
			}
			all, err = registry.Within(models.NewBoundingBox(listBox[0], listBox[1], listBox[2], listBox[3]))
			if err != nil {
				return err
			}
		}
		return out.emit(all, func() {
			out.title(fmt.Sprintf("%d places", len(all)))
			rows := make([][]string, 0, len(all))
			for _, p := range all {
				rows = append(rows, []string{p.Name, p.Code,
					fmt.Sprintf("%.6f", p.Location.Lat), fmt.Sprintf("%.6f", p.Location.Lon)})
			}
			out.table([]string{"NAME", "CODE", "LAT", "LON"}, rows)
		})
	},
}

var placesNearestCmd = &cobra.Command{
	Use:   "nearest <code|coordinates>",
	Short: "Find the places closest to a code or coordinate",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry()
		if err != nil {
			return err
		}
		_, center, err := locate(args)
		if err != nil {
			return err
		}

		neighbors := registry.Nearest(center, numNeighbors)
		if len(neighbors) == 0 {
			return places.ErrNotFound
		}
		return out.emit(neighbors, func() {
			out.title("Nearest places")
			rows := make([][]string, 0, len(neighbors))
			for i, n := range neighbors {
				rows = append(rows, []string{fmt.Sprint(i + 1), n.Place.Name, n.Place.Code,
					fmt.Sprintf("%.2f km", n.DistanceKm)})
			}
			out.table([]string{"#", "NAME", "CODE", "DISTANCE"}, rows)
		})
	},
}

var placesImportCmd = &cobra.Command{
	Use:   "import <catalog.yaml>",
	Short: "Build the places index from a YAML catalogue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := places.NewRegistry(codec)

		start := time.Now()
		if err := registry.LoadCatalog(args[0]); err != nil {
			return err
		}
		log.Info("catalogue loaded", zap.String("file", args[0]),
			zap.Int64("places", registry.Count()), zap.Duration("took", time.Since(start)))

		if dir := filepath.Dir(cfg.Places.Index); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create index directory: %w", err)
			}
		}
		if err := registry.SaveToFile(cfg.Places.Index); err != nil {
			return err
		}

		summary := map[string]any{"places": registry.Count(), "index": cfg.Places.Index}
		return out.emit(summary, func() {
			out.title("Imported")
			out.field("places", registry.Count())
			out.field("index", cfg.Places.Index)
		})
	},
}

var placesPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Copy the places index into PostGIS",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Server.Timeout*6)
		defer cancel()

		store, err := postgis.NewPlaceStore(ctx, cfg.PostGIS.DSN())
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.InitSchema(ctx); err != nil {
			return err
		}
		if err := store.UpsertPlaces(ctx, registry.All()); err != nil {
			return err
		}
		count, err := store.Count(ctx)
		if err != nil {
			return err
		}
		log.Info("places pushed", zap.Int64("pushed", registry.Count()), zap.Int64("stored", count))

		summary := map[string]int64{"pushed": registry.Count(), "stored": count}
		return out.emit(summary, func() {
			out.title("Pushed to PostGIS")
			out.field("pushed", registry.Count())
			out.field("stored", count)
		})
	},
}

func init() {
	placesListCmd.Flags().Float64SliceVar(&listBox, "box", nil, "Only places inside min-lat,max-lat,min-lon,max-lon")
	placesNearestCmd.Flags().IntVarP(&numNeighbors, "neighbors", "n", 5, "Number of places to return")
	placesCmd.AddCommand(placesListCmd, placesNearestCmd, placesImportCmd, placesPushCmd)
}

// loadRegistry prefers the gob index and falls back to the YAML catalogue.
func loadRegistry() (*places.Registry, error) {
	registry := places.NewRegistry(codec)

	if cfg.Places.Index != "" {
		err := registry.LoadFromFile(cfg.Places.Index)
		if err == nil {
			log.Debug("places index loaded", zap.String("file", cfg.Places.Index), zap.Int64("places", registry.Count()))
			return registry, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if cfg.Places.File != "" {
		if err := registry.LoadCatalog(cfg.Places.File); err != nil {
			return nil, err
		}
		log.Debug("places catalogue loaded", zap.String("file", cfg.Places.File), zap.Int64("places", registry.Count()))
		return registry, nil
	}

	return registry, nil
}
