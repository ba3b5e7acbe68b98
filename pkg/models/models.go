package models

import "fmt"

// Location represents a geographic location with latitude and longitude
type Location struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Place is a named location together with its short grid code
type Place struct {
	ID       string    `json:"id" yaml:"id"`
	Name     string    `json:"name" yaml:"name"`
	Code     string    `json:"code" yaml:"code"`
	Location *Location `json:"location" yaml:"location"`
}

// BoundingBox represents a rectangular area defined by two corners.
// BottomLeft holds the minimum latitude and longitude, TopRight the maximum.
type BoundingBox struct {
	BottomLeft Location `json:"bottom_left"`
	TopRight   Location `json:"top_right"`
}

// NewBoundingBox builds a box from its four edges.
func NewBoundingBox(minLat, maxLat, minLon, maxLon float64) BoundingBox {
	return BoundingBox{
		BottomLeft: Location{Lat: minLat, Lon: minLon},
		TopRight:   Location{Lat: maxLat, Lon: maxLon},
	}
}

// Validate checks that the box has a positive extent on both axes.
func (b BoundingBox) Validate() error {
	if !(b.BottomLeft.Lat < b.TopRight.Lat) {
		return fmt.Errorf("invalid bounding box: min latitude %v must be below max latitude %v",
			b.BottomLeft.Lat, b.TopRight.Lat)
	}
	if !(b.BottomLeft.Lon < b.TopRight.Lon) {
		return fmt.Errorf("invalid bounding box: min longitude %v must be below max longitude %v",
			b.BottomLeft.Lon, b.TopRight.Lon)
	}
	return nil
}

// Contains reports whether the point lies inside the box, edges included
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.BottomLeft.Lat && lat <= b.TopRight.Lat &&
		lon >= b.BottomLeft.Lon && lon <= b.TopRight.Lon
}

// LatSpan returns the latitude extent in degrees
func (b BoundingBox) LatSpan() float64 {
	return b.TopRight.Lat - b.BottomLeft.Lat
}

// LonSpan returns the longitude extent in degrees
func (b BoundingBox) LonSpan() float64 {
	return b.TopRight.Lon - b.BottomLeft.Lon
}

// Center returns the midpoint of the box
func (b BoundingBox) Center() Location {
	return Location{
		Lat: b.BottomLeft.Lat + b.LatSpan()/2,
		Lon: b.BottomLeft.Lon + b.LonSpan()/2,
	}
}
