package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/geolayer"
)

// Default frame size for scenes that do not set one.
const (
	defaultWidth  = 800
	defaultHeight = 600
)

var errInvalidScene = errors.New("invalid scene")

// Scene is the YAML document rendered by the CLI.
//
//	width: 1024
//	height: 768
//	viewport:
//	  coordinates: lnglat
//	  longitude: -122.4
//	  latitude: 37.75
//	  zoom: 11
//	layers:
//	  - id: sf
//	    image: tiles/sf.png
//	    bounds: [-122.52, 37.70, -122.35, 37.82]
//	    desaturate: 0.3
//	    tintColor: "#ffcc88"
type Scene struct {
	Width    int          `yaml:"width"`
	Height   int          `yaml:"height"`
	Viewport ViewportSpec `yaml:"viewport"`
	Layers   []LayerSpec  `yaml:"layers"`
}

// ViewportSpec is the viewport section of a scene.
type ViewportSpec struct {
	Coordinates string  `yaml:"coordinates"`
	Longitude   float64 `yaml:"longitude"`
	Latitude    float64 `yaml:"latitude"`
	Zoom        float64 `yaml:"zoom"`
}

// LayerSpec describes one bitmap layer.
type LayerSpec struct {
	ID               string              `yaml:"id"`
	Image            string              `yaml:"image"`
	Bounds           geolayer.BoundsSpec `yaml:"bounds"`
	Desaturate       float64             `yaml:"desaturate"`
	TransparentColor geolayer.Color      `yaml:"transparentColor"`
	TintColor        *geolayer.Color     `yaml:"tintColor"`
	Opacity          *float64            `yaml:"opacity"`
	Hidden           bool                `yaml:"hidden"`
	Pickable         bool                `yaml:"pickable"`
}

// LoadScene reads and validates a scene file.
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	s, err := ParseScene(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseScene decodes a scene and fills in defaults.
func ParseScene(data []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Width == 0 {
		s.Width = defaultWidth
	}
	if s.Height == 0 {
		s.Height = defaultHeight
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scene) validate() error {
	if s.Width < 0 || s.Height < 0 {
		return fmt.Errorf("%w: frame size %dx%d", errInvalidScene, s.Width, s.Height)
	}
	if _, err := parseCoordinates(s.Viewport.Coordinates); err != nil {
		return err
	}
	seen := make(map[string]bool, len(s.Layers))
	for i, l := range s.Layers {
		if l.ID == "" {
			return fmt.Errorf("%w: layer %d has no id", errInvalidScene, i)
		}
		if seen[l.ID] {
			return fmt.Errorf("%w: duplicate layer id %q", errInvalidScene, l.ID)
		}
		seen[l.ID] = true
	}
	return nil
}

func parseCoordinates(s string) (geolayer.CoordinateSystem, error) {
	switch strings.ToLower(s) {
	case "", "lnglat":
		return geolayer.CoordinateLngLat, nil
	case "cartesian":
		return geolayer.CoordinateCartesian, nil
	default:
		return 0, fmt.Errorf("%w: unknown coordinate system %q", errInvalidScene, s)
	}
}

// View returns the scene viewport sized to the frame.
func (s *Scene) View() geolayer.Viewport {
	cs, _ := parseCoordinates(s.Viewport.Coordinates)
	return geolayer.Viewport{
		Width:            s.Width,
		Height:           s.Height,
		Longitude:        s.Viewport.Longitude,
		Latitude:         s.Viewport.Latitude,
		Zoom:             s.Viewport.Zoom,
		CoordinateSystem: cs,
	}
}

// Props converts the spec into layer props. An empty image means no
// image.
func (l LayerSpec) Props() (geolayer.Props, error) {
	p := geolayer.Props{
		ID:               l.ID,
		BitmapBounds:     l.Bounds,
		Desaturate:       l.Desaturate,
		TransparentColor: l.TransparentColor,
		Opacity:          l.Opacity,
		Hidden:           l.Hidden,
		Pickable:         l.Pickable,
	}
	if l.TintColor != nil {
		p.TintColor = *l.TintColor
	}
	if l.Image != "" {
		img, err := geolayer.ImageFrom(l.Image)
		if err != nil {
			return geolayer.Props{}, err
		}
		p.Image = img
	}
	return p, nil
}
