package config

import (
	"fmt"
	"os"

	"github.com/bandobast/bandobast-backend/internal/geo"
	"github.com/bandobast/bandobast-backend/internal/zones"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

// ZonesFile is the on-disk zone list:
//
//	zones:
//	  - id: chennai
//	    name: Chennai Central
//	    vertices: [[80.2497, 13.0427], [80.2897, 13.0427], ...]
type ZonesFile struct {
	Zones []ZoneEntry `yaml:"zones" validate:"required,min=1,dive"`
}

type ZoneEntry struct {
	ID       string      `yaml:"id" validate:"required,max=64"`
	Name     string      `yaml:"name" validate:"max=128"`
	Vertices [][]float64 `yaml:"vertices" validate:"required,min=3,dive,len=2"`
}

// LoadZones reads and validates a zones file.
func LoadZones(path string) ([]zones.Zone, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	zs, err := ParseZones(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return zs, nil
}

func ParseZones(data []byte) ([]zones.Zone, error) {
	var f ZonesFile
	if err := yaml.UnmarshalWithOptions(data, &f, yaml.DisallowUnknownField()); err != nil {
		return nil, err
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(f); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(f.Zones))
	out := make([]zones.Zone, 0, len(f.Zones))
	for _, entry := range f.Zones {
		if _, dup := seen[entry.ID]; dup {
			return nil, fmt.Errorf("duplicate zone id %q", entry.ID)
		}
		seen[entry.ID] = struct{}{}

		vs := make([]geo.Point, len(entry.Vertices))
		for i, c := range entry.Vertices {
			vs[i] = geo.Point{Lng: c[0], Lat: c[1]}
		}
		z, err := zones.NewZone(entry.ID, entry.Name, vs)
		if err != nil {
			return nil, err
		}
		out = append(out, z)
	}
	return out, nil
}

// DefaultZones is the Chennai Central duty area used when neither the
// database nor a zones file provide any zone.
func DefaultZones() []zones.Zone {
	pg, err := geo.Rectangle(geo.Point{Lng: 80.2497, Lat: 13.0427}, geo.Point{Lng: 80.2897, Lat: 13.0827})
	if err != nil {
		panic(err)
	}
	return []zones.Zone{{ID: "chennai-central", Name: "Chennai Central", Polygon: pg}}
}
