// Command check_zone reports which zones of a zones file contain a point.
package main

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/bandobast/bandobast-backend/internal/config"
	"github.com/bandobast/bandobast-backend/internal/geo"
	"github.com/jessevdk/go-flags"
)

type Options struct {
	ZonesFile string  `short:"z" long:"zones" env:"ZONES_FILE" description:"YAML zones file; the built-in Chennai zone when empty"`
	Lng       float64 `long:"lng" description:"Longitude" required:"true"`
	Lat       float64 `long:"lat" description:"Latitude" required:"true"`
}

func main() {
	var opts Options
	if _, err := flags.NewParser(&opts, flags.Default).Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	zs := config.DefaultZones()
	if opts.ZonesFile != "" {
		var err error
		if zs, err = config.LoadZones(opts.ZonesFile); err != nil {
			fmt.Fprintf(os.Stderr, "zones file: %v\n", err)
			os.Exit(1)
		}
	}

	p := geo.Point{Lng: opts.Lng, Lat: opts.Lat}
	if !p.Valid() {
		fmt.Fprintf(os.Stderr, "invalid point %s\n", p)
		os.Exit(1)
	}

	sort.Slice(zs, func(i, j int) bool { return zs[i].ID < zs[j].ID })
	inside := 0
	fmt.Printf("Point %s\n\n", p)
	for _, z := range zs {
		state := "outside"
		if z.Contains(p) {
			state = "inside"
			inside++
		}
		fmt.Printf("  %-24s %-8s %s\n", z.ID, state, z.Name)
	}
	fmt.Printf("\nInside %d of %d zones\n", inside, len(zs))
	if inside == 0 {
		os.Exit(2)
	}
}
