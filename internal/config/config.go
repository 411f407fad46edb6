// Package config holds the service options and the zones file loader.
package config

import (
	"fmt"
	"time"

	"github.com/bandobast/bandobast-backend/internal/logger"
	"github.com/jessevdk/go-flags"
)

// Options are read from flags and from the environment. The environment is
// populated from .env.local before parsing.
type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Addr        string `short:"a" long:"addr"         env:"LISTEN_ADDRESS" description:"Address to listen on" default:"0.0.0.0"`
	Port        int    `short:"p" long:"port"         env:"PORT"           description:"Port to listen on"    default:"5050"`
	DatabaseURL string `long:"database-url"           env:"DATABASE_URL"   description:"Postgres DSN; zones and events stay in memory when empty"`
	ZonesFile   string `short:"z" long:"zones"        env:"ZONES_FILE"     description:"YAML file with authorized zones"`

	CORSOrigins []string `long:"cors-origin" env:"CORS_ORIGINS" env-delim:"," description:"Allowed CORS origin (repeatable)" default:"http://localhost:5173" default:"http://localhost:3000"`

	PositionRate  float64 `long:"position-rate"  env:"POSITION_RATE"  description:"Position reports per second per entity, 0 disables limiting" default:"5"`
	PositionBurst int     `long:"position-burst" env:"POSITION_BURST" description:"Position report burst per entity" default:"10"`

	JournalCapacity int           `long:"journal-capacity" env:"JOURNAL_CAPACITY" description:"Zone events kept in memory without a database" default:"1000"`
	SeedDemo        bool          `long:"seed-demo"        env:"SEED_DEMO"        description:"Register demo officials and tasks on start"`
	ShutdownTimeout time.Duration `long:"shutdown-timeout" env:"SHUTDOWN_TIMEOUT" description:"Graceful shutdown timeout" default:"10s"`
}

// Parse reads options from args and the environment. A *flags.Error of type
// flags.ErrHelp is returned when help was requested.
func Parse(args []string) (*Options, error) {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &opts, nil
}

func (o *Options) validate() error {
	if o.Port <= 0 || o.Port > 65535 {
		return fmt.Errorf("port %d out of range", o.Port)
	}
	if o.PositionRate < 0 {
		return fmt.Errorf("position rate must not be negative")
	}
	if o.PositionRate > 0 && o.PositionBurst < 1 {
		return fmt.Errorf("position burst must be at least 1")
	}
	if o.JournalCapacity < 1 {
		return fmt.Errorf("journal capacity must be at least 1")
	}
	return nil
}

func (o *Options) ListenAddr() string {
	return fmt.Sprintf("%s:%d", o.Addr, o.Port)
}
