// Command seed writes the zones of a YAML zones file into Postgres.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/bandobast/bandobast-backend/internal/config"
	"github.com/bandobast/bandobast-backend/internal/db"
	"github.com/bandobast/bandobast-backend/internal/zones"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/lib/pq"
)

type Options struct {
	ZonesFile   string `short:"z" long:"zones" env:"ZONES_FILE" description:"YAML zones file" required:"true"`
	DSN         string `long:"dsn" env:"DATABASE_URL" description:"Postgres DSN" required:"true"`
	DryRun      bool   `long:"dry-run" description:"Parse and validate only; no DB writes"`
	Replace     bool   `long:"replace" description:"Delete zones missing from the file"`
	Confirm     bool   `long:"confirm" description:"Required together with --replace"`
	AdvisoryKey int64  `long:"advisory-lock" description:"Optional Postgres advisory lock key, 0 disables"`
}

func main() {
	_ = godotenv.Load(".env.local")

	var opts Options
	if _, err := flags.NewParser(&opts, flags.Default).Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	zs, err := config.LoadZones(opts.ZonesFile)
	if err != nil {
		fatalf("zones file: %v", err)
	}
	fmt.Printf("Loaded %d zones from %s\n", len(zs), opts.ZonesFile)

	if opts.DryRun {
		printPlan(zs)
		fmt.Println("Dry run complete. No changes made.")
		return
	}
	if opts.Replace && !opts.Confirm {
		fatalf("Refusing to replace zones without --confirm. Add --dry-run to preview.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	conn, err := sql.Open("pgx", opts.DSN)
	if err != nil {
		fatalf("connect: %v", err)
	}
	defer conn.Close()

	if err := conn.PingContext(ctx); err != nil {
		fatalf("ping: %v", err)
	}

	tx, err := conn.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		fatalf("begin tx: %v", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op if already committed
	}()

	if opts.AdvisoryKey != 0 {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, opts.AdvisoryKey); err != nil {
			fatalf("advisory lock: %v", err)
		}
	}

	if err := ensureTable(ctx, tx); err != nil {
		fatalf("ensure table: %v", err)
	}

	before, err := countZones(ctx, tx)
	if err != nil {
		fatalf("pre-count: %v", err)
	}

	if opts.Replace {
		if err := deleteMissing(ctx, tx, zs); err != nil {
			fatalf("delete zones: %v", err)
		}
	}
	if err := upsertAll(ctx, tx, zs); err != nil {
		fatalf("upsert zones: %v", err)
	}

	after, err := countZones(ctx, tx)
	if err != nil {
		fatalf("post-count: %v", err)
	}
	if err := tx.Commit(); err != nil {
		fatalf("commit: %v", err)
	}
	fmt.Printf("Zones before=%d after=%d\n", before, after)
}

func printPlan(zs []zones.Zone) {
	for _, z := range zs {
		b := z.Polygon.Bounds()
		fmt.Printf("  - %s (%s): %d vertices, bounds %s .. %s\n", z.ID, z.Name, len(z.Polygon.Vertices()), b.Min, b.Max)
	}
}

func ensureTable(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `CREATE SCHEMA IF NOT EXISTS `+db.Schema); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+db.Schema+`.zones (
		id varchar(64) PRIMARY KEY,
		name text NOT NULL,
		lngs float8[] NOT NULL,
		lats float8[] NOT NULL,
		created_at timestamptz,
		updated_at timestamptz
	)`)
	return err
}

func countZones(ctx context.Context, tx *sql.Tx) (int64, error) {
	var n int64
	err := tx.QueryRowContext(ctx, `SELECT count(*) FROM `+db.Schema+`.zones`).Scan(&n)
	return n, err
}

func deleteMissing(ctx context.Context, tx *sql.Tx, zs []zones.Zone) error {
	ids := make([]string, len(zs))
	for i, z := range zs {
		ids[i] = z.ID
	}
	_, err := tx.ExecContext(ctx, `DELETE FROM `+db.Schema+`.zones WHERE NOT (id = ANY($1))`, pq.Array(ids))
	return err
}

func upsertAll(ctx context.Context, tx *sql.Tx, zs []zones.Zone) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+db.Schema+`.zones (id, name, lngs, lats, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, lngs = EXCLUDED.lngs, lats = EXCLUDED.lats, updated_at = now()`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, z := range zs {
		vs := z.Polygon.Vertices()
		lngs := make([]float64, len(vs))
		lats := make([]float64, len(vs))
		for i, v := range vs {
			lngs[i], lats[i] = v.Lng, v.Lat
		}
		if _, err := stmt.ExecContext(ctx, z.ID, z.Name, pq.Array(lngs), pq.Array(lats)); err != nil {
			return fmt.Errorf("upsert zone '%s': %w", z.ID, err)
		}
	}
	return nil
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
