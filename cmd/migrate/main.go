// Command migrate applies, rolls back, or reports the schema migrations
// embedded in the postgres store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"bookrack.org/internal/obs"
	"bookrack.org/internal/store/pg"
)

func main() {
	logger := obs.Logger()

	var (
		dsn     = flag.String("dsn", os.Getenv("BOOKRACK_PG_DSN"), "postgres dsn (defaults to BOOKRACK_PG_DSN)")
		timeout = flag.Duration("timeout", time.Minute, "overall timeout")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: migrate [flags] up|down|status\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cmd := flag.Arg(0)
	if cmd == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *dsn == "" {
		logger.Fatal("a postgres dsn is required (-dsn or BOOKRACK_PG_DSN)")
	}

	store, err := pg.Open(*dsn)
	if err != nil {
		logger.Fatalf("open postgres: %v", err)
	}
	db := store.DB()
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch cmd {
	case "up":
		err = pg.RunMigrations(ctx, db)
	case "down":
		err = pg.RollbackMigration(ctx, db)
	case "status":
		err = pg.MigrationStatus(ctx, db)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Fatalf("migrate %s: %v", cmd, err)
	}
	logger.Printf("migrate %s: ok", cmd)
}
