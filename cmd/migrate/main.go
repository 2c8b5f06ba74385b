package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"ledgerd/internal/config"
)

const migrationsSource = "file://db/migrations"

func usage() {
	fmt.Fprintln(os.Stderr, "usage: migrate <command>")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  up         apply all pending migrations")
	fmt.Fprintln(os.Stderr, "  down       revert all migrations")
	fmt.Fprintln(os.Stderr, "  steps N    apply N migrations (negative reverts)")
	fmt.Fprintln(os.Stderr, "  version    print current schema version")
	fmt.Fprintln(os.Stderr, "  force V    mark version V as applied, clearing a dirty state")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("migrate: loading config: %v", err)
	}

	m, err := migrate.New(migrationsSource, cfg.DB.DSN())
	if err != nil {
		log.Fatalf("migrate: opening %s: %v", migrationsSource, err)
	}
	defer m.Close()

	switch os.Args[1] {
	case "up":
		if err := m.Up(); errors.Is(err, migrate.ErrNoChange) {
			log.Println("migrate: schema already up to date")
		} else if err != nil {
			log.Fatalf("migrate: up: %v", err)
		} else {
			log.Println("migrate: migrations applied")
		}

	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("migrate: down: %v", err)
		}
		log.Println("migrate: all migrations reverted")

	case "steps":
		n := intArg(2)
		if err := m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("migrate: steps %d: %v", n, err)
		}
		log.Printf("migrate: moved %d step(s)", n)

	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Println("migrate: no migrations applied yet")
			return
		}
		if err != nil {
			log.Fatalf("migrate: reading version: %v", err)
		}
		log.Printf("migrate: version %d dirty=%v", version, dirty)

	case "force":
		v := intArg(2)
		if err := m.Force(v); err != nil {
			log.Fatalf("migrate: force %d: %v", v, err)
		}
		log.Printf("migrate: forced version %d", v)

	default:
		usage()
	}
}

func intArg(pos int) int {
	if len(os.Args) <= pos {
		usage()
	}
	n, err := strconv.Atoi(os.Args[pos])
	if err != nil {
		log.Fatalf("migrate: %q is not a number", os.Args[pos])
	}
	return n
}
