// Command migrate manages the bag portal schema and installs the sector catalog.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"bagportal/internal/config"
	"bagportal/internal/database"
	"bagportal/internal/repository"

	"gorm.io/gorm"
)

type command struct {
	args string
	help string
	run  func(ctx context.Context, db *gorm.DB, cfg *config.Config, args []string) error
}

var commands = map[string]command{
	"up":     {help: "apply pending SQL migrations and install missing sectors", run: up},
	"auto":   {help: "AutoMigrate the models (local environments only)", run: auto},
	"status": {help: "print the schema plan, pending migrations and sector count", run: status},
	"down":   {args: "<version>", help: "roll back one SQL migration", run: down},
}

var errUsage = errors.New("usage")

func main() {
	flag.Usage = printUsage
	flag.Parse()
	if err := run(flag.Args()); err != nil {
		if errors.Is(err, errUsage) {
			printUsage()
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: migrate <command> [args]")
	for _, name := range []string{"up", "auto", "status", "down"} {
		c := commands[name]
		fmt.Fprintf(os.Stderr, "  %-7s %-10s %s\n", name, c.args, c.help)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, ok := commands[strings.ToLower(strings.TrimSpace(args[0]))]
	if !ok {
		return errUsage
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	return cmd.run(context.Background(), db, cfg, args[1:])
}

func up(ctx context.Context, db *gorm.DB, _ *config.Config, _ []string) error {
	if err := database.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("sql migrations: %w", err)
	}
	return installSectors(ctx, db)
}

func auto(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	cfg.DBSchemaMode = database.SchemaModeAuto
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return fmt.Errorf("auto schema: %w", err)
	}
	return installSectors(ctx, db)
}

func installSectors(ctx context.Context, db *gorm.DB) error {
	if err := repository.NewSectorRepository(db).EnsureDefaults(ctx); err != nil {
		return fmt.Errorf("sector catalog: %w", err)
	}
	log.Println("schema ready")
	return nil
}

func status(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	st, err := database.GetSchemaStatus(ctx, db, cfg)
	if err != nil {
		return fmt.Errorf("schema status: %w", err)
	}
	log.Printf("mode=%s env=%s sql=%t automigrate=%t applied=%d pending=%d sectors=%d",
		st.Mode, st.Environment, st.SQL, st.AutoMigrate,
		len(st.AppliedVersions), len(st.PendingMigrations), st.Sectors)
	for _, m := range st.PendingMigrations {
		log.Printf("pending: %s", m.String())
	}
	if st.Sectors == 0 {
		log.Println("sector catalog is empty; run `migrate up`")
	}
	return nil
}

func down(ctx context.Context, db *gorm.DB, _ *config.Config, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	version, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", args[0], err)
	}
	if err := database.RollbackMigration(ctx, db, version); err != nil {
		return fmt.Errorf("rollback %d: %w", version, err)
	}
	log.Printf("rolled back migration %d", version)
	return nil
}
