package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"sqlgate/internal/config"
	"sqlgate/internal/database"
	"sqlgate/internal/driver"
	"sqlgate/internal/exporter"
	"sqlgate/internal/security"
	"sqlgate/internal/storage"

	"github.com/joho/godotenv"
)

var version = "dev"

// queryList collects repeated -query flags.
type queryList []string

func (q *queryList) String() string { return strings.Join(*q, "; ") }

func (q *queryList) Set(v string) error {
	*q = append(*q, v)
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "sqlgate %s\n\n", version)
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  sqlgate exec   -query SQL [-tx]\n")
	fmt.Fprintf(os.Stderr, "  sqlgate export -query SQL [-query SQL ...] [-format csv|json|excel|pdf] [-workers N]\n")
	fmt.Fprintf(os.Stderr, "  sqlgate version\n\n")
	fmt.Fprintf(os.Stderr, "Configuration is read from the environment and an optional .env file\n")
	fmt.Fprintf(os.Stderr, "(DB_DRIVER, DB_DSN, STORAGE_TYPE, EXPORT_FORMAT, ...).\n")
}

func main() {
	flag.Usage = usage
	flag.Parse()
	os.Exit(run(flag.Args()))
}

// run executes the command in args and returns the process exit code.
// Deferred cleanup runs before main exits.
func run(args []string) int {
	if len(args) < 1 {
		usage()
		return 2
	}

	_ = godotenv.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cmd, args := args[0], args[1:]
	if cmd == "version" {
		fmt.Printf("sqlgate %s\n", version)
		return 0
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.DefaultTimeout)
	defer cancel()

	db, err := openDatabase(cfg)
	if err != nil {
		slog.Error("Failed to set up database", "error", err)
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Warn("Database close failed", "error", err)
		}
	}()

	switch cmd {
	case "exec":
		err = runExec(ctx, cfg, db, args)
	case "export":
		err = runExport(ctx, cfg, db, args)
	default:
		usage()
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		slog.Error("Command failed", "command", cmd, "error", err)
		return 1
	}
	return 0
}

func openDatabase(cfg *config.Config) (*database.Database, error) {
	drv, err := driver.Lookup(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, err
	}

	opts := []database.Option{
		database.WithHealthInterval(cfg.DBHealthInterval),
		database.WithLogger(slog.Default()),
	}
	if cfg.DBIdentityQuery != "" {
		opts = append(opts, database.WithIdentityQuery(cfg.DBIdentityQuery))
	}
	return database.New(drv, opts...), nil
}

// runExec runs one statement and prints every row as a JSON line.
func runExec(ctx context.Context, cfg *config.Config, db *database.Database, args []string) error {
	fs := flag.NewFlagSet("exec", flag.ContinueOnError)
	query := fs.String("query", "", "SQL statement to run")
	inTx := fs.Bool("tx", false, "Run the statement inside a transaction")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *query == "" {
		return errors.New("exec: -query is required")
	}

	var opts []database.QueryOption
	if cfg.DBVerbose {
		opts = append(opts, database.Verbose())
	}

	run := func(ctx context.Context) ([]database.Row, error) {
		return db.Execute(ctx, *query, opts...)
	}

	var rows []database.Row
	var err error
	if *inTx {
		rows, err = database.InTransaction(ctx, db, nil, run)
	} else {
		rows, err = run(ctx)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	slog.Info("Statement executed", "rows", len(rows))
	return nil
}

// runExport streams each SELECT into storage through the worker pool.
func runExport(ctx context.Context, cfg *config.Config, db *database.Database, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	var queries queryList
	fs.Var(&queries, "query", "SELECT statement to export (repeatable)")
	format := fs.String("format", cfg.ExportFormat, "Output format: csv, json, excel or pdf")
	workers := fs.Int("workers", 2, "Concurrent export jobs")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if len(queries) == 0 {
		return errors.New("export: at least one -query is required")
	}
	for _, q := range queries {
		if err := security.ValidateQuery(q); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}

	store, err := storage.Open(cfg)
	if err != nil {
		return err
	}

	var txOpts *sql.TxOptions
	if cfg.ExportSnapshot {
		txOpts = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}

	pool := exporter.NewPool(*workers, cfg.DefaultTimeout, exporter.NewStreamer(db, txOpts), store)
	pool.Start(ctx)

	jobs := make([]*exporter.Job, 0, len(queries))
	for _, q := range queries {
		job := exporter.NewJob(q, *format, cfg.Compression)
		if !pool.Submit(job) {
			pool.Stop()
			return errors.New("export: job queue is full")
		}
		jobs = append(jobs, job)
	}
	pool.Stop()

	var errs []error
	for _, job := range jobs {
		switch job.Status {
		case exporter.StatusCompleted:
			fmt.Printf("%s\t%d rows\t%s\n", job.ID, job.Stats.RowsProcessed, store.GetDownloadURL(job.Key))
		case exporter.StatusFailed:
			errs = append(errs, fmt.Errorf("job %s: %w", job.ID, job.Err))
		default:
			errs = append(errs, fmt.Errorf("job %s: not run (%s)", job.ID, job.Status))
		}
	}
	return errors.Join(errs...)
}
