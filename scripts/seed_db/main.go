package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"sqlgate/internal/config"
	"sqlgate/internal/database"
	"sqlgate/internal/driver"
	"sqlgate/internal/sqlutil"

	"github.com/joho/godotenv"
)

// schemas holds the demo tables per backend.
var schemas = map[string][]string{
	"mysql": {
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name TEXT,
			email TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			score DOUBLE
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT,
			amount DECIMAL(15, 2),
			currency VARCHAR(3),
			status VARCHAR(20),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_user_id (user_id)
		)`,
	},
	"postgres": {
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			name TEXT,
			email TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			score DOUBLE PRECISION
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT,
			amount NUMERIC(15, 2),
			currency VARCHAR(3),
			status VARCHAR(20),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	"sqlite": {
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT,
			email TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			score REAL
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER,
			amount NUMERIC,
			currency TEXT,
			status TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	},
}

func main() {
	users := flag.Int("users", 10000, "Users to seed")
	perUser := flag.Int("transactions", 5, "Transactions per user")
	batchSize := flag.Int("batch", 500, "Rows per INSERT statement")
	flag.Parse()

	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(*users, *perUser, *batchSize); err != nil {
		slog.Error("Seeding failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema and data prep complete.")
}

func run(users, perUser, batchSize int) error {
	cfg := config.Load()
	drv, err := driver.Lookup(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	schema, ok := schemas[drv.Name()]
	if !ok {
		return fmt.Errorf("no demo schema for %s", drv.Name())
	}

	db := database.New(drv, database.WithHealthInterval(0))
	defer db.Close()

	ctx := context.Background()

	// Wait for DB to be ready
	for i := 0; i < 30; i++ {
		if _, err = db.Connect(ctx); err == nil {
			break
		}
		slog.Info("Waiting for database...", "attempt", i+1, "error", err)
		time.Sleep(time.Second)
	}
	if err != nil {
		return err
	}

	slog.Info("Connected. Creating tables...", "driver", drv.Name())
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	count, err := database.Iterate(ctx, db, "SELECT COUNT(*) AS n FROM users", func(row database.Row) (int64, error) {
		return strconv.ParseInt(fmt.Sprint(row["n"]), 10, 64)
	})
	if err != nil {
		return err
	}
	if count > 0 {
		slog.Info("Users already seeded", "count", count)
		return nil
	}

	start := time.Now()
	err = db.RunInTransaction(ctx, func(ctx context.Context) error {
		// The first user goes through Insert to report the generated id.
		admin, err := db.Insert(ctx, sqlutil.Insert{
			Table: "users",
			Values: map[string]string{
				"name":  sqlutil.Quote("Admin"),
				"email": sqlutil.Quote("admin@example.com"),
				"score": "0",
			},
		}, database.Row{"name": "Admin"})
		if err != nil {
			return err
		}
		slog.Info("Admin user created", "id", admin["newid"])

		batch := make([]map[string]string, 0, batchSize)
		flush := func(table string) error {
			if len(batch) == 0 {
				return nil
			}
			_, err := db.Exec(ctx, sqlutil.BuildInsertSQL(table, batch))
			batch = batch[:0]
			return err
		}

		now := sqlutil.Quote(sqlutil.FormatDateTime(time.Time{}))
		for i := 2; i <= users; i++ {
			batch = append(batch, map[string]string{
				"name":       sqlutil.Quote(fmt.Sprintf("User%d", i)),
				"email":      sqlutil.Quote(fmt.Sprintf("user%d@example.com", i)),
				"created_at": now,
				"score":      strconv.FormatFloat(float64(i)*0.1, 'f', 1, 64),
			})
			if len(batch) == batchSize {
				if err := flush("users"); err != nil {
					return err
				}
			}
		}
		if err := flush("users"); err != nil {
			return err
		}
		slog.Info("User seeding complete", "users", users)

		for i := 0; i < users*perUser; i++ {
			uid := i%users + 1
			batch = append(batch, map[string]string{
				"user_id":    strconv.Itoa(uid),
				"amount":     strconv.FormatFloat(float64(uid)*0.25, 'f', 2, 64),
				"currency":   sqlutil.Quote("USD"),
				"status":     sqlutil.Quote("COMPLETED"),
				"created_at": now,
			})
			if len(batch) == batchSize {
				if err := flush("transactions"); err != nil {
					return err
				}
			}
		}
		return flush("transactions")
	})
	if err != nil {
		return err
	}

	slog.Info("Seeding complete", "users", users, "transactions", users*perUser, "duration", time.Since(start))
	return nil
}
