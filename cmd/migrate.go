package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"partstrack/config"
)

var (
	migrateDir  string
	migrateDown bool
)

var migrateCmd = &cobra.Command{
	Use:   "db:migrate",
	Short: "Apply database migrations (use --down to roll back one step)",
	Run: func(cmd *cobra.Command, args []string) {
		m, err := migrate.New("file://"+migrateDir, databaseURL())
		if err != nil {
			fmt.Printf("Migration setup failed: %v\n", err)
			os.Exit(1)
		}
		defer m.Close()

		if migrateDown {
			err = m.Steps(-1)
		} else {
			err = m.Up()
		}
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("Database already up to date.")
			return
		}
		if err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Migration complete.")
	},
}

// databaseURL builds the postgres:// URL golang-migrate expects from
// the same variables the GORM connection uses.
func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(config.GetEnv("PGUSER", "postgres"), os.Getenv("PGPASSWORD")),
		Host:   config.GetEnv("PGHOST", "localhost") + ":" + config.GetEnv("PGPORT", "5432"),
		Path:   "/" + config.GetEnv("PGDATABASE", "partstrack"),
	}
	q := url.Values{}
	q.Set("sslmode", config.GetEnv("PGSSLMODE", "disable"))
	u.RawQuery = q.Encode()
	return u.String()
}

func init() {
	migrateCmd.Flags().StringVarP(&migrateDir, "dir", "d", "migrations", "Directory holding migration files")
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "Roll back the most recent migration")
	rootCmd.AddCommand(migrateCmd)
}
