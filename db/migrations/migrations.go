package migrations

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

// Run ejecuta las migraciones pendientes sobre la base configurada en
// POSTGRES_CONN. El directorio puede sobreescribirse con MIGRATIONS_DIR.
func Run() {
	db, err := sql.Open("postgres", os.Getenv("POSTGRES_CONN"))
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("failed to set dialect: %v", err)
	}

	migrationDir := os.Getenv("MIGRATIONS_DIR")
	if migrationDir == "" {
		migrationDir = "./db/migrations"
	}

	fmt.Printf("Running migrations from %s\n", migrationDir)
	if err := goose.Up(db, migrationDir); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
}
