package infra

import (
	"fmt"

	"github.com/LuizNicolao/terceirize-foods-sub002/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that
// GORM cannot express (extension, partial unique index).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations is also called directly by the integration tests against a
// throwaway container database.
func RunMigrations(db *gorm.DB) error {
	// gen_random_uuid() needs pgcrypto on Postgres < 13
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto: %w", err)
	}

	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.CalendarioDia{},
		&model.SemanaConsumo{},
		&model.SemanaConsumoDia{},
		&model.ProdutoPerCapita{},
		&model.RegistroDiario{},
		&model.Necessidade{},
		&model.NecessidadeItem{},
		&model.Ajuste{},
		&model.Substituicao{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}

	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Each statement is guarded so re-running on a patched schema is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// At most one non-rejected Necessidade per school, group and week.
		// The service checks first, but only this partial index makes the
		// invariant hold under concurrent creation.
		{"partial unique index necessidade ativa", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_necessidade_ativa') THEN
    CREATE UNIQUE INDEX idx_necessidade_ativa
        ON necessidades (escola_id, grupo, ano, semana_numero)
        WHERE status <> 'REJEITADA';
  END IF;
END $$`},
		// At most one non-rejected Substituicao per need line.
		{"partial unique index substituicao ativa", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_substituicao_ativa') THEN
    CREATE UNIQUE INDEX idx_substituicao_ativa
        ON substituicaos (item_id)
        WHERE status <> 'rejeitada';
  END IF;
END $$`},
		// Partial index for the pending-resolution gate checked before every
		// workflow transition.
		{"partial index substituicao pendente", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_substituicao_pendente') THEN
    CREATE INDEX idx_substituicao_pendente
        ON substituicaos (necessidade_id)
        WHERE status = 'proposta';
  END IF;
END $$`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
