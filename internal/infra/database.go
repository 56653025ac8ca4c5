package infra

import (
	"fmt"

	"contalink/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx. TranslateError makes
// unique and foreign-key violations surface as gorm.ErrDuplicatedKey and
// gorm.ErrForeignKeyViolated so the services can classify them.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
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

	return db, nil
}

// RunMigrations creates or updates every ledger table, then applies the DDL
// AutoMigrate cannot express. Used by AUTO_MIGRATE=true and integration tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.UnidadMedida{},
		&model.Producto{},
		&model.Persona{},
		&model.Caja{},
		&model.MovimientoCaja{},
		&model.ComprobantePago{},
		&model.Venta{},
		&model.VentaDetalle{},
		&model.Compra{},
		&model.CompraDetalle{},
		&model.Devolucion{},
		&model.DevolucionDetalle{},
		&model.MovimientoStock{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL statements that GORM AutoMigrate cannot
// fully handle on its own. Each statement uses IF NOT EXISTS semantics so
// re-running on an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// balance aggregation only reads live movements of one till
		`CREATE INDEX IF NOT EXISTS idx_movimientos_caja_saldo
		    ON movimientos_caja (caja_id) WHERE deleted_at IS NULL`,
		// refund cap sums live refund lines per sale
		`CREATE INDEX IF NOT EXISTS idx_devolucion_detalles_vivos
		    ON devolucion_detalles (devolucion_id, producto_id) WHERE deleted_at IS NULL`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
