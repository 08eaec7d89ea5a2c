package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/yuseponub/varixcenter-sub001/internal/model"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (partial indexes, check constraints) and seeds the sequence
// counter rows.
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

// RunMigrations applies AutoMigrate plus the schema patches. Also used by the
// integration tests against a disposable database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Producto{},
		&model.HistorialPrecio{},
		&model.MovimientoStock{},
		&model.Venta{},
		&model.VentaItem{},
		&model.VentaMetodo{},
		&model.Devolucion{},
		&model.Compra{},
		&model.CompraItem{},
		&model.CierreCaja{},
		&model.AjusteInventario{},
		&model.TransferenciaStock{},
		&model.Secuencia{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}

	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}

	return seedSecuencias(db)
}

// applySchemaPatches runs idempotent DDL that GORM AutoMigrate cannot fully
// handle on its own. Each statement is guarded so re-running on an
// already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// At most one cerrado closing per date; the reabierto rows of the same
		// date stay out of the index so a re-close can insert a new row.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uq_cierres_caja_fecha_cerrado') THEN
		    CREATE UNIQUE INDEX uq_cierres_caja_fecha_cerrado
		        ON cierres_caja (fecha_cierre)
		        WHERE estado = 'cerrado';
		  END IF;
		END $$`,
		// Both stock pools are non-negative at the database level too; the
		// service check is the friendly error, this is the arbiter.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_productos_stock_no_negativo') THEN
		    ALTER TABLE productos ADD CONSTRAINT chk_productos_stock_no_negativo
		        CHECK (stock_normal >= 0 AND stock_devoluciones >= 0);
		  END IF;
		END $$`,
		// The ledger is append-only: block UPDATE and DELETE outright.
		`CREATE OR REPLACE FUNCTION bloquear_mutacion_movimientos() RETURNS trigger AS $fn$
		BEGIN
		  RAISE EXCEPTION 'movimientos_stock es de solo inserción';
		END
		$fn$ LANGUAGE plpgsql`,
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_movimientos_stock_inmutable') THEN
		    CREATE TRIGGER trg_movimientos_stock_inmutable
		        BEFORE UPDATE OR DELETE ON movimientos_stock
		        FOR EACH ROW EXECUTE FUNCTION bloquear_mutacion_movimientos();
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}

// seedSecuencias makes sure every counter row exists before the first
// workflow tries to lock it.
func seedSecuencias(db *gorm.DB) error {
	for _, nombre := range []string{
		model.SeqVentas,
		model.SeqDevoluciones,
		model.SeqCompras,
		model.SeqCierres,
	} {
		err := db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.Secuencia{Nombre: nombre, Valor: 0}).Error
		if err != nil {
			return fmt.Errorf("seed secuencia %s: %w", nombre, err)
		}
	}
	return nil
}
