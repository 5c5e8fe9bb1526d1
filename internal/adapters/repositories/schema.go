package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"fuel-delivery-service/internal/domain"
	"fuel-delivery-service/internal/ports"
	"os"
	"strings"
)

// Initialize the list table. The statement is valid for both SQLite and Postgres.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createListsQuery := `
	CREATE TABLE IF NOT EXISTS kv_lists (
		list_key TEXT PRIMARY KEY,
		items TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_kv_lists_updated_at
    ON kv_lists(updated_at);
	`

	statements := []string{
		createListsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Seed file layout: one array per entity kind.
type FleetSeed struct {
	Trucks  []domain.Truck         `json:"trucks"`
	Drivers []domain.Driver        `json:"drivers"`
	Orders  []domain.PurchaseOrder `json:"orders"`
	Tanks   []domain.Tank          `json:"tanks"`
}

// Populate the store with fleet, order, and tank data from a JSON file.
// Existing entities with the same id are replaced.
func SeedFromJSON(ctx context.Context, store ports.ListStore, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed: read %q: %w", jsonPath, err)
	}

	var data FleetSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed: parse json: %w", err)
	}

	if err := validateSeed(&data); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	fleet := NewFleetRepository(store)
	for i := range data.Trucks {
		if err := fleet.SaveTruck(ctx, &data.Trucks[i]); err != nil {
			return fmt.Errorf("seed: truck %q: %w", data.Trucks[i].ID, err)
		}
	}
	for i := range data.Drivers {
		if err := fleet.SaveDriver(ctx, &data.Drivers[i]); err != nil {
			return fmt.Errorf("seed: driver %q: %w", data.Drivers[i].ID, err)
		}
	}

	orders := NewOrderRepository(store)
	for i := range data.Orders {
		if err := orders.SaveOrder(ctx, &data.Orders[i]); err != nil {
			return fmt.Errorf("seed: order %q: %w", data.Orders[i].ID, err)
		}
	}

	tanks := NewTankRepository(store)
	for i := range data.Tanks {
		if err := tanks.SaveTank(ctx, &data.Tanks[i]); err != nil {
			return fmt.Errorf("seed: tank %q: %w", data.Tanks[i].ID, err)
		}
	}

	return nil
}

func validateSeed(data *FleetSeed) error {
	for i := range data.Trucks {
		t := &data.Trucks[i]
		t.ID = strings.TrimSpace(t.ID)
		if t.ID == "" {
			return fmt.Errorf("truck at index %d: id cannot be empty", i+1)
		}
		if t.GPSTagged && !t.GPSCapable {
			return fmt.Errorf("truck %q: tagged but not GPS capable", t.ID)
		}
	}

	for i := range data.Drivers {
		d := &data.Drivers[i]
		d.ID = strings.TrimSpace(d.ID)
		if d.ID == "" {
			return fmt.Errorf("driver at index %d: id cannot be empty", i+1)
		}
	}

	for i := range data.Orders {
		o := &data.Orders[i]
		o.ID = strings.TrimSpace(o.ID)
		if o.ID == "" {
			return fmt.Errorf("order at index %d: id cannot be empty", i+1)
		}
		if o.VolumeLitres <= 0 {
			return fmt.Errorf("order %q: volume must be positive, got %v", o.ID, o.VolumeLitres)
		}
		if o.Status == "" {
			o.Status = domain.OrderPending
		}
	}

	for i := range data.Tanks {
		t := &data.Tanks[i]
		t.ID = strings.TrimSpace(t.ID)
		if t.ID == "" {
			return fmt.Errorf("tank at index %d: id cannot be empty", i+1)
		}
		if t.CapacityLitres <= 0 || t.CurrentLitres < 0 || t.CurrentLitres > t.CapacityLitres {
			return fmt.Errorf("tank %q: level %v outside capacity %v", t.ID, t.CurrentLitres, t.CapacityLitres)
		}
	}

	return nil
}
