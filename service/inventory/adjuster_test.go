package inventory

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"partstrack/core/fault"
	"partstrack/model/entity"
	"partstrack/service/notify"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "inventory_test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&entity.Machine{}, &entity.Part{}, &entity.Transaction{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedPart(t *testing.T, db *gorm.DB, qty int) entity.Part {
	t.Helper()
	p := entity.Part{
		Name:             "Card Reader Belt",
		FiservPartNumber: "FSV-1001",
		Quantity:         qty,
		MinimumQuantity:  2,
		Status:           entity.PartStatusActive,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed part: %v", err)
	}
	return p
}

func TestRecordUsageDecrementsAndAudits(t *testing.T) {
	db := testDB(t)
	part := seedPart(t, db, 10)
	hub := notify.NewHub()
	_, events := hub.Subscribe()
	adj := NewAdjuster(db, hub)

	trx, err := adj.RecordUsage(UsageInput{
		PartID:     part.PartID,
		Quantity:   3,
		Technician: "lgarcia",
		Reason:     "worn belt replacement",
	})
	if err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}
	if trx.Type != entity.TransactionUsage || trx.Quantity != 3 {
		t.Errorf("transaction = %q/%d, want usage/3", trx.Type, trx.Quantity)
	}

	var got entity.Part
	db.First(&got, "part_id = ?", part.PartID)
	if got.Quantity != 7 {
		t.Errorf("quantity = %d, want 7", got.Quantity)
	}

	var count int64
	db.Model(&entity.Transaction{}).Where("part_id = ?", part.PartID).Count(&count)
	if count != 1 {
		t.Errorf("audit rows = %d, want 1", count)
	}

	ev := <-events
	if ev.Topic != notify.TopicInventoryChanged || ev.PartID != part.PartID {
		t.Errorf("event = %+v, want inventory.changed for part %d", ev, part.PartID)
	}
}

func TestRecordUsageInsufficientLeavesStateUnchanged(t *testing.T) {
	db := testDB(t)
	part := seedPart(t, db, 2)
	adj := NewAdjuster(db, nil)

	_, err := adj.RecordUsage(UsageInput{PartID: part.PartID, Quantity: 5})
	fe, ok := fault.As(err)
	if !ok || fe.Kind != fault.InsufficientStock {
		t.Fatalf("err = %v, want InsufficientStock", err)
	}
	if fe.Available != 2 || fe.Requested != 5 {
		t.Errorf("available/requested = %d/%d, want 2/5", fe.Available, fe.Requested)
	}

	var got entity.Part
	db.First(&got, "part_id = ?", part.PartID)
	if got.Quantity != 2 {
		t.Errorf("quantity changed to %d on failed usage", got.Quantity)
	}
	var count int64
	db.Model(&entity.Transaction{}).Count(&count)
	if count != 0 {
		t.Errorf("audit rows written on failed usage: %d", count)
	}
}

func TestRecordUsageExactQuantitySucceeds(t *testing.T) {
	db := testDB(t)
	part := seedPart(t, db, 4)
	adj := NewAdjuster(db, nil)

	if _, err := adj.RecordUsage(UsageInput{PartID: part.PartID, Quantity: 4}); err != nil {
		t.Fatalf("RecordUsage at exact quantity: %v", err)
	}
	var got entity.Part
	db.First(&got, "part_id = ?", part.PartID)
	if got.Quantity != 0 {
		t.Errorf("quantity = %d, want 0", got.Quantity)
	}
}

func TestRecordUsageValidation(t *testing.T) {
	db := testDB(t)
	part := seedPart(t, db, 5)
	adj := NewAdjuster(db, nil)

	if _, err := adj.RecordUsage(UsageInput{PartID: part.PartID, Quantity: 0}); fault.KindOf(err) != fault.Invalid {
		t.Errorf("zero quantity: kind = %v, want Invalid", fault.KindOf(err))
	}
	if _, err := adj.RecordUsage(UsageInput{PartID: part.PartID, Quantity: -2}); fault.KindOf(err) != fault.Invalid {
		t.Errorf("negative quantity: kind = %v, want Invalid", fault.KindOf(err))
	}
	if _, err := adj.RecordUsage(UsageInput{PartID: 9999, Quantity: 1}); fault.KindOf(err) != fault.NotFound {
		t.Errorf("missing part: kind = %v, want NotFound", fault.KindOf(err))
	}

	missing := uint(4242)
	if _, err := adj.RecordUsage(UsageInput{PartID: part.PartID, Quantity: 1, MachineID: &missing}); fault.KindOf(err) != fault.NotFound {
		t.Errorf("missing machine: kind = %v, want NotFound", fault.KindOf(err))
	}
}

func TestRepeatedUsageDrainsToInsufficient(t *testing.T) {
	db := testDB(t)
	part := seedPart(t, db, 5)
	adj := NewAdjuster(db, nil)

	for i := 0; i < 2; i++ {
		if _, err := adj.RecordUsage(UsageInput{PartID: part.PartID, Quantity: 2}); err != nil {
			t.Fatalf("usage %d: %v", i, err)
		}
	}
	_, err := adj.RecordUsage(UsageInput{PartID: part.PartID, Quantity: 2})
	if fault.KindOf(err) != fault.InsufficientStock {
		t.Fatalf("err = %v, want InsufficientStock after draining", err)
	}

	var got entity.Part
	db.First(&got, "part_id = ?", part.PartID)
	if got.Quantity != 1 {
		t.Errorf("quantity = %d, want 1", got.Quantity)
	}
}

func TestConcurrentUsageNeverOverdraws(t *testing.T) {
	db := testDB(t)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// One connection serializes the sqlite writers; the quantity guard
	// still decides which usages go through.
	sqlDB.SetMaxOpenConns(1)

	part := seedPart(t, db, 10)
	adj := NewAdjuster(db, nil)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = adj.RecordUsage(UsageInput{PartID: part.PartID, Quantity: 3, Technician: "lgarcia"})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case fault.KindOf(err) == fault.InsufficientStock:
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	// 10 on hand, 3 per usage: only three can succeed no matter the
	// interleaving.
	if succeeded != 3 {
		t.Errorf("succeeded = %d, want 3", succeeded)
	}

	var got entity.Part
	db.First(&got, "part_id = ?", part.PartID)
	if got.Quantity != 1 {
		t.Errorf("quantity = %d, want 1", got.Quantity)
	}
	var count int64
	db.Model(&entity.Transaction{}).Count(&count)
	if count != 3 {
		t.Errorf("audit rows = %d, want 3", count)
	}
}

func TestRecordRestockIncrementsAndAudits(t *testing.T) {
	db := testDB(t)
	part := seedPart(t, db, 1)
	adj := NewAdjuster(db, nil)

	trx, err := adj.RecordRestock(RestockInput{PartID: part.PartID, Quantity: 6, Notes: "weekly delivery"})
	if err != nil {
		t.Fatalf("RecordRestock: %v", err)
	}
	if trx.Type != entity.TransactionRestock || trx.Notes != "weekly delivery" {
		t.Errorf("transaction = %+v, want restock with notes", trx)
	}

	var got entity.Part
	db.First(&got, "part_id = ?", part.PartID)
	if got.Quantity != 7 {
		t.Errorf("quantity = %d, want 7", got.Quantity)
	}
}

func TestRecordRestockMissingPart(t *testing.T) {
	db := testDB(t)
	adj := NewAdjuster(db, nil)

	_, err := adj.RecordRestock(RestockInput{PartID: 31, Quantity: 1})
	if fault.KindOf(err) != fault.NotFound {
		t.Errorf("kind = %v, want NotFound", fault.KindOf(err))
	}
}
