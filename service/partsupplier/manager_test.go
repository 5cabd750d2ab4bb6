package partsupplier

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"partstrack/core/fault"
	"partstrack/model/entity"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "partsupplier_test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&entity.Part{}, &entity.Supplier{}, &entity.PartSupplier{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seed(t *testing.T, db *gorm.DB, supplierCount int) (entity.Part, []entity.Supplier) {
	t.Helper()
	p := entity.Part{Name: "Thermal Print Head", FiservPartNumber: "FSV-2001", Status: entity.PartStatusActive}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed part: %v", err)
	}
	suppliers := make([]entity.Supplier, supplierCount)
	for i := range suppliers {
		suppliers[i] = entity.Supplier{Name: "Supplier " + string(rune('A'+i))}
		if err := db.Create(&suppliers[i]).Error; err != nil {
			t.Fatalf("seed supplier: %v", err)
		}
	}
	return p, suppliers
}

func preferredSupplierID(t *testing.T, db *gorm.DB, partID uint) uint {
	t.Helper()
	var assocs []entity.PartSupplier
	if err := db.Where("part_id = ? AND is_preferred = ?", partID, true).Find(&assocs).Error; err != nil {
		t.Fatalf("load preferred: %v", err)
	}
	if len(assocs) != 1 {
		t.Fatalf("preferred count = %d, want exactly 1", len(assocs))
	}
	return assocs[0].SupplierID
}

func TestAttachFirstSupplierBecomesPreferred(t *testing.T) {
	db := testDB(t)
	part, suppliers := seed(t, db, 1)
	mgr := NewManager(db)

	// is_preferred=false in the input is overridden for the first supplier.
	assoc, err := mgr.Attach(part.PartID, suppliers[0].SupplierID, AttachInput{UnitCost: 12.50, IsPreferred: false})
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if !assoc.IsPreferred {
		t.Error("first supplier not marked preferred")
	}
}

func TestAttachPreferredDemotesSiblings(t *testing.T) {
	db := testDB(t)
	part, suppliers := seed(t, db, 2)
	mgr := NewManager(db)

	if _, err := mgr.Attach(part.PartID, suppliers[0].SupplierID, AttachInput{UnitCost: 10}); err != nil {
		t.Fatalf("attach first: %v", err)
	}
	if _, err := mgr.Attach(part.PartID, suppliers[1].SupplierID, AttachInput{UnitCost: 9, IsPreferred: true}); err != nil {
		t.Fatalf("attach second: %v", err)
	}

	if got := preferredSupplierID(t, db, part.PartID); got != suppliers[1].SupplierID {
		t.Errorf("preferred supplier = %d, want %d", got, suppliers[1].SupplierID)
	}
}

func TestAttachDuplicateIsConflict(t *testing.T) {
	db := testDB(t)
	part, suppliers := seed(t, db, 1)
	mgr := NewManager(db)

	if _, err := mgr.Attach(part.PartID, suppliers[0].SupplierID, AttachInput{}); err != nil {
		t.Fatalf("attach: %v", err)
	}
	_, err := mgr.Attach(part.PartID, suppliers[0].SupplierID, AttachInput{})
	if fault.KindOf(err) != fault.Conflict {
		t.Errorf("kind = %v, want Conflict", fault.KindOf(err))
	}
}

func TestUpdatePromotionMovesPreference(t *testing.T) {
	db := testDB(t)
	part, suppliers := seed(t, db, 2)
	mgr := NewManager(db)

	mustAttach(t, mgr, part.PartID, suppliers[0].SupplierID, AttachInput{UnitCost: 10})
	mustAttach(t, mgr, part.PartID, suppliers[1].SupplierID, AttachInput{UnitCost: 11})

	if _, err := mgr.Update(part.PartID, suppliers[1].SupplierID, map[string]interface{}{"is_preferred": true}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := preferredSupplierID(t, db, part.PartID); got != suppliers[1].SupplierID {
		t.Errorf("preferred supplier = %d, want %d", got, suppliers[1].SupplierID)
	}
}

func TestUpdateCannotClearPreferredDirectly(t *testing.T) {
	db := testDB(t)
	part, suppliers := seed(t, db, 1)
	mgr := NewManager(db)
	mustAttach(t, mgr, part.PartID, suppliers[0].SupplierID, AttachInput{})

	_, err := mgr.Update(part.PartID, suppliers[0].SupplierID, map[string]interface{}{"is_preferred": false})
	if fault.KindOf(err) != fault.Invalid {
		t.Errorf("kind = %v, want Invalid", fault.KindOf(err))
	}
	// Invariant holds: the lone supplier is still preferred.
	if got := preferredSupplierID(t, db, part.PartID); got != suppliers[0].SupplierID {
		t.Errorf("preferred supplier = %d, want %d", got, suppliers[0].SupplierID)
	}
}

func TestUpdatePartialFields(t *testing.T) {
	db := testDB(t)
	part, suppliers := seed(t, db, 1)
	mgr := NewManager(db)
	mustAttach(t, mgr, part.PartID, suppliers[0].SupplierID, AttachInput{UnitCost: 10})

	assoc, err := mgr.Update(part.PartID, suppliers[0].SupplierID, map[string]interface{}{
		"unit_cost":      8.75,
		"lead_time_days": 14,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if assoc.UnitCost != 8.75 {
		t.Errorf("unit_cost = %v, want 8.75", assoc.UnitCost)
	}
	if assoc.LeadTimeDays == nil || *assoc.LeadTimeDays != 14 {
		t.Errorf("lead_time_days = %v, want 14", assoc.LeadTimeDays)
	}
	if !assoc.IsPreferred {
		t.Error("untouched is_preferred was cleared")
	}
}

func TestDetachLastSupplierIsConflict(t *testing.T) {
	db := testDB(t)
	part, suppliers := seed(t, db, 1)
	mgr := NewManager(db)
	mustAttach(t, mgr, part.PartID, suppliers[0].SupplierID, AttachInput{})

	err := mgr.Detach(part.PartID, suppliers[0].SupplierID)
	if fault.KindOf(err) != fault.Conflict {
		t.Errorf("kind = %v, want Conflict", fault.KindOf(err))
	}
}

func TestDetachPreferredPromotesLowestSupplierID(t *testing.T) {
	db := testDB(t)
	part, suppliers := seed(t, db, 3)
	mgr := NewManager(db)

	// First attach becomes preferred; the other two stay ordinary.
	mustAttach(t, mgr, part.PartID, suppliers[0].SupplierID, AttachInput{UnitCost: 10})
	mustAttach(t, mgr, part.PartID, suppliers[1].SupplierID, AttachInput{UnitCost: 8})
	mustAttach(t, mgr, part.PartID, suppliers[2].SupplierID, AttachInput{UnitCost: 9})

	if err := mgr.Detach(part.PartID, suppliers[0].SupplierID); err != nil {
		t.Fatalf("Detach: %v", err)
	}
	// Promotion is by lowest supplier id, not by price.
	if got := preferredSupplierID(t, db, part.PartID); got != suppliers[1].SupplierID {
		t.Errorf("promoted supplier = %d, want %d", got, suppliers[1].SupplierID)
	}
}

func TestDetachNonPreferredKeepsPreference(t *testing.T) {
	db := testDB(t)
	part, suppliers := seed(t, db, 2)
	mgr := NewManager(db)
	mustAttach(t, mgr, part.PartID, suppliers[0].SupplierID, AttachInput{})
	mustAttach(t, mgr, part.PartID, suppliers[1].SupplierID, AttachInput{})

	if err := mgr.Detach(part.PartID, suppliers[1].SupplierID); err != nil {
		t.Fatalf("Detach: %v", err)
	}
	if got := preferredSupplierID(t, db, part.PartID); got != suppliers[0].SupplierID {
		t.Errorf("preferred supplier = %d, want %d", got, suppliers[0].SupplierID)
	}
}

func TestListReturnsAssociationsInSupplierOrder(t *testing.T) {
	db := testDB(t)
	part, suppliers := seed(t, db, 2)
	mgr := NewManager(db)
	mustAttach(t, mgr, part.PartID, suppliers[1].SupplierID, AttachInput{UnitCost: 11})
	mustAttach(t, mgr, part.PartID, suppliers[0].SupplierID, AttachInput{UnitCost: 10})

	assocs, err := mgr.List(part.PartID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(assocs) != 2 {
		t.Fatalf("len = %d, want 2", len(assocs))
	}
	if assocs[0].SupplierID != suppliers[0].SupplierID {
		t.Errorf("first association supplier = %d, want %d", assocs[0].SupplierID, suppliers[0].SupplierID)
	}
	if assocs[0].Supplier.Name == "" {
		t.Error("supplier not preloaded")
	}
}

func TestGetAssociation(t *testing.T) {
	db := testDB(t)
	part, suppliers := seed(t, db, 1)
	mgr := NewManager(db)
	mustAttach(t, mgr, part.PartID, suppliers[0].SupplierID, AttachInput{UnitCost: 4.25})

	assoc, err := mgr.Get(part.PartID, suppliers[0].SupplierID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if assoc.UnitCost != 4.25 {
		t.Errorf("unit_cost = %v, want 4.25", assoc.UnitCost)
	}

	if _, err := mgr.Get(part.PartID, 999); fault.KindOf(err) != fault.NotFound {
		t.Errorf("kind = %v, want NotFound", fault.KindOf(err))
	}
}

func TestListMissingPart(t *testing.T) {
	db := testDB(t)
	mgr := NewManager(db)
	_, err := mgr.List(77)
	if fault.KindOf(err) != fault.NotFound {
		t.Errorf("kind = %v, want NotFound", fault.KindOf(err))
	}
}

func mustAttach(t *testing.T, mgr *Manager, partID, supplierID uint, in AttachInput) {
	t.Helper()
	if _, err := mgr.Attach(partID, supplierID, in); err != nil {
		t.Fatalf("attach supplier %d: %v", supplierID, err)
	}
}
