package partsupplier

import (
	"gorm.io/gorm"

	"partstrack/model/entity"
)

type PartSupplierRepository struct {
	db *gorm.DB
}

func NewPartSupplierRepository(db *gorm.DB) *PartSupplierRepository {
	return &PartSupplierRepository{db: db}
}

// ListByPart returns all supplier associations for a part with supplier
// details preloaded. No ordering guarantee beyond supplier_id.
func (r *PartSupplierRepository) ListByPart(partID uint) ([]entity.PartSupplier, error) {
	var assocs []entity.PartSupplier
	err := r.db.Preload("Supplier").
		Where("part_id = ?", partID).
		Order("supplier_id").
		Find(&assocs).Error
	return assocs, err
}

func (r *PartSupplierRepository) Get(partID, supplierID uint) (*entity.PartSupplier, error) {
	var assoc entity.PartSupplier
	err := r.db.Where("part_id = ? AND supplier_id = ?", partID, supplierID).First(&assoc).Error
	if err != nil {
		return nil, err
	}
	return &assoc, nil
}

// PartsBySupplier lists parts carried by a supplier with association
// pricing columns joined in, mirroring the supplier detail screen.
type SupplierPartRow struct {
	entity.Part
	UnitCost             float64 `json:"supplier_unit_cost"`
	LeadTimeDays         *int    `json:"lead_time_days,omitempty"`
	MinimumOrderQuantity *int    `json:"minimum_order_quantity,omitempty"`
	IsPreferred          bool    `json:"is_preferred"`
}

func (r *PartSupplierRepository) PartsBySupplier(supplierID uint) ([]SupplierPartRow, error) {
	var rows []SupplierPartRow
	err := r.db.
		Table("parts").
		Select("parts.*, part_suppliers.unit_cost, part_suppliers.lead_time_days, part_suppliers.minimum_order_quantity, part_suppliers.is_preferred").
		Joins("JOIN part_suppliers ON part_suppliers.part_id = parts.part_id").
		Where("part_suppliers.supplier_id = ?", supplierID).
		Order("parts.name").
		Scan(&rows).Error
	return rows, err
}
