// Package partsupplier maintains the part↔supplier association and its
// two invariants: at most one preferred supplier per part, and a part
// that has suppliers keeps at least one.
package partsupplier

import (
	"errors"

	"github.com/mitchellh/mapstructure"
	"gorm.io/gorm"

	"partstrack/core/fault"
	"partstrack/model/entity"
	psrepo "partstrack/model/repository/partsupplier"
)

type Manager struct {
	DB   *gorm.DB
	repo *psrepo.PartSupplierRepository
}

func NewManager(db *gorm.DB) *Manager {
	return &Manager{DB: db, repo: psrepo.NewPartSupplierRepository(db)}
}

// AttachInput describes a new association.
type AttachInput struct {
	UnitCost             float64 `json:"unit_cost"`
	LeadTimeDays         *int    `json:"lead_time_days,omitempty"`
	MinimumOrderQuantity *int    `json:"minimum_order_quantity,omitempty"`
	IsPreferred          bool    `json:"is_preferred"`
}

// Attach links a supplier to a part. The part's first supplier becomes
// preferred regardless of input; a preferred attach demotes siblings.
func (m *Manager) Attach(partID, supplierID uint, in AttachInput) (*entity.PartSupplier, error) {
	if in.UnitCost < 0 {
		return nil, fault.Invalidf("unit_cost must not be negative")
	}

	var assoc entity.PartSupplier
	err := m.DB.Transaction(func(tx *gorm.DB) error {
		if err := requirePart(tx, partID); err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&entity.Supplier{}).Where("supplier_id = ?", supplierID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fault.NotFoundf("supplier %d not found", supplierID)
		}

		if err := tx.Model(&entity.PartSupplier{}).
			Where("part_id = ? AND supplier_id = ?", partID, supplierID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fault.Conflictf("supplier %d is already associated with part %d", supplierID, partID)
		}

		var existing int64
		if err := tx.Model(&entity.PartSupplier{}).Where("part_id = ?", partID).Count(&existing).Error; err != nil {
			return err
		}

		preferred := in.IsPreferred
		if existing == 0 {
			preferred = true
		} else if preferred {
			if err := demoteOthers(tx, partID, 0); err != nil {
				return err
			}
		}

		assoc = entity.PartSupplier{
			PartID:               partID,
			SupplierID:           supplierID,
			UnitCost:             in.UnitCost,
			LeadTimeDays:         in.LeadTimeDays,
			MinimumOrderQuantity: in.MinimumOrderQuantity,
			IsPreferred:          preferred,
		}
		return tx.Create(&assoc).Error
	})
	if err != nil {
		return nil, err
	}
	return &assoc, nil
}

// patch holds the decodable fields of a partial association update.
type patch struct {
	UnitCost             *float64 `mapstructure:"unit_cost"`
	LeadTimeDays         *int     `mapstructure:"lead_time_days"`
	MinimumOrderQuantity *int     `mapstructure:"minimum_order_quantity"`
	IsPreferred          *bool    `mapstructure:"is_preferred"`
}

// Update applies a partial update from a JSON-decoded map. Setting
// is_preferred=true demotes every sibling in the same transaction.
func (m *Manager) Update(partID, supplierID uint, fields map[string]interface{}) (*entity.PartSupplier, error) {
	var p patch
	if err := mapstructure.Decode(fields, &p); err != nil {
		return nil, fault.Invalidf("malformed update: %v", err)
	}
	if p.UnitCost != nil && *p.UnitCost < 0 {
		return nil, fault.Invalidf("unit_cost must not be negative")
	}
	if p.IsPreferred != nil && !*p.IsPreferred {
		// Refusing the direct unset keeps the exactly-one-preferred
		// invariant: preference moves by promoting another supplier.
		return nil, fault.Invalidf("is_preferred can only be cleared by preferring another supplier")
	}

	var assoc entity.PartSupplier
	err := m.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("part_id = ? AND supplier_id = ?", partID, supplierID).First(&assoc).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fault.NotFoundf("part %d has no association with supplier %d", partID, supplierID)
		}
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if p.UnitCost != nil {
			updates["unit_cost"] = *p.UnitCost
			assoc.UnitCost = *p.UnitCost
		}
		if p.LeadTimeDays != nil {
			updates["lead_time_days"] = *p.LeadTimeDays
			assoc.LeadTimeDays = p.LeadTimeDays
		}
		if p.MinimumOrderQuantity != nil {
			updates["minimum_order_quantity"] = *p.MinimumOrderQuantity
			assoc.MinimumOrderQuantity = p.MinimumOrderQuantity
		}
		if p.IsPreferred != nil && *p.IsPreferred {
			if err := demoteOthers(tx, partID, assoc.PartSupplierID); err != nil {
				return err
			}
			updates["is_preferred"] = true
			assoc.IsPreferred = true
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&entity.PartSupplier{}).
			Where("part_supplier_id = ?", assoc.PartSupplierID).
			Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return &assoc, nil
}

// Detach removes a supplier association. The last remaining supplier
// cannot be removed; removing the preferred one promotes the remaining
// association with the lowest supplier id.
func (m *Manager) Detach(partID, supplierID uint) error {
	return m.DB.Transaction(func(tx *gorm.DB) error {
		var assoc entity.PartSupplier
		err := tx.Where("part_id = ? AND supplier_id = ?", partID, supplierID).First(&assoc).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fault.NotFoundf("part %d has no association with supplier %d", partID, supplierID)
		}
		if err != nil {
			return err
		}

		var total int64
		if err := tx.Model(&entity.PartSupplier{}).Where("part_id = ?", partID).Count(&total).Error; err != nil {
			return err
		}
		if total <= 1 {
			return fault.Conflictf("cannot remove the last supplier for part %d", partID)
		}

		if err := tx.Delete(&entity.PartSupplier{}, "part_supplier_id = ?", assoc.PartSupplierID).Error; err != nil {
			return err
		}

		if assoc.IsPreferred {
			// Deterministic promotion: lowest remaining supplier id.
			var next entity.PartSupplier
			err := tx.Where("part_id = ?", partID).Order("supplier_id").First(&next).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fault.Internalf("no remaining association to promote for part %d", partID)
			}
			if err != nil {
				return err
			}
			return tx.Model(&entity.PartSupplier{}).
				Where("part_supplier_id = ?", next.PartSupplierID).
				Update("is_preferred", true).Error
		}
		return nil
	})
}

// List returns a part's supplier associations.
func (m *Manager) List(partID uint) ([]entity.PartSupplier, error) {
	if err := requirePart(m.DB, partID); err != nil {
		return nil, err
	}
	return m.repo.ListByPart(partID)
}

// Get returns a single association.
func (m *Manager) Get(partID, supplierID uint) (*entity.PartSupplier, error) {
	assoc, err := m.repo.Get(partID, supplierID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fault.NotFoundf("part %d has no association with supplier %d", partID, supplierID)
	}
	if err != nil {
		return nil, err
	}
	return assoc, nil
}

func demoteOthers(tx *gorm.DB, partID uint, keep uint) error {
	q := tx.Model(&entity.PartSupplier{}).Where("part_id = ? AND is_preferred = ?", partID, true)
	if keep != 0 {
		q = q.Where("part_supplier_id <> ?", keep)
	}
	return q.Update("is_preferred", false).Error
}

func requirePart(tx *gorm.DB, partID uint) error {
	var count int64
	if err := tx.Model(&entity.Part{}).Where("part_id = ?", partID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fault.NotFoundf("part %d not found", partID)
	}
	return nil
}
