// Package inventory applies signed quantity changes to parts and
// records the matching audit transaction, atomically.
package inventory

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"partstrack/core/fault"
	"partstrack/model/entity"
	"partstrack/service/notify"
)

// Adjuster is the inventory quantity adjuster. Correctness under
// concurrent requests rests on the guarded server-side UPDATE
// (quantity = quantity - n WHERE quantity >= n), not on any in-process
// lock.
type Adjuster struct {
	DB       *gorm.DB
	Notifier notify.Port
}

func NewAdjuster(db *gorm.DB, notifier notify.Port) *Adjuster {
	if notifier == nil {
		notifier = notify.Fanout{}
	}
	return &Adjuster{DB: db, Notifier: notifier}
}

// UsageInput describes a parts-usage request.
type UsageInput struct {
	PartID          uint   `json:"part_id"`
	MachineID       *uint  `json:"machine_id,omitempty"`
	Quantity        int    `json:"quantity"`
	Technician      string `json:"technician"`
	Reason          string `json:"reason"`
	WorkOrderNumber string `json:"work_order_number"`
}

// RecordUsage decrements a part's on-hand quantity and appends a usage
// transaction. The SELECT/UPDATE/INSERT sequence commits or rolls back
// as one unit; on any failure state is unchanged.
func (a *Adjuster) RecordUsage(in UsageInput) (*entity.Transaction, error) {
	if in.PartID == 0 {
		return nil, fault.Invalidf("part_id is required")
	}
	if in.Quantity <= 0 {
		return nil, fault.Invalidf("quantity must be a positive integer")
	}

	var trx entity.Transaction
	err := a.DB.Transaction(func(tx *gorm.DB) error {
		if in.MachineID != nil {
			var count int64
			if err := tx.Model(&entity.Machine{}).Where("machine_id = ?", *in.MachineID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fault.NotFoundf("machine %d not found", *in.MachineID)
			}
		}

		// Guarded decrement: only succeeds when enough stock is on hand.
		res := tx.Model(&entity.Part{}).
			Where("part_id = ? AND quantity >= ?", in.PartID, in.Quantity).
			UpdateColumn("quantity", gorm.Expr("quantity - ?", in.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var p entity.Part
			if err := tx.First(&p, "part_id = ?", in.PartID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fault.NotFoundf("part %d not found", in.PartID)
				}
				return err
			}
			return fault.Insufficient(p.Quantity, in.Quantity)
		}

		trx = entity.Transaction{
			PartID:          in.PartID,
			MachineID:       in.MachineID,
			Type:            entity.TransactionUsage,
			Quantity:        in.Quantity,
			Technician:      in.Technician,
			Reason:          in.Reason,
			WorkOrderNumber: in.WorkOrderNumber,
		}
		return tx.Create(&trx).Error
	})
	if err != nil {
		return nil, err
	}

	a.Notifier.Publish(notify.Event{
		Topic:    notify.TopicInventoryChanged,
		PartID:   in.PartID,
		Type:     entity.TransactionUsage,
		Quantity: in.Quantity,
		At:       time.Now(),
	})
	return &trx, nil
}

// RestockInput describes a restock request.
type RestockInput struct {
	PartID   uint   `json:"part_id"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes"`
}

// RecordRestock increments a part's quantity and appends a restock
// transaction.
func (a *Adjuster) RecordRestock(in RestockInput) (*entity.Transaction, error) {
	if in.PartID == 0 {
		return nil, fault.Invalidf("part_id is required")
	}
	if in.Quantity <= 0 {
		return nil, fault.Invalidf("quantity must be a positive integer")
	}

	var trx *entity.Transaction
	err := a.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		trx, err = a.RestockInTx(tx, in.PartID, in.Quantity, in.Notes)
		return err
	})
	if err != nil {
		return nil, err
	}

	a.Notifier.Publish(notify.Event{
		Topic:    notify.TopicInventoryChanged,
		PartID:   in.PartID,
		Type:     entity.TransactionRestock,
		Quantity: in.Quantity,
		At:       time.Now(),
	})
	return trx, nil
}

// RestockInTx performs the increment and audit insert inside a caller
// transaction so compound operations (receiving a purchase order) stay
// atomic. The caller is responsible for publishing notifications after
// its commit.
func (a *Adjuster) RestockInTx(tx *gorm.DB, partID uint, quantity int, notes string) (*entity.Transaction, error) {
	if quantity <= 0 {
		return nil, fault.Invalidf("quantity must be a positive integer")
	}
	res := tx.Model(&entity.Part{}).
		Where("part_id = ?", partID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fault.NotFoundf("part %d not found", partID)
	}

	trx := entity.Transaction{
		PartID:   partID,
		Type:     entity.TransactionRestock,
		Quantity: quantity,
		Notes:    notes,
	}
	if err := tx.Create(&trx).Error; err != nil {
		return nil, err
	}
	return &trx, nil
}
