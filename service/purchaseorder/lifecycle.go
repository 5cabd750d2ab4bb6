// Package purchaseorder drives the purchase-order lifecycle: line item
// management, derived totals, approval transitions, and the inventory
// increment on receipt.
package purchaseorder

import (
	"errors"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"partstrack/core/fault"
	"partstrack/model/entity"
	"partstrack/service/inventory"
	"partstrack/service/notify"
)

// approvalTransitions is the explicit transition table. Anything not
// listed is rejected with Conflict instead of being written through.
var approvalTransitions = map[string][]string{
	entity.ApprovalPending:  {entity.ApprovalApproved, entity.ApprovalRejected},
	entity.ApprovalApproved: {},
	entity.ApprovalRejected: {},
}

// fulfillmentStatuses is the loose whitelist for the fulfillment field.
// Transitions between these are caller-driven, matching the real
// process being modeled; only `received` has side effects.
var fulfillmentStatuses = map[string]bool{
	entity.StatusDraft:     true,
	entity.StatusPending:   true,
	entity.StatusSubmitted: true,
	entity.StatusOrdered:   true,
	entity.StatusReceived:  true,
	entity.StatusCanceled:  true,
}

type Service struct {
	DB        *gorm.DB
	Inventory *inventory.Adjuster
	Notifier  notify.Port
}

func NewService(db *gorm.DB, inv *inventory.Adjuster, notifier notify.Port) *Service {
	if notifier == nil {
		notifier = notify.Fanout{}
	}
	return &Service{DB: db, Inventory: inv, Notifier: notifier}
}

// BlankOrderInput describes a new order with no line items.
type BlankOrderInput struct {
	SupplierID   uint    `json:"supplier_id"`
	PONumber     string  `json:"po_number"`
	Notes        string  `json:"notes"`
	ShippingCost float64 `json:"shipping_cost"`
	TaxAmount    float64 `json:"tax_amount"`
	IsUrgent     bool    `json:"is_urgent"`
	NextDayAir   bool    `json:"next_day_air"`
	RequestedBy  string  `json:"requested_by"`
}

// CreateBlank creates a draft order with zero items. The total starts
// at shipping + tax.
func (s *Service) CreateBlank(in BlankOrderInput) (*entity.PurchaseOrder, error) {
	if in.SupplierID == 0 {
		return nil, fault.Invalidf("supplier_id is required")
	}
	if in.ShippingCost < 0 || in.TaxAmount < 0 {
		return nil, fault.Invalidf("shipping_cost and tax_amount must not be negative")
	}

	var po entity.PurchaseOrder
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entity.Supplier{}).Where("supplier_id = ?", in.SupplierID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fault.NotFoundf("supplier %d not found", in.SupplierID)
		}

		number, err := resolvePONumber(tx, in.PONumber)
		if err != nil {
			return err
		}

		supplierID := in.SupplierID
		po = entity.PurchaseOrder{
			PONumber:       number,
			SupplierID:     &supplierID,
			Status:         entity.StatusDraft,
			ApprovalStatus: entity.ApprovalPending,
			TotalAmount:    money(decimal.NewFromFloat(in.ShippingCost).Add(decimal.NewFromFloat(in.TaxAmount))),
			ShippingCost:   in.ShippingCost,
			TaxAmount:      in.TaxAmount,
			IsUrgent:       in.IsUrgent,
			NextDayAir:     in.NextDayAir,
			RequestedBy:    in.RequestedBy,
			Notes:          in.Notes,
		}
		if err := tx.Create(&po).Error; err != nil {
			if duplicateNumber(err) {
				return fault.Conflictf("purchase order number %q already exists", po.PONumber)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &po, nil
}

// ItemInput describes a new order line.
type ItemInput struct {
	PartID    uint    `json:"part_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// AddItem appends a line item and recomputes the order total in the
// same transaction.
func (s *Service) AddItem(poID uint, in ItemInput) (*entity.PurchaseOrderItem, error) {
	if in.Quantity <= 0 {
		return nil, fault.Invalidf("quantity must be a positive integer")
	}
	if in.UnitPrice < 0 {
		return nil, fault.Invalidf("unit_price must not be negative")
	}

	var item entity.PurchaseOrderItem
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := requireOrder(tx, poID); err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&entity.Part{}).Where("part_id = ?", in.PartID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fault.NotFoundf("part %d not found", in.PartID)
		}

		item = entity.PurchaseOrderItem{
			POID:       poID,
			PartID:     in.PartID,
			Quantity:   in.Quantity,
			UnitPrice:  in.UnitPrice,
			TotalPrice: lineTotal(in.Quantity, in.UnitPrice),
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		return s.recomputeTotal(tx, poID)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

type itemPatch struct {
	Quantity  *int     `mapstructure:"quantity"`
	UnitPrice *float64 `mapstructure:"unit_price"`
}

// UpdateItem applies a partial update to a line item and recomputes
// the order total.
func (s *Service) UpdateItem(poID, itemID uint, fields map[string]interface{}) (*entity.PurchaseOrderItem, error) {
	var p itemPatch
	if err := mapstructure.Decode(fields, &p); err != nil {
		return nil, fault.Invalidf("malformed update: %v", err)
	}
	if p.Quantity != nil && *p.Quantity <= 0 {
		return nil, fault.Invalidf("quantity must be a positive integer")
	}
	if p.UnitPrice != nil && *p.UnitPrice < 0 {
		return nil, fault.Invalidf("unit_price must not be negative")
	}

	var item entity.PurchaseOrderItem
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("item_id = ? AND po_id = ?", itemID, poID).First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fault.NotFoundf("item %d not found on purchase order %d", itemID, poID)
		}
		if err != nil {
			return err
		}

		if p.Quantity != nil {
			item.Quantity = *p.Quantity
		}
		if p.UnitPrice != nil {
			item.UnitPrice = *p.UnitPrice
		}
		item.TotalPrice = lineTotal(item.Quantity, item.UnitPrice)

		updates := map[string]interface{}{
			"quantity":    item.Quantity,
			"unit_price":  item.UnitPrice,
			"total_price": item.TotalPrice,
		}
		if err := tx.Model(&entity.PurchaseOrderItem{}).Where("item_id = ?", itemID).Updates(updates).Error; err != nil {
			return err
		}
		return s.recomputeTotal(tx, poID)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// RemoveItem deletes a line item and recomputes the order total.
func (s *Service) RemoveItem(poID, itemID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("item_id = ? AND po_id = ?", itemID, poID).Delete(&entity.PurchaseOrderItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fault.NotFoundf("item %d not found on purchase order %d", itemID, poID)
		}
		return s.recomputeTotal(tx, poID)
	})
}

// UpdateApproval transitions approval_status per the transition table.
func (s *Service) UpdateApproval(poID uint, newStatus, approvedBy string) (*entity.PurchaseOrder, error) {
	if _, ok := approvalTransitions[newStatus]; !ok {
		return nil, fault.Invalidf("unknown approval status %q", newStatus)
	}

	var po entity.PurchaseOrder
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.First(&po, "po_id = ?", poID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fault.NotFoundf("purchase order %d not found", poID)
		}
		if err != nil {
			return err
		}

		if !transitionAllowed(po.ApprovalStatus, newStatus) {
			return fault.Conflictf("cannot transition approval from %q to %q", po.ApprovalStatus, newStatus)
		}

		updates := map[string]interface{}{"approval_status": newStatus}
		if approvedBy != "" {
			updates["approved_by"] = approvedBy
			po.ApprovedBy = approvedBy
		}
		po.ApprovalStatus = newStatus
		return tx.Model(&entity.PurchaseOrder{}).Where("po_id = ?", poID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.Publish(notify.Event{Topic: notify.TopicPurchaseOrderUpdated, POID: poID, Type: newStatus, At: time.Now()})
	return &po, nil
}

// UpdateStatus sets the fulfillment status. The transition to
// `received` restocks every line item inside the same transaction so a
// half-received order is never observable.
func (s *Service) UpdateStatus(poID uint, newStatus string) (*entity.PurchaseOrder, error) {
	if !fulfillmentStatuses[newStatus] {
		return nil, fault.Invalidf("unknown status %q", newStatus)
	}

	var po entity.PurchaseOrder
	var received []entity.PurchaseOrderItem
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.First(&po, "po_id = ?", poID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fault.NotFoundf("purchase order %d not found", poID)
		}
		if err != nil {
			return err
		}

		if newStatus == entity.StatusReceived {
			if po.Status == entity.StatusReceived {
				return fault.Conflictf("purchase order %d is already received", poID)
			}
			if err := tx.Where("po_id = ?", poID).Find(&received).Error; err != nil {
				return err
			}
			for _, item := range received {
				if _, err := s.Inventory.RestockInTx(tx, item.PartID, item.Quantity, "PO "+po.PONumber+" received"); err != nil {
					return err
				}
			}
		}

		po.Status = newStatus
		return tx.Model(&entity.PurchaseOrder{}).Where("po_id = ?", poID).Update("status", newStatus).Error
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.Publish(notify.Event{Topic: notify.TopicPurchaseOrderUpdated, POID: poID, Type: newStatus, At: time.Now()})
	for _, item := range received {
		s.Notifier.Publish(notify.Event{
			Topic:    notify.TopicInventoryChanged,
			PartID:   item.PartID,
			Type:     entity.TransactionRestock,
			Quantity: item.Quantity,
			At:       time.Now(),
		})
	}
	return &po, nil
}

// Delete removes an order and its items.
func (s *Service) Delete(poID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("po_id = ?", poID).Delete(&entity.PurchaseOrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&entity.PurchaseOrder{}, "po_id = ?", poID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fault.NotFoundf("purchase order %d not found", poID)
		}
		return nil
	})
}

// recomputeTotal persists total_amount = Σ(line totals) + shipping +
// tax. Idempotent: recomputing an unchanged order yields the same
// value.
func (s *Service) recomputeTotal(tx *gorm.DB, poID uint) error {
	var po entity.PurchaseOrder
	if err := tx.First(&po, "po_id = ?", poID).Error; err != nil {
		return err
	}
	var items []entity.PurchaseOrderItem
	if err := tx.Where("po_id = ?", poID).Find(&items).Error; err != nil {
		return err
	}

	total := decimal.NewFromFloat(po.ShippingCost).Add(decimal.NewFromFloat(po.TaxAmount))
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.UnitPrice).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return tx.Model(&entity.PurchaseOrder{}).
		Where("po_id = ?", poID).
		Update("total_amount", money(total)).Error
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range approvalTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func requireOrder(tx *gorm.DB, poID uint) error {
	var count int64
	if err := tx.Model(&entity.PurchaseOrder{}).Where("po_id = ?", poID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fault.NotFoundf("purchase order %d not found", poID)
	}
	return nil
}

func lineTotal(quantity int, unitPrice float64) float64 {
	return money(decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(quantity))))
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
