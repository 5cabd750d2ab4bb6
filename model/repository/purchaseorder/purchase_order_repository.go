package purchaseorder

import (
	"gorm.io/gorm"

	"partstrack/model/entity"
)

type PurchaseOrderRepository struct {
	db *gorm.DB
}

func NewPurchaseOrderRepository(db *gorm.DB) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{db: db}
}

// List returns orders newest first with supplier preloaded, optionally
// filtered by fulfillment status.
func (r *PurchaseOrderRepository) List(status string) ([]entity.PurchaseOrder, error) {
	q := r.db.Preload("Supplier").Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var orders []entity.PurchaseOrder
	err := q.Find(&orders).Error
	return orders, err
}

// GetWithItems loads an order with line items and their parts.
func (r *PurchaseOrderRepository) GetWithItems(poID uint) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	err := r.db.
		Preload("Supplier").
		Preload("Items").
		Preload("Items.Part").
		First(&po, "po_id = ?", poID).Error
	if err != nil {
		return nil, err
	}
	return &po, nil
}

// PendingPOPartIDs returns part ids that appear on a pending order,
// used by the low-stock generator to avoid double-ordering.
func (r *PurchaseOrderRepository) PendingPOPartIDs() (map[uint]bool, error) {
	var ids []uint
	err := r.db.
		Table("purchase_order_items").
		Select("DISTINCT purchase_order_items.part_id").
		Joins("JOIN purchase_orders ON purchase_orders.po_id = purchase_order_items.po_id").
		Where("purchase_orders.approval_status = ?", entity.ApprovalPending).
		Where("purchase_orders.status NOT IN ?", []string{entity.StatusReceived, entity.StatusCanceled}).
		Pluck("purchase_order_items.part_id", &ids).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// CountByApproval returns order counts keyed by approval status.
func (r *PurchaseOrderRepository) CountByApproval() (map[string]int64, error) {
	type row struct {
		ApprovalStatus string
		N              int64
	}
	var rows []row
	err := r.db.Model(&entity.PurchaseOrder{}).
		Select("approval_status, COUNT(*) AS n").
		Group("approval_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, rw := range rows {
		out[rw.ApprovalStatus] = rw.N
	}
	return out, nil
}
