package entity

import "time"

// Approval status values. Transitions are validated by the lifecycle
// service against an explicit table; the store accepts no other values.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Fulfillment status values. Loosely ordered: transitions are
// caller-driven, validated only against this whitelist.
const (
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusSubmitted = "submitted"
	StatusOrdered   = "ordered"
	StatusReceived  = "received"
	StatusCanceled  = "canceled"
)

// PurchaseOrder represents the purchase_orders table. SupplierID is
// nullable: orders generated for parts without any supplier are kept
// with a NULL supplier until purchasing assigns one.
type PurchaseOrder struct {
	POID           uint      `gorm:"column:po_id;primaryKey;autoIncrement" json:"po_id"`
	PONumber       string    `gorm:"column:po_number;type:varchar(32);not null;uniqueIndex" json:"po_number"`
	SupplierID     *uint     `gorm:"column:supplier_id" json:"supplier_id,omitempty"`
	Status         string    `gorm:"column:status;type:varchar(16);not null;default:'draft'" json:"status"`
	ApprovalStatus string    `gorm:"column:approval_status;type:varchar(16);not null;default:'pending'" json:"approval_status"`
	TotalAmount    float64   `gorm:"column:total_amount;type:decimal(12,2);not null;default:0" json:"total_amount"`
	ShippingCost   float64   `gorm:"column:shipping_cost;type:decimal(12,2);not null;default:0" json:"shipping_cost"`
	TaxAmount      float64   `gorm:"column:tax_amount;type:decimal(12,2);not null;default:0" json:"tax_amount"`
	IsUrgent       bool      `gorm:"column:is_urgent;not null;default:false" json:"is_urgent"`
	NextDayAir     bool      `gorm:"column:next_day_air;not null;default:false" json:"next_day_air"`
	RequestedBy    string    `gorm:"column:requested_by;type:varchar(255)" json:"requested_by"`
	ApprovedBy     string    `gorm:"column:approved_by;type:varchar(255)" json:"approved_by"`
	Notes          string    `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Supplier *Supplier           `gorm:"foreignKey:SupplierID;references:SupplierID" json:"supplier,omitempty"`
	Items    []PurchaseOrderItem `gorm:"foreignKey:POID;references:POID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// PurchaseOrderItem is a purchase order line. TotalPrice is derived
// (quantity × unit price) and recomputed by the lifecycle service on
// every mutation.
type PurchaseOrderItem struct {
	ItemID     uint    `gorm:"column:item_id;primaryKey;autoIncrement" json:"item_id"`
	POID       uint    `gorm:"column:po_id;not null;index" json:"po_id"`
	PartID     uint    `gorm:"column:part_id;not null" json:"part_id"`
	Quantity   int     `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice  float64 `gorm:"column:unit_price;type:decimal(12,2);not null;default:0" json:"unit_price"`
	TotalPrice float64 `gorm:"column:total_price;type:decimal(12,2);not null;default:0" json:"total_price"`

	Part Part `gorm:"foreignKey:PartID;references:PartID" json:"part,omitempty"`
}

func (PurchaseOrderItem) TableName() string {
	return "purchase_order_items"
}
