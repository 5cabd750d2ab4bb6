package entity

import "time"

// Supplier represents the suppliers table.
type Supplier struct {
	SupplierID  uint      `gorm:"column:supplier_id;primaryKey;autoIncrement" json:"supplier_id"`
	Name        string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	ContactName string    `gorm:"column:contact_name;type:varchar(255)" json:"contact_name"`
	Email       string    `gorm:"column:email;type:varchar(255)" json:"email"`
	Phone       string    `gorm:"column:phone;type:varchar(64)" json:"phone"`
	Address     string    `gorm:"column:address;type:text" json:"address"`
	Notes       string    `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Supplier) TableName() string {
	return "suppliers"
}

// PartSupplier is the part↔supplier association row. At most one
// association per part carries IsPreferred=true.
type PartSupplier struct {
	PartSupplierID       uint    `gorm:"column:part_supplier_id;primaryKey;autoIncrement" json:"part_supplier_id"`
	PartID               uint    `gorm:"column:part_id;not null;uniqueIndex:idx_part_supplier_unq" json:"part_id"`
	SupplierID           uint    `gorm:"column:supplier_id;not null;uniqueIndex:idx_part_supplier_unq" json:"supplier_id"`
	UnitCost             float64 `gorm:"column:unit_cost;type:decimal(12,2);not null;default:0" json:"unit_cost"`
	LeadTimeDays         *int    `gorm:"column:lead_time_days" json:"lead_time_days,omitempty"`
	MinimumOrderQuantity *int    `gorm:"column:minimum_order_quantity" json:"minimum_order_quantity,omitempty"`
	IsPreferred          bool    `gorm:"column:is_preferred;not null;default:false" json:"is_preferred"`

	Supplier Supplier `gorm:"foreignKey:SupplierID;references:SupplierID" json:"supplier,omitempty"`
}

func (PartSupplier) TableName() string {
	return "part_suppliers"
}
