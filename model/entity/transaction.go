package entity

import "time"

// Transaction types. Quantity is stored as a positive magnitude; the
// type carries the sign.
const (
	TransactionUsage   = "usage"
	TransactionRestock = "restock"
)

// Transaction is the append-only inventory audit trail. Rows are never
// updated or deleted; every quantity change on a part writes exactly
// one row in the same database transaction.
type Transaction struct {
	TransactionID   uint      `gorm:"column:transaction_id;primaryKey;autoIncrement" json:"transaction_id"`
	PartID          uint      `gorm:"column:part_id;not null;index" json:"part_id"`
	MachineID       *uint     `gorm:"column:machine_id" json:"machine_id,omitempty"`
	Type            string    `gorm:"column:type;type:varchar(16);not null" json:"type"`
	Quantity        int       `gorm:"column:quantity;not null" json:"quantity"`
	Technician      string    `gorm:"column:technician;type:varchar(255)" json:"technician"`
	Reason          string    `gorm:"column:reason;type:text" json:"reason"`
	WorkOrderNumber string    `gorm:"column:work_order_number;type:varchar(64)" json:"work_order_number"`
	Notes           string    `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
