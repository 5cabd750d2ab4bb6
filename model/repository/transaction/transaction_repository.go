package transaction

import (
	"time"

	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// HistoryFilter narrows History results.
type HistoryFilter struct {
	PartID    uint
	MachineID uint
	Type      string
	Start     *time.Time
	End       *time.Time
	Limit     int
}

// HistoryRow is a transaction joined with part and machine names for
// the history table and exports.
type HistoryRow struct {
	TransactionID    uint      `json:"transaction_id"`
	CreatedAt        time.Time `json:"date"`
	PartID           uint      `json:"part_id"`
	PartName         string    `json:"part_name"`
	FiservPartNumber string    `json:"fiserv_part_number"`
	MachineName      *string   `json:"machine_name,omitempty"`
	Type             string    `json:"type"`
	Quantity         int       `json:"quantity"`
	Technician       string    `json:"technician"`
	Reason           string    `json:"reason"`
	WorkOrderNumber  string    `json:"work_order_number"`
}

func (r *TransactionRepository) History(f HistoryFilter) ([]HistoryRow, error) {
	q := r.db.
		Table("transactions").
		Select(`transactions.transaction_id, transactions.created_at, transactions.part_id,
			parts.name AS part_name, parts.fiserv_part_number,
			machines.name AS machine_name,
			transactions.type, transactions.quantity, transactions.technician,
			transactions.reason, transactions.work_order_number`).
		Joins("JOIN parts ON parts.part_id = transactions.part_id").
		Joins("LEFT JOIN machines ON machines.machine_id = transactions.machine_id").
		Order("transactions.created_at DESC")

	if f.PartID != 0 {
		q = q.Where("transactions.part_id = ?", f.PartID)
	}
	if f.MachineID != 0 {
		q = q.Where("transactions.machine_id = ?", f.MachineID)
	}
	if f.Type != "" {
		q = q.Where("transactions.type = ?", f.Type)
	}
	if f.Start != nil {
		q = q.Where("transactions.created_at >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("transactions.created_at <= ?", *f.End)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var rows []HistoryRow
	err := q.Scan(&rows).Error
	return rows, err
}
