package entity

import "time"

// Part status values. Discontinued parts stay in the table so their
// transaction history remains resolvable.
const (
	PartStatusActive       = "active"
	PartStatusDiscontinued = "discontinued"
)

// Part represents the parts table.
type Part struct {
	PartID                 uint      `gorm:"column:part_id;primaryKey;autoIncrement" json:"part_id"`
	Name                   string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Description            string    `gorm:"column:description;type:text" json:"description"`
	ManufacturerPartNumber string    `gorm:"column:manufacturer_part_number;type:varchar(128)" json:"manufacturer_part_number"`
	FiservPartNumber       string    `gorm:"column:fiserv_part_number;type:varchar(128);uniqueIndex" json:"fiserv_part_number"`
	Quantity               int       `gorm:"column:quantity;not null;default:0" json:"quantity"`
	MinimumQuantity        int       `gorm:"column:minimum_quantity;not null;default:0" json:"minimum_quantity"`
	MachineID              *uint     `gorm:"column:machine_id" json:"machine_id,omitempty"`
	UnitCost               float64   `gorm:"column:unit_cost;type:decimal(12,2);not null;default:0" json:"unit_cost"`
	Location               string    `gorm:"column:location;type:varchar(128)" json:"location"`
	Image                  string    `gorm:"column:image;type:varchar(255)" json:"image,omitempty"`
	Status                 string    `gorm:"column:status;type:varchar(16);not null;default:'active'" json:"status"`
	Notes                  string    `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func (Part) TableName() string {
	return "parts"
}

// IsLowStock reports whether the part is at or below its reorder threshold.
func (p *Part) IsLowStock() bool {
	return p.Quantity <= p.MinimumQuantity
}
