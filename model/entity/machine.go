package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Machine represents the machines table. Specs holds free-form
// manufacturer data (voltage, dimensions, firmware) as JSON.
type Machine struct {
	MachineID           uint           `gorm:"column:machine_id;primaryKey;autoIncrement" json:"machine_id"`
	Name                string         `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Model               string         `gorm:"column:model;type:varchar(128)" json:"model"`
	SerialNumber        string         `gorm:"column:serial_number;type:varchar(128)" json:"serial_number"`
	Location            string         `gorm:"column:location;type:varchar(128)" json:"location"`
	Manufacturer        string         `gorm:"column:manufacturer;type:varchar(255)" json:"manufacturer"`
	Specs               datatypes.JSON `gorm:"column:specs" json:"specs,omitempty"`
	InstallationDate    *time.Time     `gorm:"column:installation_date" json:"installation_date,omitempty"`
	LastMaintenanceDate *time.Time     `gorm:"column:last_maintenance_date" json:"last_maintenance_date,omitempty"`
	NextMaintenanceDate *time.Time     `gorm:"column:next_maintenance_date" json:"next_maintenance_date,omitempty"`
	Notes               string         `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

func (Machine) TableName() string {
	return "machines"
}
