package part

import (
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"partstrack/model/entity"
)

type PartRepository struct {
	db *gorm.DB
}

func NewPartRepository(db *gorm.DB) *PartRepository {
	return &PartRepository{db: db}
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	Name      string
	MachineID uint
	Status    string
	Sort      string
	Desc      bool
	Limit     int
	Offset    int
}

var sortColumns = map[string]bool{
	"name": true, "quantity": true, "part_id": true, "updated_at": true,
}

func (r *PartRepository) List(f ListFilter) ([]entity.Part, error) {
	q := r.db.Model(&entity.Part{})
	if f.Name != "" {
		q = q.Where("name LIKE ?", "%"+f.Name+"%")
	}
	if f.MachineID != 0 {
		q = q.Where("machine_id = ?", f.MachineID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Sort != "" && sortColumns[f.Sort] {
		order := f.Sort
		if f.Desc {
			order += " DESC"
		}
		q = q.Order(order)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var parts []entity.Part
	err := q.Find(&parts).Error
	return parts, err
}

func (r *PartRepository) GetByID(id uint) (*entity.Part, error) {
	var p entity.Part
	if err := r.db.First(&p, "part_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByNumber resolves a part by either of its part numbers (barcode
// scans send whichever is printed on the bin label).
func (r *PartRepository) GetByNumber(number string) (*entity.Part, error) {
	var p entity.Part
	err := r.db.
		Where("manufacturer_part_number = ? OR fiserv_part_number = ?", number, number).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// QuantityByID returns on-hand quantity via raw SQL for minimal overhead.
func (r *PartRepository) QuantityByID(id uint) (int, bool) {
	var qty sql.NullInt64
	err := r.db.Raw(`SELECT quantity FROM parts WHERE part_id = ?`, id).Scan(&qty).Error
	if err != nil || !qty.Valid {
		return 0, false
	}
	return int(qty.Int64), true
}

// LowStock returns active parts at or below their minimum quantity, or
// below an explicit override threshold when one is given.
func (r *PartRepository) LowStock(threshold *int) ([]entity.Part, error) {
	q := r.db.Where("status = ?", entity.PartStatusActive)
	if threshold != nil {
		q = q.Where("quantity < ?", *threshold)
	} else {
		q = q.Where("quantity <= minimum_quantity")
	}
	var parts []entity.Part
	err := q.Order("part_id").Find(&parts).Error
	return parts, err
}

// HasTransactions reports whether the part has audit history. Parts
// with history are never hard-deleted.
func (r *PartRepository) HasTransactions(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&entity.Transaction{}).Where("part_id = ?", id).Count(&count).Error
	return count > 0, err
}

// StockCounts returns (lowStock, outOfStock) counts over active parts.
func (r *PartRepository) StockCounts() (int64, int64, error) {
	var low, out int64
	err := r.db.Model(&entity.Part{}).
		Where("quantity > 0 AND quantity < minimum_quantity AND status = ?", entity.PartStatusActive).
		Count(&low).Error
	if err != nil {
		return 0, 0, err
	}
	err = r.db.Model(&entity.Part{}).
		Where("quantity = 0 AND status = ?", entity.PartStatusActive).
		Count(&out).Error
	return low, out, err
}

// IsNotFound reports whether err is gorm's missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
