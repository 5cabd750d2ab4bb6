package purchaseorder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"partstrack/core/fault"
	"partstrack/model/entity"
)

// resolvePONumber returns custom (checking uniqueness) when provided,
// otherwise the next generated number.
func resolvePONumber(tx *gorm.DB, custom string) (string, error) {
	custom = strings.TrimSpace(custom)
	if custom == "" {
		return nextPONumber(tx)
	}
	var count int64
	if err := tx.Model(&entity.PurchaseOrder{}).Where("po_number = ?", custom).Count(&count).Error; err != nil {
		return "", err
	}
	if count > 0 {
		return "", fault.Conflictf("purchase order number %q already exists", custom)
	}
	return custom, nil
}

// nextPONumber generates YYYYMM-NNNN, continuing the month's sequence.
// The month's numbers are compared numerically, not lexicographically,
// so the sequence keeps counting past 9999.
func nextPONumber(tx *gorm.DB) (string, error) {
	prefix := time.Now().Format("200601")

	var numbers []string
	err := tx.Model(&entity.PurchaseOrder{}).
		Where("po_number LIKE ?", prefix+"-%").
		Pluck("po_number", &numbers).Error
	if err != nil {
		return "", err
	}

	highest := 0
	for _, number := range numbers {
		if n, err := strconv.Atoi(strings.TrimPrefix(number, prefix+"-")); err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s-%04d", prefix, highest+1), nil
}

// duplicateNumber reports a unique violation on po_number: two creates
// drew the same number concurrently. Callers surface it as Conflict so
// the request can be retried.
func duplicateNumber(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
