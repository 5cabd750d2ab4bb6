package purchaseorder

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"partstrack/core/fault"
	"partstrack/model/entity"
	porepo "partstrack/model/repository/purchaseorder"
)

// GenerateResult reports what GenerateForLowStock produced. Parts with
// no supplier association cannot be ordered automatically; they are
// skipped and listed so purchasing can follow up by hand.
type GenerateResult struct {
	Orders            []entity.PurchaseOrder `json:"purchase_orders"`
	SkippedNoSupplier []uint                 `json:"skipped_no_supplier,omitempty"`
	SkippedPending    []uint                 `json:"skipped_pending_order,omitempty"`
}

// orderLine is a part queued for ordering from one supplier.
type orderLine struct {
	partID    uint
	quantity  int
	unitPrice float64
}

// GenerateForLowStock scans active parts at or below their minimum
// quantity (or below threshold when given) and creates one draft order
// per supplier, chosen by preference then lowest unit cost. Parts that
// already sit on a pending order are skipped to avoid double-ordering.
func (s *Service) GenerateForLowStock(threshold *int) (*GenerateResult, error) {
	if threshold != nil && *threshold < 0 {
		return nil, fault.Invalidf("threshold must not be negative")
	}

	result := &GenerateResult{}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		q := tx.Where("status = ?", entity.PartStatusActive)
		if threshold != nil {
			q = q.Where("quantity < ?", *threshold)
		} else {
			q = q.Where("quantity <= minimum_quantity")
		}
		var parts []entity.Part
		if err := q.Order("part_id").Find(&parts).Error; err != nil {
			return err
		}
		if len(parts) == 0 {
			return nil
		}

		pending, err := porepo.NewPurchaseOrderRepository(tx).PendingPOPartIDs()
		if err != nil {
			return err
		}

		bySupplier := make(map[uint][]orderLine)
		for _, part := range parts {
			if pending[part.PartID] {
				result.SkippedPending = append(result.SkippedPending, part.PartID)
				continue
			}

			assoc, err := pickSupplier(tx, part.PartID)
			if err != nil {
				return err
			}
			if assoc == nil {
				result.SkippedNoSupplier = append(result.SkippedNoSupplier, part.PartID)
				continue
			}

			price := assoc.UnitCost
			if price == 0 {
				price = part.UnitCost
			}
			bySupplier[assoc.SupplierID] = append(bySupplier[assoc.SupplierID], orderLine{
				partID:    part.PartID,
				quantity:  reorderQuantity(part, assoc),
				unitPrice: price,
			})
		}

		// Stable creation order keeps generated PO numbers deterministic.
		supplierIDs := make([]uint, 0, len(bySupplier))
		for id := range bySupplier {
			supplierIDs = append(supplierIDs, id)
		}
		sort.Slice(supplierIDs, func(i, j int) bool { return supplierIDs[i] < supplierIDs[j] })

		for _, supplierID := range supplierIDs {
			lines := bySupplier[supplierID]

			number, err := nextPONumber(tx)
			if err != nil {
				return err
			}

			total := decimal.Zero
			items := make([]entity.PurchaseOrderItem, 0, len(lines))
			for _, line := range lines {
				items = append(items, entity.PurchaseOrderItem{
					PartID:     line.partID,
					Quantity:   line.quantity,
					UnitPrice:  line.unitPrice,
					TotalPrice: lineTotal(line.quantity, line.unitPrice),
				})
				total = total.Add(decimal.NewFromFloat(line.unitPrice).Mul(decimal.NewFromInt(int64(line.quantity))))
			}

			sid := supplierID
			po := entity.PurchaseOrder{
				PONumber:       number,
				SupplierID:     &sid,
				Status:         entity.StatusDraft,
				ApprovalStatus: entity.ApprovalPending,
				TotalAmount:    money(total),
				Notes:          "Auto-generated for low stock parts",
				Items:          items,
			}
			if err := tx.Create(&po).Error; err != nil {
				if duplicateNumber(err) {
					return fault.Conflictf("purchase order number %q already exists", number)
				}
				return fmt.Errorf("create order for supplier %d: %w", supplierID, err)
			}
			result.Orders = append(result.Orders, po)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// pickSupplier returns the part's ordering supplier: the preferred one,
// or failing that the cheapest. Nil when the part has no suppliers.
func pickSupplier(tx *gorm.DB, partID uint) (*entity.PartSupplier, error) {
	var assocs []entity.PartSupplier
	err := tx.Where("part_id = ?", partID).
		Order("is_preferred DESC, unit_cost ASC, supplier_id ASC").
		Limit(1).
		Find(&assocs).Error
	if err != nil {
		return nil, err
	}
	if len(assocs) == 0 {
		return nil, nil
	}
	return &assocs[0], nil
}

// reorderQuantity orders enough to clear twice the minimum threshold,
// never less than the minimum itself or the supplier's minimum order.
func reorderQuantity(part entity.Part, assoc *entity.PartSupplier) int {
	qty := part.MinimumQuantity*2 - part.Quantity
	if qty < part.MinimumQuantity {
		qty = part.MinimumQuantity
	}
	if assoc.MinimumOrderQuantity != nil && qty < *assoc.MinimumOrderQuantity {
		qty = *assoc.MinimumOrderQuantity
	}
	if qty < 1 {
		qty = 1
	}
	return qty
}
