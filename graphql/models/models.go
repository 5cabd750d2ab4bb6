// Package models holds the GraphQL view types and their entity mappers.
package models

import "partstrack/model/entity"

type Part struct {
	PartID                 int32
	Name                   string
	Description            string
	ManufacturerPartNumber string
	FiservPartNumber       string
	Quantity               int32
	MinimumQuantity        int32
	UnitCost               float64
	Location               string
	Status                 string
	IsLowStock             bool
}

func FromPart(p *entity.Part) *Part {
	return &Part{
		PartID:                 int32(p.PartID),
		Name:                   p.Name,
		Description:            p.Description,
		ManufacturerPartNumber: p.ManufacturerPartNumber,
		FiservPartNumber:       p.FiservPartNumber,
		Quantity:               int32(p.Quantity),
		MinimumQuantity:        int32(p.MinimumQuantity),
		UnitCost:               p.UnitCost,
		Location:               p.Location,
		Status:                 p.Status,
		IsLowStock:             p.IsLowStock(),
	}
}

func FromParts(parts []entity.Part) []*Part {
	out := make([]*Part, 0, len(parts))
	for i := range parts {
		out = append(out, FromPart(&parts[i]))
	}
	return out
}

type PurchaseOrder struct {
	POID           int32
	PONumber       string
	Status         string
	ApprovalStatus string
	TotalAmount    float64
	ShippingCost   float64
	TaxAmount      float64
	IsUrgent       bool
	NextDayAir     bool
	SupplierName   *string
	Items          []*PurchaseOrderItem
}

type PurchaseOrderItem struct {
	ItemID     int32
	PartID     int32
	PartName   string
	Quantity   int32
	UnitPrice  float64
	TotalPrice float64
}

func FromPurchaseOrder(po *entity.PurchaseOrder) *PurchaseOrder {
	out := &PurchaseOrder{
		POID:           int32(po.POID),
		PONumber:       po.PONumber,
		Status:         po.Status,
		ApprovalStatus: po.ApprovalStatus,
		TotalAmount:    po.TotalAmount,
		ShippingCost:   po.ShippingCost,
		TaxAmount:      po.TaxAmount,
		IsUrgent:       po.IsUrgent,
		NextDayAir:     po.NextDayAir,
		Items:          make([]*PurchaseOrderItem, 0, len(po.Items)),
	}
	if po.Supplier != nil {
		name := po.Supplier.Name
		out.SupplierName = &name
	}
	for i := range po.Items {
		it := &po.Items[i]
		out.Items = append(out.Items, &PurchaseOrderItem{
			ItemID:     int32(it.ItemID),
			PartID:     int32(it.PartID),
			PartName:   it.Part.Name,
			Quantity:   int32(it.Quantity),
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		})
	}
	return out
}

func FromPurchaseOrders(orders []entity.PurchaseOrder) []*PurchaseOrder {
	out := make([]*PurchaseOrder, 0, len(orders))
	for i := range orders {
		out = append(out, FromPurchaseOrder(&orders[i]))
	}
	return out
}
