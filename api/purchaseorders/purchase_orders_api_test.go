package purchaseorders

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"partstrack/api"
	"partstrack/model/entity"
	"partstrack/service/inventory"
	"partstrack/service/notify"
	"partstrack/service/purchaseorder"
)

const (
	testUser = "admin"
	testPass = "secret"
)

func poTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("po_api_test_%s_%d.db", t.Name(), time.Now().UnixNano()))
	t.Cleanup(func() { os.Remove(tmpFile) })
	db, err := gorm.Open(sqlite.Open(tmpFile), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&entity.Machine{}, &entity.Supplier{}, &entity.Part{}, &entity.PartSupplier{},
		&entity.PurchaseOrder{}, &entity.PurchaseOrderItem{}, &entity.Transaction{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func poTestServer(t *testing.T, db *gorm.DB) *echo.Echo {
	t.Helper()
	hub := notify.NewHub()
	adjuster := inventory.NewAdjuster(db, hub)
	deps := &api.Deps{
		DB:        db,
		Notifier:  hub,
		Hub:       hub,
		Inventory: adjuster,
		Orders:    purchaseorder.NewService(db, adjuster, hub),
	}

	e := echo.New()
	apiGroup := e.Group("/api")
	apiGroup.Use(middleware.BasicAuth(func(user, pass string, c echo.Context) (bool, error) {
		return user == testUser && pass == testPass, nil
	}))
	RegisterPurchaseOrderRoutes(apiGroup, deps)
	return e
}

func doJSON(e *echo.Echo, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(testUser+":"+testPass)))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func seedPOFixtures(t *testing.T, db *gorm.DB) (entity.Supplier, entity.Part) {
	t.Helper()
	s := entity.Supplier{Name: "Acme Industrial"}
	if err := db.Create(&s).Error; err != nil {
		t.Fatalf("seed supplier: %v", err)
	}
	p := entity.Part{Name: "Pin Pad Cable", FiservPartNumber: "FSV-6001", Quantity: 3, MinimumQuantity: 2, Status: entity.PartStatusActive}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed part: %v", err)
	}
	return s, p
}

func TestPurchaseOrderAPI_BlankAndItems(t *testing.T) {
	db := poTestDB(t)
	e := poTestServer(t, db)
	supplier, part := seedPOFixtures(t, db)

	rec := doJSON(e, http.MethodPost, "/api/purchase-orders/blank", map[string]interface{}{
		"supplier_id":   supplier.SupplierID,
		"shipping_cost": 4.00,
		"tax_amount":    2.00,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("blank status = %d, body %s", rec.Code, rec.Body.String())
	}
	po := decodeBody(t, rec)
	poID := int(po["po_id"].(float64))
	if po["total_amount"] != 6.00 {
		t.Errorf("initial total = %v, want 6", po["total_amount"])
	}

	rec = doJSON(e, http.MethodPost, fmt.Sprintf("/api/purchase-orders/%d/items", poID), map[string]interface{}{
		"part_id": part.PartID, "quantity": 4, "unit_price": 5.00,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add item status = %d, body %s", rec.Code, rec.Body.String())
	}
	item := decodeBody(t, rec)
	itemID := int(item["item_id"].(float64))

	rec = doJSON(e, http.MethodGet, fmt.Sprintf("/api/purchase-orders/%d", poID), nil)
	if got := decodeBody(t, rec); got["total_amount"] != 26.00 {
		t.Errorf("total = %v, want 26", got["total_amount"])
	}

	rec = doJSON(e, http.MethodPut, fmt.Sprintf("/api/purchase-orders/%d/items/%d", poID, itemID),
		map[string]interface{}{"quantity": 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("update item status = %d", rec.Code)
	}

	rec = doJSON(e, http.MethodDelete, fmt.Sprintf("/api/purchase-orders/%d/items/%d", poID, itemID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove item status = %d", rec.Code)
	}
	rec = doJSON(e, http.MethodGet, fmt.Sprintf("/api/purchase-orders/%d", poID), nil)
	if got := decodeBody(t, rec); got["total_amount"] != 6.00 {
		t.Errorf("total after removal = %v, want 6", got["total_amount"])
	}
}

func TestPurchaseOrderAPI_ApprovalConflict(t *testing.T) {
	db := poTestDB(t)
	e := poTestServer(t, db)
	supplier, _ := seedPOFixtures(t, db)

	rec := doJSON(e, http.MethodPost, "/api/purchase-orders/blank", map[string]interface{}{"supplier_id": supplier.SupplierID})
	poID := int(decodeBody(t, rec)["po_id"].(float64))

	rec = doJSON(e, http.MethodPut, fmt.Sprintf("/api/purchase-orders/%d/approval", poID),
		map[string]interface{}{"approval_status": "approved", "approved_by": "supervisor1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("approve status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(e, http.MethodPut, fmt.Sprintf("/api/purchase-orders/%d/approval", poID),
		map[string]interface{}{"approval_status": "rejected"})
	if rec.Code != http.StatusConflict {
		t.Errorf("approved -> rejected status = %d, want 409", rec.Code)
	}

	rec = doJSON(e, http.MethodPut, fmt.Sprintf("/api/purchase-orders/%d/approval", poID),
		map[string]interface{}{"approval_status": "bogus"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown approval status = %d, want 400", rec.Code)
	}
}

func TestPurchaseOrderAPI_ReceiveRestocks(t *testing.T) {
	db := poTestDB(t)
	e := poTestServer(t, db)
	supplier, part := seedPOFixtures(t, db)

	rec := doJSON(e, http.MethodPost, "/api/purchase-orders/blank", map[string]interface{}{"supplier_id": supplier.SupplierID})
	poID := int(decodeBody(t, rec)["po_id"].(float64))
	doJSON(e, http.MethodPost, fmt.Sprintf("/api/purchase-orders/%d/items", poID), map[string]interface{}{
		"part_id": part.PartID, "quantity": 7, "unit_price": 1.00,
	})

	rec = doJSON(e, http.MethodPut, fmt.Sprintf("/api/purchase-orders/%d/status", poID),
		map[string]interface{}{"status": "received"})
	if rec.Code != http.StatusOK {
		t.Fatalf("receive status = %d, body %s", rec.Code, rec.Body.String())
	}

	var got entity.Part
	db.First(&got, "part_id = ?", part.PartID)
	if got.Quantity != 10 {
		t.Errorf("quantity = %d, want 10 after receiving 7 on top of 3", got.Quantity)
	}

	rec = doJSON(e, http.MethodPut, fmt.Sprintf("/api/purchase-orders/%d/status", poID),
		map[string]interface{}{"status": "received"})
	if rec.Code != http.StatusConflict {
		t.Errorf("second receive status = %d, want 409", rec.Code)
	}
}

func TestPurchaseOrderAPI_GenerateForLowStock(t *testing.T) {
	db := poTestDB(t)
	e := poTestServer(t, db)
	supplier, _ := seedPOFixtures(t, db)

	low := entity.Part{Name: "Low Roller", FiservPartNumber: "FSV-6002", Quantity: 0, MinimumQuantity: 4, Status: entity.PartStatusActive}
	db.Create(&low)
	db.Create(&entity.PartSupplier{PartID: low.PartID, SupplierID: supplier.SupplierID, UnitCost: 2.50, IsPreferred: true})

	orphan := entity.Part{Name: "Orphan", FiservPartNumber: "FSV-6003", Quantity: 0, MinimumQuantity: 4, Status: entity.PartStatusActive}
	db.Create(&orphan)

	rec := doJSON(e, http.MethodPost, "/api/purchase-orders/generate-for-low-stock", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("generate status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	orders := body["purchase_orders"].([]interface{})
	if len(orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(orders))
	}
	skipped := body["skipped_no_supplier"].([]interface{})
	if len(skipped) != 1 || uint(skipped[0].(float64)) != orphan.PartID {
		t.Errorf("skipped = %v, want [%d]", skipped, orphan.PartID)
	}
}

func TestPurchaseOrderAPI_ListFilterAndMissing(t *testing.T) {
	db := poTestDB(t)
	e := poTestServer(t, db)
	supplier, _ := seedPOFixtures(t, db)

	rec := doJSON(e, http.MethodPost, "/api/purchase-orders/blank", map[string]interface{}{"supplier_id": supplier.SupplierID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("blank status = %d", rec.Code)
	}

	rec = doJSON(e, http.MethodGet, "/api/purchase-orders?status=draft", nil)
	var list []entity.PurchaseOrder
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("draft orders = %d, want 1", len(list))
	}

	rec = doJSON(e, http.MethodGet, "/api/purchase-orders?status=received", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("received orders = %d, want 0", len(list))
	}

	rec = doJSON(e, http.MethodGet, "/api/purchase-orders/999", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing order status = %d, want 404", rec.Code)
	}
}
