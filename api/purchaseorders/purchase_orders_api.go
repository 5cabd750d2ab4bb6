package purchaseorders

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"partstrack/api"
	"partstrack/core/fault"
	poRepo "partstrack/model/repository/purchaseorder"
	"partstrack/service/purchaseorder"
)

func init() {
	api.RegisterModule(RegisterPurchaseOrderRoutes)
}

func RegisterPurchaseOrderRoutes(apiGroup *echo.Group, deps *api.Deps) {
	g := apiGroup.Group("/purchase-orders")
	repo := poRepo.NewPurchaseOrderRepository(deps.DB)

	// GET /api/purchase-orders?status=
	g.GET("", func(c echo.Context) error {
		orders, err := repo.List(c.QueryParam("status"))
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, orders)
	})

	g.GET("/:id", func(c echo.Context) error {
		id, err := api.UintParam(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		po, err := repo.GetWithItems(id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return api.Fail(c, fault.NotFoundf("purchase order %d not found", id))
		}
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, po)
	})

	// POST /api/purchase-orders/blank – draft order with no line items.
	g.POST("/blank", func(c echo.Context) error {
		var in purchaseorder.BlankOrderInput
		if err := c.Bind(&in); err != nil {
			return api.Fail(c, fault.Invalidf("malformed purchase order payload"))
		}
		po, err := deps.Orders.CreateBlank(in)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusCreated, po)
	})

	// POST /api/purchase-orders/generate-for-low-stock?threshold=
	g.POST("/generate-for-low-stock", func(c echo.Context) error {
		var threshold *int
		if v := c.QueryParam("threshold"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return api.Fail(c, fault.Invalidf("threshold must be a non-negative integer"))
			}
			threshold = &n
		}
		result, err := deps.Orders.GenerateForLowStock(threshold)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusCreated, result)
	})

	g.POST("/:id/items", func(c echo.Context) error {
		id, err := api.UintParam(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		var in purchaseorder.ItemInput
		if err := c.Bind(&in); err != nil {
			return api.Fail(c, fault.Invalidf("malformed line item payload"))
		}
		item, err := deps.Orders.AddItem(id, in)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusCreated, item)
	})

	// Partial update: only the keys present in the body are applied.
	g.PUT("/:id/items/:itemId", func(c echo.Context) error {
		id, err := api.UintParam(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		itemID, err := api.UintParam(c, "itemId")
		if err != nil {
			return api.Fail(c, err)
		}
		fields := map[string]interface{}{}
		if err := c.Bind(&fields); err != nil {
			return api.Fail(c, fault.Invalidf("malformed line item payload"))
		}
		item, err := deps.Orders.UpdateItem(id, itemID, fields)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, item)
	})

	g.DELETE("/:id/items/:itemId", func(c echo.Context) error {
		id, err := api.UintParam(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		itemID, err := api.UintParam(c, "itemId")
		if err != nil {
			return api.Fail(c, err)
		}
		if err := deps.Orders.RemoveItem(id, itemID); err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "line item removed"})
	})

	g.PUT("/:id/status", func(c echo.Context) error {
		id, err := api.UintParam(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		var body struct {
			Status string `json:"status"`
		}
		if err := c.Bind(&body); err != nil {
			return api.Fail(c, fault.Invalidf("malformed status payload"))
		}
		po, err := deps.Orders.UpdateStatus(id, body.Status)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, po)
	})

	g.PUT("/:id/approval", func(c echo.Context) error {
		id, err := api.UintParam(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		var body struct {
			ApprovalStatus string `json:"approval_status"`
			ApprovedBy     string `json:"approved_by"`
		}
		if err := c.Bind(&body); err != nil {
			return api.Fail(c, fault.Invalidf("malformed approval payload"))
		}
		po, err := deps.Orders.UpdateApproval(id, body.ApprovalStatus, body.ApprovedBy)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, po)
	})

	g.DELETE("/:id", func(c echo.Context) error {
		id, err := api.UintParam(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		if err := deps.Orders.Delete(id); err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "purchase order deleted"})
	})
}
