package parts

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"partstrack/api"
	"partstrack/core/fault"
	"partstrack/service/partsupplier"
)

// registerSupplierRoutes mounts the part↔supplier association surface
// under /api/parts/:id/suppliers.
func registerSupplierRoutes(g *echo.Group, deps *api.Deps) {
	mgr := partsupplier.NewManager(deps.DB)

	g.GET("/:id/suppliers", func(c echo.Context) error {
		partID, err := api.UintParam(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		assocs, err := mgr.List(partID)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, assocs)
	})

	g.GET("/:id/suppliers/:supplierId", func(c echo.Context) error {
		partID, err := api.UintParam(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		supplierID, err := api.UintParam(c, "supplierId")
		if err != nil {
			return api.Fail(c, err)
		}
		assoc, err := mgr.Get(partID, supplierID)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, assoc)
	})

	g.POST("/:id/suppliers/:supplierId", func(c echo.Context) error {
		partID, err := api.UintParam(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		supplierID, err := api.UintParam(c, "supplierId")
		if err != nil {
			return api.Fail(c, err)
		}
		var in partsupplier.AttachInput
		if err := c.Bind(&in); err != nil {
			return api.Fail(c, fault.Invalidf("malformed association payload"))
		}
		assoc, err := mgr.Attach(partID, supplierID, in)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusCreated, assoc)
	})

	// Partial update: only the keys present in the body are applied.
	g.PUT("/:id/suppliers/:supplierId", func(c echo.Context) error {
		partID, err := api.UintParam(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		supplierID, err := api.UintParam(c, "supplierId")
		if err != nil {
			return api.Fail(c, err)
		}
		fields := map[string]interface{}{}
		if err := c.Bind(&fields); err != nil {
			return api.Fail(c, fault.Invalidf("malformed association payload"))
		}
		assoc, err := mgr.Update(partID, supplierID, fields)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, assoc)
	})

	g.DELETE("/:id/suppliers/:supplierId", func(c echo.Context) error {
		partID, err := api.UintParam(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		supplierID, err := api.UintParam(c, "supplierId")
		if err != nil {
			return api.Fail(c, err)
		}
		if err := mgr.Detach(partID, supplierID); err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "supplier association removed"})
	})
}
