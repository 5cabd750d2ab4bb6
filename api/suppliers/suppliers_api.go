package suppliers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"partstrack/api"
	"partstrack/core/fault"
	"partstrack/model/entity"
	psRepo "partstrack/model/repository/partsupplier"
)

func init() {
	api.RegisterModule(RegisterSupplierRoutes)
}

func RegisterSupplierRoutes(apiGroup *echo.Group, deps *api.Deps) {
	g := apiGroup.Group("/suppliers")
	repo := psRepo.NewPartSupplierRepository(deps.DB)

	g.GET("", func(c echo.Context) error {
		q := deps.DB.Model(&entity.Supplier{}).Order("name")
		if name := c.QueryParam("name"); name != "" {
			q = q.Where("name LIKE ?", "%"+name+"%")
		}
		var suppliers []entity.Supplier
		if err := q.Find(&suppliers).Error; err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, suppliers)
	})

	g.GET("/:id", func(c echo.Context) error {
		id, err := api.UintParam(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		var s entity.Supplier
		if err := deps.DB.First(&s, "supplier_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return api.Fail(c, fault.NotFoundf("supplier %d not found", id))
			}
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, s)
	})

	// GET /api/suppliers/:id/parts – catalog view with association pricing.
	g.GET("/:id/parts", func(c echo.Context) error {
		id, err := api.UintParam(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		var count int64
		if err := deps.DB.Model(&entity.Supplier{}).Where("supplier_id = ?", id).Count(&count).Error; err != nil {
			return api.Fail(c, err)
		}
		if count == 0 {
			return api.Fail(c, fault.NotFoundf("supplier %d not found", id))
		}
		rows, err := repo.PartsBySupplier(id)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, rows)
	})

	g.POST("", func(c echo.Context) error {
		var s entity.Supplier
		if err := c.Bind(&s); err != nil {
			return api.Fail(c, fault.Invalidf("malformed supplier payload"))
		}
		if s.Name == "" {
			return api.Fail(c, fault.Invalidf("name is required"))
		}
		if err := deps.DB.Create(&s).Error; err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusCreated, s)
	})

	g.PUT("/:id", func(c echo.Context) error {
		id, err := api.UintParam(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		var in entity.Supplier
		if err := c.Bind(&in); err != nil {
			return api.Fail(c, fault.Invalidf("malformed supplier payload"))
		}
		if in.Name == "" {
			return api.Fail(c, fault.Invalidf("name is required"))
		}
		var s entity.Supplier
		if err := deps.DB.First(&s, "supplier_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return api.Fail(c, fault.NotFoundf("supplier %d not found", id))
			}
			return api.Fail(c, err)
		}
		updates := map[string]interface{}{
			"name":         in.Name,
			"contact_name": in.ContactName,
			"email":        in.Email,
			"phone":        in.Phone,
			"address":      in.Address,
			"notes":        in.Notes,
		}
		if err := deps.DB.Model(&s).Updates(updates).Error; err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, s)
	})

	// Deleting a supplier is refused while parts or purchase orders still
	// reference it.
	g.DELETE("/:id", func(c echo.Context) error {
		id, err := api.UintParam(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}

		var assocCount int64
		if err := deps.DB.Model(&entity.PartSupplier{}).Where("supplier_id = ?", id).Count(&assocCount).Error; err != nil {
			return api.Fail(c, err)
		}
		if assocCount > 0 {
			return api.Fail(c, fault.Conflictf("supplier %d is associated with %d part(s)", id, assocCount))
		}
		var poCount int64
		if err := deps.DB.Model(&entity.PurchaseOrder{}).Where("supplier_id = ?", id).Count(&poCount).Error; err != nil {
			return api.Fail(c, err)
		}
		if poCount > 0 {
			return api.Fail(c, fault.Conflictf("supplier %d is referenced by %d purchase order(s)", id, poCount))
		}

		res := deps.DB.Delete(&entity.Supplier{}, "supplier_id = ?", id)
		if res.Error != nil {
			return api.Fail(c, res.Error)
		}
		if res.RowsAffected == 0 {
			return api.Fail(c, fault.NotFoundf("supplier %d not found", id))
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "supplier deleted"})
	})
}
