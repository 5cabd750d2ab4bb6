package parts

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"partstrack/api"
	"partstrack/core/fault"
	"partstrack/model/entity"
	partRepo "partstrack/model/repository/part"
	"partstrack/service/inventory"
)

func init() {
	api.RegisterModule(RegisterPartRoutes)
}

func RegisterPartRoutes(apiGroup *echo.Group, deps *api.Deps) {
	g := apiGroup.Group("/parts")
	repo := partRepo.NewPartRepository(deps.DB)

	// GET /api/parts?name=&machine_id=&status=&sort=&order=&limit=&offset=
	g.GET("", func(c echo.Context) error {
		f := partRepo.ListFilter{
			Name:   c.QueryParam("name"),
			Status: c.QueryParam("status"),
			Sort:   c.QueryParam("sort"),
			Desc:   c.QueryParam("order") == "desc",
		}
		if v := c.QueryParam("machine_id"); v != "" {
			id, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return api.Fail(c, fault.Invalidf("machine_id must be a positive integer"))
			}
			f.MachineID = uint(id)
		}
		if v := c.QueryParam("limit"); v != "" {
			f.Limit, _ = strconv.Atoi(v)
		}
		if v := c.QueryParam("offset"); v != "" {
			f.Offset, _ = strconv.Atoi(v)
		}
		parts, err := repo.List(f)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, parts)
	})

	// GET /api/parts/low-stock?threshold=
	g.GET("/low-stock", func(c echo.Context) error {
		var threshold *int
		if v := c.QueryParam("threshold"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return api.Fail(c, fault.Invalidf("threshold must be a non-negative integer"))
			}
			threshold = &n
		}
		parts, err := repo.LowStock(threshold)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, parts)
	})

	g.GET("/:id", func(c echo.Context) error {
		id, err := api.UintParam(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		p, err := repo.GetByID(id)
		if partRepo.IsNotFound(err) {
			return api.Fail(c, fault.NotFoundf("part %d not found", id))
		}
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, p)
	})

	g.POST("", func(c echo.Context) error {
		var p entity.Part
		if err := c.Bind(&p); err != nil {
			return api.Fail(c, fault.Invalidf("malformed part payload"))
		}
		if p.Name == "" {
			return api.Fail(c, fault.Invalidf("name is required"))
		}
		if p.Quantity < 0 || p.MinimumQuantity < 0 {
			return api.Fail(c, fault.Invalidf("quantity and minimum_quantity must not be negative"))
		}
		if p.Status == "" {
			p.Status = entity.PartStatusActive
		}
		if err := deps.DB.Create(&p).Error; err != nil {
			if isUniqueViolation(err) {
				return api.Fail(c, fault.Conflictf("part number %q already exists", p.FiservPartNumber))
			}
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusCreated, p)
	})

	g.PUT("/:id", func(c echo.Context) error {
		id, err := api.UintParam(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		var in entity.Part
		if err := c.Bind(&in); err != nil {
			return api.Fail(c, fault.Invalidf("malformed part payload"))
		}
		if in.Quantity < 0 || in.MinimumQuantity < 0 {
			return api.Fail(c, fault.Invalidf("quantity and minimum_quantity must not be negative"))
		}

		var p entity.Part
		if err := deps.DB.First(&p, "part_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return api.Fail(c, fault.NotFoundf("part %d not found", id))
			}
			return api.Fail(c, err)
		}

		updates := map[string]interface{}{
			"name":                     in.Name,
			"description":              in.Description,
			"manufacturer_part_number": in.ManufacturerPartNumber,
			"fiserv_part_number":       in.FiservPartNumber,
			"quantity":                 in.Quantity,
			"minimum_quantity":         in.MinimumQuantity,
			"machine_id":               in.MachineID,
			"unit_cost":                in.UnitCost,
			"location":                 in.Location,
			"notes":                    in.Notes,
		}
		if in.Status != "" {
			if in.Status != entity.PartStatusActive && in.Status != entity.PartStatusDiscontinued {
				return api.Fail(c, fault.Invalidf("status must be %q or %q", entity.PartStatusActive, entity.PartStatusDiscontinued))
			}
			updates["status"] = in.Status
		}
		if err := deps.DB.Model(&p).Updates(updates).Error; err != nil {
			if isUniqueViolation(err) {
				return api.Fail(c, fault.Conflictf("part number %q already exists", in.FiservPartNumber))
			}
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, p)
	})

	// DELETE discontinues parts that have history instead of removing
	// them, so transactions stay resolvable.
	g.DELETE("/:id", func(c echo.Context) error {
		id, err := api.UintParam(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		hasHistory, err := repo.HasTransactions(id)
		if err != nil {
			return api.Fail(c, err)
		}
		if hasHistory {
			res := deps.DB.Model(&entity.Part{}).
				Where("part_id = ?", id).
				Update("status", entity.PartStatusDiscontinued)
			if res.Error != nil {
				return api.Fail(c, res.Error)
			}
			if res.RowsAffected == 0 {
				return api.Fail(c, fault.NotFoundf("part %d not found", id))
			}
			return c.JSON(http.StatusOK, echo.Map{"message": "part has transaction history; marked discontinued"})
		}
		res := deps.DB.Delete(&entity.Part{}, "part_id = ?", id)
		if res.Error != nil {
			return api.Fail(c, res.Error)
		}
		if res.RowsAffected == 0 {
			return api.Fail(c, fault.NotFoundf("part %d not found", id))
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "part deleted"})
	})

	// POST /api/parts/usage – decrement stock, append audit row.
	g.POST("/usage", func(c echo.Context) error {
		var in inventory.UsageInput
		if err := c.Bind(&in); err != nil {
			return api.Fail(c, fault.Invalidf("malformed usage payload"))
		}
		trx, err := deps.Inventory.RecordUsage(in)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusCreated, trx)
	})

	// POST /api/parts/restock – increment stock, append audit row.
	g.POST("/restock", func(c echo.Context) error {
		var in inventory.RestockInput
		if err := c.Bind(&in); err != nil {
			return api.Fail(c, fault.Invalidf("malformed restock payload"))
		}
		trx, err := deps.Inventory.RecordRestock(in)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusCreated, trx)
	})

	registerSupplierRoutes(g, deps)
	registerImageRoutes(g, deps)
}

// isUniqueViolation matches unique-index errors across postgres and the
// sqlite test driver.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
