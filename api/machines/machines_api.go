package machines

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"partstrack/api"
	"partstrack/core/fault"
	"partstrack/model/entity"
)

func init() {
	api.RegisterModule(RegisterMachineRoutes)
}

func RegisterMachineRoutes(apiGroup *echo.Group, deps *api.Deps) {
	g := apiGroup.Group("/machines")

	g.GET("", func(c echo.Context) error {
		q := deps.DB.Model(&entity.Machine{}).Order("name")
		if name := c.QueryParam("name"); name != "" {
			q = q.Where("name LIKE ?", "%"+name+"%")
		}
		if loc := c.QueryParam("location"); loc != "" {
			q = q.Where("location = ?", loc)
		}
		var machines []entity.Machine
		if err := q.Find(&machines).Error; err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, machines)
	})

	g.GET("/:id", func(c echo.Context) error {
		id, err := api.UintParam(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		var m entity.Machine
		if err := deps.DB.First(&m, "machine_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return api.Fail(c, fault.NotFoundf("machine %d not found", id))
			}
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, m)
	})

	// GET /api/machines/:id/parts – parts assigned to this machine.
	g.GET("/:id/parts", func(c echo.Context) error {
		id, err := api.UintParam(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		var count int64
		if err := deps.DB.Model(&entity.Machine{}).Where("machine_id = ?", id).Count(&count).Error; err != nil {
			return api.Fail(c, err)
		}
		if count == 0 {
			return api.Fail(c, fault.NotFoundf("machine %d not found", id))
		}
		var parts []entity.Part
		if err := deps.DB.Where("machine_id = ?", id).Order("name").Find(&parts).Error; err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, parts)
	})

	g.POST("", func(c echo.Context) error {
		var m entity.Machine
		if err := c.Bind(&m); err != nil {
			return api.Fail(c, fault.Invalidf("malformed machine payload"))
		}
		if m.Name == "" {
			return api.Fail(c, fault.Invalidf("name is required"))
		}
		if err := deps.DB.Create(&m).Error; err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusCreated, m)
	})

	g.PUT("/:id", func(c echo.Context) error {
		id, err := api.UintParam(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		var in entity.Machine
		if err := c.Bind(&in); err != nil {
			return api.Fail(c, fault.Invalidf("malformed machine payload"))
		}
		if in.Name == "" {
			return api.Fail(c, fault.Invalidf("name is required"))
		}
		var m entity.Machine
		if err := deps.DB.First(&m, "machine_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return api.Fail(c, fault.NotFoundf("machine %d not found", id))
			}
			return api.Fail(c, err)
		}
		updates := map[string]interface{}{
			"name":                  in.Name,
			"model":                 in.Model,
			"serial_number":         in.SerialNumber,
			"location":              in.Location,
			"manufacturer":          in.Manufacturer,
			"specs":                 in.Specs,
			"installation_date":     in.InstallationDate,
			"last_maintenance_date": in.LastMaintenanceDate,
			"next_maintenance_date": in.NextMaintenanceDate,
			"notes":                 in.Notes,
		}
		if err := deps.DB.Model(&m).Updates(updates).Error; err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, m)
	})

	// Deleting a machine detaches its parts rather than cascading.
	g.DELETE("/:id", func(c echo.Context) error {
		id, err := api.UintParam(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		err = deps.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&entity.Part{}).Where("machine_id = ?", id).
				Update("machine_id", nil).Error; err != nil {
				return err
			}
			res := tx.Delete(&entity.Machine{}, "machine_id = ?", id)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fault.NotFoundf("machine %d not found", id)
			}
			return nil
		})
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "machine deleted"})
	})
}
