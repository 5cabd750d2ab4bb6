package parts

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"partstrack/api"
	"partstrack/config"
	"partstrack/core/fault"
	"partstrack/model/entity"
	"partstrack/service/media"
)

// registerImageRoutes mounts photo upload/fetch/delete for a part.
func registerImageRoutes(g *echo.Group, deps *api.Deps) {
	store := media.NewStore(config.AppConfig.MediaDir)

	g.POST("/:id/image", func(c echo.Context) error {
		partID, err := api.UintParam(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		var p entity.Part
		if err := deps.DB.First(&p, "part_id = ?", partID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return api.Fail(c, fault.NotFoundf("part %d not found", partID))
			}
			return api.Fail(c, err)
		}

		fh, err := c.FormFile("image")
		if err != nil {
			return api.Fail(c, fault.Invalidf("multipart field %q is required", "image"))
		}
		src, err := fh.Open()
		if err != nil {
			return api.Fail(c, err)
		}
		defer src.Close()

		name, err := store.SavePartImage(partID, src)
		if err != nil {
			return api.Fail(c, err)
		}
		if err := deps.DB.Model(&p).Update("image", name).Error; err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"image": name})
	})

	g.GET("/:id/image", func(c echo.Context) error {
		partID, err := api.UintParam(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		var p entity.Part
		if err := deps.DB.First(&p, "part_id = ?", partID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return api.Fail(c, fault.NotFoundf("part %d not found", partID))
			}
			return api.Fail(c, err)
		}
		if p.Image == "" {
			return api.Fail(c, fault.NotFoundf("part %d has no image", partID))
		}
		return c.File(store.Path(p.Image))
	})

	g.DELETE("/:id/image", func(c echo.Context) error {
		partID, err := api.UintParam(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		var p entity.Part
		if err := deps.DB.First(&p, "part_id = ?", partID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return api.Fail(c, fault.NotFoundf("part %d not found", partID))
			}
			return api.Fail(c, err)
		}
		if err := store.Remove(p.Image); err != nil {
			return api.Fail(c, err)
		}
		if err := deps.DB.Model(&p).Update("image", "").Error; err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "image removed"})
	})
}
