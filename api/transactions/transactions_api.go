package transactions

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"partstrack/api"
	"partstrack/core/fault"
	trxRepo "partstrack/model/repository/transaction"
)

func init() {
	api.RegisterModule(RegisterTransactionRoutes)
}

func RegisterTransactionRoutes(apiGroup *echo.Group, deps *api.Deps) {
	g := apiGroup.Group("/transactions")
	repo := trxRepo.NewTransactionRepository(deps.DB)

	// GET /api/transactions?part_id=&machine_id=&type=&start=&end=&limit=
	// start/end accept RFC 3339 or plain dates (2026-08-01).
	g.GET("", func(c echo.Context) error {
		var f trxRepo.HistoryFilter

		if v := c.QueryParam("part_id"); v != "" {
			id, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return api.Fail(c, fault.Invalidf("part_id must be a positive integer"))
			}
			f.PartID = uint(id)
		}
		if v := c.QueryParam("machine_id"); v != "" {
			id, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return api.Fail(c, fault.Invalidf("machine_id must be a positive integer"))
			}
			f.MachineID = uint(id)
		}
		f.Type = c.QueryParam("type")

		if v := c.QueryParam("start"); v != "" {
			t, err := parseTime(v)
			if err != nil {
				return api.Fail(c, fault.Invalidf("start: %v", err))
			}
			f.Start = &t
		}
		if v := c.QueryParam("end"); v != "" {
			t, err := parseTime(v)
			if err != nil {
				return api.Fail(c, fault.Invalidf("end: %v", err))
			}
			// A bare date as the end bound means end of that day.
			if len(v) == len("2006-01-02") {
				t = t.Add(24*time.Hour - time.Nanosecond)
			}
			f.End = &t
		}
		if v := c.QueryParam("limit"); v != "" {
			f.Limit, _ = strconv.Atoi(v)
		}

		rows, err := repo.History(f)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, rows)
	})
}

func parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}
