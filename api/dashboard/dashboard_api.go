package dashboard

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"partstrack/api"
	"partstrack/config"
	"partstrack/core/cache"
	"partstrack/model/entity"
	partRepo "partstrack/model/repository/part"
	poRepo "partstrack/model/repository/purchaseorder"
	trxRepo "partstrack/model/repository/transaction"
)

const (
	cacheKey = "dashboard:summary"
	cacheTag = "dashboard"
	cacheTTL = 30 // seconds
)

// Summary is the aggregate snapshot shown on the landing page.
type Summary struct {
	TotalParts       int64                `json:"total_parts"`
	LowStockParts    int64                `json:"low_stock_parts"`
	OutOfStockParts  int64                `json:"out_of_stock_parts"`
	InventoryValue   float64              `json:"inventory_value"`
	TotalMachines    int64                `json:"total_machines"`
	TotalSuppliers   int64                `json:"total_suppliers"`
	OrdersByApproval map[string]int64     `json:"orders_by_approval"`
	RecentActivity   []trxRepo.HistoryRow `json:"recent_activity"`
	GeneratedAt      time.Time            `json:"generated_at"`
}

func init() {
	api.RegisterModule(RegisterDashboardRoutes)
}

func RegisterDashboardRoutes(apiGroup *echo.Group, deps *api.Deps) {
	g := apiGroup.Group("/dashboard")
	parts := partRepo.NewPartRepository(deps.DB)
	orders := poRepo.NewPurchaseOrderRepository(deps.DB)
	transactions := trxRepo.NewTransactionRepository(deps.DB)

	// Inventory and order mutations make the cached snapshot stale.
	if deps.Hub != nil {
		go invalidateOnEvents(deps)
	}

	g.GET("", func(c echo.Context) error {
		if s, ok := cached(c); ok {
			return c.JSON(http.StatusOK, s)
		}

		var s Summary
		var eg errgroup.Group

		eg.Go(func() error {
			return deps.DB.Model(&entity.Part{}).
				Where("status = ?", entity.PartStatusActive).
				Count(&s.TotalParts).Error
		})
		eg.Go(func() error {
			low, out, err := parts.StockCounts()
			s.LowStockParts, s.OutOfStockParts = low, out
			return err
		})
		eg.Go(func() error {
			return deps.DB.Model(&entity.Part{}).
				Where("status = ?", entity.PartStatusActive).
				Select("COALESCE(SUM(quantity * unit_cost), 0)").
				Scan(&s.InventoryValue).Error
		})
		eg.Go(func() error {
			return deps.DB.Model(&entity.Machine{}).Count(&s.TotalMachines).Error
		})
		eg.Go(func() error {
			return deps.DB.Model(&entity.Supplier{}).Count(&s.TotalSuppliers).Error
		})
		eg.Go(func() error {
			counts, err := orders.CountByApproval()
			s.OrdersByApproval = counts
			return err
		})
		eg.Go(func() error {
			rows, err := transactions.History(trxRepo.HistoryFilter{Limit: 10})
			s.RecentActivity = rows
			return err
		})

		if err := eg.Wait(); err != nil {
			return api.Fail(c, err)
		}
		s.GeneratedAt = time.Now()

		store(c, &s)
		return c.JSON(http.StatusOK, s)
	})
}

// cached reads the snapshot from Redis when configured, otherwise from
// the in-process cache.
func cached(c echo.Context) (*Summary, bool) {
	if config.RedisClient != nil {
		raw, err := config.RedisClient.Get(c.Request().Context(), cacheKey).Bytes()
		if err != nil {
			return nil, false
		}
		var s Summary
		if json.Unmarshal(raw, &s) != nil {
			return nil, false
		}
		return &s, true
	}
	if v, ok := cache.GetInstance().Get(cacheKey); ok {
		if s, ok := v.(*Summary); ok {
			return s, true
		}
	}
	return nil, false
}

func store(c echo.Context, s *Summary) {
	if config.RedisClient != nil {
		if raw, err := json.Marshal(s); err == nil {
			config.RedisClient.Set(c.Request().Context(), cacheKey, raw, cacheTTL*time.Second)
		}
		return
	}
	cache.GetInstance().Set(cacheKey, s, cacheTTL, []string{cacheTag})
}

func invalidateOnEvents(deps *api.Deps) {
	_, events := deps.Hub.Subscribe()
	for range events {
		if config.RedisClient != nil {
			config.RedisClient.Del(config.RedisCtx(), cacheKey)
			continue
		}
		cache.GetInstance().InvalidateTag(cacheTag)
	}
}
