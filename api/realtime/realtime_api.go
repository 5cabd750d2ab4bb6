package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"partstrack/api"
)

func init() {
	api.RegisterModule(RegisterRealtimeRoutes)
}

// RegisterRealtimeRoutes mounts the server-sent-events stream. Each
// connection gets its own hub subscription; dropped connections are
// unsubscribed on return.
func RegisterRealtimeRoutes(apiGroup *echo.Group, deps *api.Deps) {
	g := apiGroup.Group("/realtime")

	g.GET("/events", func(c echo.Context) error {
		if deps.Hub == nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "event stream not available"})
		}

		w := c.Response()
		w.Header().Set(echo.HeaderContentType, "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		w.Flush()

		id, events := deps.Hub.Subscribe()
		defer deps.Hub.Unsubscribe(id)

		ctx := c.Request().Context()
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-events:
				if !ok {
					return nil
				}
				payload, err := json.Marshal(ev)
				if err != nil {
					continue
				}
				if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Topic, payload); err != nil {
					return nil
				}
				w.Flush()
			}
		}
	})

	// Operational visibility: how many streams are open.
	g.GET("/subscribers", func(c echo.Context) error {
		count := 0
		if deps.Hub != nil {
			count = deps.Hub.SubscriberCount()
		}
		return c.JSON(http.StatusOK, echo.Map{"subscribers": count})
	})
}
