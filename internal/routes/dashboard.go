package routes

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"inmo-backoffice/internal/storage"
)

type dashboardSummary struct {
	TotalClients     int             `json:"totalClients"`
	ActiveProperties int             `json:"activeProperties"`
	VisitsToday      int             `json:"visitsToday"`
	UpcomingVisits   []storage.Visit `json:"upcomingVisits"`
}

func DashboardRoutes(r *gin.RouterGroup, deps *Deps) {

	r.GET("/summary", func(c *gin.Context) {
		userID := GetUserID(c)
		ctx := c.Request.Context()

		// "Today" is the agency's business day, not the server's.
		loc, err := time.LoadLocation(deps.TimeZone)
		if err != nil {
			slog.Warn("Invalid time zone, falling back to UTC", "time_zone", deps.TimeZone)
			loc = time.UTC
		}
		today := time.Now().In(loc).Format("2006-01-02")

		clients, err := deps.Storage.CountContacts(ctx, userID)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		active, err := deps.Storage.CountPropertiesByStatus(ctx, userID, storage.PropertyStatusActive)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		visitsToday, err := deps.Storage.CountVisitsOnDate(ctx, userID, today)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		upcoming, err := deps.Storage.ListUpcomingVisits(ctx, userID, today, 5)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		Ok(c, dashboardSummary{
			TotalClients:     clients,
			ActiveProperties: active,
			VisitsToday:      visitsToday,
			UpcomingVisits:   upcoming,
		}, "Resumen obtenido correctamente")
	})
}
