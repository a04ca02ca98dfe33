package routes

import (
	"net/http"

	"github.com/Ahmed-Ibrahim-0/switches-controller/app"
	"github.com/Ahmed-Ibrahim-0/switches-controller/controllers"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(r *gin.Engine, a *app.App, gatherer prometheus.Gatherer) {
	s := controllers.GetSrv(a)
	sc := controllers.NewSwitchController(s)
	adminMW := app.AdminOnly(a.Config.AdminToken)

	r.GET("/healthz", func(c *app.Ctx) { c.JSON(http.StatusOK, app.H{"ok": true}) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// ------------------------------
	// switches: reads
	// ------------------------------
	sw := r.Group("/api/v1/switches")
	{
		sw.GET("", sc.ListAll)
		sw.GET("/search", sc.Search)
		sw.GET("/filter", sc.Filter)
		sw.GET("/stats", sc.Stats)
	}

	// ------------------------------
	// switches: mutations (admin)
	// ------------------------------
	swAdmin := r.Group("/api/v1/switches", adminMW)
	{
		swAdmin.POST("", sc.Create)
		swAdmin.PUT("/:uniqueKey", sc.Replace)
		swAdmin.DELETE("/:uniqueKey", sc.Delete)
	}
}
