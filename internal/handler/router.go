package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/oneinflu/nsaconsole-api/internal/middleware"
	"github.com/oneinflu/nsaconsole-api/internal/service"
	"github.com/oneinflu/nsaconsole-api/pkg/config"
	"github.com/oneinflu/nsaconsole-api/pkg/logger"
	corsmiddleware "github.com/oneinflu/nsaconsole-api/pkg/middleware/cors"
	reqidmiddleware "github.com/oneinflu/nsaconsole-api/pkg/middleware/requestid"
)

// Registry bundles the handlers the router mounts.
type Registry struct {
	Batches     *BatchHandler
	Enrollments *EnrollmentHandler
	Offers      *OfferHandler
	Orders      *OrderHandler
	Students    *StudentHandler
	Categories  *CategoryHandler
	Permissions *PermissionHandler
	Exports     *ExportHandler
	Metrics     *service.MetricsService
}

// SetupRouter builds the gin engine with the common middleware chain and
// mounts every page group under the configured API prefix.
func SetupRouter(cfg *config.Config, logr *zap.Logger, reg Registry) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(reg.Metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if reg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(reg.Metrics.Handler()))
	}

	api := r.Group(cfg.APIPrefix)

	batches := api.Group("/batches")
	{
		batches.GET("", reg.Batches.List)
		batches.POST("", reg.Batches.Create)
		batches.GET("/:id", reg.Batches.Get)
		batches.PUT("/:id", reg.Batches.Update)
		batches.PATCH("/:id/status", reg.Batches.SetStatus)
		batches.DELETE("/:id", reg.Batches.Delete)
		batches.GET("/:id/sessions", reg.Batches.Sessions)
		batches.POST("/:id/sessions", reg.Batches.AddSession)
		batches.PUT("/:id/sessions/reorder", reg.Batches.ReorderSessions)
		batches.PUT("/:id/sessions/:sessionId/reschedule", reg.Batches.RescheduleSession)
		batches.PATCH("/:id/sessions/:sessionId/status", reg.Batches.TransitionSession)
	}

	enrollments := api.Group("/enrollments")
	{
		enrollments.GET("", reg.Enrollments.List)
		enrollments.POST("", reg.Enrollments.Create)
		enrollments.POST("/import", reg.Enrollments.Import)
		enrollments.GET("/:id", reg.Enrollments.Get)
		enrollments.POST("/:id/payments", reg.Enrollments.RecordPayment)
		enrollments.POST("/:id/transition", reg.Enrollments.Transition)
		enrollments.PUT("/:id/status", reg.Enrollments.OverrideStatus)
	}

	offers := api.Group("/offers")
	{
		offers.GET("", reg.Offers.List)
		offers.POST("", reg.Offers.Create)
		offers.GET("/:id", reg.Offers.Get)
		offers.PUT("/:id", reg.Offers.Update)
		offers.POST("/:id/toggle", reg.Offers.Toggle)
		offers.POST("/:id/use", reg.Offers.RecordUse)
		offers.DELETE("/:id", reg.Offers.Delete)
	}

	orders := api.Group("/orders")
	{
		orders.GET("", reg.Orders.List)
		orders.POST("", reg.Orders.Create)
		orders.GET("/:id", reg.Orders.Get)
		orders.POST("/:id/paid", reg.Orders.MarkPaid)
		orders.POST("/:id/partial", reg.Orders.RecordPartial)
		orders.POST("/:id/failed", reg.Orders.MarkFailed)
		orders.POST("/:id/disputed", reg.Orders.MarkDisputed)
		orders.POST("/:id/refund", reg.Orders.Refund)
	}

	students := api.Group("/students")
	{
		students.GET("", reg.Students.List)
		students.POST("", reg.Students.Create)
		students.GET("/:id", reg.Students.Get)
		students.PUT("/:id", reg.Students.Update)
		students.PUT("/:id/progress", reg.Students.RecordProgress)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", reg.Categories.List)
		categories.POST("", reg.Categories.Create)
		categories.PUT("/reorder", reg.Categories.Reorder)
		categories.PUT("/:id", reg.Categories.Update)
		categories.DELETE("/:id", reg.Categories.Delete)
		categories.GET("/:id/parts", reg.Categories.Parts)
		categories.POST("/:id/parts", reg.Categories.AddPart)
		categories.PUT("/:id/parts/reorder", reg.Categories.ReorderParts)
	}
	api.DELETE("/parts/:id", reg.Categories.RemovePart)

	roles := api.Group("/roles")
	{
		roles.GET("", reg.Permissions.List)
		roles.POST("", reg.Permissions.Create)
		roles.GET("/:id", reg.Permissions.Get)
		roles.PUT("/:id", reg.Permissions.Update)
		roles.DELETE("/:id", reg.Permissions.Delete)
		roles.POST("/:id/members", reg.Permissions.AddMember)
		roles.DELETE("/:id/members", reg.Permissions.RemoveMember)
	}

	api.GET("/exports/:table", reg.Exports.Export)

	return r
}
