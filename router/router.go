package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/mesalink/mesalink/config"
	"github.com/mesalink/mesalink/controllers"
	"github.com/mesalink/mesalink/kds"
	"github.com/mesalink/mesalink/middlewares"
)

func SetupRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.Metrics())

	userCtrl := controllers.NewUserController(db)
	sessionCtrl := controllers.NewSessionController(db, cfg)
	orderCtrl := controllers.NewOrderController(db)
	tableCtrl := controllers.NewTableController(db, cfg)
	categoryCtrl := controllers.NewMenuCategoryController(db)
	menuCtrl := controllers.NewMenuController(db)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	// Diner flow: sessions are the only credential; no login involved.
	r.POST("/sessions", sessionCtrl.CreateSession)
	r.POST("/sessions/renew-all", sessionCtrl.RenewAllSessions)

	r.POST("/orders", orderCtrl.CreateOrder)
	r.GET("/orders", orderCtrl.ListOrders)
	r.PATCH("/orders", orderCtrl.UpdateOrderStatus)

	r.GET("/menus", menuCtrl.GetAllMenuItems)
	r.GET("/categories", categoryCtrl.GetAllCategories)

	// Kitchen display push feed
	r.GET("/ws/kitchen", kds.Handler)

	// Rate limited login/register
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware())

	auth.GET("/profile", userCtrl.GetProfile)

	owner := auth.Group("/")
	owner.Use(middlewares.RequireRoles("owner"))
	{
		owner.POST("/tables", tableCtrl.CreateTable)
		owner.GET("/tables", tableCtrl.GetAllTables)
		owner.GET("/tables/:table_id", tableCtrl.GetTableByID)
		owner.PATCH("/tables/:table_id", tableCtrl.SetTableActive)

		owner.POST("/categories", categoryCtrl.CreateCategory)
		owner.DELETE("/categories/:cat_id", categoryCtrl.DeleteCategory)

		owner.POST("/menus", menuCtrl.CreateMenuItem)
		owner.PATCH("/menus/:item_id", menuCtrl.UpdateMenuItem)
		owner.DELETE("/menus/:item_id", menuCtrl.DeleteMenuItem)
	}

	return r
}
