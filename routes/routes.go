package routes

import (
	"kirana/cart"
	"kirana/catalog"
	"kirana/dummyjson"
	"kirana/middleware"
	"kirana/orders"
	"kirana/ratelim"
	"kirana/session"
	"kirana/websock"

	"github.com/julienschmidt/httprouter"
)

func AddAuthRoutes(router *httprouter.Router, h *session.Handler, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/login", rl.Limit(h.Login))
	router.POST("/api/auth/logout", middleware.Authenticate(h.Logout))
	router.GET("/api/auth/session", h.CurrentRole)
}

func AddProductRoutes(router *httprouter.Router, h *catalog.Handler) {
	router.GET("/api/products", h.ListProducts)
	router.GET("/api/products/:id", h.GetProduct)
	router.POST("/api/products", middleware.Authenticate(middleware.RequireRole(session.RoleAdmin, h.CreateProduct)))
	router.PUT("/api/products/:id", middleware.Authenticate(middleware.RequireRole(session.RoleAdmin, h.UpdateProduct)))
	router.DELETE("/api/products/:id", middleware.Authenticate(middleware.RequireRole(session.RoleAdmin, h.DeleteProduct)))
}

func AddCatalogRoutes(router *httprouter.Router, h *dummyjson.Handler) {
	router.GET("/api/catalog", h.Browse)
	router.GET("/api/catalog/:id", h.Detail)
}

func AddCartRoutes(router *httprouter.Router, h *cart.Handler) {
	router.GET("/api/cart", middleware.Authenticate(h.GetCart))
	router.POST("/api/cart", middleware.Authenticate(h.AddToCart))
	router.PUT("/api/cart/:productid", middleware.Authenticate(h.UpdateQuantity))
	router.DELETE("/api/cart/:productid", middleware.Authenticate(h.RemoveFromCart))
	router.DELETE("/api/cart", middleware.Authenticate(h.ClearCart))
}

func AddOrderRoutes(router *httprouter.Router, h *orders.Handler, rl *ratelim.RateLimiter) {
	router.POST("/api/checkout", rl.Limit(middleware.Authenticate(h.Checkout)))
	router.GET("/api/orders", middleware.Authenticate(h.MyOrders))
	router.GET("/api/admin/orders", middleware.Authenticate(middleware.RequireRole(session.RoleAdmin, h.AllOrders)))
	router.PUT("/api/admin/orders/:orderid/status", middleware.Authenticate(middleware.RequireRole(session.RoleAdmin, h.UpdateStatus)))
	router.GET("/api/admin/orders/:orderid/invoice", middleware.Authenticate(middleware.RequireRole(session.RoleAdmin, h.PrintInvoice)))
}

func AddSyncRoutes(router *httprouter.Router, hub *websock.Hub) {
	router.GET("/ws/sync", websock.SyncHandler(hub))
}
