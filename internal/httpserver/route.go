package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/droneshop/internal/metrics"
	authmw "github.com/Skotchmaster/droneshop/internal/middleware/auth"
	"github.com/Skotchmaster/droneshop/internal/transport"
)

type Deps struct {
	Account  *AccountHTTP
	Catalog  *CatalogHTTP
	Order    *OrderHTTP
	Cart     *CartHTTP
	Wishlist *WishlistHTTP
	User     *UserHTTP
	Upload   *UploadHTTP
	Health   *HealthHTTP

	Auth    *authmw.Auth
	Ready   echo.MiddlewareFunc
	Metrics *metrics.Metrics
}

func Register(e *echo.Echo, d *Deps) {
	e.Validator = transport.Validator{}

	e.GET("/", d.Health.Root)
	e.GET("/health", d.Health.Health)
	e.GET("/health/live", d.Health.Live)
	e.GET("/health/ready", d.Health.ReadyCheck)
	if d.Metrics != nil {
		e.GET("/metrics", d.Metrics.Handler())
	}

	auth := d.Auth
	if auth == nil {
		auth = authmw.New(nil)
	}
	admin := auth.RequireAdmin

	upload := e.Group("/upload", admin)
	upload.POST("/image", d.Upload.UploadImage)
	upload.DELETE("/image/:filename", d.Upload.DeleteImage)

	var api *echo.Group
	if d.Ready != nil {
		api = e.Group("", d.Ready)
	} else {
		api = e.Group("")
	}

	api.POST("/register", d.Account.Register)
	api.POST("/login", d.Account.Login)
	api.POST("/logout", d.Account.Logout)
	api.GET("/verify-email/:token", d.Account.VerifyEmail)
	api.POST("/resend-verification-email", d.Account.ResendVerification)

	api.GET("/products", d.Catalog.GetProducts)
	api.GET("/products/featured", d.Catalog.GetFeatured)
	api.GET("/products/:id", d.Catalog.GetProduct)
	api.POST("/products", d.Catalog.CreateProduct, admin)
	api.PUT("/products/:id", d.Catalog.UpdateProduct, admin)
	api.DELETE("/products/:id", d.Catalog.DeleteProduct, admin)
	api.GET("/search", d.Catalog.SearchProducts)
	api.GET("/categories", d.Catalog.GetCategories)

	api.POST("/ratings", d.Catalog.AddRating)
	api.GET("/ratings", d.Catalog.GetRatings)
	api.DELETE("/ratings/:id", d.Catalog.DeleteRating, admin)

	api.POST("/orders", d.Order.PlaceOrder)
	api.GET("/orders", d.Order.GetOrders)
	api.GET("/orders/track/:trackingNumber", d.Order.TrackOrder)
	api.GET("/orders/:id/details", d.Order.GetOrder)
	api.PUT("/orders/:id/status", d.Order.UpdateStatus, admin)
	api.DELETE("/orders/:id", d.Order.DeleteOrder, admin)

	// Carts and wishlists belong to the signed-in email; handlers check the
	// email named by the request against the token.
	cart := api.Group("/cart", auth.RequireAuth)
	cart.POST("/add", d.Cart.AddItem)
	cart.GET("/:email", d.Cart.GetCart)
	cart.PUT("/update", d.Cart.UpdateItem)
	cart.DELETE("/remove", d.Cart.RemoveItem)
	cart.DELETE("/clear/:email", d.Cart.Clear)

	wishlist := api.Group("/wishlist", auth.RequireAuth)
	wishlist.GET("/:email", d.Wishlist.Get)
	wishlist.POST("/add", d.Wishlist.Add)
	wishlist.DELETE("/remove", d.Wishlist.Remove)
	wishlist.GET("/:email/check/:productId", d.Wishlist.Check)

	api.POST("/addUserInfo", d.User.AddUserInfo)
	api.PUT("/addUserInfo", d.User.UpsertUserInfo)
	api.GET("/user/:email", d.User.GetUser)
	api.GET("/checkAdmin/:email", d.User.CheckAdmin)
	api.PUT("/makeAdmin", d.User.MakeAdmin, admin)
	api.GET("/users", d.User.ListUsers, admin)
	api.PUT("/users/status", d.User.SetStatus, admin)
	api.DELETE("/users/:email", d.User.DeleteUser, admin)
}
