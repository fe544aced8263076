package http

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/notify"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
)

// Services bundles what the handlers call. Hub and Images may be nil, which
// disables the websocket and upload routes.
type Services struct {
	Orders    *services.OrderService
	Carts     *services.CartService
	Checkout  *services.CheckoutService
	Catalog   *services.CatalogService
	Auth      *services.AuthService
	Favorites *services.FavoritesService
	Content   *services.ContentService
	Payments  *services.PaymentService
	Dashboard *services.DashboardService
	Images    *services.ImageService
	Hub       *notify.Hub
}

type Handler struct {
	svc      Services
	adminKey string
}

func NewHandler(svc Services, adminKey string) *Handler {
	return &Handler{svc: svc, adminKey: adminKey}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	api.Use(DeviceID())

	admin := AdminGate(h.adminKey)
	user := RequireUser(h.svc.Auth)

	api.GET("/health", h.Health)

	auth := api.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.GET("/profile", user, h.GetProfile)
	auth.PUT("/profile", user, h.UpdateProfile)
	auth.POST("/password/reset", h.RequestPasswordReset)
	auth.POST("/password/confirm", h.ConfirmPasswordReset)

	perfumes := api.Group("/perfumes")
	perfumes.GET("", h.ListPerfumes)
	perfumes.GET("/featured", h.FeaturedPerfumes)
	perfumes.GET("/new", h.NewPerfumes)
	perfumes.GET("/sale", h.SalePerfumes)
	perfumes.GET("/:id", h.GetPerfume)
	perfumes.POST("", admin, h.CreatePerfume)
	perfumes.PUT("/:id", admin, h.UpdatePerfume)
	perfumes.DELETE("/:id", admin, h.DeletePerfume)

	orders := api.Group("/orders")
	orders.POST("", OptionalUser(h.svc.Auth), h.CreateOrder)
	orders.GET("", admin, h.ListOrders)
	orders.GET("/:id", OptionalUser(h.svc.Auth), h.GetOrder)
	orders.PUT("/:id/status", admin, h.UpdateOrderStatus)
	orders.POST("/:id/cancel", OptionalUser(h.svc.Auth), h.CancelOrder)

	cart := api.Group("/cart")
	cart.GET("", h.GetCart)
	cart.PUT("", h.ReplaceCart)
	cart.DELETE("", h.ClearCart)
	cart.POST("/items", h.AddCartItem)
	cart.PUT("/items/:productId", h.SetCartQuantity)
	cart.DELETE("/items/:productId", h.RemoveCartItem)

	api.POST("/checkout", OptionalUser(h.svc.Auth), h.Checkout)
	api.GET("/zones", h.ListZones)
	api.GET("/delivery/quote", h.QuoteDelivery)

	favorites := api.Group("/favorites")
	favorites.GET("", h.ListFavorites)
	favorites.POST("/:productId", h.AddFavorite)
	favorites.DELETE("/:productId", h.RemoveFavorite)

	api.GET("/brands", h.ListBrands)
	api.GET("/hero-slides", h.ListHeroSlides)
	api.GET("/promotions", h.ListPromotions)
	api.GET("/promotions/active", h.ActivePromotions)
	api.GET("/countdown", h.GetCountdown)

	payments := api.Group("/payments")
	payments.GET("/methods", h.PaymentMethods)
	payments.POST("/intent", user, h.CreatePaymentIntent)
	payments.POST("/confirm/:id", user, h.ConfirmPayment)
	payments.GET("/status/:id", user, h.PaymentStatus)

	adm := api.Group("/admin", admin)
	adm.POST("/brands", h.CreateBrand)
	adm.PUT("/brands/:id", h.UpdateBrand)
	adm.DELETE("/brands/:id", h.DeleteBrand)
	adm.PUT("/hero-slides", h.ReplaceHeroSlides)
	adm.POST("/promotions", h.CreatePromotion)
	adm.PUT("/promotions/:id", h.UpdatePromotion)
	adm.DELETE("/promotions/:id", h.DeletePromotion)
	adm.PUT("/countdown", h.UpdateCountdown)
	adm.GET("/dashboard/stats", h.DashboardStats)
	adm.GET("/perfumes/export", h.ExportPerfumes)
	adm.POST("/perfumes/import", h.ImportPerfumes)
	if h.svc.Images != nil {
		adm.POST("/perfumes/:id/image", h.UploadPerfumeImage)
	}

	if h.svc.Hub != nil {
		h.svc.Hub.SetAuthorizer(func(r *http.Request) bool {
			return keyMatches(r.Header.Get(AdminKeyHeader), h.adminKey)
		})
		api.GET("/ws/orders", gin.WrapF(h.svc.Hub.ServeWS))
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	in := req.toDomain()
	in.DeviceID = deviceID(c)
	if claims := currentUser(c); claims != nil {
		in.UserID = claims.UserID
	}

	order, err := h.svc.Orders.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.svc.Orders.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder is open to the admin key and to the order's owner.
func (h *Handler) GetOrder(c *gin.Context) {
	order, ok := h.authorizeOrder(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, order)
}

// authorizeOrder loads the order and checks the caller may act on it: the
// admin key always may; otherwise the signed-in user who placed it, or for an
// anonymous order the device that placed it. It writes the error response
// itself and reports false when the caller is refused.
func (h *Handler) authorizeOrder(c *gin.Context, id string) (*domain.Order, bool) {
	order, err := h.svc.Orders.GetByID(c.Request.Context(), id)
	if err != nil {
		if adminKeyMatches(c, h.adminKey) || !errors.Is(err, services.ErrOrderNotFound) {
			respondError(c, err)
		} else {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to access this order"})
		}
		return nil, false
	}
	if adminKeyMatches(c, h.adminKey) {
		return order, true
	}

	if order.UserID != "" {
		claims := currentUser(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			return nil, false
		}
		if claims.UserID != order.UserID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to access this order"})
			return nil, false
		}
		return order, true
	}
	if order.DeviceID == "" || order.DeviceID != deviceID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to access this order"})
		return nil, false
	}
	return order, true
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	order, err := h.svc.Orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// CancelOrder is open to the same callers as GetOrder.
func (h *Handler) CancelOrder(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.authorizeOrder(c, id); !ok {
		return
	}

	order, err := h.svc.Orders.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
