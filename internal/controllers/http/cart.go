package http

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) respondCart(c *gin.Context, cart *domain.Cart, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(cart))
}

func (h *Handler) GetCart(c *gin.Context) {
	cart, err := h.svc.Carts.Get(c.Request.Context(), deviceID(c))
	h.respondCart(c, cart, err)
}

func (h *Handler) AddCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cart, err := h.svc.Carts.AddItem(c.Request.Context(), deviceID(c), req.ProductID)
	h.respondCart(c, cart, err)
}

func (h *Handler) SetCartQuantity(c *gin.Context) {
	var req SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cart, err := h.svc.Carts.SetQuantity(c.Request.Context(), deviceID(c), c.Param("productId"), *req.Quantity)
	h.respondCart(c, cart, err)
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	cart, err := h.svc.Carts.RemoveItem(c.Request.Context(), deviceID(c), c.Param("productId"))
	h.respondCart(c, cart, err)
}

func (h *Handler) ReplaceCart(c *gin.Context) {
	var req ReplaceCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cart, err := h.svc.Carts.Replace(c.Request.Context(), deviceID(c), req.Items)
	h.respondCart(c, cart, err)
}

func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.svc.Carts.Clear(c.Request.Context(), deviceID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(&domain.Cart{}))
}

func (h *Handler) Checkout(c *gin.Context) {
	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.DeviceID = deviceID(c)
	if claims := currentUser(c); claims != nil {
		req.UserID = claims.UserID
	}

	order, err := h.svc.Checkout.Checkout(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) ListZones(c *gin.Context) {
	c.JSON(http.StatusOK, domain.Zones())
}

func (h *Handler) QuoteDelivery(c *gin.Context) {
	zone := c.Query("zone")
	t := domain.DeliveryType(c.Query("type"))
	fee, err := services.Quote(zone, t)
	if err != nil {
		respondError(c, err)
		return
	}
	if t == "" {
		t = domain.DeliveryNormal
	}
	c.JSON(http.StatusOK, QuoteResponse{Zone: zone, DeliveryType: t, Fee: fee})
}

func (h *Handler) ListFavorites(c *gin.Context) {
	ids, err := h.svc.Favorites.List(c.Request.Context(), deviceID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ids)
}

func (h *Handler) AddFavorite(c *gin.Context) {
	ctx := c.Request.Context()
	productID := c.Param("productId")
	if _, err := h.svc.Catalog.Get(ctx, productID); err != nil {
		respondError(c, err)
		return
	}
	ids, err := h.svc.Favorites.Add(ctx, deviceID(c), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ids)
}

func (h *Handler) RemoveFavorite(c *gin.Context) {
	ids, err := h.svc.Favorites.Remove(c.Request.Context(), deviceID(c), c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ids)
}
