package http

import (
	"net/http"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListBrands(c *gin.Context) {
	brands, err := h.svc.Content.Brands(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, brands)
}

func (h *Handler) CreateBrand(c *gin.Context) {
	var patch domain.BrandPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	brand, err := h.svc.Content.CreateBrand(c.Request.Context(), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, brand)
}

func (h *Handler) UpdateBrand(c *gin.Context) {
	var patch domain.BrandPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	brand, err := h.svc.Content.UpdateBrand(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, brand)
}

func (h *Handler) DeleteBrand(c *gin.Context) {
	if err := h.svc.Content.DeleteBrand(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListHeroSlides(c *gin.Context) {
	slides, err := h.svc.Content.HeroSlides(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, slides)
}

func (h *Handler) ReplaceHeroSlides(c *gin.Context) {
	var slides []domain.HeroSlide
	if err := c.ShouldBindJSON(&slides); err != nil {
		badRequest(c, err)
		return
	}
	stored, err := h.svc.Content.ReplaceHeroSlides(c.Request.Context(), slides)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stored)
}

func (h *Handler) ListPromotions(c *gin.Context) {
	promos, err := h.svc.Content.Promotions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, promos)
}

func (h *Handler) ActivePromotions(c *gin.Context) {
	promos, err := h.svc.Content.ActivePromotions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, promos)
}

func (h *Handler) CreatePromotion(c *gin.Context) {
	var p domain.Promotion
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	created, err := h.svc.Content.CreatePromotion(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdatePromotion(c *gin.Context) {
	var patch domain.PromotionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	updated, err := h.svc.Content.UpdatePromotion(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeletePromotion(c *gin.Context) {
	if err := h.svc.Content.DeletePromotion(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetCountdown(c *gin.Context) {
	view, err := h.svc.Content.Countdown(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) UpdateCountdown(c *gin.Context) {
	var settings domain.CountdownSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.svc.Content.UpdateCountdown(c.Request.Context(), settings)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) DashboardStats(c *gin.Context) {
	stats, err := h.svc.Dashboard.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
