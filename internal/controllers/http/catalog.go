package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
)

// parseProductFilter reads the list query: q, category, brand, minPrice,
// maxPrice, isNew, isOnSale, sortBy, order, page and limit.
func parseProductFilter(c *gin.Context) (domain.ProductFilter, error) {
	f := domain.ProductFilter{
		Query:    strings.TrimSpace(c.Query("q")),
		Category: c.Query("category"),
		Brand:    c.Query("brand"),
		SortBy:   domain.SortField(strings.ToLower(c.Query("sortBy"))),
		SortDesc: strings.EqualFold(c.Query("order"), "desc"),
	}

	for _, p := range []struct {
		name string
		dst  **int64
	}{{"minPrice", &f.MinPrice}, {"maxPrice", &f.MaxPrice}} {
		if raw := c.Query(p.name); raw != "" {
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return f, fmt.Errorf("invalid %s", p.name)
			}
			*p.dst = &v
		}
	}
	for _, p := range []struct {
		name string
		dst  **bool
	}{{"isNew", &f.IsNew}, {"isOnSale", &f.IsOnSale}} {
		if raw := c.Query(p.name); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				return f, fmt.Errorf("invalid %s", p.name)
			}
			*p.dst = &v
		}
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{{"page", &f.Page}, {"limit", &f.Limit}} {
		if raw := c.Query(p.name); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil || v < 0 {
				return f, fmt.Errorf("invalid %s", p.name)
			}
			*p.dst = v
		}
	}
	return f, nil
}

func (h *Handler) ListPerfumes(c *gin.Context) {
	f, err := parseProductFilter(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	page, err := h.svc.Catalog.Search(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) listWith(c *gin.Context, fetch func(*services.CatalogService) ([]domain.Product, error)) {
	products, err := fetch(h.svc.Catalog)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) FeaturedPerfumes(c *gin.Context) {
	h.listWith(c, func(s *services.CatalogService) ([]domain.Product, error) {
		return s.Featured(c.Request.Context())
	})
}

func (h *Handler) NewPerfumes(c *gin.Context) {
	h.listWith(c, func(s *services.CatalogService) ([]domain.Product, error) {
		return s.NewArrivals(c.Request.Context())
	})
}

func (h *Handler) SalePerfumes(c *gin.Context) {
	h.listWith(c, func(s *services.CatalogService) ([]domain.Product, error) {
		return s.OnSale(c.Request.Context())
	})
}

func (h *Handler) GetPerfume(c *gin.Context) {
	p, err := h.svc.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) CreatePerfume(c *gin.Context) {
	var p domain.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	created, err := h.svc.Catalog.Create(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdatePerfume(c *gin.Context) {
	var patch domain.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	updated, err := h.svc.Catalog.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeletePerfume(c *gin.Context) {
	if err := h.svc.Catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Perfume deleted"})
}

func (h *Handler) ExportPerfumes(c *gin.Context) {
	c.Header("Content-Disposition", "attachment; filename=perfumes.xlsx")
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Expires", "0")

	if err := h.svc.Catalog.ExportXLSX(c.Request.Context(), c.Writer); err != nil {
		respondError(c, err)
	}
}

func (h *Handler) ImportPerfumes(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer file.Close()

	result, err := h.svc.Catalog.ImportXLSX(c.Request.Context(), file, fileHeader.Size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) UploadPerfumeImage(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := h.svc.Catalog.Get(ctx, id); err != nil {
		respondError(c, err)
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer file.Close()

	url, err := h.svc.Images.Save(file, fileHeader.Filename)
	if err != nil {
		respondError(c, err)
		return
	}
	updated, err := h.svc.Catalog.Update(ctx, id, domain.ProductPatch{Image: &url})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
