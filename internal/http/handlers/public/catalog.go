package public

import (
	"errors"
	"strconv"
	"strings"

	handlershared "github.com/averoza/marketplace/internal/http/handlers/shared"
	"github.com/averoza/marketplace/internal/http/response"
	"github.com/averoza/marketplace/internal/repository"
	"github.com/averoza/marketplace/internal/service"

	"github.com/gin-gonic/gin"
)

// ListProducts storefront product listing
func (h *Handler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	filter := repository.ProductListFilter{
		Page:         page,
		PageSize:     pageSize,
		Search:       strings.TrimSpace(c.Query("search")),
		MinPrice:     strings.TrimSpace(c.Query("min_price")),
		MaxPrice:     strings.TrimSpace(c.Query("max_price")),
		SortBy:       strings.TrimSpace(c.Query("sort_by")),
		FeaturedOnly: c.Query("featured") == "true",
	}
	if raw := c.Query("category_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.CategoryID = uint(id)
		}
	}
	if raw := c.Query("store_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.StoreID = uint(id)
		}
	}

	products, total, err := h.ProductService.ListProducts(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "product listing failed", err)
		return
	}
	response.SuccessWithPage(c, products, buildPagination(page, pageSize, total))
}

// SearchProducts keyword search
func (h *Handler) SearchProducts(c *gin.Context) {
	keyword := strings.TrimSpace(c.Query("q"))
	if keyword == "" {
		respondError(c, response.CodeBadRequest, "search keyword required", nil)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	products, total, err := h.ProductService.SearchProducts(keyword, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "product search failed", err)
		return
	}
	response.SuccessWithPage(c, products, buildPagination(page, pageSize, total))
}

// GetProduct product detail by slug, with a numeric-ID fallback
func (h *Handler) GetProduct(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		respondError(c, response.CodeBadRequest, "product slug required", nil)
		return
	}

	product, err := h.ProductService.GetProductBySlug(slug)
	if err != nil && errors.Is(err, service.ErrProductNotFound) {
		if id, parseErr := strconv.ParseUint(slug, 10, 64); parseErr == nil && id > 0 {
			product, err = h.ProductService.GetProduct(uint(id))
		}
	}
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, response.CodeNotFound, "product not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}
	response.Success(c, product)
}

// ListCategories active categories with product counts
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.CategoryService.ListPublic()
	if err != nil {
		respondError(c, response.CodeInternal, "category listing failed", err)
		return
	}
	response.Success(c, gin.H{"categories": categories})
}

// GetCategory category detail by slug
func (h *Handler) GetCategory(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	category, err := h.CategoryService.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			respondError(c, response.CodeNotFound, "category not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "category fetch failed", err)
		return
	}
	response.Success(c, category)
}

// ListStores active stores
func (h *Handler) ListStores(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	stores, total, err := h.StoreService.ListPublic(repository.StoreListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "store listing failed", err)
		return
	}
	response.SuccessWithPage(c, stores, buildPagination(page, pageSize, total))
}

// GetStore store page by slug
func (h *Handler) GetStore(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	store, err := h.StoreService.GetPublicBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			respondError(c, response.CodeNotFound, "store not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "store fetch failed", err)
		return
	}
	response.Success(c, store)
}

func buildPagination(page, pageSize int, total int64) response.Pagination {
	totalPage := int64(0)
	if pageSize > 0 {
		totalPage = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	}
}
