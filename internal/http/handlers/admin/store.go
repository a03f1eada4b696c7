package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/averoza/marketplace/internal/http/handlers/shared"
	"github.com/averoza/marketplace/internal/http/response"
	"github.com/averoza/marketplace/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListStores all stores including inactive ones
func (h *Handler) ListStores(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	stores, total, err := h.StoreService.ListAll(repository.StoreListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "store listing failed", err)
		return
	}
	response.SuccessWithPage(c, stores, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPages(total, pageSize),
	})
}

// RecomputeStoreStats rebuilds one store's counters from the ledger
func (h *Handler) RecomputeStoreStats(c *gin.Context) {
	storeID, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.StoreService.RecomputeStats(storeID); err != nil {
		respondError(c, response.CodeInternal, "stats recompute failed", err)
		return
	}
	response.Success(c, gin.H{"recomputed": true})
}
