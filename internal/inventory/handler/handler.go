package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/fekuna/omnipos-stockroom/internal/auth"
	"github.com/fekuna/omnipos-stockroom/internal/inventory"
	"github.com/fekuna/omnipos-stockroom/internal/inventory/dto"
	"github.com/fekuna/omnipos-stockroom/internal/model"
	"github.com/fekuna/omnipos-stockroom/pkg/apperror"
	"github.com/fekuna/omnipos-stockroom/pkg/logger"
	"github.com/fekuna/omnipos-stockroom/pkg/middleware"
	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

// RegisterRoutes expects rg to already require a session.
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	privileged := auth.RequireRole(model.RoleAdmin, model.RoleManager)

	stock := rg.Group("/stock")
	stock.POST("/receive", h.Receive)
	stock.POST("/issue", h.Issue)
	stock.POST("/transfer", h.Transfer)
	stock.POST("/adjust", privileged, h.Adjust)

	inv := rg.Group("/inventory")
	inv.GET("", h.ListRecords)
	inv.POST("", privileged, h.RegisterRecord)
	inv.GET("/:id", h.GetRecord)
	inv.GET("/:id/transactions", h.ListTransactions)
	inv.GET("/:id/reconcile", h.Reconcile)
}

type movementRequest struct {
	Barcode       string  `json:"barcode"`
	WarehouseName string  `json:"warehouseName"`
	Quantity      float64 `json:"quantity"`
	ReferenceDoc  string  `json:"referenceDoc"`
	Reason        string  `json:"reason"`
}

type transferRequest struct {
	Barcode       string  `json:"barcode"`
	FromWarehouse string  `json:"fromWarehouse"`
	ToWarehouse   string  `json:"toWarehouse"`
	Quantity      float64 `json:"quantity"`
	ReferenceDoc  string  `json:"referenceDoc"`
	Reason        string  `json:"reason"`
}

type adjustRequest struct {
	Barcode       string  `json:"barcode"`
	WarehouseName string  `json:"warehouseName"`
	Delta         float64 `json:"delta"`
	ReferenceDoc  string  `json:"referenceDoc"`
	Reason        string  `json:"reason"`
}

type registerRequest struct {
	Barcode         string     `json:"barcode"`
	ItemName        string     `json:"itemName"`
	WarehouseName   string     `json:"warehouseName"`
	OpeningQty      float64    `json:"openingQty"`
	StockAlertLevel float64    `json:"stockAlertLevel"`
	ExpireDate      *time.Time `json:"expireDate"`
	ExpireDateAlert int        `json:"expireDateAlert"`
}

func (h *InventoryHandler) Receive(c *gin.Context) {
	h.movement(c, h.uc.Receive)
}

func (h *InventoryHandler) Issue(c *gin.Context) {
	h.movement(c, h.uc.Issue)
}

func (h *InventoryHandler) movement(c *gin.Context, op func(context.Context, *dto.StockMovementInput) (*model.StockTransaction, error)) {
	var req movementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, h.logger, apperror.Validation("invalid request body"))
		return
	}

	st, err := op(c.Request.Context(), &dto.StockMovementInput{
		Barcode:       req.Barcode,
		WarehouseName: req.WarehouseName,
		Quantity:      req.Quantity,
		ReferenceDoc:  req.ReferenceDoc,
		Reason:        req.Reason,
		UserID:        auth.GetUserID(c),
	})
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "id": st.ID})
}

func (h *InventoryHandler) Transfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, h.logger, apperror.Validation("invalid request body"))
		return
	}

	rows, err := h.uc.Transfer(c.Request.Context(), &dto.TransferInput{
		Barcode:       req.Barcode,
		FromWarehouse: req.FromWarehouse,
		ToWarehouse:   req.ToWarehouse,
		Quantity:      req.Quantity,
		ReferenceDoc:  req.ReferenceDoc,
		Reason:        req.Reason,
		UserID:        auth.GetUserID(c),
	})
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}

	ids := make([]string, len(rows))
	for i, st := range rows {
		ids[i] = st.ID
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "ids": ids})
}

func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, h.logger, apperror.Validation("invalid request body"))
		return
	}

	st, err := h.uc.Adjust(c.Request.Context(), &dto.AdjustInput{
		Barcode:       req.Barcode,
		WarehouseName: req.WarehouseName,
		Delta:         req.Delta,
		ReferenceDoc:  req.ReferenceDoc,
		Reason:        req.Reason,
		UserID:        auth.GetUserID(c),
	})
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "id": st.ID})
}

func (h *InventoryHandler) RegisterRecord(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, h.logger, apperror.Validation("invalid request body"))
		return
	}

	rec, err := h.uc.RegisterRecord(c.Request.Context(), &dto.RegisterRecordInput{
		Barcode:         req.Barcode,
		ItemName:        req.ItemName,
		WarehouseName:   req.WarehouseName,
		OpeningQty:      req.OpeningQty,
		StockAlertLevel: req.StockAlertLevel,
		ExpireDate:      req.ExpireDate,
		ExpireDateAlert: req.ExpireDateAlert,
		UserID:          auth.GetUserID(c),
	})
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *InventoryHandler) ListRecords(c *gin.Context) {
	page, pageSize := pagination(c)
	items, total, err := h.uc.ListRecords(c.Request.Context(), &dto.InventoryFilters{
		WarehouseName: c.Query("warehouse"),
		Barcode:       c.Query("barcode"),
		LowStock:      c.Query("lowStock") == "true",
		Page:          page,
		PageSize:      pageSize,
	})
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *InventoryHandler) GetRecord(c *gin.Context) {
	rec, err := h.uc.GetRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *InventoryHandler) ListTransactions(c *gin.Context) {
	page, pageSize := pagination(c)
	items, total, err := h.uc.ListTransactions(c.Request.Context(), &dto.TransactionFilters{
		InventoryID:     c.Param("id"),
		TransactionType: c.Query("type"),
		Page:            page,
		PageSize:        pageSize,
	})
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *InventoryHandler) Reconcile(c *gin.Context) {
	rc, err := h.uc.Reconcile(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rc)
}

// pagination reads page/pageSize, defaulting to the first 50 rows.
func pagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", "50"))
	if err != nil || pageSize < 1 || pageSize > 500 {
		pageSize = 50
	}
	return page, pageSize
}
