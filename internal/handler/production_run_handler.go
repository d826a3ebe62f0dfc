package handler

import (
	"net/http"

	"github.com/fabworks/moldline/internal/service"
	"github.com/gin-gonic/gin"
)

// ProductionRunHandler 生产批次处理器
type ProductionRunHandler struct {
	svc *service.ProductionRunService
}

// NewProductionRunHandler 创建生产批次处理器
func NewProductionRunHandler(svc *service.ProductionRunService) *ProductionRunHandler {
	return &ProductionRunHandler{svc: svc}
}

// List 获取批次列表，支持 status 与 machineId 过滤
func (h *ProductionRunHandler) List(c *gin.Context) {
	runs, err := h.svc.List(c.Request.Context(), c.Query("status"), c.Query("machineId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, runs)
}

// Create 创建批次
func (h *ProductionRunHandler) Create(c *gin.Context) {
	var req service.CreateProductionRunRequest
	if !bindJSON(c, &req) {
		return
	}

	run, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, run)
}

// Get 获取批次详情
func (h *ProductionRunHandler) Get(c *gin.Context) {
	run, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// Update 更新批次
func (h *ProductionRunHandler) Update(c *gin.Context) {
	var req service.UpdateProductionRunRequest
	if !bindJSON(c, &req) {
		return
	}

	run, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// Delete 删除批次，返回被删除的文档
func (h *ProductionRunHandler) Delete(c *gin.Context) {
	run, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}
