package handler

import (
	"net/http"

	"github.com/fabworks/moldline/internal/service"
	"github.com/gin-gonic/gin"
)

// MachineHandler 注塑机处理器
type MachineHandler struct {
	svc *service.MachineService
}

// NewMachineHandler 创建注塑机处理器
func NewMachineHandler(svc *service.MachineService) *MachineHandler {
	return &MachineHandler{svc: svc}
}

// List 获取设备列表
func (h *MachineHandler) List(c *gin.Context) {
	machines, err := h.svc.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, machines)
}

// Create 创建设备
func (h *MachineHandler) Create(c *gin.Context) {
	var req service.CreateMachineRequest
	if !bindJSON(c, &req) {
		return
	}

	machine, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, machine)
}

// Get 获取设备详情
func (h *MachineHandler) Get(c *gin.Context) {
	machine, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, machine)
}

// Update 更新设备
func (h *MachineHandler) Update(c *gin.Context) {
	var req service.UpdateMachineRequest
	if !bindJSON(c, &req) {
		return
	}

	machine, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, machine)
}

// Delete 删除设备，返回被删除的文档
func (h *MachineHandler) Delete(c *gin.Context) {
	machine, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, machine)
}
