package handler

import (
	"net/http"

	"github.com/fabworks/moldline/internal/service"
	"github.com/gin-gonic/gin"
)

// EmployeeHandler 员工处理器
type EmployeeHandler struct {
	svc *service.EmployeeService
}

// NewEmployeeHandler 创建员工处理器
func NewEmployeeHandler(svc *service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{svc: svc}
}

// List 获取员工列表
func (h *EmployeeHandler) List(c *gin.Context) {
	employees, err := h.svc.List(c.Request.Context(),
		c.Query("department"), c.Query("role"), c.Query("shift"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, employees)
}

// ListActive 获取在职员工列表
func (h *EmployeeHandler) ListActive(c *gin.Context) {
	employees, err := h.svc.ListActive(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, employees)
}

// Create 创建员工
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req service.CreateEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}

	employee, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, employee)
}

// Get 获取员工详情
func (h *EmployeeHandler) Get(c *gin.Context) {
	employee, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

// Update 更新员工
func (h *EmployeeHandler) Update(c *gin.Context) {
	var req service.UpdateEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}

	employee, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

// Delete 删除员工，返回被删除的文档
func (h *EmployeeHandler) Delete(c *gin.Context) {
	employee, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, employee)
}
