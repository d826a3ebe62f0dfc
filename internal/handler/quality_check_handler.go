package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fabworks/moldline/internal/apperr"
	"github.com/fabworks/moldline/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 100
)

// QualityCheckHandler 质检记录处理器
type QualityCheckHandler struct {
	svc *service.QualityCheckService
}

// NewQualityCheckHandler 创建质检记录处理器
func NewQualityCheckHandler(svc *service.QualityCheckService) *QualityCheckHandler {
	return &QualityCheckHandler{svc: svc}
}

// parseDate 接受 RFC3339 或 2006-01-02 两种日期写法
func parseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return &t, nil
	}
	return nil, apperr.New(apperr.CodeInvalidFormat,
		"%s must be an RFC3339 timestamp or a YYYY-MM-DD date", field)
}

func (h *QualityCheckHandler) filters(c *gin.Context) (service.ListFilters, error) {
	startDate, err := parseDate("startDate", c.Query("startDate"))
	if err != nil {
		return service.ListFilters{}, err
	}
	endDate, err := parseDate("endDate", c.Query("endDate"))
	if err != nil {
		return service.ListFilters{}, err
	}
	return service.ListFilters{
		Result:    c.Query("result"),
		CheckType: c.Query("checkType"),
		StartDate: startDate,
		EndDate:   endDate,
	}, nil
}

// List 获取质检记录列表，支持 startDate/endDate/result/checkType 过滤
func (h *QualityCheckHandler) List(c *gin.Context) {
	filters, err := h.filters(c)
	if err != nil {
		fail(c, err)
		return
	}

	checks, err := h.svc.List(c.Request.Context(), filters)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, checks)
}

// Recent 最近N条质检记录
func (h *QualityCheckHandler) Recent(c *gin.Context) {
	limit := defaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			fail(c, apperr.New(apperr.CodeInvalidNumber, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	checks, err := h.svc.Recent(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, checks)
}

// ListByResult 按检验结论获取质检记录
func (h *QualityCheckHandler) ListByResult(c *gin.Context) {
	checks, err := h.svc.ListByResult(c.Request.Context(), c.Param("result"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, checks)
}

// Export 导出质检记录为xlsx
func (h *QualityCheckHandler) Export(c *gin.Context) {
	filters, err := h.filters(c)
	if err != nil {
		fail(c, err)
		return
	}

	f, err := h.svc.Export(c.Request.Context(), filters)
	if err != nil {
		fail(c, err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="quality-checks.xlsx"`)
	if err := f.Write(c.Writer); err != nil {
		// 响应头已写出，只能中断
		c.Abort()
	}
}

// Create 创建质检记录
func (h *QualityCheckHandler) Create(c *gin.Context) {
	var req service.CreateQualityCheckRequest
	if !bindJSON(c, &req) {
		return
	}

	check, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, check)
}

// Get 获取质检记录详情
func (h *QualityCheckHandler) Get(c *gin.Context) {
	check, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, check)
}

// Update 更新质检记录
func (h *QualityCheckHandler) Update(c *gin.Context) {
	var req service.UpdateQualityCheckRequest
	if !bindJSON(c, &req) {
		return
	}

	check, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, check)
}

// Delete 删除质检记录，返回被删除的文档
func (h *QualityCheckHandler) Delete(c *gin.Context) {
	check, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, check)
}
