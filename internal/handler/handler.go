package handler

import (
	"errors"
	"net/http"

	"github.com/fabworks/moldline/internal/apperr"
	"github.com/fabworks/moldline/internal/auth"
	"github.com/fabworks/moldline/internal/config"
	"github.com/fabworks/moldline/internal/service"
	"github.com/gin-gonic/gin"
)

// Handlers 处理器集合
type Handlers struct {
	Machine       *MachineHandler
	ProductionRun *ProductionRunHandler
	Employee      *EmployeeHandler
	QualityCheck  *QualityCheckHandler
	Auth          *AuthHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services, google *auth.Google, cfg *config.Config) *Handlers {
	return &Handlers{
		Machine:       NewMachineHandler(svc.Machine),
		ProductionRun: NewProductionRunHandler(svc.ProductionRun),
		Employee:      NewEmployeeHandler(svc.Employee),
		QualityCheck:  NewQualityCheckHandler(svc.QualityCheck),
		Auth:          NewAuthHandler(google, cfg),
	}
}

// fail 统一的错误翻译：类型化错误按 apperr.Status 映射状态码，
// 未分类错误一律500，非调试模式下不泄露细节。
func fail(c *gin.Context, err error) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		body := gin.H{
			"error":   string(ae.Code),
			"message": ae.Message,
		}
		if len(ae.Fields) > 0 {
			body["fields"] = ae.Fields
		}
		c.JSON(apperr.Status(err), body)
		return
	}

	message := "internal server error"
	if gin.Mode() == gin.DebugMode {
		message = err.Error()
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   string(apperr.CodeInternal),
		"message": message,
	})
}

// bindJSON 解析请求体，失败时返回400并报告false
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, apperr.New(apperr.CodeInvalidPayload, "invalid request body: %s", err.Error()))
		return false
	}
	return true
}
