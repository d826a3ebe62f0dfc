package service

import (
	"errors"

	"github.com/fabworks/moldline/internal/apperr"
	"github.com/fabworks/moldline/internal/repository"
	"github.com/redis/go-redis/v9"
)

// Services 服务集合
type Services struct {
	Machine       *MachineService
	ProductionRun *ProductionRunService
	Employee      *EmployeeService
	QualityCheck  *QualityCheckService
}

// NewServices 创建服务集合。rdb 可为 nil（不启用缓存）。
func NewServices(repos *repository.Repositories, rdb *redis.Client) *Services {
	return &Services{
		Machine:       NewMachineService(repos.Machine),
		ProductionRun: NewProductionRunService(repos.ProductionRun, repos.Machine),
		Employee:      NewEmployeeService(repos.Employee, repos.Machine),
		QualityCheck:  NewQualityCheckService(repos.QualityCheck, repos.ProductionRun, repos.Machine, repos.Employee, rdb),
	}
}

// translate 把仓库层错误映射为对外错误类别
func translate(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(what)
	}
	var dup *repository.DuplicateKeyError
	if errors.As(err, &dup) {
		return apperr.DuplicateKey(dup.Field)
	}
	return err
}
