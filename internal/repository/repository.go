package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// DuplicateKeyError 唯一约束冲突，Field 为冲突的JSON字段名
type DuplicateKeyError struct {
	Field string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate value for unique field %s", e.Field)
}

// uniqueFields 把postgres约束名映射到对外的JSON字段名
var uniqueFields = map[string]string{
	"uq_machines_machine_id":     "machineId",
	"uq_production_runs_run_id":  "runId",
	"uq_employees_employee_id":   "employeeId",
	"uq_employees_email":         "email",
	"uq_quality_checks_check_id": "checkId",
}

// translateError 把存储层错误归一化：未找到与唯一冲突之外的错误原样上抛
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if field, ok := uniqueFields[pgErr.ConstraintName]; ok {
			return &DuplicateKeyError{Field: field}
		}
		return &DuplicateKeyError{Field: pgErr.ConstraintName}
	}
	return err
}

// Repositories 仓库集合
type Repositories struct {
	Machine       *MachineRepository
	ProductionRun *ProductionRunRepository
	Employee      *EmployeeRepository
	QualityCheck  *QualityCheckRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Machine:       NewMachineRepository(db),
		ProductionRun: NewProductionRunRepository(db),
		Employee:      NewEmployeeRepository(db),
		QualityCheck:  NewQualityCheckRepository(db),
	}
}
