package repository

import (
	"context"

	"github.com/fabworks/moldline/internal/model/entity"
	"gorm.io/gorm"
)

// EmployeeRepository 员工仓库
type EmployeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository 创建员工仓库
func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create 创建员工
func (r *EmployeeRepository) Create(ctx context.Context, employee *entity.Employee) error {
	return translateError(r.db.WithContext(ctx).Create(employee).Error)
}

// FindByID 根据ID查找员工，带指派设备摘要
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*entity.Employee, error) {
	var employee entity.Employee
	err := r.db.WithContext(ctx).
		Preload("AssignedMachine").
		Where("id = ?", id).
		First(&employee).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &employee, nil
}

// List 获取员工列表，按姓氏、名字排序
func (r *EmployeeRepository) List(ctx context.Context, filters map[string]interface{}) ([]entity.Employee, error) {
	var employees []entity.Employee

	query := r.db.WithContext(ctx).Model(&entity.Employee{})

	if department, ok := filters["department"].(string); ok && department != "" {
		query = query.Where("department = ?", department)
	}
	if role, ok := filters["role"].(string); ok && role != "" {
		query = query.Where("role = ?", role)
	}
	if shift, ok := filters["shift"].(string); ok && shift != "" {
		query = query.Where("shift = ?", shift)
	}
	if active, ok := filters["active"].(bool); ok {
		query = query.Where("active = ?", active)
	}

	err := query.
		Preload("AssignedMachine").
		Order("last_name ASC, first_name ASC").
		Find(&employees).Error
	return employees, err
}

// Update 局部更新，返回更新后的文档
func (r *EmployeeRepository) Update(ctx context.Context, id string, fields map[string]interface{}) (*entity.Employee, error) {
	tx := r.db.WithContext(ctx).
		Model(&entity.Employee{}).
		Where("id = ?", id).
		Updates(fields)
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, id)
}

// Delete 删除员工并返回被删除的文档
func (r *EmployeeRepository) Delete(ctx context.Context, id string) (*entity.Employee, error) {
	employee, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tx := r.db.WithContext(ctx).Delete(&entity.Employee{}, "id = ?", id)
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return employee, nil
}
