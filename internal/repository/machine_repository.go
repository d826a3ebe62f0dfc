package repository

import (
	"context"

	"github.com/fabworks/moldline/internal/model/entity"
	"gorm.io/gorm"
)

// MachineRepository 注塑机仓库
type MachineRepository struct {
	db *gorm.DB
}

// NewMachineRepository 创建注塑机仓库
func NewMachineRepository(db *gorm.DB) *MachineRepository {
	return &MachineRepository{db: db}
}

// Create 创建设备
func (r *MachineRepository) Create(ctx context.Context, machine *entity.Machine) error {
	return translateError(r.db.WithContext(ctx).Create(machine).Error)
}

// FindByID 根据ID查找设备
func (r *MachineRepository) FindByID(ctx context.Context, id string) (*entity.Machine, error) {
	var machine entity.Machine
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&machine).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &machine, nil
}

// List 获取设备列表，按业务编号排序
func (r *MachineRepository) List(ctx context.Context, filters map[string]interface{}) ([]entity.Machine, error) {
	var machines []entity.Machine

	query := r.db.WithContext(ctx).Model(&entity.Machine{})

	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}

	err := query.Order("machine_id ASC").Find(&machines).Error
	return machines, err
}

// Update 局部更新，只写入传入的列，返回更新后的文档
func (r *MachineRepository) Update(ctx context.Context, id string, fields map[string]interface{}) (*entity.Machine, error) {
	tx := r.db.WithContext(ctx).
		Model(&entity.Machine{}).
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

// Delete 删除设备并返回被删除的文档。不清理引用它的批次/质检记录。
func (r *MachineRepository) Delete(ctx context.Context, id string) (*entity.Machine, error) {
	machine, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tx := r.db.WithContext(ctx).Delete(&entity.Machine{}, "id = ?", id)
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return machine, nil
}
