package repository

import (
	"context"

	"github.com/fabworks/moldline/internal/model/entity"
	"gorm.io/gorm"
)

// ProductionRunRepository 生产批次仓库
type ProductionRunRepository struct {
	db *gorm.DB
}

// NewProductionRunRepository 创建生产批次仓库
func NewProductionRunRepository(db *gorm.DB) *ProductionRunRepository {
	return &ProductionRunRepository{db: db}
}

// Create 创建批次
func (r *ProductionRunRepository) Create(ctx context.Context, run *entity.ProductionRun) error {
	return translateError(r.db.WithContext(ctx).Create(run).Error)
}

// FindByID 根据ID查找批次，带设备摘要
func (r *ProductionRunRepository) FindByID(ctx context.Context, id string) (*entity.ProductionRun, error) {
	var run entity.ProductionRun
	err := r.db.WithContext(ctx).
		Preload("Machine").
		Where("id = ?", id).
		First(&run).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &run, nil
}

// List 获取批次列表，过滤条件可叠加，最近创建在前
func (r *ProductionRunRepository) List(ctx context.Context, filters map[string]interface{}) ([]entity.ProductionRun, error) {
	var runs []entity.ProductionRun

	query := r.db.WithContext(ctx).Model(&entity.ProductionRun{})

	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if machineID, ok := filters["machine_id"].(string); ok && machineID != "" {
		query = query.Where("machine_id = ?", machineID)
	}

	err := query.
		Preload("Machine").
		Order("created_at DESC").
		Find(&runs).Error
	return runs, err
}

// Update 局部更新，返回更新后的文档（含设备摘要）
func (r *ProductionRunRepository) Update(ctx context.Context, id string, fields map[string]interface{}) (*entity.ProductionRun, error) {
	tx := r.db.WithContext(ctx).
		Model(&entity.ProductionRun{}).
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

// Delete 删除批次并返回被删除的文档
func (r *ProductionRunRepository) Delete(ctx context.Context, id string) (*entity.ProductionRun, error) {
	run, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tx := r.db.WithContext(ctx).Delete(&entity.ProductionRun{}, "id = ?", id)
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return run, nil
}
