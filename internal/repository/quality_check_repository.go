package repository

import (
	"context"
	"time"

	"github.com/fabworks/moldline/internal/model/entity"
	"gorm.io/gorm"
)

// QualityCheckRepository 质检记录仓库
type QualityCheckRepository struct {
	db *gorm.DB
}

// NewQualityCheckRepository 创建质检记录仓库
func NewQualityCheckRepository(db *gorm.DB) *QualityCheckRepository {
	return &QualityCheckRepository{db: db}
}

func (r *QualityCheckRepository) populated(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Run").
		Preload("Machine").
		Preload("Employee")
}

// Create 创建质检记录
func (r *QualityCheckRepository) Create(ctx context.Context, check *entity.QualityCheck) error {
	return translateError(r.db.WithContext(ctx).Create(check).Error)
}

// FindByID 根据ID查找质检记录，带批次/设备/员工摘要
func (r *QualityCheckRepository) FindByID(ctx context.Context, id string) (*entity.QualityCheck, error) {
	var check entity.QualityCheck
	err := r.populated(ctx).
		Where("id = ?", id).
		First(&check).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &check, nil
}

// List 获取质检记录列表，过滤条件可叠加，最近检验在前
func (r *QualityCheckRepository) List(ctx context.Context, filters map[string]interface{}) ([]entity.QualityCheck, error) {
	var checks []entity.QualityCheck

	query := r.db.WithContext(ctx).Model(&entity.QualityCheck{})

	if result, ok := filters["result"].(string); ok && result != "" {
		query = query.Where("result = ?", result)
	}
	if checkType, ok := filters["check_type"].(string); ok && checkType != "" {
		query = query.Where("check_type = ?", checkType)
	}
	if startDate, ok := filters["start_date"].(time.Time); ok {
		query = query.Where("check_date >= ?", startDate)
	}
	if endDate, ok := filters["end_date"].(time.Time); ok {
		query = query.Where("check_date <= ?", endDate)
	}

	err := query.
		Preload("Run").
		Preload("Machine").
		Preload("Employee").
		Order("check_date DESC").
		Find(&checks).Error
	return checks, err
}

// Recent 最近N条质检记录，按检验时间倒序
func (r *QualityCheckRepository) Recent(ctx context.Context, limit int) ([]entity.QualityCheck, error) {
	var checks []entity.QualityCheck
	err := r.populated(ctx).
		Order("check_date DESC").
		Limit(limit).
		Find(&checks).Error
	return checks, err
}

// Update 局部更新，返回更新后的文档
func (r *QualityCheckRepository) Update(ctx context.Context, id string, fields map[string]interface{}) (*entity.QualityCheck, error) {
	tx := r.db.WithContext(ctx).
		Model(&entity.QualityCheck{}).
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

// Delete 删除质检记录并返回被删除的文档
func (r *QualityCheckRepository) Delete(ctx context.Context, id string) (*entity.QualityCheck, error) {
	check, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tx := r.db.WithContext(ctx).Delete(&entity.QualityCheck{}, "id = ?", id)
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return check, nil
}
