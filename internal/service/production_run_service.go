package service

import (
	"context"
	"errors"
	"time"

	"github.com/fabworks/moldline/internal/apperr"
	"github.com/fabworks/moldline/internal/model/entity"
	"github.com/fabworks/moldline/internal/repository"
	"github.com/fabworks/moldline/internal/validation"
	"github.com/google/uuid"
)

// ProductionRunService 生产批次服务
type ProductionRunService struct {
	repo        *repository.ProductionRunRepository
	machineRepo *repository.MachineRepository
}

// NewProductionRunService 创建生产批次服务
func NewProductionRunService(repo *repository.ProductionRunRepository, machineRepo *repository.MachineRepository) *ProductionRunService {
	return &ProductionRunService{repo: repo, machineRepo: machineRepo}
}

// CreateProductionRunRequest 创建批次请求
type CreateProductionRunRequest struct {
	RunID          string     `json:"runId"`
	MachineID      string     `json:"machineId"`
	PartNumber     string     `json:"partNumber"`
	PartName       string     `json:"partName"`
	Material       string     `json:"material"`
	TargetQuantity *float64   `json:"targetQuantity"`
	ActualQuantity *float64   `json:"actualQuantity"`
	Status         string     `json:"status"`
	StartTime      *time.Time `json:"startTime"`
	EndTime        *time.Time `json:"endTime"`
	Operator       string     `json:"operator"`
}

// UpdateProductionRunRequest 更新批次请求，只校验并写入携带的字段。
// 携带 machineId 时重新校验引用存在性。
type UpdateProductionRunRequest struct {
	RunID          *string    `json:"runId"`
	MachineID      *string    `json:"machineId"`
	PartNumber     *string    `json:"partNumber"`
	PartName       *string    `json:"partName"`
	Material       *string    `json:"material"`
	TargetQuantity *float64   `json:"targetQuantity"`
	ActualQuantity *float64   `json:"actualQuantity"`
	Status         *string    `json:"status"`
	StartTime      *time.Time `json:"startTime"`
	EndTime        *time.Time `json:"endTime"`
	Operator       *string    `json:"operator"`
}

func (r *UpdateProductionRunRequest) isEmpty() bool {
	return r.RunID == nil && r.MachineID == nil && r.PartNumber == nil &&
		r.PartName == nil && r.Material == nil && r.TargetQuantity == nil &&
		r.ActualQuantity == nil && r.Status == nil && r.StartTime == nil &&
		r.EndTime == nil && r.Operator == nil
}

// resolveMachine 校验设备引用存在，缺失时报 DanglingReference
func (s *ProductionRunService) resolveMachine(ctx context.Context, value string) error {
	if _, err := s.machineRepo.FindByID(ctx, value); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.DanglingReference("machineId", value)
		}
		return err
	}
	return nil
}

// Create 创建批次
func (s *ProductionRunService) Create(ctx context.Context, req *CreateProductionRunRequest) (*entity.ProductionRun, error) {
	var missing validation.Missing
	missing.Check("runId", req.RunID == "")
	missing.Check("machineId", req.MachineID == "")
	missing.Check("partNumber", req.PartNumber == "")
	missing.Check("partName", req.PartName == "")
	missing.Check("material", req.Material == "")
	missing.Check("targetQuantity", req.TargetQuantity == nil)
	if err := missing.Err(); err != nil {
		return nil, err
	}

	if err := validation.Identifier("runId", req.RunID); err != nil {
		return nil, err
	}
	if err := validation.MinLength("partNumber", req.PartNumber, 2); err != nil {
		return nil, err
	}
	if err := validation.MinLength("partName", req.PartName, 2); err != nil {
		return nil, err
	}
	if err := validation.MinLength("material", req.Material, 2); err != nil {
		return nil, err
	}
	if err := validation.Positive("targetQuantity", *req.TargetQuantity); err != nil {
		return nil, err
	}
	if req.ActualQuantity != nil {
		if err := validation.NonNegative("actualQuantity", *req.ActualQuantity); err != nil {
			return nil, err
		}
	}

	status := req.Status
	if status == "" {
		status = entity.RunStatusScheduled
	}
	if err := validation.Enum("status", status, entity.RunStatuses); err != nil {
		return nil, err
	}

	if err := s.resolveMachine(ctx, req.MachineID); err != nil {
		return nil, err
	}

	now := time.Now()
	run := &entity.ProductionRun{
		ID:             uuid.New().String(),
		RunID:          req.RunID,
		MachineID:      req.MachineID,
		PartNumber:     req.PartNumber,
		PartName:       req.PartName,
		Material:       req.Material,
		TargetQuantity: *req.TargetQuantity,
		Status:         status,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Operator:       req.Operator,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.ActualQuantity != nil {
		run.ActualQuantity = *req.ActualQuantity
	}

	if err := s.repo.Create(ctx, run); err != nil {
		return nil, translate(err, "production run")
	}
	return s.Get(ctx, run.ID)
}

// Get 获取批次详情
func (s *ProductionRunService) Get(ctx context.Context, id string) (*entity.ProductionRun, error) {
	if err := validation.DocumentID(id); err != nil {
		return nil, err
	}
	run, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "production run")
	}
	return run, nil
}

// List 获取批次列表，支持 status 与 machineId 过滤
func (s *ProductionRunService) List(ctx context.Context, status, machineID string) ([]entity.ProductionRun, error) {
	if status != "" {
		if err := validation.Enum("status", status, entity.RunStatuses); err != nil {
			return nil, err
		}
	}
	return s.repo.List(ctx, map[string]interface{}{
		"status":     status,
		"machine_id": machineID,
	})
}

// Update 局部更新批次
func (s *ProductionRunService) Update(ctx context.Context, id string, req *UpdateProductionRunRequest) (*entity.ProductionRun, error) {
	if err := validation.DocumentID(id); err != nil {
		return nil, err
	}
	if req.isEmpty() {
		return nil, apperr.EmptyPayload()
	}

	fields := map[string]interface{}{}
	if req.RunID != nil {
		if err := validation.Identifier("runId", *req.RunID); err != nil {
			return nil, err
		}
		fields["run_id"] = *req.RunID
	}
	if req.MachineID != nil {
		if err := s.resolveMachine(ctx, *req.MachineID); err != nil {
			return nil, err
		}
		fields["machine_id"] = *req.MachineID
	}
	if req.PartNumber != nil {
		if err := validation.MinLength("partNumber", *req.PartNumber, 2); err != nil {
			return nil, err
		}
		fields["part_number"] = *req.PartNumber
	}
	if req.PartName != nil {
		if err := validation.MinLength("partName", *req.PartName, 2); err != nil {
			return nil, err
		}
		fields["part_name"] = *req.PartName
	}
	if req.Material != nil {
		if err := validation.MinLength("material", *req.Material, 2); err != nil {
			return nil, err
		}
		fields["material"] = *req.Material
	}
	if req.TargetQuantity != nil {
		if err := validation.Positive("targetQuantity", *req.TargetQuantity); err != nil {
			return nil, err
		}
		fields["target_quantity"] = *req.TargetQuantity
	}
	if req.ActualQuantity != nil {
		if err := validation.NonNegative("actualQuantity", *req.ActualQuantity); err != nil {
			return nil, err
		}
		fields["actual_quantity"] = *req.ActualQuantity
	}
	if req.Status != nil {
		if err := validation.Enum("status", *req.Status, entity.RunStatuses); err != nil {
			return nil, err
		}
		fields["status"] = *req.Status
	}
	if req.StartTime != nil {
		fields["start_time"] = *req.StartTime
	}
	if req.EndTime != nil {
		fields["end_time"] = *req.EndTime
	}
	if req.Operator != nil {
		fields["operator"] = *req.Operator
	}
	fields["updated_at"] = time.Now()

	run, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, translate(err, "production run")
	}
	return run, nil
}

// Delete 删除批次，返回被删除的文档
func (s *ProductionRunService) Delete(ctx context.Context, id string) (*entity.ProductionRun, error) {
	if err := validation.DocumentID(id); err != nil {
		return nil, err
	}
	run, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, translate(err, "production run")
	}
	return run, nil
}
