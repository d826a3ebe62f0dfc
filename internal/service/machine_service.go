package service

import (
	"context"
	"time"

	"github.com/fabworks/moldline/internal/apperr"
	"github.com/fabworks/moldline/internal/model/entity"
	"github.com/fabworks/moldline/internal/repository"
	"github.com/fabworks/moldline/internal/validation"
	"github.com/google/uuid"
)

// MachineService 注塑机服务
type MachineService struct {
	repo *repository.MachineRepository
}

// NewMachineService 创建注塑机服务
func NewMachineService(repo *repository.MachineRepository) *MachineService {
	return &MachineService{repo: repo}
}

// CreateMachineRequest 创建设备请求
type CreateMachineRequest struct {
	MachineID    string   `json:"machineId"`
	Name         string   `json:"name"`
	Model        string   `json:"model"`
	Manufacturer string   `json:"manufacturer"`
	Tonnage      *float64 `json:"tonnage"`
	Location     string   `json:"location"`
	Status       string   `json:"status"`
}

// UpdateMachineRequest 更新设备请求，只校验并写入携带的字段
type UpdateMachineRequest struct {
	MachineID    *string  `json:"machineId"`
	Name         *string  `json:"name"`
	Model        *string  `json:"model"`
	Manufacturer *string  `json:"manufacturer"`
	Tonnage      *float64 `json:"tonnage"`
	Location     *string  `json:"location"`
	Status       *string  `json:"status"`
}

func (r *UpdateMachineRequest) isEmpty() bool {
	return r.MachineID == nil && r.Name == nil && r.Model == nil &&
		r.Manufacturer == nil && r.Tonnage == nil && r.Location == nil && r.Status == nil
}

// Create 创建设备
func (s *MachineService) Create(ctx context.Context, req *CreateMachineRequest) (*entity.Machine, error) {
	var missing validation.Missing
	missing.Check("machineId", req.MachineID == "")
	missing.Check("name", req.Name == "")
	if err := missing.Err(); err != nil {
		return nil, err
	}

	if err := validation.Identifier("machineId", req.MachineID); err != nil {
		return nil, err
	}
	if err := validation.MinLength("name", req.Name, 2); err != nil {
		return nil, err
	}
	if req.Tonnage != nil {
		if err := validation.Positive("tonnage", *req.Tonnage); err != nil {
			return nil, err
		}
	}

	status := req.Status
	if status == "" {
		status = entity.MachineStatusOperational
	}
	if err := validation.Enum("status", status, entity.MachineStatuses); err != nil {
		return nil, err
	}

	now := time.Now()
	machine := &entity.Machine{
		ID:           uuid.New().String(),
		MachineID:    req.MachineID,
		Name:         req.Name,
		Model:        req.Model,
		Manufacturer: req.Manufacturer,
		Location:     req.Location,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.Tonnage != nil {
		machine.Tonnage = *req.Tonnage
	}

	if err := s.repo.Create(ctx, machine); err != nil {
		return nil, translate(err, "machine")
	}
	return machine, nil
}

// Get 获取设备详情
func (s *MachineService) Get(ctx context.Context, id string) (*entity.Machine, error) {
	if err := validation.DocumentID(id); err != nil {
		return nil, err
	}
	machine, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "machine")
	}
	return machine, nil
}

// List 获取设备列表
func (s *MachineService) List(ctx context.Context, status string) ([]entity.Machine, error) {
	if status != "" {
		if err := validation.Enum("status", status, entity.MachineStatuses); err != nil {
			return nil, err
		}
	}
	return s.repo.List(ctx, map[string]interface{}{"status": status})
}

// Update 局部更新设备
func (s *MachineService) Update(ctx context.Context, id string, req *UpdateMachineRequest) (*entity.Machine, error) {
	if err := validation.DocumentID(id); err != nil {
		return nil, err
	}
	if req.isEmpty() {
		return nil, apperr.EmptyPayload()
	}

	fields := map[string]interface{}{}
	if req.MachineID != nil {
		if err := validation.Identifier("machineId", *req.MachineID); err != nil {
			return nil, err
		}
		fields["machine_id"] = *req.MachineID
	}
	if req.Name != nil {
		if err := validation.MinLength("name", *req.Name, 2); err != nil {
			return nil, err
		}
		fields["name"] = *req.Name
	}
	if req.Model != nil {
		fields["model"] = *req.Model
	}
	if req.Manufacturer != nil {
		fields["manufacturer"] = *req.Manufacturer
	}
	if req.Tonnage != nil {
		if err := validation.Positive("tonnage", *req.Tonnage); err != nil {
			return nil, err
		}
		fields["tonnage"] = *req.Tonnage
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if req.Status != nil {
		if err := validation.Enum("status", *req.Status, entity.MachineStatuses); err != nil {
			return nil, err
		}
		fields["status"] = *req.Status
	}
	fields["updated_at"] = time.Now()

	machine, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, translate(err, "machine")
	}
	return machine, nil
}

// Delete 删除设备，返回被删除的文档。依赖它的批次/质检记录保持悬挂引用。
func (s *MachineService) Delete(ctx context.Context, id string) (*entity.Machine, error) {
	if err := validation.DocumentID(id); err != nil {
		return nil, err
	}
	machine, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, translate(err, "machine")
	}
	return machine, nil
}
