package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fabworks/moldline/internal/apperr"
	"github.com/fabworks/moldline/internal/model/entity"
	"github.com/fabworks/moldline/internal/repository"
	"github.com/fabworks/moldline/internal/validation"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/xuri/excelize/v2"
)

const (
	recentCacheKeyPrefix = "quality_checks:recent:"
	recentCacheTTL       = time.Minute
)

// QualityCheckService 质检记录服务
type QualityCheckService struct {
	repo         *repository.QualityCheckRepository
	runRepo      *repository.ProductionRunRepository
	machineRepo  *repository.MachineRepository
	employeeRepo *repository.EmployeeRepository
	rdb          *redis.Client
}

// NewQualityCheckService 创建质检记录服务。rdb 可为 nil（不启用缓存）。
func NewQualityCheckService(
	repo *repository.QualityCheckRepository,
	runRepo *repository.ProductionRunRepository,
	machineRepo *repository.MachineRepository,
	employeeRepo *repository.EmployeeRepository,
	rdb *redis.Client,
) *QualityCheckService {
	return &QualityCheckService{
		repo:         repo,
		runRepo:      runRepo,
		machineRepo:  machineRepo,
		employeeRepo: employeeRepo,
		rdb:          rdb,
	}
}

// CreateQualityCheckRequest 创建质检记录请求
type CreateQualityCheckRequest struct {
	CheckID          string               `json:"checkId"`
	RunID            string               `json:"runId"`
	MachineID        string               `json:"machineId"`
	EmployeeID       string               `json:"employeeId"`
	CheckDate        *time.Time           `json:"checkDate"`
	CheckType        string               `json:"checkType"`
	Result           string               `json:"result"`
	Measurements     []entity.Measurement `json:"measurements"`
	Notes            string               `json:"notes"`
	DefectsFound     *int                 `json:"defectsFound"`
	CorrectiveAction string               `json:"correctiveAction"`
	NextCheckDate    *time.Time           `json:"nextCheckDate"`
}

// UpdateQualityCheckRequest 更新质检记录请求，只校验并写入携带的字段。
// 携带的外键字段会重新校验引用存在性。
type UpdateQualityCheckRequest struct {
	CheckID          *string               `json:"checkId"`
	RunID            *string               `json:"runId"`
	MachineID        *string               `json:"machineId"`
	EmployeeID       *string               `json:"employeeId"`
	CheckDate        *time.Time            `json:"checkDate"`
	CheckType        *string               `json:"checkType"`
	Result           *string               `json:"result"`
	Measurements     *[]entity.Measurement `json:"measurements"`
	Notes            *string               `json:"notes"`
	DefectsFound     *int                  `json:"defectsFound"`
	CorrectiveAction *string               `json:"correctiveAction"`
	NextCheckDate    *time.Time            `json:"nextCheckDate"`
}

func (r *UpdateQualityCheckRequest) isEmpty() bool {
	return r.CheckID == nil && r.RunID == nil && r.MachineID == nil &&
		r.EmployeeID == nil && r.CheckDate == nil && r.CheckType == nil &&
		r.Result == nil && r.Measurements == nil && r.Notes == nil &&
		r.DefectsFound == nil && r.CorrectiveAction == nil && r.NextCheckDate == nil
}

// ListFilters 列表过滤条件，可叠加
type ListFilters struct {
	Result    string
	CheckType string
	StartDate *time.Time
	EndDate   *time.Time
}

func (s *QualityCheckService) resolveRun(ctx context.Context, value string) error {
	if _, err := s.runRepo.FindByID(ctx, value); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.DanglingReference("runId", value)
		}
		return err
	}
	return nil
}

func (s *QualityCheckService) resolveMachine(ctx context.Context, value string) error {
	if _, err := s.machineRepo.FindByID(ctx, value); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.DanglingReference("machineId", value)
		}
		return err
	}
	return nil
}

func (s *QualityCheckService) resolveEmployee(ctx context.Context, value string) error {
	if _, err := s.employeeRepo.FindByID(ctx, value); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.DanglingReference("employeeId", value)
		}
		return err
	}
	return nil
}

// Create 创建质检记录
func (s *QualityCheckService) Create(ctx context.Context, req *CreateQualityCheckRequest) (*entity.QualityCheck, error) {
	var missing validation.Missing
	missing.Check("checkId", req.CheckID == "")
	missing.Check("runId", req.RunID == "")
	missing.Check("machineId", req.MachineID == "")
	missing.Check("employeeId", req.EmployeeID == "")
	missing.Check("checkDate", req.CheckDate == nil)
	missing.Check("checkType", req.CheckType == "")
	missing.Check("result", req.Result == "")
	if err := missing.Err(); err != nil {
		return nil, err
	}

	if err := validation.Enum("checkType", req.CheckType, entity.CheckTypes); err != nil {
		return nil, err
	}
	if err := validation.Enum("result", req.Result, entity.CheckResults); err != nil {
		return nil, err
	}
	if err := validation.MaxLength("notes", req.Notes, entity.NotesMaxLength); err != nil {
		return nil, err
	}
	if err := validation.MaxLength("correctiveAction", req.CorrectiveAction, entity.CorrectiveActionMaxLength); err != nil {
		return nil, err
	}
	if req.DefectsFound != nil {
		if err := validation.NonNegativeInt("defectsFound", *req.DefectsFound); err != nil {
			return nil, err
		}
	}

	// 三个外键都必须可解析
	if err := s.resolveRun(ctx, req.RunID); err != nil {
		return nil, err
	}
	if err := s.resolveMachine(ctx, req.MachineID); err != nil {
		return nil, err
	}
	if err := s.resolveEmployee(ctx, req.EmployeeID); err != nil {
		return nil, err
	}

	now := time.Now()
	check := &entity.QualityCheck{
		ID:               uuid.New().String(),
		CheckID:          req.CheckID,
		RunID:            req.RunID,
		MachineID:        req.MachineID,
		EmployeeID:       req.EmployeeID,
		CheckDate:        *req.CheckDate,
		CheckType:        req.CheckType,
		Result:           req.Result,
		Measurements:     entity.Measurements(req.Measurements),
		Notes:            req.Notes,
		CorrectiveAction: req.CorrectiveAction,
		NextCheckDate:    req.NextCheckDate,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if req.DefectsFound != nil {
		check.DefectsFound = *req.DefectsFound
	}

	if err := s.repo.Create(ctx, check); err != nil {
		return nil, translate(err, "quality check")
	}
	s.clearCache(ctx)
	return s.Get(ctx, check.ID)
}

// Get 获取质检记录详情
func (s *QualityCheckService) Get(ctx context.Context, id string) (*entity.QualityCheck, error) {
	if err := validation.DocumentID(id); err != nil {
		return nil, err
	}
	check, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "quality check")
	}
	return check, nil
}

// List 获取质检记录列表
func (s *QualityCheckService) List(ctx context.Context, filters ListFilters) ([]entity.QualityCheck, error) {
	if filters.Result != "" {
		if err := validation.Enum("result", filters.Result, entity.CheckResults); err != nil {
			return nil, err
		}
	}
	if filters.CheckType != "" {
		if err := validation.Enum("checkType", filters.CheckType, entity.CheckTypes); err != nil {
			return nil, err
		}
	}

	m := map[string]interface{}{
		"result":     filters.Result,
		"check_type": filters.CheckType,
	}
	if filters.StartDate != nil {
		m["start_date"] = *filters.StartDate
	}
	if filters.EndDate != nil {
		m["end_date"] = *filters.EndDate
	}
	return s.repo.List(ctx, m)
}

// ListByResult 按检验结论获取质检记录
func (s *QualityCheckService) ListByResult(ctx context.Context, result string) ([]entity.QualityCheck, error) {
	if err := validation.Enum("result", result, entity.CheckResults); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, map[string]interface{}{"result": result})
}

// Recent 最近N条质检记录，读穿缓存
func (s *QualityCheckService) Recent(ctx context.Context, limit int) ([]entity.QualityCheck, error) {
	key := fmt.Sprintf("%s%d", recentCacheKeyPrefix, limit)

	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var cached []entity.QualityCheck
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		}
	}

	checks, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(checks); err == nil {
			s.rdb.Set(ctx, key, raw, recentCacheTTL)
		}
	}
	return checks, nil
}

// Update 局部更新质检记录
func (s *QualityCheckService) Update(ctx context.Context, id string, req *UpdateQualityCheckRequest) (*entity.QualityCheck, error) {
	if err := validation.DocumentID(id); err != nil {
		return nil, err
	}
	if req.isEmpty() {
		return nil, apperr.EmptyPayload()
	}

	fields := map[string]interface{}{}
	if req.CheckID != nil {
		fields["check_id"] = *req.CheckID
	}
	if req.RunID != nil {
		if err := s.resolveRun(ctx, *req.RunID); err != nil {
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
	if req.EmployeeID != nil {
		if err := s.resolveEmployee(ctx, *req.EmployeeID); err != nil {
			return nil, err
		}
		fields["employee_id"] = *req.EmployeeID
	}
	if req.CheckDate != nil {
		fields["check_date"] = *req.CheckDate
	}
	if req.CheckType != nil {
		if err := validation.Enum("checkType", *req.CheckType, entity.CheckTypes); err != nil {
			return nil, err
		}
		fields["check_type"] = *req.CheckType
	}
	if req.Result != nil {
		if err := validation.Enum("result", *req.Result, entity.CheckResults); err != nil {
			return nil, err
		}
		fields["result"] = *req.Result
	}
	if req.Measurements != nil {
		fields["measurements"] = entity.Measurements(*req.Measurements)
	}
	if req.Notes != nil {
		if err := validation.MaxLength("notes", *req.Notes, entity.NotesMaxLength); err != nil {
			return nil, err
		}
		fields["notes"] = *req.Notes
	}
	if req.DefectsFound != nil {
		if err := validation.NonNegativeInt("defectsFound", *req.DefectsFound); err != nil {
			return nil, err
		}
		fields["defects_found"] = *req.DefectsFound
	}
	if req.CorrectiveAction != nil {
		if err := validation.MaxLength("correctiveAction", *req.CorrectiveAction, entity.CorrectiveActionMaxLength); err != nil {
			return nil, err
		}
		fields["corrective_action"] = *req.CorrectiveAction
	}
	if req.NextCheckDate != nil {
		fields["next_check_date"] = *req.NextCheckDate
	}
	fields["updated_at"] = time.Now()

	check, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, translate(err, "quality check")
	}
	s.clearCache(ctx)
	return check, nil
}

// Delete 删除质检记录，返回被删除的文档
func (s *QualityCheckService) Delete(ctx context.Context, id string) (*entity.QualityCheck, error) {
	if err := validation.DocumentID(id); err != nil {
		return nil, err
	}
	check, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, translate(err, "quality check")
	}
	s.clearCache(ctx)
	return check, nil
}

// Export 导出质检记录为xlsx
func (s *QualityCheckService) Export(ctx context.Context, filters ListFilters) (*excelize.File, error) {
	checks, err := s.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const sheet = "QualityChecks"
	f.SetSheetName("Sheet1", sheet)

	headers := []interface{}{
		"Check ID", "Check Date", "Type", "Result",
		"Run", "Machine", "Inspector", "Defects", "Notes", "Corrective Action",
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, err
	}

	for i, check := range checks {
		runID := check.RunID
		if check.Run != nil {
			runID = check.Run.RunID
		}
		machineID := check.MachineID
		if check.Machine != nil {
			machineID = check.Machine.MachineID
		}
		inspector := check.EmployeeID
		if check.Employee != nil {
			inspector = check.Employee.FirstName + " " + check.Employee.LastName
		}

		row := []interface{}{
			check.CheckID,
			check.CheckDate.Format(time.RFC3339),
			check.CheckType,
			check.Result,
			runID,
			machineID,
			inspector,
			check.DefectsFound,
			check.Notes,
			check.CorrectiveAction,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// clearCache 写操作后清除最近记录缓存
func (s *QualityCheckService) clearCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	iter := s.rdb.Scan(ctx, 0, recentCacheKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		s.rdb.Del(ctx, iter.Val())
	}
}
