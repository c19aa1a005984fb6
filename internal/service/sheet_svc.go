package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"carspec_v1_202601/internal/model"
	"carspec_v1_202601/internal/repository"
)

// ==================== 冻结管理 ====================

// SheetService 对比单的快照冻结/解冻/读取
//
// 状态机: Live (每次读取实时计算) -> Frozen (快照权威) -> 解冻回 Live。
// 冻结期间底层参数随便改，读取结果不变；只有解冻再冻结才会吸收新数据。
type SheetService struct {
	sheetRepo repository.SheetRepository
	compare   *CompareService
}

// NewSheetService 创建冻结管理服务
func NewSheetService(sheetRepo repository.SheetRepository, compare *CompareService) *SheetService {
	return &SheetService{
		sheetRepo: sheetRepo,
		compare:   compare,
	}
}

// CreateSheet 新建对比单 (初始为 Live 状态)
func (s *SheetService) CreateSheet(ctx context.Context, name string, editionIDs []int64) (*model.CompareSheet, error) {
	if name == "" {
		return nil, NewValidation("对比单名称不能为空")
	}
	sheet := &model.CompareSheet{
		Name:       name,
		EditionIDs: editionIDs,
	}
	if err := s.sheetRepo.Create(ctx, sheet); err != nil {
		return nil, err
	}
	return sheet, nil
}

// GetSheet 读取对比单元数据
func (s *SheetService) GetSheet(ctx context.Context, id int64) (*model.CompareSheet, error) {
	sheet, err := s.sheetRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewNotFound("对比单", "%d", id)
	}
	if err != nil {
		return nil, err
	}
	return sheet, nil
}

// Lock 冻结: 按当前成员实时计算一次，连同冻结标记在同一事务里落库
//
// 事务内先对对比单记录加行锁，并发的 Lock/Unlock 只能排队，不会交错。
func (s *SheetService) Lock(ctx context.Context, id int64) error {
	return s.sheetRepo.Transaction(ctx, func(txRepo repository.SheetRepository) error {
		sheet, err := txRepo.GetByIDForUpdate(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFound("对比单", "%d", id)
		}
		if err != nil {
			return err
		}

		result, err := s.liveResult(ctx, sheet)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(result)
		if err != nil {
			return err
		}

		now := time.Now()
		return txRepo.UpdateFields(ctx, sheet.ID, map[string]interface{}{
			"frozen":       true,
			"snapshot":     raw,
			"frozen_at":    &now,
			"snapshot_rev": uuid.NewString(),
		})
	})
}

// Unlock 解冻: 清掉冻结标记并丢弃快照，回到实时计算
func (s *SheetService) Unlock(ctx context.Context, id int64) error {
	return s.sheetRepo.Transaction(ctx, func(txRepo repository.SheetRepository) error {
		sheet, err := txRepo.GetByIDForUpdate(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFound("对比单", "%d", id)
		}
		if err != nil {
			return err
		}
		return txRepo.UpdateFields(ctx, sheet.ID, map[string]interface{}{
			"frozen":       false,
			"snapshot":     nil,
			"frozen_at":    nil,
			"snapshot_rev": "",
		})
	})
}

// Resolve 读取: 冻结时返回快照；快照损坏记 warning 并退回实时计算；
// 未冻结时实时计算。统一走这一个策略，不再按端点分叉。
func (s *SheetService) Resolve(ctx context.Context, id int64) (*CompareResult, error) {
	sheet, err := s.GetSheet(ctx, id)
	if err != nil {
		return nil, err
	}

	if sheet.Frozen && len(sheet.Snapshot) > 0 {
		var result CompareResult
		if err := json.Unmarshal(sheet.Snapshot, &result); err == nil {
			return &result, nil
		} else {
			corrupt := &CorruptStateError{Msg: "对比单快照反序列化失败", Err: err}
			// 不向用户抛 500，退回实时计算 (结果正确，只是暂时不保证冻结语义)
			log.Printf("[Sheet] 警告: %v (sheet=%d rev=%s)，退回实时计算", corrupt, sheet.ID, sheet.SnapshotRev)
		}
	}

	return s.liveResult(ctx, sheet)
}

// liveResult 按对比单当前成员实时计算
func (s *SheetService) liveResult(ctx context.Context, sheet *model.CompareSheet) (*CompareResult, error) {
	return s.compare.Compare(ctx, CompareInput{
		EditionIDs: sheet.EditionIDs,
		Language:   model.LangDefault,
		// 宣传册上要体现运营覆盖值，冻结/实时读取统一声明 sidecar 覆盖
		Policy: SidecarWins,
	})
}
