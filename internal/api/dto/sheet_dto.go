package dto

import "time"

// ==================== 请求 DTO ====================

// CreateSheetReq 新建对比单
type CreateSheetReq struct {
	Name       string  `json:"name" binding:"required"`
	EditionIDs []int64 `json:"edition_ids"`
}

// ==================== 响应 DTO ====================

// SheetResp 对比单元数据
type SheetResp struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	EditionIDs  []int64    `json:"edition_ids"`
	Frozen      bool       `json:"frozen"`
	FrozenAt    *time.Time `json:"frozen_at"`
	SnapshotRev string     `json:"snapshot_rev"`
}
