package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// CompareSheet 保存的对比单 (宣传册/参数对比页的载体)
//
// Frozen = true 时 Snapshot 即为权威结果，底层参数怎么改都不影响读取；
// 解冻会丢弃快照，重新锁定时按当时的数据重算。
type CompareSheet struct {
	BaseModel
	Name       string        `gorm:"size:200;not null"`
	EditionIDs pq.Int64Array `gorm:"type:bigint[]"` // 当前成员版本

	Frozen      bool           `gorm:"default:false"`
	Snapshot    datatypes.JSON `gorm:"type:jsonb"` // 序列化的对比结果
	FrozenAt    *time.Time
	SnapshotRev string `gorm:"size:40"` // 每次锁定生成新的 uuid
}

func (CompareSheet) TableName() string {
	return "compare_sheets"
}
