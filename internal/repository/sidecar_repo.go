package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"carspec_v1_202601/internal/model"
)

// ==================== 接口定义 ====================

// SidecarRepository 版本自由文档仓储接口
type SidecarRepository interface {
	// GetByEdition 没有文档时返回 nil, nil (大多数版本没有 sidecar)
	GetByEdition(ctx context.Context, editionID int64) (*model.SidecarDocument, error)
	Save(ctx context.Context, doc *model.SidecarDocument) error

	// 事务
	WithTx(tx *gorm.DB) SidecarRepository
	Transaction(ctx context.Context, fn func(txRepo SidecarRepository) error) error
}

// ==================== 仓储实现 ====================

type sidecarRepo struct {
	db *gorm.DB
}

// NewSidecarRepository 创建自由文档仓储
func NewSidecarRepository(db *gorm.DB) SidecarRepository {
	return &sidecarRepo{db: db}
}

func (r *sidecarRepo) GetByEdition(ctx context.Context, editionID int64) (*model.SidecarDocument, error) {
	var doc model.SidecarDocument
	err := r.db.WithContext(ctx).
		Where("edition_id = ?", editionID).
		First(&doc).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *sidecarRepo) Save(ctx context.Context, doc *model.SidecarDocument) error {
	// 已加载的文档直接更新；新文档插入，并发首写靠 edition_id 冲突兜底
	if doc.ID != 0 {
		return r.db.WithContext(ctx).
			Model(doc).
			Updates(map[string]interface{}{"values": doc.Values, "texts": doc.Texts}).Error
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "edition_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"values", "texts", "updated_at"}),
	}).Create(doc).Error
}

func (r *sidecarRepo) WithTx(tx *gorm.DB) SidecarRepository {
	return &sidecarRepo{db: tx}
}

func (r *sidecarRepo) Transaction(ctx context.Context, fn func(txRepo SidecarRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
