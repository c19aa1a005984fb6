package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"carspec_v1_202601/internal/model"
)

// ==================== 接口定义 ====================

// LevelRef 一个 (层级, 条目) 取值来源
type LevelRef struct {
	Level  model.ValueLevel
	ItemID int64
}

// ValueRepository EAV 取值仓储接口
type ValueRepository interface {
	// ListByLevels 一次取回解析链上所有层级的记录，避免逐参数查询
	ListByLevels(ctx context.Context, refs []LevelRef) ([]model.AttributeValue, error)
	GetByKey(ctx context.Context, level model.ValueLevel, itemID, attributeID int64) (*model.AttributeValue, error)
	BatchUpsert(ctx context.Context, values []model.AttributeValue) error
	DeleteByKey(ctx context.Context, level model.ValueLevel, itemID, attributeID int64) error

	// 本地化文本变体 (只挂在 edition 上)
	ListTexts(ctx context.Context, editionID int64) ([]model.AttributeText, error)
	BatchUpsertTexts(ctx context.Context, texts []model.AttributeText) error

	// 事务
	WithTx(tx *gorm.DB) ValueRepository
	Transaction(ctx context.Context, fn func(txRepo ValueRepository) error) error
}

// ==================== 仓储实现 ====================

type valueRepo struct {
	db *gorm.DB
}

// NewValueRepository 创建 EAV 取值仓储
func NewValueRepository(db *gorm.DB) ValueRepository {
	return &valueRepo{db: db}
}

func (r *valueRepo) ListByLevels(ctx context.Context, refs []LevelRef) ([]model.AttributeValue, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	// (level, item_id) 成对匹配
	cond := r.db.Where("level = ? AND item_id = ?", refs[0].Level, refs[0].ItemID)
	for _, ref := range refs[1:] {
		cond = cond.Or("level = ? AND item_id = ?", ref.Level, ref.ItemID)
	}
	var values []model.AttributeValue
	err := r.db.WithContext(ctx).
		Model(&model.AttributeValue{}).
		Where(cond).
		Find(&values).Error
	return values, err
}

func (r *valueRepo) GetByKey(ctx context.Context, level model.ValueLevel, itemID, attributeID int64) (*model.AttributeValue, error) {
	var value model.AttributeValue
	err := r.db.WithContext(ctx).
		Where("level = ? AND item_id = ? AND attribute_id = ?", level, itemID, attributeID).
		First(&value).Error
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func (r *valueRepo) BatchUpsert(ctx context.Context, values []model.AttributeValue) error {
	if len(values) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "level"}, {Name: "item_id"}, {Name: "attribute_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"int_val", "decimal_val", "bool_val", "text_val", "enum_id", "updated_at",
		}),
	}).Create(&values).Error
}

func (r *valueRepo) DeleteByKey(ctx context.Context, level model.ValueLevel, itemID, attributeID int64) error {
	// 物理删除: 软删除的墓碑会占住唯一索引，挡住后续同 key 的 upsert
	return r.db.WithContext(ctx).
		Unscoped().
		Where("level = ? AND item_id = ? AND attribute_id = ?", level, itemID, attributeID).
		Delete(&model.AttributeValue{}).Error
}

func (r *valueRepo) ListTexts(ctx context.Context, editionID int64) ([]model.AttributeText, error) {
	var texts []model.AttributeText
	err := r.db.WithContext(ctx).
		Where("edition_id = ?", editionID).
		Find(&texts).Error
	return texts, err
}

func (r *valueRepo) BatchUpsertTexts(ctx context.Context, texts []model.AttributeText) error {
	if len(texts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "edition_id"}, {Name: "attribute_id"}, {Name: "language"}},
		DoUpdates: clause.AssignmentColumns([]string{"text", "updated_at"}),
	}).Create(&texts).Error
}

func (r *valueRepo) WithTx(tx *gorm.DB) ValueRepository {
	return &valueRepo{db: tx}
}

func (r *valueRepo) Transaction(ctx context.Context, fn func(txRepo ValueRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
