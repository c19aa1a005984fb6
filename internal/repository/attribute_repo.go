package repository

import (
	"context"

	"gorm.io/gorm"

	"carspec_v1_202601/internal/model"
)

// ==================== 接口定义 ====================

// AttributeRepository 参数目录仓储接口
// 单条查找不走仓储: 目录整体很小，缓存全量加载后在内存里索引
type AttributeRepository interface {
	ListAll(ctx context.Context) ([]model.AttributeDefinition, error)
	ListEnums(ctx context.Context) ([]model.AttributeEnum, error)

	// 管理路径用 (线上只读)
	Create(ctx context.Context, def *model.AttributeDefinition) error
	CreateEnum(ctx context.Context, entry *model.AttributeEnum) error
}

// ==================== 仓储实现 ====================

type attributeRepo struct {
	db *gorm.DB
}

// NewAttributeRepository 创建参数目录仓储
func NewAttributeRepository(db *gorm.DB) AttributeRepository {
	return &attributeRepo{db: db}
}

func (r *attributeRepo) ListAll(ctx context.Context) ([]model.AttributeDefinition, error) {
	var defs []model.AttributeDefinition
	err := r.db.WithContext(ctx).
		Order("display_group ASC, display_order ASC, code ASC").
		Find(&defs).Error
	return defs, err
}

func (r *attributeRepo) ListEnums(ctx context.Context) ([]model.AttributeEnum, error) {
	var entries []model.AttributeEnum
	err := r.db.WithContext(ctx).
		Order("attribute_id ASC, code ASC").
		Find(&entries).Error
	return entries, err
}

func (r *attributeRepo) Create(ctx context.Context, def *model.AttributeDefinition) error {
	return r.db.WithContext(ctx).Create(def).Error
}

func (r *attributeRepo) CreateEnum(ctx context.Context, entry *model.AttributeEnum) error {
	return r.db.WithContext(ctx).Create(entry).Error
}
