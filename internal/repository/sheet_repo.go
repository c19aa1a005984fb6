package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"carspec_v1_202601/internal/model"
)

// ==================== 接口定义 ====================

// SheetRepository 对比单仓储接口
type SheetRepository interface {
	GetByID(ctx context.Context, id int64) (*model.CompareSheet, error)
	// GetByIDForUpdate 行锁读取，锁定/解冻必须用它串行化
	GetByIDForUpdate(ctx context.Context, id int64) (*model.CompareSheet, error)
	Create(ctx context.Context, sheet *model.CompareSheet) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error

	// 事务
	WithTx(tx *gorm.DB) SheetRepository
	Transaction(ctx context.Context, fn func(txRepo SheetRepository) error) error
}

// ==================== 仓储实现 ====================

type sheetRepo struct {
	db *gorm.DB
}

// NewSheetRepository 创建对比单仓储
func NewSheetRepository(db *gorm.DB) SheetRepository {
	return &sheetRepo{db: db}
}

func (r *sheetRepo) GetByID(ctx context.Context, id int64) (*model.CompareSheet, error) {
	var sheet model.CompareSheet
	err := r.db.WithContext(ctx).First(&sheet, id).Error
	if err != nil {
		return nil, err
	}
	return &sheet, nil
}

func (r *sheetRepo) GetByIDForUpdate(ctx context.Context, id int64) (*model.CompareSheet, error) {
	tx := r.db.WithContext(ctx)
	// sqlite 没有 FOR UPDATE，靠它的单写事务串行化
	if tx.Dialector.Name() == "postgres" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var sheet model.CompareSheet
	if err := tx.First(&sheet, id).Error; err != nil {
		return nil, err
	}
	return &sheet, nil
}

func (r *sheetRepo) Create(ctx context.Context, sheet *model.CompareSheet) error {
	return r.db.WithContext(ctx).Create(sheet).Error
}

func (r *sheetRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.CompareSheet{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *sheetRepo) WithTx(tx *gorm.DB) SheetRepository {
	return &sheetRepo{db: tx}
}

func (r *sheetRepo) Transaction(ctx context.Context, fn func(txRepo SheetRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
