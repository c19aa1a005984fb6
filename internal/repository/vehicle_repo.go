package repository

import (
	"context"

	"gorm.io/gorm"

	"carspec_v1_202601/internal/model"
)

// ==================== 接口定义 ====================

// VehicleRepository 车系/年款/版本仓储接口
type VehicleRepository interface {
	GetEdition(ctx context.Context, id int64) (*model.Edition, error)
	// ListEditions 按 id 取回版本并预加载完整层级链
	ListEditions(ctx context.Context, ids []int64) ([]model.Edition, error)

	CreateModel(ctx context.Context, m *model.VehicleModel) error
	CreateModelYear(ctx context.Context, my *model.ModelYear) error
	CreateEdition(ctx context.Context, e *model.Edition) error
}

// ==================== 仓储实现 ====================

type vehicleRepo struct {
	db *gorm.DB
}

// NewVehicleRepository 创建车辆层级仓储
func NewVehicleRepository(db *gorm.DB) VehicleRepository {
	return &vehicleRepo{db: db}
}

func (r *vehicleRepo) GetEdition(ctx context.Context, id int64) (*model.Edition, error) {
	var edition model.Edition
	err := r.db.WithContext(ctx).
		Preload("ModelYear").
		Preload("ModelYear.Model").
		First(&edition, id).Error
	if err != nil {
		return nil, err
	}
	return &edition, nil
}

func (r *vehicleRepo) ListEditions(ctx context.Context, ids []int64) ([]model.Edition, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var editions []model.Edition
	err := r.db.WithContext(ctx).
		Preload("ModelYear").
		Preload("ModelYear.Model").
		Where("id IN ?", ids).
		Find(&editions).Error
	return editions, err
}

func (r *vehicleRepo) CreateModel(ctx context.Context, m *model.VehicleModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *vehicleRepo) CreateModelYear(ctx context.Context, my *model.ModelYear) error {
	return r.db.WithContext(ctx).Create(my).Error
}

func (r *vehicleRepo) CreateEdition(ctx context.Context, e *model.Edition) error {
	return r.db.WithContext(ctx).Create(e).Error
}
