package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/lib/pq"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"carspec_v1_202601/internal/model"
	"carspec_v1_202601/internal/repository"
)

// ==================== 测试辅助函数 ====================

var svcTestDBSeq int64

func setupServiceTestDB(t *testing.T) *gorm.DB {
	// 每个测试一个命名内存库: 裸 ":memory:" 下连接池的第二个连接
	// (比如 SheetService.Lock 里的事务) 会看到一个没建过表的空库。
	// 不能把连接池压到 1: Lock 的实时计算在事务占用连接期间还要从池里读
	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", atomic.AddInt64(&svcTestDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取底层 SQL DB 失败: %v", err)
	}
	// 至少留一个常驻连接，命名内存库随最后一个连接关闭而消失
	sqlDB.SetMaxIdleConns(2)

	err = db.AutoMigrate(
		&model.VehicleModel{}, &model.ModelYear{}, &model.Edition{},
		&model.AttributeDefinition{}, &model.AttributeEnum{},
		&model.AttributeValue{}, &model.AttributeText{},
		&model.SidecarDocument{}, &model.CompareSheet{},
	)
	if err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	return db
}

// fixture 一套完整的服务 + 种子目录 + 一条车辆层级链
type fixture struct {
	db *gorm.DB

	attrRepo    repository.AttributeRepository
	valueRepo   repository.ValueRepository
	vehicleRepo repository.VehicleRepository
	sidecarRepo repository.SidecarRepository
	sheetRepo   repository.SheetRepository

	catalog  *CatalogService
	resolver *ResolverService
	sidecar  *SidecarService
	compare  *CompareService
	sheets   *SheetService

	// 种子目录 (code -> 定义)
	defs map[string]*model.AttributeDefinition
	// 枚举条目 (code -> 条目)
	enums map[string]*model.AttributeEnum

	// 车辆链: Skoda Octavia -> 2024 -> A "Ambition" / B "Style"
	octavia  *model.VehicleModel
	year2024 *model.ModelYear
	editionA *model.Edition
	editionB *model.Edition
}

func newFixture(t *testing.T) *fixture {
	db := setupServiceTestDB(t)
	f := &fixture{
		db:          db,
		attrRepo:    repository.NewAttributeRepository(db),
		valueRepo:   repository.NewValueRepository(db),
		vehicleRepo: repository.NewVehicleRepository(db),
		sidecarRepo: repository.NewSidecarRepository(db),
		sheetRepo:   repository.NewSheetRepository(db),
		defs:        map[string]*model.AttributeDefinition{},
		enums:       map[string]*model.AttributeEnum{},
	}

	f.catalog = NewCatalogService(f.attrRepo)
	f.resolver = NewResolverService(f.vehicleRepo, f.valueRepo, f.catalog)
	f.sidecar = NewSidecarService(db, f.vehicleRepo, f.valueRepo, f.sidecarRepo, f.catalog)
	f.compare = NewCompareService(f.vehicleRepo, f.sidecarRepo, f.resolver, f.sidecar)
	f.sheets = NewSheetService(f.sheetRepo, f.compare)

	f.seedCatalog(t)
	f.seedVehicles(t)
	return f
}

func (f *fixture) seedCatalog(t *testing.T) {
	ctx := context.Background()

	defs := []*model.AttributeDefinition{
		{Code: "power", Name: "Výkon", NameAlt: "Power", Unit: "kW",
			DataType: model.DataTypeDecimal, Category: "engine", DisplayGroup: "03 Motor", DisplayOrder: 10},
		{Code: "drive", Name: "Pohon", NameAlt: "Drive",
			DataType: model.DataTypeEnum, Category: "engine", DisplayGroup: "03 Motor", DisplayOrder: 20},
		{Code: "abs", Name: "ABS", NameAlt: "ABS",
			DataType: model.DataTypeBool, Category: "chassis", DisplayGroup: "04 Podvozek", DisplayOrder: 5},
		{Code: "seats", Name: "Počet míst", NameAlt: "Seats",
			DataType: model.DataTypeInt, Category: "interior", DisplayGroup: "06 Interiér", DisplayOrder: 20},
		{Code: "note", Name: "Poznámka", NameAlt: "Note",
			DataType: model.DataTypeText, Category: "other", DisplayGroup: "09 Ostatní", DisplayOrder: model.DisplayOrderUnset},
	}
	for _, d := range defs {
		if d.DisplayOrder == 0 {
			d.DisplayOrder = model.DisplayOrderUnset
		}
		if err := f.attrRepo.Create(ctx, d); err != nil {
			t.Fatalf("种子参数 %s 创建失败: %v", d.Code, err)
		}
		f.defs[d.Code] = d
	}

	entries := []*model.AttributeEnum{
		{AttributeID: f.defs["drive"].ID, Code: "fwd", Label: "Přední", LabelAlt: "Front-wheel"},
		{AttributeID: f.defs["drive"].ID, Code: "awd", Label: "Náhon 4x4", LabelAlt: "All-wheel",
			Aliases: pq.StringArray{"4x4", "quattro"}},
	}
	for _, e := range entries {
		if err := f.attrRepo.CreateEnum(ctx, e); err != nil {
			t.Fatalf("种子枚举 %s 创建失败: %v", e.Code, err)
		}
		f.enums[e.Code] = e
	}
}

func (f *fixture) seedVehicles(t *testing.T) {
	ctx := context.Background()

	f.octavia = &model.VehicleModel{Make: "Skoda", Name: "Octavia"}
	if err := f.vehicleRepo.CreateModel(ctx, f.octavia); err != nil {
		t.Fatalf("车系创建失败: %v", err)
	}
	f.year2024 = &model.ModelYear{ModelID: f.octavia.ID, Year: 2024}
	if err := f.vehicleRepo.CreateModelYear(ctx, f.year2024); err != nil {
		t.Fatalf("年款创建失败: %v", err)
	}
	f.editionA = &model.Edition{ModelYearID: f.year2024.ID, Name: "Ambition"}
	f.editionB = &model.Edition{ModelYearID: f.year2024.ID, Name: "Style"}
	for _, e := range []*model.Edition{f.editionA, f.editionB} {
		if err := f.vehicleRepo.CreateEdition(ctx, e); err != nil {
			t.Fatalf("版本创建失败: %v", err)
		}
	}
}

// ==================== 取值写入辅助 ====================

func (f *fixture) setDecimal(t *testing.T, level model.ValueLevel, itemID int64, code string, v float64) {
	f.upsertValue(t, model.AttributeValue{Level: level, ItemID: itemID, AttributeID: f.defs[code].ID, DecimalVal: v})
}

func (f *fixture) setInt(t *testing.T, level model.ValueLevel, itemID int64, code string, v int64) {
	f.upsertValue(t, model.AttributeValue{Level: level, ItemID: itemID, AttributeID: f.defs[code].ID, IntVal: v})
}

func (f *fixture) setBool(t *testing.T, level model.ValueLevel, itemID int64, code string, v bool) {
	f.upsertValue(t, model.AttributeValue{Level: level, ItemID: itemID, AttributeID: f.defs[code].ID, BoolVal: v})
}

func (f *fixture) setText(t *testing.T, level model.ValueLevel, itemID int64, code string, v string) {
	f.upsertValue(t, model.AttributeValue{Level: level, ItemID: itemID, AttributeID: f.defs[code].ID, TextVal: v})
}

func (f *fixture) setEnum(t *testing.T, level model.ValueLevel, itemID int64, code string, enumCode string) {
	f.upsertValue(t, model.AttributeValue{Level: level, ItemID: itemID, AttributeID: f.defs[code].ID, EnumID: f.enums[enumCode].ID})
}

func (f *fixture) upsertValue(t *testing.T, v model.AttributeValue) {
	if err := f.valueRepo.BatchUpsert(context.Background(), []model.AttributeValue{v}); err != nil {
		t.Fatalf("取值写入失败: %v", err)
	}
}

func (f *fixture) deleteValue(t *testing.T, level model.ValueLevel, itemID int64, code string) {
	if err := f.valueRepo.DeleteByKey(context.Background(), level, itemID, f.defs[code].ID); err != nil {
		t.Fatalf("取值删除失败: %v", err)
	}
}

// findRow 按 code 在对比结果里找行，找不到返回 nil
func findRow(result *CompareResult, code string) *CompareRow {
	for i := range result.Rows {
		if result.Rows[i].Code == code {
			return &result.Rows[i]
		}
	}
	return nil
}

// findEffective 按 code 在有效值列表里找
func findEffective(values []EffectiveValue, code string) *EffectiveValue {
	for i := range values {
		if values[i].Def.Code == code {
			return &values[i]
		}
	}
	return nil
}
