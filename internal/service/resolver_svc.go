package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"carspec_v1_202601/internal/model"
	"carspec_v1_202601/internal/repository"
)

// ==================== 有效值解析 ====================

// SourceSidecar 值来自 sidecar 覆盖层时的来源标记 (接口层输出 null)
const SourceSidecar model.ValueLevel = "sidecar"

// EffectiveValue 一个参数在某版本上的解析结果
type EffectiveValue struct {
	Def         *model.AttributeDefinition
	Value       *AttrValue       // nil = 缺失
	SourceLevel model.ValueLevel // 提供值的层级；缺失时为空
	Synthesized bool             // 定义是否由 sidecar 合成 (目录中不存在的 code)
}

// ResolverService 三级继承的有效值解析器
//
// 结果本身不做任何缓存 (写入要求立即可见)，只有目录的标识查找走缓存。
type ResolverService struct {
	vehicleRepo repository.VehicleRepository
	valueRepo   repository.ValueRepository
	catalog     *CatalogService
}

// NewResolverService 创建有效值解析器
func NewResolverService(
	vehicleRepo repository.VehicleRepository,
	valueRepo repository.ValueRepository,
	catalog *CatalogService,
) *ResolverService {
	return &ResolverService{
		vehicleRepo: vehicleRepo,
		valueRepo:   valueRepo,
		catalog:     catalog,
	}
}

// ResolveEffective 解析一个版本的全部目录参数
//
// 回退顺序: edition -> model_year -> model，第一个非缺失值胜出并带上来源层级。
// 注意经过强制转换后仍为缺失的记录 (int 0、空文本等) 会继续向上回退——
// 0 哨兵的含义就是 "未填写"。
func (s *ResolverService) ResolveEffective(ctx context.Context, editionID int64, lang string) ([]EffectiveValue, error) {
	edition, err := s.loadEdition(ctx, editionID)
	if err != nil {
		return nil, err
	}

	byLevel, err := s.loadValueIndex(ctx, edition)
	if err != nil {
		return nil, err
	}
	textVariants, err := s.loadTextVariants(ctx, editionID, lang)
	if err != nil {
		return nil, err
	}

	defs, err := s.catalog.ListDefinitions(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]EffectiveValue, 0, len(defs))
	for i := range defs {
		def := &defs[i]
		ev := EffectiveValue{Def: def}
		for _, level := range model.LevelChain {
			rec, ok := byLevel[level][def.ID]
			if !ok {
				continue
			}
			val, err := s.coerce(ctx, def, rec, lang)
			if err != nil {
				return nil, err
			}
			if val == nil {
				continue
			}
			ev.Value = val
			ev.SourceLevel = level
			break
		}
		// text 参数的本地化变体挂在版本上，命中时替换解析出的文本
		if ev.Value != nil && ev.Value.Kind == KindText {
			if variant, ok := textVariants[def.ID]; ok {
				if tv := textValue(variant); tv != nil {
					ev.Value = tv
				}
			}
		}
		results = append(results, ev)
	}
	return results, nil
}

// ResolveEffectiveOne 解析单个参数；缺失时返回 Value=nil 而不是错误
func (s *ResolverService) ResolveEffectiveOne(ctx context.Context, editionID int64, code, lang string) (*EffectiveValue, error) {
	def, err := s.catalog.ResolveAttribute(ctx, code)
	if err != nil {
		return nil, err
	}
	edition, err := s.loadEdition(ctx, editionID)
	if err != nil {
		return nil, err
	}

	ev := &EffectiveValue{Def: def}
	for _, ref := range levelRefs(edition) {
		rec, err := s.valueRepo.GetByKey(ctx, ref.Level, ref.ItemID, def.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		val, err := s.coerce(ctx, def, rec, lang)
		if err != nil {
			return nil, err
		}
		if val == nil {
			continue
		}
		ev.Value = val
		ev.SourceLevel = ref.Level
		break
	}
	// 与全量解析同一套本地化变体覆盖，两个入口不允许分叉
	if ev.Value != nil && ev.Value.Kind == KindText {
		variants, err := s.loadTextVariants(ctx, editionID, lang)
		if err != nil {
			return nil, err
		}
		if variant, ok := variants[def.ID]; ok {
			if tv := textValue(variant); tv != nil {
				ev.Value = tv
			}
		}
	}
	return ev, nil
}

// ==================== 内部辅助 ====================

func (s *ResolverService) loadEdition(ctx context.Context, editionID int64) (*model.Edition, error) {
	edition, err := s.vehicleRepo.GetEdition(ctx, editionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewNotFound("版本", "%d", editionID)
	}
	if err != nil {
		return nil, err
	}
	if edition.ModelYear == nil || edition.ModelYear.Model == nil {
		return nil, NewNotFound("版本层级链", "edition=%d", editionID)
	}
	return edition, nil
}

func levelRefs(edition *model.Edition) []repository.LevelRef {
	return []repository.LevelRef{
		{Level: model.LevelEdition, ItemID: edition.ID},
		{Level: model.LevelModelYear, ItemID: edition.ModelYearID},
		{Level: model.LevelModel, ItemID: edition.ModelYear.ModelID},
	}
}

// loadValueIndex 一次取回三级的全部记录并按 (层级, 参数) 建索引
func (s *ResolverService) loadValueIndex(ctx context.Context, edition *model.Edition) (map[model.ValueLevel]map[int64]*model.AttributeValue, error) {
	records, err := s.valueRepo.ListByLevels(ctx, levelRefs(edition))
	if err != nil {
		return nil, err
	}
	byLevel := map[model.ValueLevel]map[int64]*model.AttributeValue{
		model.LevelEdition:   {},
		model.LevelModelYear: {},
		model.LevelModel:     {},
	}
	for i := range records {
		rec := &records[i]
		if m, ok := byLevel[rec.Level]; ok {
			m[rec.AttributeID] = rec
		}
	}
	return byLevel, nil
}

func (s *ResolverService) loadTextVariants(ctx context.Context, editionID int64, lang string) (map[int64]string, error) {
	variants := map[int64]string{}
	if lang == "" || lang == model.LangDefault {
		return variants, nil
	}
	texts, err := s.valueRepo.ListTexts(ctx, editionID)
	if err != nil {
		return nil, err
	}
	for _, t := range texts {
		if t.Language == lang && strings.TrimSpace(t.Text) != "" {
			variants[t.AttributeID] = t.Text
		}
	}
	return variants, nil
}

// coerce 把 EAV 行转成带类型的值，规则全局只有这一份
func (s *ResolverService) coerce(ctx context.Context, def *model.AttributeDefinition, rec *model.AttributeValue, lang string) (*AttrValue, error) {
	switch def.DataType {
	case model.DataTypeInt:
		return intValue(rec.IntVal), nil
	case model.DataTypeDecimal:
		return decimalValue(rec.DecimalVal), nil
	case model.DataTypeBool:
		return boolValue(rec.BoolVal), nil
	case model.DataTypeText:
		return textValue(rec.TextVal), nil
	case model.DataTypeEnum:
		if rec.EnumID == 0 {
			return nil, nil
		}
		entry, err := s.catalog.EnumByID(ctx, rec.EnumID)
		if err != nil {
			return nil, err
		}
		return enumValue(entry, lang), nil
	}
	return nil, NewValidation("参数 %s 的 data_type 未知: %s", def.Code, def.DataType)
}
