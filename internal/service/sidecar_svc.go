package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"carspec_v1_202601/internal/model"
	"carspec_v1_202601/internal/repository"
)

// ==================== 合并方向 ====================

// MergePolicy 读取时 sidecar 与目录值的合并方向
//
// 两个历史调用点的行为不一致 (一个无条件覆盖、一个只补缺口)，
// 这里不替调用方做选择: 方向必须显式传入。
type MergePolicy string

const (
	// SidecarWins sidecar 有值就覆盖目录解析结果
	SidecarWins MergePolicy = "sidecar_wins"
	// CatalogWins sidecar 只填目录没有值的参数
	CatalogWins MergePolicy = "catalog_wins"
)

// ==================== 自由文档服务 ====================

// SidecarService 版本自由文档的读合并 + 写入
type SidecarService struct {
	db          *gorm.DB
	vehicleRepo repository.VehicleRepository
	valueRepo   repository.ValueRepository
	sidecarRepo repository.SidecarRepository
	catalog     *CatalogService
}

// NewSidecarService 创建自由文档服务
func NewSidecarService(
	db *gorm.DB,
	vehicleRepo repository.VehicleRepository,
	valueRepo repository.ValueRepository,
	sidecarRepo repository.SidecarRepository,
	catalog *CatalogService,
) *SidecarService {
	return &SidecarService{
		db:          db,
		vehicleRepo: vehicleRepo,
		valueRepo:   valueRepo,
		sidecarRepo: sidecarRepo,
		catalog:     catalog,
	}
}

// ==================== 写入 ====================

// SidecarValueInput 单个值写入
type SidecarValueInput struct {
	Code     string
	Value    interface{} // nil 在 merge-patch 模式下表示删除该 key
	DataType string      // 可选类型提示 (目录外参数用)
	Unit     string      // 可选单位提示
}

// SidecarTextInput 单个本地化文本写入
type SidecarTextInput struct {
	Code  string
	Texts map[string]string // lang -> text，空串表示删除
}

// ApplySidecarInput 一次写入请求
// Enums 走目录词表并落到 EAV 行；Values/Texts 落到 sidecar 文档。
type ApplySidecarInput struct {
	Enums   map[string]string
	Values  []SidecarValueInput
	Texts   []SidecarTextInput
	Replace bool // false = merge-patch (只动给出的 key)；true = 整个文档替换
}

// Apply 对一个版本做一次原子写入
//
// 枚举选择 + 值批量 + 文本批量在同一个事务里提交，
// 并发的对比读取只会看到写入前或写入后的完整状态。
func (s *SidecarService) Apply(ctx context.Context, editionID int64, in ApplySidecarInput) error {
	if _, err := s.vehicleRepo.GetEdition(ctx, editionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFound("版本", "%d", editionID)
		}
		return err
	}

	// 事务外先做词表解析和类型校验，失败时不留半截写入
	enumRows, err := s.resolveEnumSelections(ctx, editionID, in.Enums)
	if err != nil {
		return err
	}
	if err := s.validateValues(ctx, in.Values); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		valueRepo := s.valueRepo.WithTx(tx)
		sidecarRepo := s.sidecarRepo.WithTx(tx)

		if err := valueRepo.BatchUpsert(ctx, enumRows); err != nil {
			return fmt.Errorf("枚举选择写入失败: %w", err)
		}

		doc, err := sidecarRepo.GetByEdition(ctx, editionID)
		if err != nil {
			return err
		}
		if doc == nil {
			doc = &model.SidecarDocument{EditionID: editionID}
		}

		if err := s.applyValues(ctx, doc, in.Values, in.Replace); err != nil {
			return err
		}
		if err := s.applyTexts(doc, in.Texts, in.Replace); err != nil {
			return err
		}

		return sidecarRepo.Save(ctx, doc)
	})
}

func (s *SidecarService) resolveEnumSelections(ctx context.Context, editionID int64, enums map[string]string) ([]model.AttributeValue, error) {
	if len(enums) == 0 {
		return nil, nil
	}
	codes := make([]string, 0, len(enums))
	for code := range enums {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	rows := make([]model.AttributeValue, 0, len(codes))
	for _, code := range codes {
		entry, err := s.catalog.ResolveEnumEntry(ctx, code, enums[code])
		if err != nil {
			return nil, err
		}
		rows = append(rows, model.AttributeValue{
			Level:       model.LevelEdition,
			ItemID:      editionID,
			AttributeID: entry.AttributeID,
			EnumID:      entry.ID,
		})
	}
	return rows, nil
}

// validateValues 已在目录里的参数必须符合声明类型；目录外参数只看提示
func (s *SidecarService) validateValues(ctx context.Context, values []SidecarValueInput) error {
	for _, v := range values {
		if v.Value == nil {
			continue // merge-patch 删除
		}
		def, err := s.catalog.ResolveAttribute(ctx, v.Code)
		if err != nil {
			var nf *NotFoundError
			if errors.As(err, &nf) {
				continue // 目录外参数，sidecar 本来就是给它们用的
			}
			return err
		}
		if def.DataType == model.DataTypeEnum {
			return NewValidation("枚举参数 %s 必须通过 enums 字段写入", v.Code)
		}
		if coerceSidecarValue(def.DataType, v.Value, model.LangDefault) == nil && !isZeroLike(def.DataType, v.Value) {
			return NewValidation("参数 %s 的值 %v 不符合类型 %s", v.Code, v.Value, def.DataType)
		}
	}
	return nil
}

func (s *SidecarService) applyValues(ctx context.Context, doc *model.SidecarDocument, values []SidecarValueInput, replace bool) error {
	var current model.SidecarValues
	var err error
	if replace {
		// 整个文档作废重建，包括任何遗留 key
		current = model.SidecarValues{}
	} else {
		current, err = doc.DecodeValues()
		if err != nil {
			return err
		}
	}

	for _, v := range values {
		if v.Value == nil {
			delete(current, v.Code)
			continue
		}
		entry := model.SidecarEntry{Value: v.Value, DataType: v.DataType, Unit: v.Unit}
		if entry.DataType == "" {
			entry.DataType = s.hintFor(ctx, v)
		}
		current[v.Code] = entry
	}

	raw, err := json.Marshal(current)
	if err != nil {
		return err
	}
	doc.Values = raw
	return nil
}

// hintFor 写入端没给类型提示时: 先查目录，目录没有就按 JSON 类型推断
func (s *SidecarService) hintFor(ctx context.Context, v SidecarValueInput) string {
	if def, err := s.catalog.ResolveAttribute(ctx, v.Code); err == nil {
		return string(def.DataType)
	}
	switch v.Value.(type) {
	case bool:
		return string(model.DataTypeBool)
	case float64, int, int64:
		return string(model.DataTypeDecimal)
	default:
		return string(model.DataTypeText)
	}
}

func (s *SidecarService) applyTexts(doc *model.SidecarDocument, texts []SidecarTextInput, replace bool) error {
	var current model.SidecarTexts
	var err error
	if replace {
		current = model.SidecarTexts{}
	} else {
		current, err = doc.DecodeTexts()
		if err != nil {
			return err
		}
	}

	for _, t := range texts {
		for lang, text := range t.Texts {
			if current[lang] == nil {
				current[lang] = map[string]string{}
			}
			if strings.TrimSpace(text) == "" {
				delete(current[lang], t.Code)
				continue
			}
			current[lang][t.Code] = text
		}
	}

	raw, err := json.Marshal(current)
	if err != nil {
		return err
	}
	doc.Texts = raw
	return nil
}

// ==================== 读合并 ====================

// MergeSidecar 把 sidecar 覆盖层叠到目录解析结果上
//
// 目录外的 code 会合成一个定义 (code 生成显示名 + 类型/单位提示)，
// 永远不会让解析崩掉；来源层级标记为 sidecar，接口层输出 null。
func (s *SidecarService) MergeSidecar(effective []EffectiveValue, doc *model.SidecarDocument, lang string, policy MergePolicy) ([]EffectiveValue, error) {
	if doc == nil {
		return effective, nil
	}
	vals, err := doc.DecodeValues()
	if err != nil {
		return nil, err
	}
	texts, err := doc.DecodeTexts()
	if err != nil {
		return nil, err
	}

	byCode := make(map[string]int, len(effective))
	for i := range effective {
		byCode[effective[i].Def.Code] = i
	}

	// 遍历顺序要确定，合成行的相对顺序才稳定
	codes := make([]string, 0, len(vals))
	for code := range vals {
		codes = append(codes, code)
	}
	for _, langTexts := range texts {
		for code := range langTexts {
			if _, ok := vals[code]; !ok {
				codes = append(codes, code)
			}
		}
	}
	sort.Strings(codes)

	merged := effective
	seen := map[string]bool{}
	for _, code := range codes {
		if seen[code] {
			continue
		}
		seen[code] = true

		entry, hasVal := vals[code]
		idx, known := byCode[code]

		dataType := model.DataTypeText
		if known {
			dataType = merged[idx].Def.DataType
		} else if entry.DataType != "" {
			dataType = model.AttributeDataType(entry.DataType)
		}

		var val *AttrValue
		if hasVal {
			val = coerceSidecarValue(dataType, entry.Value, lang)
		}
		// 本地化文本覆盖 (请求语言命中时优先于 value 里的文本)
		if dataType == model.DataTypeText {
			if t, ok := texts[lang][code]; ok {
				if tv := textValue(t); tv != nil {
					val = tv
				}
			} else if t, ok := texts[model.LangDefault][code]; ok && val == nil {
				val = textValue(t)
			}
		}
		if val == nil {
			continue
		}

		if known {
			switch policy {
			case SidecarWins:
				merged[idx].Value = val
				merged[idx].SourceLevel = SourceSidecar
			case CatalogWins:
				if merged[idx].Value == nil {
					merged[idx].Value = val
					merged[idx].SourceLevel = SourceSidecar
				}
			default:
				return nil, NewValidation("未知的合并方向: %s", policy)
			}
			continue
		}

		merged = append(merged, EffectiveValue{
			Def:         synthesizeDefinition(code, entry),
			Value:       val,
			SourceLevel: SourceSidecar,
			Synthesized: true,
		})
	}
	return merged, nil
}

// ==================== 内部辅助 ====================

var codeTitleCaser = cases.Title(language.English)

// synthesizeDefinition 给目录外的 code 合成一个可展示的定义
func synthesizeDefinition(code string, entry model.SidecarEntry) *model.AttributeDefinition {
	name := codeTitleCaser.String(strings.ReplaceAll(strings.ReplaceAll(code, "_", " "), "-", " "))
	dataType := model.DataTypeText
	if entry.DataType != "" {
		dataType = model.AttributeDataType(entry.DataType)
	}
	return &model.AttributeDefinition{
		Code:         code,
		Name:         name,
		NameAlt:      name,
		Unit:         entry.Unit,
		DataType:     dataType,
		DisplayOrder: model.DisplayOrderUnset,
	}
}

// coerceSidecarValue sidecar 原始 JSON 值 -> 带类型的值，共用目录的缺失约定
func coerceSidecarValue(dataType model.AttributeDataType, raw interface{}, lang string) *AttrValue {
	switch dataType {
	case model.DataTypeInt:
		switch n := raw.(type) {
		case float64:
			// 带小数部分的输入不做静默截断
			if n != math.Trunc(n) {
				return nil
			}
			return intValue(int64(n))
		case int64:
			return intValue(n)
		case int:
			return intValue(int64(n))
		case string:
			if parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
				return intValue(parsed)
			}
		}
	case model.DataTypeDecimal:
		switch n := raw.(type) {
		case float64:
			return decimalValue(n)
		case int64:
			return decimalValue(float64(n))
		case int:
			return decimalValue(float64(n))
		case string:
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
				return decimalValue(parsed)
			}
		}
	case model.DataTypeBool:
		if b, ok := raw.(bool); ok {
			return boolValue(b)
		}
	case model.DataTypeText:
		if t, ok := raw.(string); ok {
			return textValue(t)
		}
	case model.DataTypeEnum:
		// sidecar 里的枚举没有词表引用，按标签文本处理，code 取归一化后的原文
		if t, ok := raw.(string); ok && strings.TrimSpace(t) != "" {
			return &AttrValue{Kind: KindEnum, EnumCode: normalizeEnumToken(t), Label: strings.TrimSpace(t)}
		}
	}
	return nil
}

// isZeroLike 写入校验的例外: 0 / 空串本身是合法输入 (语义是清除)
func isZeroLike(dataType model.AttributeDataType, raw interface{}) bool {
	switch dataType {
	case model.DataTypeInt, model.DataTypeDecimal:
		if n, ok := raw.(float64); ok {
			return n == 0
		}
	case model.DataTypeText:
		if t, ok := raw.(string); ok {
			return strings.TrimSpace(t) == ""
		}
	case model.DataTypeBool:
		_, ok := raw.(bool)
		return ok
	}
	return false
}
