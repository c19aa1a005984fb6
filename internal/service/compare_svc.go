package service

import (
	"context"
	"sort"
	"strconv"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"carspec_v1_202601/internal/model"
	"carspec_v1_202601/internal/repository"
)

// ==================== 对比结果 ====================

// CompareItem 对比表头 (一列一个版本)
type CompareItem struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	ParentName      string `json:"parent_name"`      // 年款
	GrandparentName string `json:"grandparent_name"` // 车系
	Ordinal         int    `json:"ordinal"`
}

// CompareRow 对比表的一行，绑定一个参数
type CompareRow struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	NameLocalized string `json:"name_localized"`
	Unit          string `json:"unit"`
	DataType      string `json:"data_type"`
	Category      string `json:"category"`
	DisplayGroup  string `json:"display_group"`
	DisplayOrder  int    `json:"display_order"`
	// item_id -> 值，缺失为 null
	Values map[string]interface{} `json:"values"`
}

// CompareResult 完整对比结果，也是冻结快照的序列化单位
type CompareResult struct {
	Items []CompareItem `json:"items"`
	Rows  []CompareRow  `json:"rows"`
}

// CompareInput 一次对比请求
type CompareInput struct {
	EditionIDs      []int64
	OnlyDifferences bool
	Codes           []string // 可选白名单；未知 code 静默忽略
	Language        string
	Policy          MergePolicy
}

// ==================== 对比服务 ====================

// CompareService 透视 + 裁剪 + 差异过滤 + 排序，全部调用方共用这一份实现
type CompareService struct {
	vehicleRepo repository.VehicleRepository
	sidecarRepo repository.SidecarRepository
	resolver    *ResolverService
	sidecar     *SidecarService
}

// NewCompareService 创建对比服务
func NewCompareService(
	vehicleRepo repository.VehicleRepository,
	sidecarRepo repository.SidecarRepository,
	resolver *ResolverService,
	sidecar *SidecarService,
) *CompareService {
	return &CompareService{
		vehicleRepo: vehicleRepo,
		sidecarRepo: sidecarRepo,
		resolver:    resolver,
		sidecar:     sidecar,
	}
}

// Compare 计算 N 个版本的参数对比表
func (s *CompareService) Compare(ctx context.Context, in CompareInput) (*CompareResult, error) {
	if len(in.EditionIDs) == 0 {
		return nil, NewValidation("item_ids 不能为空")
	}
	if in.Language == "" {
		in.Language = model.LangDefault
	}
	if in.Policy == "" {
		return nil, NewValidation("必须显式指定合并方向 (merge policy)")
	}

	editions, err := s.loadOrderedEditions(ctx, in.EditionIDs)
	if err != nil {
		return nil, err
	}

	items := make([]CompareItem, 0, len(editions))
	for i, e := range editions {
		items = append(items, CompareItem{
			ID:              e.ID,
			Name:            e.Name,
			ParentName:      strconv.Itoa(e.ModelYear.Year),
			GrandparentName: e.ModelYear.Model.Name,
			Ordinal:         i + 1,
		})
	}

	rows, err := s.pivot(ctx, editions, in)
	if err != nil {
		return nil, err
	}

	s.sortRows(rows, in.Language)

	out := make([]CompareRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.CompareRow)
	}
	return &CompareResult{Items: items, Rows: out}, nil
}

// ListEditionAttributes 单版本有效参数列表
//
// 与对比不同: 每个目录参数都出现 (缺失的 value 为 nil)，外加 sidecar 合成行；
// 排序与对比表一致。合并方向同样必须由调用方显式声明。
func (s *CompareService) ListEditionAttributes(ctx context.Context, editionID int64, lang string, policy MergePolicy) ([]EffectiveValue, error) {
	if lang == "" {
		lang = model.LangDefault
	}
	if policy == "" {
		return nil, NewValidation("必须显式指定合并方向 (merge policy)")
	}

	effective, err := s.resolver.ResolveEffective(ctx, editionID, lang)
	if err != nil {
		return nil, err
	}
	doc, err := s.sidecarRepo.GetByEdition(ctx, editionID)
	if err != nil {
		return nil, err
	}
	merged, err := s.sidecar.MergeSidecar(effective, doc, lang, policy)
	if err != nil {
		return nil, err
	}

	col := collatorFor(lang)
	sort.SliceStable(merged, func(i, j int) bool {
		di, dj := merged[i].Def, merged[j].Def
		if di.DisplayGroup != dj.DisplayGroup {
			return col.CompareString(di.DisplayGroup, dj.DisplayGroup) < 0
		}
		if di.DisplayOrder != dj.DisplayOrder {
			return di.DisplayOrder < dj.DisplayOrder
		}
		ni, nj := localizedName(di, lang), localizedName(dj, lang)
		if ni != nj {
			return col.CompareString(ni, nj) < 0
		}
		return di.Code < dj.Code
	})
	return merged, nil
}

// ==================== 内部实现 ====================

// pivotRow 透视中间态，多带一份规范序列化用于差异判定
type pivotRow struct {
	CompareRow
	canonical map[int64]string
}

// loadOrderedEditions 取回版本并做规范排序: 车系名 -> 年款 -> 版本名 -> id
func (s *CompareService) loadOrderedEditions(ctx context.Context, ids []int64) ([]model.Edition, error) {
	// 去重但保留每个版本一次
	uniq := make([]int64, 0, len(ids))
	seen := map[int64]bool{}
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			uniq = append(uniq, id)
		}
	}

	loaded, err := s.vehicleRepo.ListEditions(ctx, uniq)
	if err != nil {
		return nil, err
	}
	byID := map[int64]*model.Edition{}
	for i := range loaded {
		if loaded[i].ModelYear == nil || loaded[i].ModelYear.Model == nil {
			return nil, NewNotFound("版本层级链", "edition=%d", loaded[i].ID)
		}
		byID[loaded[i].ID] = &loaded[i]
	}

	// 请求里允许同一版本出现多次 (对比自身)，表头按请求的重复次数展开
	editions := make([]model.Edition, 0, len(ids))
	for _, id := range ids {
		e, ok := byID[id]
		if !ok {
			return nil, NewNotFound("版本", "%d", id)
		}
		editions = append(editions, *e)
	}

	sort.SliceStable(editions, func(i, j int) bool {
		mi, mj := editions[i].ModelYear.Model, editions[j].ModelYear.Model
		if mi.Name != mj.Name {
			return mi.Name < mj.Name
		}
		if editions[i].ModelYear.Year != editions[j].ModelYear.Year {
			return editions[i].ModelYear.Year < editions[j].ModelYear.Year
		}
		if editions[i].Name != editions[j].Name {
			return editions[i].Name < editions[j].Name
		}
		return editions[i].ID < editions[j].ID
	})
	return editions, nil
}

func (s *CompareService) pivot(ctx context.Context, editions []model.Edition, in CompareInput) ([]*pivotRow, error) {
	rowIndex := map[string]*pivotRow{}
	order := []string{}

	for _, e := range editions {
		effective, err := s.resolver.ResolveEffective(ctx, e.ID, in.Language)
		if err != nil {
			return nil, err
		}
		doc, err := s.sidecarRepo.GetByEdition(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		merged, err := s.sidecar.MergeSidecar(effective, doc, in.Language, in.Policy)
		if err != nil {
			return nil, err
		}

		for _, ev := range merged {
			row, ok := rowIndex[ev.Def.Code]
			if !ok {
				row = &pivotRow{
					CompareRow: CompareRow{
						Code:          ev.Def.Code,
						Name:          ev.Def.Name,
						NameLocalized: localizedName(ev.Def, in.Language),
						Unit:          ev.Def.Unit,
						DataType:      string(ev.Def.DataType),
						Category:      ev.Def.Category,
						DisplayGroup:  ev.Def.DisplayGroup,
						DisplayOrder:  ev.Def.DisplayOrder,
						Values:        map[string]interface{}{},
					},
					canonical: map[int64]string{},
				}
				rowIndex[ev.Def.Code] = row
				order = append(order, ev.Def.Code)
			}
			row.Values[strconv.FormatInt(e.ID, 10)] = ev.Value.Display()
			row.canonical[e.ID] = ev.Value.Canonical()
		}
	}

	// 白名单在透视之后应用，这样缺口/审计行为不受过滤影响
	var allow map[string]bool
	if len(in.Codes) > 0 {
		allow = make(map[string]bool, len(in.Codes))
		for _, c := range in.Codes {
			allow[c] = true
		}
	}

	rows := make([]*pivotRow, 0, len(order))
	for _, code := range order {
		row := rowIndex[code]
		// 所有版本都缺失的行整行丢弃
		if !rowHasValue(row, editions) {
			continue
		}
		if allow != nil && !allow[code] {
			continue
		}
		if in.OnlyDifferences && !rowHasDifference(row, editions) {
			continue
		}
		// 缺失的列补成显式 null
		for _, e := range editions {
			key := strconv.FormatInt(e.ID, 10)
			if _, ok := row.Values[key]; !ok {
				row.Values[key] = nil
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func rowHasValue(row *pivotRow, editions []model.Edition) bool {
	for _, e := range editions {
		if row.canonical[e.ID] != "" {
			return true
		}
	}
	return false
}

// rowHasDifference 至少存在两个版本的规范序列化不同才算有差异
// (缺失与 false 不同；decimal 180 与 180.0 相同)
func rowHasDifference(row *pivotRow, editions []model.Edition) bool {
	first := row.canonical[editions[0].ID]
	for _, e := range editions[1:] {
		if row.canonical[e.ID] != first {
			return true
		}
	}
	return false
}

// sortRows 分组标签 -> display_order (哨兵排最后) -> 本地化名 (按语言环境排序)
func (s *CompareService) sortRows(rows []*pivotRow, lang string) {
	col := collatorFor(lang)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].DisplayGroup != rows[j].DisplayGroup {
			return col.CompareString(rows[i].DisplayGroup, rows[j].DisplayGroup) < 0
		}
		if rows[i].DisplayOrder != rows[j].DisplayOrder {
			return rows[i].DisplayOrder < rows[j].DisplayOrder
		}
		if rows[i].NameLocalized != rows[j].NameLocalized {
			return col.CompareString(rows[i].NameLocalized, rows[j].NameLocalized) < 0
		}
		return rows[i].Code < rows[j].Code
	})
}

// ==================== 辅助 ====================

func localizedName(def *model.AttributeDefinition, lang string) string {
	if lang == model.LangAlt && def.NameAlt != "" {
		return def.NameAlt
	}
	return def.Name
}

// collatorFor 默认语言是捷克语，备用语言是英语
func collatorFor(lang string) *collate.Collator {
	if lang == model.LangAlt {
		return collate.New(language.English)
	}
	return collate.New(language.Czech)
}
