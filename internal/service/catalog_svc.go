package service

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"carspec_v1_202601/internal/model"
	"carspec_v1_202601/internal/repository"
)

// ==================== 参数目录服务 ====================

// CatalogService 参数目录 + 进程内查找缓存
//
// 缓存是显式构造的组件，不是模块级全局变量；目录变更后由管理路径
// 调用 Invalidate()，另有定时任务兜底刷新。
type CatalogService struct {
	attrRepo repository.AttributeRepository

	mu          sync.RWMutex
	loaded      bool
	loadedAt    time.Time
	byCode      map[string]*model.AttributeDefinition
	enumsByAttr map[int64][]model.AttributeEnum
	enumsByID   map[int64]*model.AttributeEnum
}

// NewCatalogService 创建参数目录服务 (进程启动时构造一次)
func NewCatalogService(attrRepo repository.AttributeRepository) *CatalogService {
	return &CatalogService{
		attrRepo: attrRepo,
	}
}

// Invalidate 丢弃缓存，下次查找时重新加载
func (s *CatalogService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
	s.byCode = nil
	s.enumsByAttr = nil
	s.enumsByID = nil
}

// Refresh 强制重新加载 (管理路径 / 定时任务调用)
func (s *CatalogService) Refresh(ctx context.Context) error {
	return s.reload(ctx)
}

// reload 全量加载目录到内存
func (s *CatalogService) reload(ctx context.Context) error {
	defs, err := s.attrRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	enums, err := s.attrRepo.ListEnums(ctx)
	if err != nil {
		return err
	}

	byCode := make(map[string]*model.AttributeDefinition, len(defs))
	for i := range defs {
		byCode[defs[i].Code] = &defs[i]
	}
	enumsByAttr := make(map[int64][]model.AttributeEnum)
	enumsByID := make(map[int64]*model.AttributeEnum, len(enums))
	for i := range enums {
		e := enums[i]
		enumsByAttr[e.AttributeID] = append(enumsByAttr[e.AttributeID], e)
		enumsByID[e.ID] = &enums[i]
	}

	s.mu.Lock()
	s.byCode = byCode
	s.enumsByAttr = enumsByAttr
	s.enumsByID = enumsByID
	s.loaded = true
	s.loadedAt = time.Now()
	s.mu.Unlock()
	return nil
}

func (s *CatalogService) ensureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	return s.reload(ctx)
}

// ==================== 查找接口 ====================

// ResolveAttribute 按 code 查参数定义
// 缓存未命中时强制刷新重试一次 (目录刚改过、缓存失效通知丢失的场景)，
// 刷新后仍未命中才返回 NotFoundError。
func (s *CatalogService) ResolveAttribute(ctx context.Context, code string) (*model.AttributeDefinition, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	def, ok := s.byCode[code]
	s.mu.RUnlock()
	if ok {
		return def, nil
	}

	// 未命中: 刷新一次再查
	if err := s.reload(ctx); err != nil {
		log.Printf("[Catalog] 缓存刷新失败 (code=%s): %v", code, err)
		return nil, err
	}
	s.mu.RLock()
	def, ok = s.byCode[code]
	s.mu.RUnlock()
	if !ok {
		return nil, NewNotFound("参数", "%s", code)
	}
	return def, nil
}

// ResolveEnumEntry 把原始输入 (可能是历史别名) 解析为词表条目
//
// 归一化: 去空格、折叠大小写，再依次匹配条目 code 和条目别名表。
// 别名是参数级配置数据 (attribute_enums.aliases)，不是硬编码逻辑。
func (s *CatalogService) ResolveEnumEntry(ctx context.Context, attrCode, raw string) (*model.AttributeEnum, error) {
	def, err := s.ResolveAttribute(ctx, attrCode)
	if err != nil {
		return nil, err
	}
	if def.DataType != model.DataTypeEnum {
		return nil, NewValidation("参数 %s 不是枚举类型 (data_type=%s)", attrCode, def.DataType)
	}

	token := normalizeEnumToken(raw)

	s.mu.RLock()
	entries := s.enumsByAttr[def.ID]
	s.mu.RUnlock()

	if entry := matchEnumEntry(entries, token); entry != nil {
		return entry, nil
	}

	// 词表可能刚扩充，刷新一次重试
	if err := s.reload(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	entries = s.enumsByAttr[def.ID]
	s.mu.RUnlock()
	if entry := matchEnumEntry(entries, token); entry != nil {
		return entry, nil
	}

	return nil, NewValidation("参数 %s 的词表里没有枚举值 %q", attrCode, raw)
}

// EnumByID 读取路径用: EAV 行里的枚举引用 -> 词表条目 (不存在时返回 nil)
func (s *CatalogService) EnumByID(ctx context.Context, id int64) (*model.AttributeEnum, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	entry := s.enumsByID[id]
	s.mu.RUnlock()
	return entry, nil
}

// ListDefinitions 全量定义，已按 display_group/display_order/code 排序
func (s *CatalogService) ListDefinitions(ctx context.Context) ([]model.AttributeDefinition, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	// 缓存里是 map，排序语义交给仓储查询保证，这里直接回源一次成本也可接受；
	// 但为了 "查找是纯函数" 的约定，从缓存拼出稳定列表
	s.mu.RLock()
	defer s.mu.RUnlock()
	defs := make([]model.AttributeDefinition, 0, len(s.byCode))
	for _, def := range s.byCode {
		defs = append(defs, *def)
	}
	sortDefinitions(defs)
	return defs, nil
}

// ==================== 内部辅助 ====================

func normalizeEnumToken(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func sortDefinitions(defs []model.AttributeDefinition) {
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].DisplayGroup != defs[j].DisplayGroup {
			return defs[i].DisplayGroup < defs[j].DisplayGroup
		}
		if defs[i].DisplayOrder != defs[j].DisplayOrder {
			return defs[i].DisplayOrder < defs[j].DisplayOrder
		}
		return defs[i].Code < defs[j].Code
	})
}

func matchEnumEntry(entries []model.AttributeEnum, token string) *model.AttributeEnum {
	for i := range entries {
		if normalizeEnumToken(entries[i].Code) == token {
			return &entries[i]
		}
		for _, alias := range entries[i].Aliases {
			if normalizeEnumToken(alias) == token {
				return &entries[i]
			}
		}
	}
	return nil
}
