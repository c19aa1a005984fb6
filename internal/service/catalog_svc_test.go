package service

import (
	"context"
	"errors"
	"testing"

	"carspec_v1_202601/internal/model"
)

// ==================== 定义查找 ====================

func TestCatalogResolveAttribute(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	def, err := f.catalog.ResolveAttribute(ctx, "power")
	if err != nil {
		t.Fatalf("查找 power 失败: %v", err)
	}
	if def.DataType != model.DataTypeDecimal || def.Unit != "kW" {
		t.Fatalf("power 定义不符: %+v", def)
	}

	_, err = f.catalog.ResolveAttribute(ctx, "no_such_attr")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("未知 code 应返回 NotFoundError: %v", err)
	}
}

// 缓存未命中时应强制刷新重试一次，目录刚扩充的 code 不需要显式失效就能查到
func TestCatalogStaleCacheRetry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// 先触发一次加载，缓存里没有 length
	if _, err := f.catalog.ResolveAttribute(ctx, "power"); err != nil {
		t.Fatalf("预热失败: %v", err)
	}

	newDef := &model.AttributeDefinition{
		Code: "length", Name: "Délka", NameAlt: "Length", Unit: "mm",
		DataType: model.DataTypeInt, DisplayGroup: "01 Rozměry", DisplayOrder: 10,
	}
	if err := f.attrRepo.Create(ctx, newDef); err != nil {
		t.Fatalf("新定义写入失败: %v", err)
	}

	def, err := f.catalog.ResolveAttribute(ctx, "length")
	if err != nil {
		t.Fatalf("刷新重试后应命中新定义: %v", err)
	}
	if def.ID != newDef.ID {
		t.Fatalf("命中了错误的定义: %+v", def)
	}
}

func TestCatalogInvalidate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	defs, err := f.catalog.ListDefinitions(ctx)
	if err != nil {
		t.Fatalf("列表失败: %v", err)
	}
	baseline := len(defs)

	newDef := &model.AttributeDefinition{
		Code: "width", Name: "Šířka", DataType: model.DataTypeInt,
		DisplayGroup: "01 Rozměry", DisplayOrder: 20,
	}
	if err := f.attrRepo.Create(ctx, newDef); err != nil {
		t.Fatalf("新定义写入失败: %v", err)
	}

	// 全量列表不走未命中重试，新定义在失效前不可见
	defs, err = f.catalog.ListDefinitions(ctx)
	if err != nil {
		t.Fatalf("列表失败: %v", err)
	}
	if len(defs) != baseline {
		t.Fatalf("失效前列表长度应不变: %d != %d", len(defs), baseline)
	}

	f.catalog.Invalidate()
	defs, err = f.catalog.ListDefinitions(ctx)
	if err != nil {
		t.Fatalf("列表失败: %v", err)
	}
	if len(defs) != baseline+1 {
		t.Fatalf("失效后应看到新定义: %d != %d", len(defs), baseline+1)
	}
}

func TestCatalogListDefinitionsOrder(t *testing.T) {
	f := newFixture(t)

	defs, err := f.catalog.ListDefinitions(context.Background())
	if err != nil {
		t.Fatalf("列表失败: %v", err)
	}
	want := []string{"power", "drive", "abs", "seats", "note"}
	if len(defs) != len(want) {
		t.Fatalf("定义数量不符: %d", len(defs))
	}
	for i, code := range want {
		if defs[i].Code != code {
			t.Fatalf("第 %d 个定义应为 %s，实际 %s", i, code, defs[i].Code)
		}
	}
}

// ==================== 枚举词表 ====================

func TestCatalogEnumAliasNormalization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		raw  string
		want string
	}{
		{"awd", "awd"},
		{"fwd", "fwd"},
		{"4x4", "awd"},       // 历史别名
		{"  QUATTRO ", "awd"}, // 别名 + 大小写/空格归一化
		{" AWD ", "awd"},
	}
	for _, c := range cases {
		entry, err := f.catalog.ResolveEnumEntry(ctx, "drive", c.raw)
		if err != nil {
			t.Fatalf("解析 %q 失败: %v", c.raw, err)
		}
		if entry.Code != c.want {
			t.Fatalf("%q 应解析为 %s，实际 %s", c.raw, c.want, entry.Code)
		}
	}
}

func TestCatalogEnumRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ve *ValidationError
	if _, err := f.catalog.ResolveEnumEntry(ctx, "drive", "hovercraft"); !errors.As(err, &ve) {
		t.Fatalf("词表外的值应返回 ValidationError: %v", err)
	}
	if _, err := f.catalog.ResolveEnumEntry(ctx, "power", "awd"); !errors.As(err, &ve) {
		t.Fatalf("非枚举参数应返回 ValidationError: %v", err)
	}
	var nf *NotFoundError
	if _, err := f.catalog.ResolveEnumEntry(ctx, "no_such_attr", "awd"); !errors.As(err, &nf) {
		t.Fatalf("未知参数应返回 NotFoundError: %v", err)
	}
}
