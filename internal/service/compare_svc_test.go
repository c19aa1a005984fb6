package service

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"carspec_v1_202601/internal/model"
)

// ==================== 入参校验 ====================

func TestCompareValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ve *ValidationError
	_, err := f.compare.Compare(ctx, CompareInput{Policy: SidecarWins})
	if !errors.As(err, &ve) {
		t.Fatalf("空版本列表应返回 ValidationError: %v", err)
	}
	_, err = f.compare.Compare(ctx, CompareInput{EditionIDs: []int64{f.editionA.ID}})
	if !errors.As(err, &ve) {
		t.Fatalf("缺少合并方向应返回 ValidationError: %v", err)
	}

	var nf *NotFoundError
	_, err = f.compare.Compare(ctx, CompareInput{EditionIDs: []int64{99999}, Policy: SidecarWins})
	if !errors.As(err, &nf) {
		t.Fatalf("未知版本应返回 NotFoundError: %v", err)
	}
}

// ==================== 透视与继承 ====================

// 值只挂在祖父层 (车系)，对比表仍应解析出来
func TestCompareGrandparentFallback(t *testing.T) {
	f := newFixture(t)

	f.setDecimal(t, model.LevelModel, f.octavia.ID, "power", 150)

	result, err := f.compare.Compare(context.Background(), CompareInput{
		EditionIDs: []int64{f.editionA.ID},
		Policy:     SidecarWins,
	})
	if err != nil {
		t.Fatalf("对比失败: %v", err)
	}
	row := findRow(result, "power")
	if row == nil {
		t.Fatal("power 行应存在")
	}
	key := strconv.FormatInt(f.editionA.ID, 10)
	if row.Values[key] != float64(150) {
		t.Fatalf("power 值不符: %v", row.Values[key])
	}
}

// 所有版本都缺失的行整行丢弃
func TestCompareAllAbsentRowsPruned(t *testing.T) {
	f := newFixture(t)

	f.setDecimal(t, model.LevelEdition, f.editionA.ID, "power", 110)

	result, err := f.compare.Compare(context.Background(), CompareInput{
		EditionIDs: []int64{f.editionA.ID, f.editionB.ID},
		Policy:     SidecarWins,
	})
	if err != nil {
		t.Fatalf("对比失败: %v", err)
	}
	if len(result.Rows) != 1 || result.Rows[0].Code != "power" {
		t.Fatalf("应只剩 power 行: %+v", result.Rows)
	}
	// B 缺失的列补成显式 null
	keyB := strconv.FormatInt(f.editionB.ID, 10)
	if v, ok := result.Rows[0].Values[keyB]; !ok || v != nil {
		t.Fatalf("缺失列应为显式 null: %v (ok=%v)", v, ok)
	}
}

// ==================== 差异过滤 ====================

func TestCompareOnlyDifferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// power: 共同祖父 150，B 在版本层覆盖 180
	f.setDecimal(t, model.LevelModel, f.octavia.ID, "power", 150)
	f.setDecimal(t, model.LevelEdition, f.editionB.ID, "power", 180)
	// seats: 两个版本继承同一个值
	f.setInt(t, model.LevelModel, f.octavia.ID, "seats", 5)
	// abs: A 有 false 记录，B 缺失 (缺失 != false，算差异)
	f.setBool(t, model.LevelEdition, f.editionA.ID, "abs", false)

	result, err := f.compare.Compare(ctx, CompareInput{
		EditionIDs:      []int64{f.editionA.ID, f.editionB.ID},
		OnlyDifferences: true,
		Policy:          SidecarWins,
	})
	if err != nil {
		t.Fatalf("对比失败: %v", err)
	}
	if findRow(result, "power") == nil {
		t.Fatal("power 有差异，应保留")
	}
	if findRow(result, "seats") != nil {
		t.Fatal("seats 两边相同，应被过滤")
	}
	if findRow(result, "abs") == nil {
		t.Fatal("缺失与 false 不同，abs 应保留")
	}
}

// 同一版本与自己对比永远没有差异
func TestCompareSelfHasNoDifferences(t *testing.T) {
	f := newFixture(t)

	f.setDecimal(t, model.LevelEdition, f.editionA.ID, "power", 180)
	f.setBool(t, model.LevelEdition, f.editionA.ID, "abs", false)

	result, err := f.compare.Compare(context.Background(), CompareInput{
		EditionIDs:      []int64{f.editionA.ID, f.editionA.ID},
		OnlyDifferences: true,
		Policy:          SidecarWins,
	})
	if err != nil {
		t.Fatalf("对比失败: %v", err)
	}
	if len(result.Rows) != 0 {
		t.Fatalf("自比不应有任何差异行: %+v", result.Rows)
	}
	// 表头仍按请求的重复次数展开
	if len(result.Items) != 2 || result.Items[0].ID != result.Items[1].ID {
		t.Fatalf("重复版本的表头应展开两列: %+v", result.Items)
	}
	if result.Items[0].Ordinal != 1 || result.Items[1].Ordinal != 2 {
		t.Fatalf("表头序号应连续: %+v", result.Items)
	}
}

// ==================== 白名单 ====================

func TestCompareCodeAllowList(t *testing.T) {
	f := newFixture(t)

	f.setDecimal(t, model.LevelEdition, f.editionA.ID, "power", 110)
	f.setInt(t, model.LevelEdition, f.editionA.ID, "seats", 5)

	result, err := f.compare.Compare(context.Background(), CompareInput{
		EditionIDs: []int64{f.editionA.ID},
		// 未知 code 静默忽略
		Codes:  []string{"power", "no_such_code"},
		Policy: SidecarWins,
	})
	if err != nil {
		t.Fatalf("对比失败: %v", err)
	}
	if len(result.Rows) != 1 || result.Rows[0].Code != "power" {
		t.Fatalf("白名单应只留 power: %+v", result.Rows)
	}
}

// ==================== 排序 ====================

func TestCompareRowOrderDeterministic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.setDecimal(t, model.LevelEdition, f.editionA.ID, "power", 110)
	f.setEnum(t, model.LevelEdition, f.editionA.ID, "drive", "fwd")
	f.setBool(t, model.LevelEdition, f.editionA.ID, "abs", true)
	f.setInt(t, model.LevelEdition, f.editionA.ID, "seats", 5)
	f.setText(t, model.LevelEdition, f.editionA.ID, "note", "Základní výbava")

	in := CompareInput{EditionIDs: []int64{f.editionA.ID}, Policy: SidecarWins}

	// 分组前缀 -> display_order -> 本地化名
	want := []string{"power", "drive", "abs", "seats", "note"}
	for run := 0; run < 2; run++ {
		result, err := f.compare.Compare(ctx, in)
		if err != nil {
			t.Fatalf("对比失败: %v", err)
		}
		if len(result.Rows) != len(want) {
			t.Fatalf("行数不符: %d", len(result.Rows))
		}
		for i, code := range want {
			if result.Rows[i].Code != code {
				t.Fatalf("第 %d 行应为 %s，实际 %s (run=%d)", i, code, result.Rows[i].Code, run)
			}
		}
	}
}

func TestCompareHeaderOrdering(t *testing.T) {
	f := newFixture(t)

	f.setDecimal(t, model.LevelModel, f.octavia.ID, "power", 150)

	// 请求顺序 B, A；表头按规范顺序 (版本名) 排列
	result, err := f.compare.Compare(context.Background(), CompareInput{
		EditionIDs: []int64{f.editionB.ID, f.editionA.ID},
		Policy:     SidecarWins,
	})
	if err != nil {
		t.Fatalf("对比失败: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("表头列数不符: %d", len(result.Items))
	}
	if result.Items[0].Name != "Ambition" || result.Items[1].Name != "Style" {
		t.Fatalf("表头应按规范顺序排列: %+v", result.Items)
	}
	if result.Items[0].ParentName != "2024" || result.Items[0].GrandparentName != "Octavia" {
		t.Fatalf("表头层级名不符: %+v", result.Items[0])
	}
}

// ==================== sidecar 参与对比 ====================

func TestCompareWithSidecarOverlay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.setDecimal(t, model.LevelModel, f.octavia.ID, "power", 150)
	err := f.sidecar.Apply(ctx, f.editionB.ID, ApplySidecarInput{
		Values: []SidecarValueInput{{Code: "power", Value: float64(180)}},
	})
	if err != nil {
		t.Fatalf("sidecar 写入失败: %v", err)
	}

	result, err := f.compare.Compare(ctx, CompareInput{
		EditionIDs:      []int64{f.editionA.ID, f.editionB.ID},
		OnlyDifferences: true,
		Policy:          SidecarWins,
	})
	if err != nil {
		t.Fatalf("对比失败: %v", err)
	}
	row := findRow(result, "power")
	if row == nil {
		t.Fatal("sidecar 覆盖造成的差异应保留")
	}
	keyA := strconv.FormatInt(f.editionA.ID, 10)
	keyB := strconv.FormatInt(f.editionB.ID, 10)
	if row.Values[keyA] != float64(150) || row.Values[keyB] != float64(180) {
		t.Fatalf("对比值不符: %v", row.Values)
	}
}
