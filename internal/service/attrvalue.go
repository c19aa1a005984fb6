package service

import (
	"strconv"
	"strings"

	"carspec_v1_202601/internal/model"
)

// ==================== 带类型的参数值 ====================

// ValueKind AttrValue 的变体标签
type ValueKind string

const (
	KindInt     ValueKind = "int"
	KindDecimal ValueKind = "decimal"
	KindBool    ValueKind = "boolean"
	KindText    ValueKind = "text"
	KindEnum    ValueKind = "enum"
)

// decimalEpsilon 幅值低于该阈值的 decimal 视为未设置
const decimalEpsilon = 1e-9

// AttrValue 参数值的带标签变体，缺失用 nil *AttrValue 表达
//
// 所有调用方共用这一套类型与强制转换规则，禁止各处自行 switch data_type。
type AttrValue struct {
	Kind     ValueKind
	Int      int64
	Decimal  float64
	Bool     bool
	Text     string
	EnumCode string // 词表条目 code
	Label    string // 本地化后的枚举显示文本
}

// Canonical 确定性的规范序列化，用于 only_differences 的相等判定
//
// decimal 180 与 180.0 序列化相同；缺失(调用方用空串表示) 与 b:false 永远不同。
// 枚举按词表 code 比较，与请求语言无关。
func (v *AttrValue) Canonical() string {
	if v == nil {
		return ""
	}
	switch v.Kind {
	case KindInt:
		return "i:" + strconv.FormatInt(v.Int, 10)
	case KindDecimal:
		return "d:" + strconv.FormatFloat(v.Decimal, 'f', -1, 64)
	case KindBool:
		return "b:" + strconv.FormatBool(v.Bool)
	case KindText:
		return "t:" + v.Text
	case KindEnum:
		return "e:" + v.EnumCode
	}
	return ""
}

// Display 返回给接口层的 JSON 值
func (v *AttrValue) Display() interface{} {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KindInt:
		return v.Int
	case KindDecimal:
		return v.Decimal
	case KindBool:
		return v.Bool
	case KindText:
		return v.Text
	case KindEnum:
		return v.Label
	}
	return nil
}

// ==================== 强制转换规则 (全局唯一一份) ====================

// 注意这里的建模决定: int 槽位没有可空列，约定 0 表示 "未填写"；
// decimal 同理用 |v| < 1e-9 表示未填写。所以 int 参数存不了真正的 0。
// boolean 不受此约定影响: 有记录的 false 是有效值，只有缺行才算缺失。

func intValue(raw int64) *AttrValue {
	if raw == 0 {
		return nil
	}
	return &AttrValue{Kind: KindInt, Int: raw}
}

func decimalValue(raw float64) *AttrValue {
	if raw > -decimalEpsilon && raw < decimalEpsilon {
		return nil
	}
	return &AttrValue{Kind: KindDecimal, Decimal: raw}
}

func boolValue(raw bool) *AttrValue {
	return &AttrValue{Kind: KindBool, Bool: raw}
}

func textValue(raw string) *AttrValue {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return &AttrValue{Kind: KindText, Text: trimmed}
}

// enumValue 解析为请求语言的标签，标签缺失时退回词表 code，条目丢失时缺失
func enumValue(entry *model.AttributeEnum, lang string) *AttrValue {
	if entry == nil {
		return nil
	}
	label := entry.Label
	if lang == model.LangAlt && entry.LabelAlt != "" {
		label = entry.LabelAlt
	}
	if label == "" {
		label = entry.Code
	}
	return &AttrValue{Kind: KindEnum, EnumCode: entry.Code, Label: label}
}
