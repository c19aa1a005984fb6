package model

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
)

// SidecarDocument 版本级自由文档 (每个版本最多一份)
//
// 运营可以在不走目录管理流程的情况下，给单个版本补充或覆盖参数。
// Values 结构: {"code": {"value": ..., "data_type": "...", "unit": "..."}}
// Texts  结构: {"lang": {"code": "text"}}
type SidecarDocument struct {
	BaseModel
	EditionID int64          `gorm:"uniqueIndex;not null"`
	Values    datatypes.JSON `gorm:"type:jsonb"`
	Texts     datatypes.JSON `gorm:"type:jsonb"`
}

func (SidecarDocument) TableName() string {
	return "sidecar_documents"
}

// SidecarEntry Values 中的一个条目
type SidecarEntry struct {
	Value    interface{} `json:"value"`
	DataType string      `json:"data_type,omitempty"` // 类型提示，缺省按 text 处理
	Unit     string      `json:"unit,omitempty"`
}

// SidecarValues 反序列化后的值映射
type SidecarValues map[string]SidecarEntry

// SidecarTexts 反序列化后的文本映射: lang -> code -> text
type SidecarTexts map[string]map[string]string

// DecodeValues 解析 Values 字段，空文档返回空 map
func (d *SidecarDocument) DecodeValues() (SidecarValues, error) {
	vals := SidecarValues{}
	if len(d.Values) == 0 {
		return vals, nil
	}
	if err := json.Unmarshal(d.Values, &vals); err != nil {
		return nil, fmt.Errorf("sidecar values 解析失败 (edition=%d): %w", d.EditionID, err)
	}
	return vals, nil
}

// DecodeTexts 解析 Texts 字段，空文档返回空 map
func (d *SidecarDocument) DecodeTexts() (SidecarTexts, error) {
	texts := SidecarTexts{}
	if len(d.Texts) == 0 {
		return texts, nil
	}
	if err := json.Unmarshal(d.Texts, &texts); err != nil {
		return nil, fmt.Errorf("sidecar texts 解析失败 (edition=%d): %w", d.EditionID, err)
	}
	return texts, nil
}
