package dto

// ==================== 响应 DTO ====================

// AttributeDefResp 目录中的一条参数定义
type AttributeDefResp struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	NameAlt      string `json:"name_alt"`
	Unit         string `json:"unit"`
	DataType     string `json:"data_type"`
	Category     string `json:"category"`
	DisplayGroup string `json:"display_group"`
	DisplayOrder int    `json:"display_order"`
	IsFilterable bool   `json:"is_filterable"`
}

// EffectiveAttrResp 单版本有效参数列表的一项
// 每个目录参数都会出现一次，缺失时 value 为 null；
// source_level 是三个继承层级之一，sidecar 提供或缺失时为 null。
type EffectiveAttrResp struct {
	Code          string      `json:"code"`
	Name          string      `json:"name"`
	NameLocalized string      `json:"name_localized"`
	Unit          string      `json:"unit"`
	DataType      string      `json:"data_type"`
	Category      string      `json:"category"`
	DisplayGroup  string      `json:"display_group"`
	DisplayOrder  int         `json:"display_order"`
	IsFilterable  bool        `json:"is_filterable"`
	SourceLevel   *string     `json:"source_level"`
	Value         interface{} `json:"value"`
}

// EffectiveAttrListResp 单版本有效参数列表响应
type EffectiveAttrListResp struct {
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Data    []EffectiveAttrResp `json:"data"`
}
