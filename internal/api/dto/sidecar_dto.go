package dto

// ==================== 请求 DTO ====================

// SidecarValueReq 单个值写入
type SidecarValueReq struct {
	Code     string      `json:"code" binding:"required"`
	Value    interface{} `json:"value"` // null 在 merge-patch 下删除该 key
	DataType string      `json:"data_type"`
	Unit     string      `json:"unit"`
}

// SidecarTextReq 单个本地化文本写入
type SidecarTextReq struct {
	Code  string            `json:"code" binding:"required"`
	Texts map[string]string `json:"texts"` // lang -> text
}

// SidecarWriteReq 版本自由文档写入请求
// replace=false 为 merge-patch (只动给出的 key)；true 为整个文档替换
type SidecarWriteReq struct {
	Enums   map[string]string `json:"enums"`
	Values  []SidecarValueReq `json:"values"`
	Texts   []SidecarTextReq  `json:"texts"`
	Replace bool              `json:"replace"`
}
