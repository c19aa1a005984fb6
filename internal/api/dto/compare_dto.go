package dto

import "carspec_v1_202601/internal/service"

// ==================== 请求 DTO ====================

// CompareReq 参数对比请求
type CompareReq struct {
	ItemIDs         []int64  `json:"item_ids" binding:"required,min=1"`
	OnlyDifferences bool     `json:"only_differences"`
	Codes           []string `json:"codes"`    // 可选白名单
	Language        string   `json:"language"` // default / alt，缺省 default
}

// ==================== 响应 DTO ====================

// CompareResp 参数对比响应
type CompareResp struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    *service.CompareResult `json:"data"`
}
