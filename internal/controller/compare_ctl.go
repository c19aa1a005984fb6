package controller

import (
	"github.com/gin-gonic/gin"

	"carspec_v1_202601/internal/api/dto"
	"carspec_v1_202601/internal/service"
)

type CompareController struct {
	compareService *service.CompareService
}

func NewCompareController(compareService *service.CompareService) *CompareController {
	return &CompareController{compareService: compareService}
}

// Compare 多版本参数对比
// @Summary 对比 N 个版本的参数
// @Tags Compare
// @Param body body dto.CompareReq true "对比请求"
// @Success 200 {object} dto.CompareResp
// @Router /api/compare [post]
func (ctrl *CompareController) Compare(c *gin.Context) {
	var req dto.CompareReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "请求格式错误: " + err.Error()})
		return
	}
	lang, ok := parseLanguage(req.Language)
	if !ok {
		c.JSON(400, gin.H{"code": 400, "message": "language 只能是 default 或 alt"})
		return
	}

	result, err := ctrl.compareService.Compare(c.Request.Context(), service.CompareInput{
		EditionIDs:      req.ItemIDs,
		OnlyDifferences: req.OnlyDifferences,
		Codes:           req.Codes,
		Language:        lang,
		// 对比页和单版本列表同一个方向: 运营覆盖值必须体现出来
		Policy: service.SidecarWins,
	})
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(200, dto.CompareResp{Code: 0, Message: "success", Data: result})
}
