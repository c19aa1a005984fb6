package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"carspec_v1_202601/internal/api/dto"
	"carspec_v1_202601/internal/model"
	"carspec_v1_202601/internal/service"
)

type EditionController struct {
	compareService *service.CompareService
	sidecarService *service.SidecarService
}

func NewEditionController(compareService *service.CompareService, sidecarService *service.SidecarService) *EditionController {
	return &EditionController{
		compareService: compareService,
		sidecarService: sidecarService,
	}
}

// GetEffectiveAttributes 单版本有效参数列表
// @Summary 获取一个版本解析后的全部参数
// @Tags Edition
// @Param id path int true "版本ID"
// @Param language query string false "default / alt" default(default)
// @Success 200 {object} dto.EffectiveAttrListResp
// @Router /api/editions/{id}/attributes [get]
func (ctrl *EditionController) GetEffectiveAttributes(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的版本ID"})
		return
	}
	lang, ok := parseLanguage(c.DefaultQuery("language", model.LangDefault))
	if !ok {
		c.JSON(400, gin.H{"code": 400, "message": "language 只能是 default 或 alt"})
		return
	}

	// 这个消费方要展示运营覆盖后的最终值，显式声明 sidecar 覆盖方向
	merged, err := ctrl.compareService.ListEditionAttributes(
		c.Request.Context(), id, lang, service.SidecarWins,
	)
	if err != nil {
		respondErr(c, err)
		return
	}

	respList := make([]dto.EffectiveAttrResp, 0, len(merged))
	for _, ev := range merged {
		respList = append(respList, toEffectiveAttrResp(ev, lang))
	}

	c.JSON(200, dto.EffectiveAttrListResp{Code: 0, Message: "success", Data: respList})
}

// WriteSidecar 版本自由文档写入
// @Summary 写入一个版本的补充参数 (merge-patch 或整体替换)
// @Tags Edition
// @Param id path int true "版本ID"
// @Param body body dto.SidecarWriteReq true "写入内容"
// @Success 200 {object} map[string]interface{}
// @Router /api/editions/{id}/sidecar [post]
func (ctrl *EditionController) WriteSidecar(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的版本ID"})
		return
	}

	var req dto.SidecarWriteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "请求格式错误: " + err.Error()})
		return
	}

	in := service.ApplySidecarInput{
		Enums:   req.Enums,
		Replace: req.Replace,
	}
	for _, v := range req.Values {
		in.Values = append(in.Values, service.SidecarValueInput{
			Code:     v.Code,
			Value:    v.Value,
			DataType: v.DataType,
			Unit:     v.Unit,
		})
	}
	for _, t := range req.Texts {
		in.Texts = append(in.Texts, service.SidecarTextInput{
			Code:  t.Code,
			Texts: t.Texts,
		})
	}

	if err := ctrl.sidecarService.Apply(c.Request.Context(), id, in); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(200, gin.H{"code": 0, "message": "success"})
}

// ==================== 辅助 ====================

func parseLanguage(lang string) (string, bool) {
	switch lang {
	case "", model.LangDefault:
		return model.LangDefault, true
	case model.LangAlt:
		return model.LangAlt, true
	}
	return "", false
}

func toEffectiveAttrResp(ev service.EffectiveValue, lang string) dto.EffectiveAttrResp {
	resp := dto.EffectiveAttrResp{
		Code:         ev.Def.Code,
		Name:         ev.Def.Name,
		Unit:         ev.Def.Unit,
		DataType:     string(ev.Def.DataType),
		Category:     ev.Def.Category,
		DisplayGroup: ev.Def.DisplayGroup,
		DisplayOrder: ev.Def.DisplayOrder,
		IsFilterable: ev.Def.IsFilterable,
		Value:        ev.Value.Display(),
	}
	resp.NameLocalized = ev.Def.Name
	if lang == model.LangAlt && ev.Def.NameAlt != "" {
		resp.NameLocalized = ev.Def.NameAlt
	}
	// sidecar 提供或缺失时 source_level 输出 null
	if ev.SourceLevel != "" && ev.SourceLevel != service.SourceSidecar {
		level := string(ev.SourceLevel)
		resp.SourceLevel = &level
	}
	return resp
}
