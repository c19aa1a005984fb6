package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"carspec_v1_202601/internal/api/dto"
	"carspec_v1_202601/internal/model"
	"carspec_v1_202601/internal/service"
)

type SheetController struct {
	sheetService *service.SheetService
}

func NewSheetController(sheetService *service.SheetService) *SheetController {
	return &SheetController{sheetService: sheetService}
}

// CreateSheet 新建对比单
// @Summary 新建对比单
// @Tags Sheet
// @Param body body dto.CreateSheetReq true "对比单"
// @Success 200 {object} dto.SheetResp
// @Router /api/sheets [post]
func (ctrl *SheetController) CreateSheet(c *gin.Context) {
	var req dto.CreateSheetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "请求格式错误: " + err.Error()})
		return
	}

	sheet, err := ctrl.sheetService.CreateSheet(c.Request.Context(), req.Name, req.EditionIDs)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(200, gin.H{"code": 0, "message": "success", "data": toSheetResp(sheet)})
}

// GetSheet 获取对比单元数据
// @Summary 获取对比单
// @Tags Sheet
// @Param id path int true "对比单ID"
// @Success 200 {object} dto.SheetResp
// @Router /api/sheets/{id} [get]
func (ctrl *SheetController) GetSheet(c *gin.Context) {
	id, ok := sheetID(c)
	if !ok {
		return
	}
	sheet, err := ctrl.sheetService.GetSheet(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(200, gin.H{"code": 0, "message": "success", "data": toSheetResp(sheet)})
}

// Lock 冻结对比单
// @Summary 冻结: 固化当前对比结果为快照
// @Tags Sheet
// @Param id path int true "对比单ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/sheets/{id}/lock [post]
func (ctrl *SheetController) Lock(c *gin.Context) {
	id, ok := sheetID(c)
	if !ok {
		return
	}
	if err := ctrl.sheetService.Lock(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(200, gin.H{"code": 0, "message": "success", "ok": true})
}

// Unlock 解冻对比单
// @Summary 解冻: 丢弃快照，恢复实时计算
// @Tags Sheet
// @Param id path int true "对比单ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/sheets/{id}/unlock [post]
func (ctrl *SheetController) Unlock(c *gin.Context) {
	id, ok := sheetID(c)
	if !ok {
		return
	}
	if err := ctrl.sheetService.Unlock(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(200, gin.H{"code": 0, "message": "success", "ok": true})
}

// Resolve 读取对比单结果 (冻结时返回快照，否则实时计算)
// @Summary 读取对比单结果
// @Tags Sheet
// @Param id path int true "对比单ID"
// @Success 200 {object} dto.CompareResp
// @Router /api/sheets/{id}/resolve [get]
func (ctrl *SheetController) Resolve(c *gin.Context) {
	id, ok := sheetID(c)
	if !ok {
		return
	}
	result, err := ctrl.sheetService.Resolve(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(200, dto.CompareResp{Code: 0, Message: "success", Data: result})
}

// ==================== 辅助 ====================

func sheetID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的对比单ID"})
		return 0, false
	}
	return id, true
}

func toSheetResp(sheet *model.CompareSheet) dto.SheetResp {
	return dto.SheetResp{
		ID:          sheet.ID,
		Name:        sheet.Name,
		EditionIDs:  sheet.EditionIDs,
		Frozen:      sheet.Frozen,
		FrozenAt:    sheet.FrozenAt,
		SnapshotRev: sheet.SnapshotRev,
	}
}
