package controller

import (
	"github.com/gin-gonic/gin"

	"carspec_v1_202601/internal/api/dto"
	"carspec_v1_202601/internal/service"
)

type CatalogController struct {
	catalog *service.CatalogService
}

func NewCatalogController(catalog *service.CatalogService) *CatalogController {
	return &CatalogController{catalog: catalog}
}

// GetAttributes 获取参数目录
// @Summary 获取全部参数定义
// @Tags Catalog
// @Success 200 {array} dto.AttributeDefResp
// @Router /api/attributes [get]
func (ctrl *CatalogController) GetAttributes(c *gin.Context) {
	defs, err := ctrl.catalog.ListDefinitions(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}

	respList := make([]dto.AttributeDefResp, 0, len(defs))
	for _, d := range defs {
		respList = append(respList, dto.AttributeDefResp{
			Code:         d.Code,
			Name:         d.Name,
			NameAlt:      d.NameAlt,
			Unit:         d.Unit,
			DataType:     string(d.DataType),
			Category:     d.Category,
			DisplayGroup: d.DisplayGroup,
			DisplayOrder: d.DisplayOrder,
			IsFilterable: d.IsFilterable,
		})
	}

	c.JSON(200, gin.H{"code": 0, "message": "success", "data": respList})
}

// RefreshCache 强制刷新目录缓存 (目录管理路径在变更后调用)
// @Summary 刷新参数目录缓存
// @Tags Catalog
// @Success 200 {object} map[string]interface{}
// @Router /api/attributes/cache/refresh [post]
func (ctrl *CatalogController) RefreshCache(c *gin.Context) {
	if err := ctrl.catalog.Refresh(c.Request.Context()); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(200, gin.H{"code": 0, "message": "success"})
}
