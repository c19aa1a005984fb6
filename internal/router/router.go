package router

import (
	"github.com/gin-gonic/gin"

	"carspec_v1_202601/internal/controller"
)

// Controllers 路由需要的全部控制器
type Controllers struct {
	Catalog *controller.CatalogController
	Edition *controller.EditionController
	Compare *controller.CompareController
	Sheet   *controller.SheetController
}

// SetupRouter 注册所有路由
func SetupRouter(ctrls *Controllers) *gin.Engine {
	r := gin.Default()

	api := r.Group("/api")
	{
		// 参数目录
		attributes := api.Group("/attributes")
		{
			// GET /api/attributes
			attributes.GET("", ctrls.Catalog.GetAttributes)
			// POST /api/attributes/cache/refresh (目录管理路径变更后调用)
			attributes.POST("/cache/refresh", ctrls.Catalog.RefreshCache)
		}

		// 版本
		editions := api.Group("/editions")
		{
			// GET /api/editions/:id/attributes
			editions.GET("/:id/attributes", ctrls.Edition.GetEffectiveAttributes)
			// POST /api/editions/:id/sidecar
			editions.POST("/:id/sidecar", ctrls.Edition.WriteSidecar)
		}

		// 对比
		// POST /api/compare
		api.POST("/compare", ctrls.Compare.Compare)

		// 对比单 (冻结控制)
		sheets := api.Group("/sheets")
		{
			sheets.POST("", ctrls.Sheet.CreateSheet)
			sheets.GET("/:id", ctrls.Sheet.GetSheet)
			sheets.POST("/:id/lock", ctrls.Sheet.Lock)
			sheets.POST("/:id/unlock", ctrls.Sheet.Unlock)
			sheets.GET("/:id/resolve", ctrls.Sheet.Resolve)
		}
	}

	return r
}
