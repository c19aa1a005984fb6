package controller

import (
	"errors"

	"github.com/gin-gonic/gin"

	"carspec_v1_202601/internal/service"
)

// respondErr 统一的错误 -> HTTP 状态映射
// NotFound -> 404，Validation -> 400，其余 -> 500；错误信息里带上出问题的 code/值
func respondErr(c *gin.Context, err error) {
	var nf *service.NotFoundError
	if errors.As(err, &nf) {
		c.JSON(404, gin.H{"code": 404, "message": nf.Error()})
		return
	}
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		c.JSON(400, gin.H{"code": 400, "message": ve.Error()})
		return
	}
	c.JSON(500, gin.H{"code": 500, "message": "内部错误: " + err.Error()})
}
