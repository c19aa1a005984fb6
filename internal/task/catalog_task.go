package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"carspec_v1_202601/internal/service"
)

// CatalogRefreshTask 目录缓存兜底刷新
//
// 缓存失效靠管理路径显式调用 /api/attributes/cache/refresh，
// 这个任务只是兜底: 通知丢了也最多滞后一个刷新周期。
type CatalogRefreshTask struct {
	catalog *service.CatalogService
	Cron    *cron.Cron
	spec    string
}

func NewCatalogRefreshTask(catalog *service.CatalogService, spec string) *CatalogRefreshTask {
	return &CatalogRefreshTask{
		catalog: catalog,
		Cron:    cron.New(cron.WithSeconds()), // 支持秒级控制
		spec:    spec,
	}
}

// Start 启动定时任务
func (t *CatalogRefreshTask) Start() {
	// 首次执行: 启动时先把目录热进缓存
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := t.catalog.Refresh(ctx); err != nil {
			log.Printf("[Task] 目录缓存预热失败: %v", err)
		}
	}()

	_, err := t.Cron.AddFunc(t.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := t.catalog.Refresh(ctx); err != nil {
			log.Printf("[Cron] 目录缓存刷新失败: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("无法启动目录缓存刷新任务: %v", err)
	}

	t.Cron.Start()
	log.Printf("目录缓存刷新任务已启动 (%s)", t.spec)
}

// Stop 停止定时任务
func (t *CatalogRefreshTask) Stop() {
	t.Cron.Stop()
}
