package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"carspec_v1_202601/internal/config"
	"carspec_v1_202601/internal/controller"
	"carspec_v1_202601/internal/model"
	"carspec_v1_202601/internal/repository"
	"carspec_v1_202601/internal/router"
	"carspec_v1_202601/internal/service"
	"carspec_v1_202601/internal/task"
	"carspec_v1_202601/pkg/database"
)

func main() {
	// 1. 配置
	cfg := config.Load()

	// 2. 数据库
	db := initDatabase(cfg)

	// 3. 依赖
	deps := initDependencies(db)

	// 4. 定时任务
	initTasks(deps, cfg)

	// 5. 路由 + 启动
	r := router.SetupRouter(deps.Controllers)
	startServer(r, cfg)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *router.Controllers
}

// Repositories 仓库集合
type Repositories struct {
	Attribute repository.AttributeRepository
	Value     repository.ValueRepository
	Vehicle   repository.VehicleRepository
	Sidecar   repository.SidecarRepository
	Sheet     repository.SheetRepository
}

// Services 服务集合
type Services struct {
	Catalog  *service.CatalogService
	Resolver *service.ResolverService
	Sidecar  *service.SidecarService
	Compare  *service.CompareService
	Sheet    *service.SheetService
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库并迁移模型
func initDatabase(cfg *config.Config) *gorm.DB {
	return database.InitDB(cfg.DSN,
		// 车辆层级
		&model.VehicleModel{}, &model.ModelYear{}, &model.Edition{},
		// 参数目录
		&model.AttributeDefinition{}, &model.AttributeEnum{},
		// 取值
		&model.AttributeValue{}, &model.AttributeText{},
		// 覆盖文档与对比单
		&model.SidecarDocument{}, &model.CompareSheet{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	repos := &Repositories{
		Attribute: repository.NewAttributeRepository(db),
		Value:     repository.NewValueRepository(db),
		Vehicle:   repository.NewVehicleRepository(db),
		Sidecar:   repository.NewSidecarRepository(db),
		Sheet:     repository.NewSheetRepository(db),
	}

	services := &Services{}
	services.Catalog = service.NewCatalogService(repos.Attribute)
	services.Resolver = service.NewResolverService(repos.Vehicle, repos.Value, services.Catalog)
	services.Sidecar = service.NewSidecarService(db, repos.Vehicle, repos.Value, repos.Sidecar, services.Catalog)
	services.Compare = service.NewCompareService(repos.Vehicle, repos.Sidecar, services.Resolver, services.Sidecar)
	services.Sheet = service.NewSheetService(repos.Sheet, services.Compare)

	controllers := &router.Controllers{
		Catalog: controller.NewCatalogController(services.Catalog),
		Edition: controller.NewEditionController(services.Compare, services.Sidecar),
		Compare: controller.NewCompareController(services.Compare),
		Sheet:   controller.NewSheetController(services.Sheet),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// initTasks 启动定时任务
func initTasks(deps *Dependencies, cfg *config.Config) {
	refreshTask := task.NewCatalogRefreshTask(deps.Services.Catalog, cfg.CatalogRefreshCron)
	refreshTask.Start()
	log.Println("定时任务已启动")
}

// ==================== 服务启动 ====================

// startServer 启动服务并等待退出信号
func startServer(r *gin.Engine, cfg *config.Config) {
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Printf("服务启动在 :%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}
