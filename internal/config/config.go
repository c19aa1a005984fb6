package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config 服务配置
type Config struct {
	ServerPort string `mapstructure:"server_port"`
	DSN        string `mapstructure:"dsn"`

	// 目录缓存兜底刷新的 cron 表达式 (robfig/cron 带秒格式)
	CatalogRefreshCron string `mapstructure:"catalog_refresh_cron"`
}

// Load 读取配置: 先找工作目录下的 config.yaml，再用环境变量覆盖
// 环境变量前缀 CARSPEC_，如 CARSPEC_DSN、CARSPEC_SERVER_PORT
func Load() *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetDefault("server_port", "8080")
	v.SetDefault("dsn", "host=localhost user=carspec password=carspec dbname=carspec port=5432 sslmode=disable")
	v.SetDefault("catalog_refresh_cron", "0 */10 * * * *") // 每 10 分钟

	v.SetEnvPrefix("CARSPEC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// 没有配置文件不是错误，默认值 + 环境变量足够跑起来
		log.Printf("未加载配置文件 (使用默认值/环境变量): %v", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("配置解析失败: %v", err)
	}
	return &cfg
}
