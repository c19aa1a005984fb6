package model

import (
	"time"

	"gorm.io/gorm"
)

type BaseModel struct {
	ID        int64          `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ==================== 语言常量 ====================

// Language 目前只有两种界面语言：默认语言（捷克语）和备用语言（英语）
const (
	LangDefault = "default"
	LangAlt     = "alt"
)
