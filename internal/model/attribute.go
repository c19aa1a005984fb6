package model

import (
	"github.com/lib/pq"
)

// ==================== 参数定义 ====================

// AttributeDataType 参数值类型
type AttributeDataType string

const (
	DataTypeInt     AttributeDataType = "int"
	DataTypeDecimal AttributeDataType = "decimal"
	DataTypeBool    AttributeDataType = "boolean"
	DataTypeText    AttributeDataType = "text"
	DataTypeEnum    AttributeDataType = "enum"
)

// DisplayOrderUnset display_order 未设置时的哨兵值，排序时排到最后
const DisplayOrderUnset = 9999

// AttributeDefinition 参数定义 (由外部管理工具维护，线上基本只读)
type AttributeDefinition struct {
	BaseModel
	Code     string `gorm:"size:100;uniqueIndex;not null"` // 唯一业务键，如 engine_power
	Name     string `gorm:"size:255;not null"`             // 默认语言显示名
	NameAlt  string `gorm:"size:255"`                      // 备用语言显示名
	Unit     string `gorm:"size:30"`                       // 单位，如 kW、mm，可为空
	DataType AttributeDataType `gorm:"size:20;not null"`

	// 展示分组: display_group 采用 "01 Motor" 数字前缀约定，
	// 字典序即是人工想要的分组顺序，不需要单独的优先级列
	Category     string `gorm:"size:100;index"`
	DisplayGroup string `gorm:"size:150"`
	DisplayOrder int    `gorm:"default:9999"`
	IsFilterable bool   `gorm:"default:false"`
}

func (AttributeDefinition) TableName() string {
	return "attribute_definitions"
}

// ==================== 枚举词表 ====================

// AttributeEnum 枚举参数的词表条目，一个条目只属于一个参数
// 存储的枚举值永远是对条目的引用，不是裸字符串
type AttributeEnum struct {
	BaseModel
	AttributeID int64  `gorm:"index:idx_enum_attr_code,unique;not null"`
	Code        string `gorm:"size:100;index:idx_enum_attr_code,unique;not null"`
	Label       string `gorm:"size:255;not null"`
	LabelAlt    string `gorm:"size:255"`

	// 历史别名 (按参数配置，不是写死的逻辑)
	// 写入时先做别名归一化再查词表，如 "4x4" -> "awd"
	Aliases pq.StringArray `gorm:"type:text[]"`
}

func (AttributeEnum) TableName() string {
	return "attribute_enums"
}
