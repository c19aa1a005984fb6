package model

// AttributeValue EAV 行: 一个 (层级, 条目, 参数) 一条记录
//
// 有且仅有一个值槽与参数声明的 data_type 对应:
//   int     -> IntVal     (注意: 0 在读取时视为未设置，见 service 层说明)
//   decimal -> DecimalVal (|v| < 1e-9 视为未设置)
//   boolean -> BoolVal    (false 也是有效值，只有缺行才算未设置)
//   text    -> TextVal    (trim 后为空视为未设置)
//   enum    -> EnumID     (指向 attribute_enums.id)
type AttributeValue struct {
	BaseModel
	Level       ValueLevel `gorm:"size:20;index:idx_val_key,unique;not null"`
	ItemID      int64      `gorm:"index:idx_val_key,unique;not null"` // 对应层级的主键
	AttributeID int64      `gorm:"index:idx_val_key,unique;not null"`

	IntVal     int64   `gorm:"default:0"`
	DecimalVal float64 `gorm:"default:0"`
	BoolVal    bool    `gorm:"default:false"`
	TextVal    string  `gorm:"type:text"`
	EnumID     int64   `gorm:"default:0"`
}

func (AttributeValue) TableName() string {
	return "attribute_values"
}

// AttributeText text 类型参数的本地化变体，只挂在版本 (edition) 上
type AttributeText struct {
	BaseModel
	EditionID   int64  `gorm:"index:idx_text_key,unique;not null"`
	AttributeID int64  `gorm:"index:idx_text_key,unique;not null"`
	Language    string `gorm:"size:10;index:idx_text_key,unique;not null"` // default / alt
	Text        string `gorm:"type:text"`
}

func (AttributeText) TableName() string {
	return "attribute_texts"
}
