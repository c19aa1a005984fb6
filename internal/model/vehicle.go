package model

// 三级继承结构: VehicleModel (车系) -> ModelYear (年款) -> Edition (版本)
// 参数值可以挂在任意一级，解析时自下而上回退

// VehicleModel 车系 (最顶层)
type VehicleModel struct {
	BaseModel
	Make    string `gorm:"size:100;index;not null"` // 品牌，如 Skoda
	Name    string `gorm:"size:150;not null"`       // 车系名，如 Octavia
	Ordinal int    `gorm:"default:0"`               // 手工排序用
}

func (VehicleModel) TableName() string {
	return "vehicle_models"
}

// ModelYear 年款 (中间层)
type ModelYear struct {
	BaseModel
	ModelID int64         `gorm:"index;not null"`
	Model   *VehicleModel `gorm:"foreignKey:ModelID"`
	Year    int           `gorm:"not null;index"`
}

func (ModelYear) TableName() string {
	return "model_years"
}

// Edition 版本 (最具体一层，参数对比的基本单位)
type Edition struct {
	BaseModel
	ModelYearID int64      `gorm:"index;not null"`
	ModelYear   *ModelYear `gorm:"foreignKey:ModelYearID"`
	Name        string     `gorm:"size:150;not null"` // 如 "2.0 TDI Style"
	Ordinal     int        `gorm:"default:0"`
}

func (Edition) TableName() string {
	return "editions"
}

// ==================== 取值层级 ====================

// ValueLevel EAV 记录挂载的层级
type ValueLevel string

const (
	LevelEdition   ValueLevel = "edition"
	LevelModelYear ValueLevel = "model_year"
	LevelModel     ValueLevel = "model"
)

// LevelChain 解析优先级：自身 -> 年款 -> 车系
var LevelChain = []ValueLevel{LevelEdition, LevelModelYear, LevelModel}
