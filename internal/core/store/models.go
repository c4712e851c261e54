package store

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 菜單種類
const (
	MenuKindRecipe  = "receta"
	MenuKindGramaje = "gramaje"
)

// PersonModel 使用者設定
type PersonModel struct {
	ID        uint        `gorm:"primaryKey"`
	Name      string      `gorm:"type:varchar(120);not null"`
	Sex       string      `gorm:"type:varchar(20);not null"`
	Age       int         `gorm:"not null"`
	Weight    float64     `gorm:"not null"`
	Height    float64     `gorm:"not null"`
	Activity  float64     `gorm:"not null"`
	Goal      string      `gorm:"type:varchar(64)"`
	TDEE      *int        `gorm:"column:tdee"`
	Allowed   StringSlice `gorm:"type:json"`
	Excluded  StringSlice `gorm:"type:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 資料表名稱
func (PersonModel) TableName() string {
	return "people"
}

// MenuModel 已儲存的菜單
type MenuModel struct {
	ID         string    `gorm:"type:char(36);primaryKey"`
	PersonID   uint      `gorm:"not null;index"`
	Kind       string    `gorm:"type:varchar(20);not null;index"`
	MealsCount int       `gorm:"not null"`
	TDEE       int       `gorm:"column:tdee"`
	Goal       string    `gorm:"type:varchar(64)"`
	Data       RawJSON   `gorm:"type:json"`
	CreatedAt  time.Time `gorm:"index"`
}

// TableName 資料表名稱
func (MenuModel) TableName() string {
	return "menus"
}

// BeforeCreate 未指定 ID 時產生 UUID
func (m *MenuModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// Models 需要遷移的資料表
func Models() []interface{} {
	return []interface{}{&PersonModel{}, &MenuModel{}}
}

// Migrate 建立或更新資料表
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// StringSlice 以 JSON 儲存的字串陣列
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// RawJSON 原樣保存的 JSON 文件
type RawJSON []byte

// Scan implements the sql.Scanner interface
func (j *RawJSON) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = RawJSON(v)
	default:
		return fmt.Errorf("cannot scan %T into RawJSON", value)
	}
	return nil
}

// Value implements the driver.Valuer interface
func (j RawJSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "null", nil
	}
	return string(j), nil
}
