package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 商品カテゴリ（名前で一意）
type Category struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
}

type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	// 割引率（0〜100）
	Discount   decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"discount"`
	CategoryID int64           `gorm:"not null;index" json:"categoryId"`
	Category   *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Images     []string        `gorm:"serializer:json;type:jsonb" json:"images"`
	Sizes      []string        `gorm:"serializer:json;type:jsonb" json:"sizes"`
	Colors     []string        `gorm:"serializer:json;type:jsonb" json:"colors"`
	Stock      int64           `gorm:"not null" json:"stock"`
	IsActive   bool            `gorm:"not null;default:true" json:"isActive"`
	CreatedAt  time.Time       `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time       `gorm:"not null;autoUpdateTime" json:"updatedAt"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (p Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}

// サイズ指定が商品の選択肢にあるか（選択肢なしなら空のみ可）
func (p Product) HasSize(size string) bool {
	return contains(p.Sizes, size)
}

func (p Product) HasColor(color string) bool {
	return contains(p.Colors, color)
}

func contains(options []string, v string) bool {
	if v == "" {
		return true
	}
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
