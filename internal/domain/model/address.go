package model

import "time"

// 配送先住所（更新はせず、作成と削除のみ）
type Address struct {
	ID     int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID string `gorm:"type:varchar(64);not null;index" json:"userId"`

	Street       string  `gorm:"type:varchar(255);not null" json:"street"`
	Number       string  `gorm:"type:varchar(20);not null" json:"number"`
	Complement   *string `gorm:"type:varchar(255)" json:"complement"`
	Neighborhood string  `gorm:"type:varchar(255);not null" json:"neighborhood"`
	City         string  `gorm:"type:varchar(255);not null" json:"city"`
	//UF（2文字）
	State   string `gorm:"type:char(2);not null" json:"state"`
	ZipCode string `gorm:"type:varchar(20);not null" json:"zipCode"`
	Country string `gorm:"type:char(2);not null;default:'BR'" json:"country"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
}

// 注文時点の住所（ordersにJSONで保存）
type ShippingAddress struct {
	Street       string  `json:"street"`
	Number       string  `json:"number"`
	Complement   *string `json:"complement"`
	Neighborhood string  `json:"neighborhood"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	ZipCode      string  `json:"zipCode"`
	Country      string  `json:"country"`
}

func (a Address) Snapshot() ShippingAddress {
	return ShippingAddress{
		Street:       a.Street,
		Number:       a.Number,
		Complement:   a.Complement,
		Neighborhood: a.Neighborhood,
		City:         a.City,
		State:        a.State,
		ZipCode:      a.ZipCode,
		Country:      a.Country,
	}
}
