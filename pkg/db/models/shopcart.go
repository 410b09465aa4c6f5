package models

import "time"

// Shopcart is the single active cart owned by a user.
type Shopcart struct {
	ID         int            `gorm:"column:id;primaryKey;autoIncrement"`
	UserID     int            `gorm:"column:user_id;not null;uniqueIndex:ux_shopcart_user_id"`
	Items      []ShopcartItem `gorm:"foreignKey:SID;constraint:OnDelete:CASCADE"`
	CreateTime time.Time      `gorm:"column:create_time;not null;autoCreateTime"`
	UpdateTime time.Time      `gorm:"column:update_time;not null;autoUpdateTime"`
}

func (Shopcart) TableName() string {
	return "shopcart"
}
