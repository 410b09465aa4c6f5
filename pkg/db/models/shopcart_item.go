package models

import "time"

// ShopcartItem is one product line inside a Shopcart. SKU is unique per cart.
type ShopcartItem struct {
	ID         int       `gorm:"column:id;primaryKey;autoIncrement"`
	SID        int       `gorm:"column:sid;not null;index;uniqueIndex:ux_shopcart_item_sid_sku,priority:1"`
	SKU        int       `gorm:"column:sku;not null;uniqueIndex:ux_shopcart_item_sid_sku,priority:2"`
	Name       string    `gorm:"column:name;type:varchar(255);not null"`
	Price      float64   `gorm:"column:price;not null"`
	Amount     int       `gorm:"column:amount;not null"`
	CreateTime time.Time `gorm:"column:create_time;not null;autoCreateTime"`
	UpdateTime time.Time `gorm:"column:update_time;not null;autoUpdateTime"`
}

func (ShopcartItem) TableName() string {
	return "shopcart_item"
}
