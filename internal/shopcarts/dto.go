package shopcarts

import (
	"encoding/json"
	"time"

	"github.com/nyudevops/shopcarts/pkg/db/models"
)

// ShopcartPayload is the accepted body for creating a shopcart. Server-owned
// fields are tolerated so a serialized shopcart can be posted back, but they
// are never applied.
type ShopcartPayload struct {
	ID         *int            `json:"id,omitempty"`
	UserID     int             `json:"user_id" validate:"required,gt=0"`
	CreateTime *string         `json:"create_time,omitempty"`
	UpdateTime *string         `json:"update_time,omitempty"`
	Items      json.RawMessage `json:"items,omitempty"`
}

// ShopcartItemPayload is the accepted body for adding or replacing an item.
type ShopcartItemPayload struct {
	ID         *int     `json:"id,omitempty"`
	SID        *int     `json:"sid,omitempty"`
	SKU        int      `json:"sku" validate:"required,gt=0"`
	Name       string   `json:"name" validate:"required,max=255"`
	Price      *float64 `json:"price" validate:"required,gte=0"`
	Amount     int      `json:"amount" validate:"required,gt=0"`
	CreateTime *string  `json:"create_time,omitempty"`
	UpdateTime *string  `json:"update_time,omitempty"`
}

func (p ShopcartItemPayload) toModel(sid int) models.ShopcartItem {
	item := models.ShopcartItem{
		SID:    sid,
		SKU:    p.SKU,
		Name:   p.Name,
		Amount: p.Amount,
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	return item
}

// ShopcartDTO is the serialized form of a shopcart.
type ShopcartDTO struct {
	ID         int        `json:"id"`
	UserID     int        `json:"user_id"`
	CreateTime *time.Time `json:"create_time"`
	UpdateTime *time.Time `json:"update_time"`
}

// ShopcartDetailDTO is a shopcart with its items embedded.
type ShopcartDetailDTO struct {
	ShopcartDTO
	Items []ShopcartItemDTO `json:"items"`
}

// ShopcartItemDTO is the serialized form of a shopcart item.
type ShopcartItemDTO struct {
	ID         int        `json:"id"`
	SID        int        `json:"sid"`
	SKU        int        `json:"sku"`
	Name       string     `json:"name"`
	Price      float64    `json:"price"`
	Amount     int        `json:"amount"`
	CreateTime *time.Time `json:"create_time"`
	UpdateTime *time.Time `json:"update_time"`
}

// ItemFilter narrows an item query. Nil fields are ignored and set fields are AND-ed.
type ItemFilter struct {
	SKU    *int
	Name   *string
	Price  *float64
	Amount *int
}

// Empty reports whether no filter field is set.
func (f ItemFilter) Empty() bool {
	return f.SKU == nil && f.Name == nil && f.Price == nil && f.Amount == nil
}

// ToShopcartDTO maps the persistence model to its API representation.
func ToShopcartDTO(m models.Shopcart) ShopcartDTO {
	return ShopcartDTO{
		ID:         m.ID,
		UserID:     m.UserID,
		CreateTime: timePtr(m.CreateTime),
		UpdateTime: timePtr(m.UpdateTime),
	}
}

func ToShopcartItemDTO(m models.ShopcartItem) ShopcartItemDTO {
	return ShopcartItemDTO{
		ID:         m.ID,
		SID:        m.SID,
		SKU:        m.SKU,
		Name:       m.Name,
		Price:      m.Price,
		Amount:     m.Amount,
		CreateTime: timePtr(m.CreateTime),
		UpdateTime: timePtr(m.UpdateTime),
	}
}

func toShopcartDTOs(records []models.Shopcart) []ShopcartDTO {
	out := make([]ShopcartDTO, 0, len(records))
	for _, r := range records {
		out = append(out, ToShopcartDTO(r))
	}
	return out
}

func toShopcartItemDTOs(records []models.ShopcartItem) []ShopcartItemDTO {
	out := make([]ShopcartItemDTO, 0, len(records))
	for _, r := range records {
		out = append(out, ToShopcartItemDTO(r))
	}
	return out
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	utc := t.UTC()
	return &utc
}
