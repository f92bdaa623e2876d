package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pharmaeye/pharmaeye-backend/pkg/enums"
)

// Drug represents one catalog line item. TradeName is never empty in a
// persisted row; the storage gateway drops violating rows before insert.
type Drug struct {
	ID                  uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	TradeName           string           `gorm:"column:trade_name;not null" json:"tradeName"`
	AgentName           string           `gorm:"column:agent_name" json:"agentName"`
	Manufacturer        string           `gorm:"column:manufacturer" json:"manufacturer"`
	PublicPrice         float64          `gorm:"column:public_price;not null;default:0" json:"publicPrice"`
	AgentPrice          float64          `gorm:"column:agent_price;not null;default:0" json:"agentPrice"`
	PriceBeforeDiscount float64          `gorm:"column:price_before_discount;not null;default:0" json:"priceBeforeDiscount"`
	DiscountPercent     float64          `gorm:"column:discount_percent;not null;default:0" json:"discountPercent"`
	AddedBy             enums.DrugSource `gorm:"column:added_by;not null" json:"addedBy"`
	CreatedAt           time.Time        `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
