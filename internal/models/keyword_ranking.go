package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/rankforge/seoportal/internal/utils"
)

// KeywordRanking rows are append-only; every admin submission creates
// new rows and history is kept indefinitely.
type KeywordRanking struct {
	ID       string `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	TenantID string `gorm:"column:tenant_id;type:varchar(50);not null;index" json:"tenantId"`

	Keyword    string    `gorm:"column:keyword;type:varchar(255);not null" json:"keyword"`
	Rank       int       `gorm:"column:rank;not null" json:"rank"`
	RankDelta  int       `gorm:"column:rank_delta" json:"rankDelta"`
	SearchURL  string    `gorm:"column:search_url;type:varchar(512)" json:"searchUrl"`
	CapturedAt time.Time `gorm:"column:captured_at;type:timestamp;not null" json:"capturedAt"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
}

func (KeywordRanking) TableName() string {
	return "keyword_rankings"
}

func (k *KeywordRanking) BeforeCreate(tx *gorm.DB) error {
	if k.ID == "" {
		k.ID = utils.GenerateNanoIDWithPrefix("kwr", 16)
	}
	return nil
}
