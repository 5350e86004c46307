package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/rankforge/seoportal/internal/utils"
)

type User struct {
	ID          string  `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	Email       string  `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	DisplayName string  `gorm:"column:display_name;type:varchar(255)" json:"displayName"`
	CompanyID   *string `gorm:"column:company_id;type:varchar(50);index" json:"companyId"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = utils.GenerateNanoIDWithPrefix("usr", 16)
	}
	return nil
}
