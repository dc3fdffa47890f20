package model

import "time"

// PlatformSettingModel represents the platform_settings key/value table.
type PlatformSettingModel struct {
	Key       string    `gorm:"column:setting_key;type:varchar(64);primaryKey"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the PlatformSettingModel.
func (PlatformSettingModel) TableName() string {
	return "platform_settings"
}

// All returns every model the application migrates.
func All() []interface{} {
	return []interface{}{
		&GroupModel{},
		&MemberModel{},
		&LedgerTransactionModel{},
		&FeeRequestModel{},
		&AuditLogModel{},
		&PlatformSettingModel{},
		&EmailQueueModel{},
	}
}
