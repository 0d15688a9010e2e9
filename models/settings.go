package models

import "time"

// EarningsSettings is the ledger-wide configuration singleton. The rate
// applies at the moment a qualifying view is credited; changing it never
// rewrites balances already earned.
type EarningsSettings struct {
	ID                      string    `json:"id,omitempty" bson:"_id,omitempty"`
	BaseEarningPerView      float64   `json:"baseEarningPerView" bson:"baseEarningPerView"`
	MinimumWithdrawalAmount float64   `json:"minimumWithdrawalAmount" bson:"minimumWithdrawalAmount"`
	MinimumViewDuration     int       `json:"minimumViewDuration" bson:"minimumViewDuration"` // seconds, 0 disables the gate
	UpdatedAt               time.Time `json:"updatedAt" bson:"updatedAt"`
}

// SettingsDocumentID is the fixed _id of the singleton settings document.
const SettingsDocumentID = "earnings"

// DefaultEarningsSettings returns the values used when no settings
// document exists yet, so the ledger never stalls on missing config.
func DefaultEarningsSettings() EarningsSettings {
	return EarningsSettings{
		ID:                      SettingsDocumentID,
		BaseEarningPerView:      0.01,
		MinimumWithdrawalAmount: 10,
		MinimumViewDuration:     5,
	}
}

// SettingsUpdateRequest merges into the stored settings; nil fields are
// left untouched so an admin editing one value cannot null out the rest.
type SettingsUpdateRequest struct {
	BaseEarningPerView      *float64 `json:"baseEarningPerView,omitempty" validate:"omitempty,min=0"`
	MinimumWithdrawalAmount *float64 `json:"minimumWithdrawalAmount,omitempty" validate:"omitempty,min=0"`
	MinimumViewDuration     *int     `json:"minimumViewDuration,omitempty" validate:"omitempty,min=0"`
}
