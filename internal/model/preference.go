package model

import "time"

// Theme is the UI color scheme a user has chosen.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Valid reports whether t is a recognized theme.
func (t Theme) Valid() bool {
	return t == ThemeDark || t == ThemeLight
}

// UserPreference holds per-user settings, one row per user. A user with no
// row gets the dark default without one being created.
type UserPreference struct {
	OwnerID   string    `gorm:"primaryKey" json:"-"`
	Theme     Theme     `json:"theme"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// DefaultPreference is what reads return when the user never saved one.
func DefaultPreference(ownerID string) *UserPreference {
	return &UserPreference{OwnerID: ownerID, Theme: ThemeDark}
}

// UpdatePreferenceRequest represents the request body for saving preferences.
type UpdatePreferenceRequest struct {
	Theme Theme `json:"theme"`
}

// Validate rejects unknown themes.
func (r *UpdatePreferenceRequest) Validate() error {
	if !r.Theme.Valid() {
		return ErrInvalidTheme
	}
	return nil
}
