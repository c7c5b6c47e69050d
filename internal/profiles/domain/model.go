package domain

import "time"

// NotificationSettings is stored as jsonb on the profile row.
type NotificationSettings struct {
	EmailNotifications bool `json:"email_notifications"`
	MarketingEmails    bool `json:"marketing_emails"`
	ProductUpdates     bool `json:"product_updates"`
}

func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{EmailNotifications: true, MarketingEmails: false, ProductUpdates: true}
}

// Profile holds a user's account settings. ID is the auth provider user id.
type Profile struct {
	ID                   string               `json:"id"`
	FullName             *string              `json:"full_name"`
	Bio                  *string              `json:"bio"`
	Company              *string              `json:"company"`
	NotificationSettings NotificationSettings `json:"notification_settings"`
	UpdatedAt            *time.Time           `json:"updated_at"`
}

// NewProfile is the profile of a user who has never saved settings.
func NewProfile(id string) *Profile {
	return &Profile{ID: id, NotificationSettings: DefaultNotificationSettings()}
}

// UpdateProfileRequest represents data for updating a profile. Nil fields
// are left unchanged.
type UpdateProfileRequest struct {
	FullName *string
	Bio      *string
	Company  *string
}

type UpdateNotificationsRequest struct {
	EmailNotifications *bool
	MarketingEmails    *bool
	ProductUpdates     *bool
}

func (p *Profile) Apply(req UpdateProfileRequest) {
	if req.FullName != nil {
		p.FullName = req.FullName
	}
	if req.Bio != nil {
		p.Bio = req.Bio
	}
	if req.Company != nil {
		p.Company = req.Company
	}
}

func (n *NotificationSettings) Apply(req UpdateNotificationsRequest) {
	if req.EmailNotifications != nil {
		n.EmailNotifications = *req.EmailNotifications
	}
	if req.MarketingEmails != nil {
		n.MarketingEmails = *req.MarketingEmails
	}
	if req.ProductUpdates != nil {
		n.ProductUpdates = *req.ProductUpdates
	}
}
