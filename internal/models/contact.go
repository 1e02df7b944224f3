package models

type TechContact struct {
	RowIndex    int    `json:"-"`
	ContactID   string `json:"contact_id"`
	PhoneNumber string `json:"phone_number"` // E.164
	DisplayName string `json:"display_name"`
}

type ContactRepository interface {
	// GetByID returns nil, nil when the contact does not exist.
	GetByID(contactID string) (*TechContact, error)
	// GetByPhone matches on the E.164-normalized phone number.
	GetByPhone(phone string) (*TechContact, error)
	List() ([]*TechContact, error)
}
