// Package contact holds the lead record shape, phone/e-mail normalization and the
// two extractors that pull contact data out of model replies and raw user text.
package contact

import "time"

type Source string

const (
	SourceContactButton Source = "contact_button"
	SourceAIExtraction  Source = "ai_extraction"
	SourceManualText    Source = "manual_text"
	// SourceManual is stamped on records saved without an explicit source.
	SourceManual Source = "manual"
)

// UnknownUsername is stored when the platform user has no username.
const UnknownUsername = "не указан"

// Record is one captured lead. Records are append-only.
type Record struct {
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	PhoneNumber    string    `json:"phone_number"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	UserID         int64     `json:"user_id"`
	AdditionalInfo string    `json:"additional_info"`
	Source         Source    `json:"source"`
	Timestamp      time.Time `json:"timestamp"`
}

// HasReachableChannel reports whether the record carries a phone or an e-mail.
func (r Record) HasReachableChannel() bool {
	return r.PhoneNumber != "" || r.Email != ""
}

// FullName joins first and last name, skipping empty parts.
func (r Record) FullName() string {
	switch {
	case r.FirstName == "":
		return r.LastName
	case r.LastName == "":
		return r.FirstName
	default:
		return r.FirstName + " " + r.LastName
	}
}

// Identity is what the transport knows about the sender.
type Identity struct {
	UserID    int64
	FirstName string
	LastName  string
	Username  string
}

func (id Identity) username() string {
	if id.Username == "" {
		return UnknownUsername
	}
	return id.Username
}

// FromModel merges a model extraction with the sender identity. The extracted
// name wins over the platform first name.
func FromModel(ext ModelExtraction, id Identity) Record {
	name := ext.Name
	if name == "" {
		name = id.FirstName
	}
	return Record{
		FirstName:      name,
		LastName:       id.LastName,
		PhoneNumber:    ext.Phone,
		Email:          ext.Email,
		Username:       id.username(),
		UserID:         id.UserID,
		AdditionalInfo: ext.Comment,
		Source:         SourceAIExtraction,
	}
}

// FromText merges a heuristic extraction with the sender identity.
func FromText(ext TextExtraction, id Identity) Record {
	name := ext.Name
	if name == "" {
		name = id.FirstName
	}
	return Record{
		FirstName:      name,
		LastName:       id.LastName,
		PhoneNumber:    ext.Phone,
		Email:          ext.Email,
		Username:       id.username(),
		UserID:         id.UserID,
		AdditionalInfo: ext.AdditionalInfo,
		Source:         SourceManualText,
	}
}

// FromCard builds a record from a contact card shared through the platform button.
func FromCard(firstName, lastName, phone string, id Identity) Record {
	return Record{
		FirstName:   firstName,
		LastName:    lastName,
		PhoneNumber: phone,
		Username:    id.username(),
		UserID:      id.UserID,
		Source:      SourceContactButton,
	}
}
