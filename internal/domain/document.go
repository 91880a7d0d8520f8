package domain

import "errors"

const MaxDocumentIDLen = 128

var ErrDocumentID = errors.New("invalid document id")

// Document is the persisted state of a shared document.
// Data is opaque to the server.
type Document struct {
	ID   string `gorm:"primaryKey"`
	Data string
}

func ValidateDocumentID(id string) error {
	if id == "" || len(id) > MaxDocumentIDLen {
		return ErrDocumentID
	}
	return nil
}
