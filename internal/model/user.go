package model

import "foreverhome/internal/store"

// User is a stored user record. Email identifies it; everything besides
// the role is free-form profile data kept in Doc.
type User struct {
	ID    string
	Email string
	Role  Role
	Doc   store.Document
}

// UserFromDocument reads a user out of its stored document.
func UserFromDocument(doc store.Document) *User {
	if doc == nil {
		return nil
	}
	id, _ := doc[store.IDField].(string)
	email, _ := doc[FieldEmail].(string)
	return &User{
		ID:    id,
		Email: email,
		Role:  ParseRole(doc[FieldRole]),
		Doc:   doc,
	}
}
