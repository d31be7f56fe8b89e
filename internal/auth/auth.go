// Package auth verifies legacy local passwords stored as bcrypt hashes.
// Accounts created through the external identity provider have no hash and
// are reported as such, distinct from a wrong password.
package auth

import (
	"errors"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/I2Cprogramacion/SEI-sub000/internal/schema"
	"github.com/I2Cprogramacion/SEI-sub000/internal/store"
)

// Result messages. Each failure reason has its own message.
const (
	MsgNotFound    = "user not found"
	MsgNoHash      = "password hash not available"
	MsgBadPassword = "incorrect password"
	MsgOK          = "login successful"
)

// ErrEmptyPassword is returned by HashPassword for an empty input.
var ErrEmptyPassword = errors.New("required field: password is empty")

// Verify checks password against the hash stored in row. A nil row means
// the identifier matched nothing.
func Verify(row store.Record, password string) store.CredentialResult {
	if row == nil {
		return store.CredentialResult{Message: MsgNotFound, Reason: store.ReasonNotFound}
	}

	hash := row.Text(schema.ColPassword)
	if hash == "" {
		return store.CredentialResult{Message: MsgNoHash, Reason: store.ReasonNoHash}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return store.CredentialResult{Message: MsgBadPassword, Reason: store.ReasonBadPassword}
	}

	return store.CredentialResult{
		Success: true,
		Message: MsgOK,
		Reason:  store.ReasonOK,
		User:    PublicUserFrom(row),
	}
}

// HashPassword returns the bcrypt hash of password at the default cost.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// PublicUserFrom builds the login view of a researcher row.
func PublicUserFrom(row store.Record) *store.PublicUser {
	id, _ := strconv.ParseInt(row.Text("id"), 10, 64)
	area := row.Text("area")
	if area == "" {
		area = row.Text("area_investigacion")
	}
	return &store.PublicUser{
		ID:          id,
		Name:        row.Text(schema.ColFullName),
		Email:       row.Text(schema.ColEmail),
		ExternalID:  row.Text(schema.ColExternalID),
		Institution: row.Text("institucion"),
		Area:        area,
		Level:       row.Text("nivel"),
		Admin:       truthy(row, "es_admin"),
	}
}

func truthy(row store.Record, column string) bool {
	v, ok := row.Get(column)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case int64:
		return t != 0
	case int32:
		return t != 0
	case string:
		b, _ := strconv.ParseBool(t)
		return b
	}
	return false
}
