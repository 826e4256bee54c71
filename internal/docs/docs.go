package docs

import (
	"context"
	"errors"
)

// ErrInvalidRole is returned for any role outside the recognized set. It is
// the one provider error that surfaces to the caller as a bad request
// instead of degrading into the general-knowledge fallback.
var ErrInvalidRole = errors.New("invalid role")

type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
)

func (r Role) Valid() bool {
	switch r {
	case RoleTeacher, RoleStudent, RoleParent:
		return true
	}
	return false
}

// Document is one retrievable unit of knowledge about a user, synthesized
// fresh from relational data on every query. Only Content is embedded and
// searched; Metadata rides along through retrieval untouched.
type Document struct {
	ID       string
	Title    string
	Content  string
	Metadata map[string]string
}

// Provider fetches the role-specific document slice for one user. An
// unknown role fails with ErrInvalidRole; a known user with no related
// records yields an empty slice and a nil error.
type Provider interface {
	FetchDocuments(ctx context.Context, userID string, role Role) ([]Document, error)
}
