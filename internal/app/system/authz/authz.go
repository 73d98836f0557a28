// internal/app/system/authz/authz.go

// Package authz reads the session user out of the request context and
// resolves it into typed identity values handlers can use directly.
package authz

import (
	"net/http"
	"strings"

	"github.com/meroket/meroket/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx resolves the request's session user into role, display name, and a
// Mongo ObjectID. ok is false when there is no user or the stored id is
// malformed; callers treat that as signed-out.
func UserCtx(r *http.Request) (role, name string, userID primitive.ObjectID, ok bool) {
	u, found := auth.CurrentUser(r)
	if !found || u.ID == "" {
		return "", "", primitive.NilObjectID, false
	}
	oid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return "", "", primitive.NilObjectID, false
	}
	return strings.ToLower(u.Role), u.Name, oid, true
}

// IsAdmin reports whether the request's user has the admin role.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "admin"
}

// UserTier returns the request user's tier, or "" when signed out.
func UserTier(r *http.Request) string {
	u, found := auth.CurrentUser(r)
	if !found {
		return ""
	}
	return u.Tier
}
