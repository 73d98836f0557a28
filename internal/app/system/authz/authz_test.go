// internal/app/system/authz/authz_test.go

package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meroket/meroket/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserCtx(t *testing.T) {
	oid := primitive.NewObjectID()

	t.Run("valid user", func(t *testing.T) {
		req := auth.WithTestUser(httptest.NewRequest(http.MethodGet, "/", nil),
			&auth.SessionUser{ID: oid.Hex(), Name: "Dana", Role: "Admin", Tier: "pro"})

		role, name, userID, ok := UserCtx(req)
		if !ok {
			t.Fatal("expected ok")
		}
		if role != "admin" {
			t.Fatalf("role = %q, want lowercased admin", role)
		}
		if name != "Dana" {
			t.Fatalf("name = %q", name)
		}
		if userID != oid {
			t.Fatalf("userID = %v, want %v", userID, oid)
		}
	})

	t.Run("no user", func(t *testing.T) {
		_, _, _, ok := UserCtx(httptest.NewRequest(http.MethodGet, "/", nil))
		if ok {
			t.Fatal("expected not ok for anonymous request")
		}
	})

	t.Run("malformed id fails closed", func(t *testing.T) {
		req := auth.WithTestUser(httptest.NewRequest(http.MethodGet, "/", nil),
			&auth.SessionUser{ID: "not-a-hex-id", Role: "admin"})
		_, _, _, ok := UserCtx(req)
		if ok {
			t.Fatal("expected not ok for malformed id")
		}
	})
}

func TestIsAdmin(t *testing.T) {
	oid := primitive.NewObjectID()

	admin := auth.WithTestUser(httptest.NewRequest(http.MethodGet, "/", nil),
		&auth.SessionUser{ID: oid.Hex(), Role: "admin"})
	if !IsAdmin(admin) {
		t.Fatal("admin not recognized")
	}

	user := auth.WithTestUser(httptest.NewRequest(http.MethodGet, "/", nil),
		&auth.SessionUser{ID: oid.Hex(), Role: "user"})
	if IsAdmin(user) {
		t.Fatal("regular user recognized as admin")
	}

	if IsAdmin(httptest.NewRequest(http.MethodGet, "/", nil)) {
		t.Fatal("anonymous recognized as admin")
	}
}

func TestUserTier(t *testing.T) {
	req := auth.WithTestUser(httptest.NewRequest(http.MethodGet, "/", nil),
		&auth.SessionUser{ID: primitive.NewObjectID().Hex(), Tier: "hyper"})
	if got := UserTier(req); got != "hyper" {
		t.Fatalf("tier = %q, want hyper", got)
	}
	if got := UserTier(httptest.NewRequest(http.MethodGet, "/", nil)); got != "" {
		t.Fatalf("anonymous tier = %q, want empty", got)
	}
}
