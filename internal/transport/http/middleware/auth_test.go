package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vibeshare/internal/service"
)

func TestAuthMiddleware(t *testing.T) {
	tokens := service.NewTokenService("test-secret", 3600)
	userID := primitive.NewObjectID()

	validToken, err := tokens.Issue(userID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	var gotID primitive.ObjectID
	var gotOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, gotOK = GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	gate := AuthMiddleware(tokens)(next)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantUserID bool
	}{
		{"valid bearer token", "Bearer " + validToken, http.StatusOK, true},
		{"missing header", "", http.StatusUnauthorized, false},
		{"wrong scheme", "Basic " + validToken, http.StatusUnauthorized, false},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID, gotOK = primitive.NilObjectID, false

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			gate.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantUserID {
				if !gotOK || gotID != userID {
					t.Errorf("context user = %v (ok=%v), want %v", gotID, gotOK, userID)
				}
			} else if gotOK {
				t.Error("handler should not run for a rejected request")
			}
		})
	}
}

func TestGetUserIDFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := GetUserIDFromContext(req.Context()); ok {
		t.Error("expected no user ID on a bare context")
	}
}
