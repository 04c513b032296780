package api

import (
	"context"
	"testing"
)

// TestWithUserID_RoundTrip verifies the user id can be added and extracted from context.
func TestWithUserID_RoundTrip(t *testing.T) {
	ctx := WithUserID(context.Background(), "user_01J")

	got, err := UserIDFromContext(ctx)
	if err != nil {
		t.Fatalf("UserIDFromContext returned error: %v", err)
	}
	if got != "user_01J" {
		t.Errorf("UserIDFromContext = %q, want user_01J", got)
	}
}

func TestUserIDFromContext_Missing(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
	}{
		{"no value", context.Background()},
		{"empty id", WithUserID(context.Background(), "")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UserIDFromContext(tt.ctx)
			if err != ErrNoUserInContext {
				t.Errorf("error = %v, want ErrNoUserInContext", err)
			}
		})
	}
}

// TestMustUserIDFromContext_Panics verifies panic when no user in context.
func TestMustUserIDFromContext_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustUserIDFromContext did not panic")
		}
	}()

	MustUserIDFromContext(context.Background())
}

func TestMustUserIDFromContext_Success(t *testing.T) {
	ctx := WithUserID(context.Background(), "user_02")
	if got := MustUserIDFromContext(ctx); got != "user_02" {
		t.Errorf("MustUserIDFromContext = %q, want user_02", got)
	}
}
