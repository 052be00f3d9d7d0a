package auth

import (
	"strings"
	"testing"
	"time"
)

// TestGenerateAndVerifyTokens verifies the access token round trip carries
// the huddle claim
func TestGenerateAndVerifyTokens(t *testing.T) {
	jwtAuth, err := NewLocalJWTAuth("test-secret", 0, 0)
	if err != nil {
		t.Fatalf("NewLocalJWTAuth failed: %v", err)
	}

	access, refresh, err := jwtAuth.GenerateTokens("user-1", "alum@example.com", "user", "huddle-1")
	if err != nil {
		t.Fatalf("GenerateTokens failed: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("Expected non-empty tokens")
	}

	user, err := jwtAuth.VerifyAccessToken(access)
	if err != nil {
		t.Fatalf("VerifyAccessToken failed: %v", err)
	}
	if user.ID != "user-1" || user.Email != "alum@example.com" || user.Role != "user" {
		t.Errorf("Unexpected user claims: %+v", user)
	}
	if user.HuddleID != "huddle-1" {
		t.Errorf("Expected huddle claim huddle-1, got %s", user.HuddleID)
	}

	claims, err := jwtAuth.VerifyRefreshToken(refresh)
	if err != nil {
		t.Fatalf("VerifyRefreshToken failed: %v", err)
	}
	if claims.TokenID == "" {
		t.Error("Refresh token should carry a token id")
	}
}

// TestVerifyRejectsWrongKey verifies tokens signed with another secret fail
func TestVerifyRejectsWrongKey(t *testing.T) {
	a, _ := NewLocalJWTAuth("secret-a", 0, 0)
	b, _ := NewLocalJWTAuth("secret-b", 0, 0)

	access, _, err := a.GenerateTokens("user-1", "alum@example.com", "user", "")
	if err != nil {
		t.Fatalf("GenerateTokens failed: %v", err)
	}

	if _, err := b.VerifyAccessToken(access); err == nil {
		t.Error("Expected verification failure with wrong key")
	}
}

// TestVerifyRejectsExpired verifies an expired access token is rejected
func TestVerifyRejectsExpired(t *testing.T) {
	jwtAuth, _ := NewLocalJWTAuth("test-secret", -time.Minute, 0)

	access, _, err := jwtAuth.GenerateTokens("user-1", "alum@example.com", "user", "")
	if err != nil {
		t.Fatalf("GenerateTokens failed: %v", err)
	}

	if _, err := jwtAuth.VerifyAccessToken(access); err == nil {
		t.Error("Expected expired token to be rejected")
	}
}

// TestExtractToken covers the Authorization header formats
func TestExtractToken(t *testing.T) {
	if _, err := ExtractToken(""); err == nil {
		t.Error("Empty header should fail")
	}
	if _, err := ExtractToken("Basic abc"); err == nil {
		t.Error("Non-bearer header should fail")
	}
	token, err := ExtractToken("Bearer abc123")
	if err != nil || token != "abc123" {
		t.Errorf("Expected abc123, got %q (%v)", token, err)
	}
	token, err = ExtractToken("bearer abc123")
	if err != nil || token != "abc123" {
		t.Error("Bearer prefix should be case-insensitive")
	}
}

// TestPasswordHashRoundTrip verifies Argon2id hashing and verification
func TestPasswordHashRoundTrip(t *testing.T) {
	jwtAuth, _ := NewLocalJWTAuth("test-secret", 0, 0)

	hash, err := jwtAuth.HashPassword("Str0ng!Pass")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !strings.HasPrefix(hash, "argon2id$") {
		t.Errorf("Unexpected hash format: %s", hash)
	}

	ok, err := jwtAuth.VerifyPassword(hash, "Str0ng!Pass")
	if err != nil || !ok {
		t.Errorf("Expected password to verify, got ok=%t err=%v", ok, err)
	}

	ok, err = jwtAuth.VerifyPassword(hash, "wrong-password")
	if err != nil {
		t.Fatalf("VerifyPassword failed: %v", err)
	}
	if ok {
		t.Error("Wrong password should not verify")
	}
}

// TestValidatePassword covers the password policy
func TestValidatePassword(t *testing.T) {
	cases := []struct {
		password string
		valid    bool
	}{
		{"Str0ng!Pass", true},
		{"short1!A", true},
		{"weak", false},
		{"nouppercase1!", false},
		{"NOLOWERCASE1!", false},
		{"NoNumbers!", false},
		{"NoSpecial1", false},
	}

	for _, tc := range cases {
		err := ValidatePassword(tc.password)
		if tc.valid && err != nil {
			t.Errorf("Expected %q to be valid, got %v", tc.password, err)
		}
		if !tc.valid && err == nil {
			t.Errorf("Expected %q to be rejected", tc.password)
		}
	}
}
