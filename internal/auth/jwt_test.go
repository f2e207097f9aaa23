package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "test-secret"

func TestGenerateAndValidateToken(t *testing.T) {
	userID := uuid.New()

	tokenStr, err := GenerateToken(testSecret, userID, "waiter")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := ValidateToken(testSecret, tokenStr)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}

	if claims.UserID != userID {
		t.Errorf("user_id: got %v, want %v", claims.UserID, userID)
	}
	if claims.Role != "waiter" {
		t.Errorf("role: got %v, want waiter", claims.Role)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	tokenStr, err := GenerateToken(testSecret, uuid.New(), "admin")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := ValidateToken("other-secret", tokenStr); err == nil {
		t.Fatal("expected error for wrong secret, got nil")
	}
}

func TestValidateToken_Expired(t *testing.T) {
	claims := Claims{
		UserID: uuid.New(),
		Role:   "cashier",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := ValidateToken(testSecret, tokenStr); err == nil {
		t.Fatal("expected error for expired token, got nil")
	}
}

func TestValidateToken_WrongSigningMethod(t *testing.T) {
	// alg=none tokens must be rejected outright.
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{})
	tokenStr, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := ValidateToken(testSecret, tokenStr); err == nil {
		t.Fatal("expected error for alg=none token, got nil")
	}
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	userID := uuid.New()

	tokenStr, err := GenerateRefreshToken(testSecret, userID)
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil {
		t.Fatalf("parse refresh token: %v", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		t.Fatal("refresh token claims invalid")
	}
	if claims.Subject != userID.String() {
		t.Errorf("subject: got %v, want %v", claims.Subject, userID)
	}
}
