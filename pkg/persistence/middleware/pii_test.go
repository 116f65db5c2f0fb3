package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/cuepoint/pkg/adapters/memory"
	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/aretw0/cuepoint/pkg/persistence/middleware"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlying := memory.NewStore()
	mw, err := middleware.NewPIIMiddleware([]string{"password", "^email$"})
	if err != nil {
		t.Fatalf("NewPIIMiddleware failed: %v", err)
	}
	secure := mw(underlying)

	ctx := context.Background()
	snap := &domain.Snapshot{
		Variables: map[string]any{
			"username":      "jdoe",
			"user_password": "secret123",
			"profile": map[string]any{
				"city":  "Recife",
				"email": "jdoe@example.com",
			},
		},
	}

	if err := secure.Save(ctx, "pii-session", snap); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if snap.Variables["user_password"] != "secret123" {
		t.Error("Middleware modified the caller's snapshot")
	}
	if snap.Variables["profile"].(map[string]any)["email"] != "jdoe@example.com" {
		t.Error("Middleware modified the caller's nested map")
	}

	stored, err := underlying.Load(ctx, "pii-session")
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	if stored.Variables["username"] != "jdoe" {
		t.Error("Username shouldn't be masked")
	}
	if stored.Variables["user_password"] != middleware.Mask {
		t.Errorf("Password should be masked, got: %v", stored.Variables["user_password"])
	}
	profile := stored.Variables["profile"].(map[string]any)
	if profile["email"] != middleware.Mask {
		t.Errorf("Nested email should be masked, got: %v", profile["email"])
	}
	if profile["city"] != "Recife" {
		t.Errorf("City shouldn't be masked, got: %v", profile["city"])
	}
}

func TestPIIMiddleware_InvalidPattern(t *testing.T) {
	if _, err := middleware.NewPIIMiddleware([]string{"("}); err == nil {
		t.Error("Expected error for invalid pattern")
	}
}

func TestChain_EncryptsAfterMasking(t *testing.T) {
	underlying := memory.NewStore()
	pii, err := middleware.NewPIIMiddleware([]string{"token"})
	if err != nil {
		t.Fatal(err)
	}
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	if err != nil {
		t.Fatal(err)
	}
	store := middleware.Chain(underlying, pii, enc)

	ctx := context.Background()
	if err := store.Save(ctx, "s", &domain.Snapshot{Variables: map[string]any{"token": "abc", "score": 3}}); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load(ctx, "s")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Variables["token"] != middleware.Mask {
		t.Errorf("Expected masked token, got %v", loaded.Variables["token"])
	}
	if loaded.Variables["score"] != float64(3) {
		t.Errorf("Expected score 3, got %v", loaded.Variables["score"])
	}
}
