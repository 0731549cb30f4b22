package auth

import (
	"testing"
	"time"

	"github.com/Vijay-1289/Expense-Tracker/internal/core"
)

func TestManager_SignInAndLookup(t *testing.T) {
	m := NewManager(time.Hour)

	token := m.SignIn(User{Identity: "u1", Email: "a@example.com", FullName: "A"})
	if token == "" {
		t.Fatal("SignIn returned empty token")
	}

	u, ok := m.Lookup(token)
	if !ok {
		t.Fatal("Lookup should find a fresh session")
	}
	if u.Identity != "u1" || u.Email != "a@example.com" {
		t.Fatalf("Lookup = %+v", u)
	}

	if _, ok := m.Lookup("no-such-token"); ok {
		t.Fatal("Lookup should miss on unknown tokens")
	}
}

func TestManager_TokensAreUnique(t *testing.T) {
	m := NewManager(time.Hour)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok := m.SignIn(User{Identity: "u1"})
		if seen[tok] {
			t.Fatalf("duplicate token after %d sign-ins", i)
		}
		seen[tok] = true
	}
}

func TestManager_SignOut(t *testing.T) {
	m := NewManager(time.Hour)
	token := m.SignIn(User{Identity: "u1"})

	m.SignOut(token)
	if _, ok := m.Lookup(token); ok {
		t.Fatal("Lookup should miss after sign-out")
	}

	// Signing out twice is harmless.
	m.SignOut(token)
}

func TestManager_Expiry(t *testing.T) {
	m := NewManager(time.Hour)
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	token := m.SignIn(User{Identity: "u1"})

	m.now = func() time.Time { return base.Add(59 * time.Minute) }
	if _, ok := m.Lookup(token); !ok {
		t.Fatal("session expired too early")
	}

	m.now = func() time.Time { return base.Add(61 * time.Minute) }
	if _, ok := m.Lookup(token); ok {
		t.Fatal("session should expire after the TTL")
	}
	if n := m.ActiveSessions(); n != 0 {
		t.Fatalf("ActiveSessions = %d after expiry, want 0", n)
	}
}

func TestManager_OnIdentityChange(t *testing.T) {
	m := NewManager(time.Hour)
	var changed []string
	m.OnIdentityChange(func(id core.Identity) { changed = append(changed, string(id)) })

	first := m.SignIn(User{Identity: "u1"})
	second := m.SignIn(User{Identity: "u1"})

	m.SignOut(first)
	if len(changed) != 0 {
		t.Fatalf("hook fired with a session still active: %v", changed)
	}

	m.SignOut(second)
	if len(changed) != 1 || changed[0] != "u1" {
		t.Fatalf("hook after last sign-out = %v, want [u1]", changed)
	}

	// Unknown tokens do not fire the hook.
	m.SignOut("no-such-token")
	if len(changed) != 1 {
		t.Fatalf("hook fired for unknown token: %v", changed)
	}
}

func TestManager_OnIdentityChangeOnExpiry(t *testing.T) {
	m := NewManager(time.Hour)
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	var changed []string
	m.OnIdentityChange(func(id core.Identity) { changed = append(changed, string(id)) })

	token := m.SignIn(User{Identity: "u1"})

	m.now = func() time.Time { return base.Add(61 * time.Minute) }
	if _, ok := m.Lookup(token); ok {
		t.Fatal("session should expire after the TTL")
	}
	if len(changed) != 1 || changed[0] != "u1" {
		t.Fatalf("hook after expiry = %v, want [u1]", changed)
	}
}

func TestNewState_NotEmpty(t *testing.T) {
	if NewState() == "" {
		t.Fatal("NewState returned empty string")
	}
	if NewState() == NewState() {
		t.Fatal("NewState should not repeat")
	}
}
