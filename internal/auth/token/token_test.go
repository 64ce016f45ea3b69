package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

type stubConfig struct {
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func (s stubConfig) GetJWTAccessSecret() string        { return s.accessSecret }
func (s stubConfig) GetJWTRefreshSecret() string       { return s.refreshSecret }
func (s stubConfig) GetAccessTokenTTL() time.Duration  { return s.accessTTL }
func (s stubConfig) GetRefreshTokenTTL() time.Duration { return s.refreshTTL }
func (s stubConfig) GetAppBaseURL() string             { return "http://localhost:4200" }

func newTestIssuer() *Issuer {
	return NewIssuer(stubConfig{
		accessSecret:  "access-secret",
		refreshSecret: "refresh-secret",
		accessTTL:     time.Hour,
		refreshTTL:    2 * time.Hour,
	})
}

func TestIssueAndParseRefresh(t *testing.T) {
	issuer := newTestIssuer()
	want := Claims{ID: uuid.New(), Email: "alice@example.com", Role: "STUDENT"}

	pair, err := issuer.Issue(want)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", pair)
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Fatal("access and refresh tokens must differ")
	}

	got, err := issuer.ParseRefresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("ParseRefresh: %v", err)
	}
	if got != want {
		t.Errorf("claims = %+v, want %+v", got, want)
	}
}

func TestParseRefreshRejectsAccessToken(t *testing.T) {
	issuer := newTestIssuer()
	pair, err := issuer.Issue(Claims{ID: uuid.New(), Email: "a@b.c", Role: "ADMIN"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// The access token is signed with a different secret.
	if _, err := issuer.ParseRefresh(pair.AccessToken); err == nil {
		t.Fatal("expected access token to be rejected as refresh token")
	}
}

func TestParseRefreshRejectsExpired(t *testing.T) {
	expired := NewIssuer(stubConfig{
		accessSecret:  "access-secret",
		refreshSecret: "refresh-secret",
		accessTTL:     -time.Minute,
		refreshTTL:    -time.Minute,
	})
	pair, err := expired.Issue(Claims{ID: uuid.New(), Email: "a@b.c", Role: "STUDENT"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := expired.ParseRefresh(pair.RefreshToken); err == nil {
		t.Fatal("expected expired refresh token to be rejected")
	}
}

func TestParseRefreshRejectsWrongSecret(t *testing.T) {
	issuer := newTestIssuer()
	other := NewIssuer(stubConfig{
		accessSecret:  "access-secret",
		refreshSecret: "a-different-secret",
		accessTTL:     time.Hour,
		refreshTTL:    2 * time.Hour,
	})

	pair, err := other.Issue(Claims{ID: uuid.New(), Email: "a@b.c", Role: "STUDENT"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := issuer.ParseRefresh(pair.RefreshToken); err == nil {
		t.Fatal("expected token signed with another secret to be rejected")
	}
}

func TestGenerateRandomToken(t *testing.T) {
	a, err := GenerateRandomToken(32)
	if err != nil {
		t.Fatalf("GenerateRandomToken: %v", err)
	}
	b, err := GenerateRandomToken(32)
	if err != nil {
		t.Fatalf("GenerateRandomToken: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct random tokens")
	}
	if HashSHA256(a) == HashSHA256(b) {
		t.Fatal("expected distinct hashes for distinct tokens")
	}
	if len(HashSHA256(a)) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(HashSHA256(a)))
	}
}
