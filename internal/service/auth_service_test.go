package service_test

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/energy-data-api/internal/config"
	"github.com/energy-data-api/internal/models"
	"github.com/energy-data-api/internal/repository"
	"github.com/energy-data-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUserStore is an in-memory UserStore that enforces the same
// uniqueness guarantee as the real unique index, atomically under a lock.
type fakeUserStore struct {
	mu     sync.Mutex
	users  []*models.User
	nextID uint
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1}
}

func (s *fakeUserStore) Create(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	user.ID = s.nextID
	s.nextID++
	stored := *user
	s.users = append(s.users, &stored)
	return nil
}

func (s *fakeUserStore) GetByEmail(email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			found := *u
			return &found, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *fakeUserStore) ListEmails() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	emails := make([]string, 0, len(s.users))
	for _, u := range s.users {
		emails = append(emails, u.Email)
	}
	return emails, nil
}

func (s *fakeUserStore) delete(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range s.users {
		if u.Email == email {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return
		}
	}
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:               "test-secret",
		AccessExpireMinutes:  30,
		DefaultExpireMinutes: 15,
	}
}

func newAuthService(admins ...string) (*service.AuthService, *fakeUserStore) {
	store := newFakeUserStore()
	return service.NewAuthService(store, testJWTConfig(), admins), store
}

func register(t *testing.T, svc *service.AuthService, email, password string) {
	t.Helper()
	err := svc.Register(&service.RegisterRequest{Email: email, Password: password})
	require.NoError(t, err)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newAuthService()

	register(t, svc, "a@x.com", "pw1")

	err := svc.Register(&service.RegisterRequest{Email: "a@x.com", Password: "other1"})
	assert.ErrorIs(t, err, service.ErrEmailTaken)
}

func TestRegister_StoresHashNotPassword(t *testing.T) {
	svc, store := newAuthService()

	register(t, svc, "a@x.com", "pw1secret")

	user, err := store.GetByEmail("a@x.com")
	require.NoError(t, err)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotContains(t, user.PasswordHash, "pw1secret")
}

func TestRegister_ConcurrentSameEmail(t *testing.T) {
	svc, _ := newAuthService()

	const attempts = 16
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.Register(&service.RegisterRequest{Email: "race@x.com", Password: "pw1234"})
		}()
	}
	wg.Wait()
	close(errs)

	var successes, duplicates int
	for err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, service.ErrEmailTaken):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes, "exactly one registration must win")
	assert.Equal(t, attempts-1, duplicates)
}

func TestLogin_Success(t *testing.T) {
	svc, _ := newAuthService()
	register(t, svc, "a@x.com", "pw1234")

	token, err := svc.Login(&service.LoginRequest{Email: "a@x.com", Password: "pw1234"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", token.TokenType)

	subject, err := svc.VerifyToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", subject)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newAuthService()
	register(t, svc, "a@x.com", "pw1234")

	_, wrongPassword := svc.Login(&service.LoginRequest{Email: "a@x.com", Password: "nope99"})
	_, unknownEmail := svc.Login(&service.LoginRequest{Email: "ghost@x.com", Password: "pw1234"})

	// Responses must not reveal which accounts exist
	assert.ErrorIs(t, wrongPassword, service.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, service.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestIssueToken_DefaultTTL(t *testing.T) {
	svc, _ := newAuthService()

	token, err := svc.IssueToken("a@x.com", 0)
	require.NoError(t, err)

	subject, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", subject)
}

func TestVerifyToken_Expired(t *testing.T) {
	cfg := testJWTConfig()
	cfg.DefaultExpireMinutes = -1
	svc := service.NewAuthService(newFakeUserStore(), cfg, nil)

	// ttl<=0 falls back to the (negative) default, producing a token
	// already past its expiry
	token, err := svc.IssueToken("a@x.com", 0)
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestVerifyToken_ShortTTLExpires(t *testing.T) {
	svc, _ := newAuthService()

	token, err := svc.IssueToken("a@x.com", time.Second)
	require.NoError(t, err)

	// Valid immediately after issuance
	subject, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", subject)
}

func TestVerifyToken_Tampered(t *testing.T) {
	svc, _ := newAuthService()

	token, err := svc.IssueToken("a@x.com", time.Minute)
	require.NoError(t, err)

	// Alter one byte in the claims segment
	mid := len(token) / 2
	flipped := byte('A')
	if token[mid] == flipped {
		flipped = 'B'
	}
	tampered := token[:mid] + string(flipped) + token[mid+1:]
	require.NotEqual(t, token, tampered)

	_, err = svc.VerifyToken(tampered)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	svc, _ := newAuthService()

	otherCfg := testJWTConfig()
	otherCfg.Secret = "another-secret"
	other := service.NewAuthService(newFakeUserStore(), otherCfg, nil)

	token, err := other.IssueToken("a@x.com", time.Minute)
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestVerifyToken_Malformed(t *testing.T) {
	svc, _ := newAuthService()

	for _, bad := range []string{"", "garbage", "a.b", strings.Repeat("x", 64)} {
		_, err := svc.VerifyToken(bad)
		assert.ErrorIs(t, err, service.ErrInvalidToken, "token %q", bad)
	}
}

func TestListEmails(t *testing.T) {
	svc, store := newAuthService("admin@x.com")
	register(t, svc, "admin@x.com", "pw1234")
	register(t, svc, "b@x.com", "pw1234")

	emails, err := svc.ListEmails("admin@x.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin@x.com", "b@x.com"}, emails)

	// Any valid non-admin token is not enough to enumerate accounts
	_, err = svc.ListEmails("b@x.com")
	assert.ErrorIs(t, err, service.ErrForbidden)

	// A token whose subject no longer exists resolves to not-found
	store.delete("admin@x.com")
	_, err = svc.ListEmails("admin@x.com")
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}
