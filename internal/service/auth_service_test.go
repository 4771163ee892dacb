package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-portfolio-cms/internal/model"
)

type fakeUserStore struct {
	byEmail map[string]model.User
	byID    map[string]model.User
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return model.User{}, model.ErrUserNotFound
}

func (f *fakeUserStore) FindByID(_ context.Context, id string) (model.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return model.User{}, model.ErrUserNotFound
}

type fakeTokenStore struct {
	mu      sync.Mutex
	records map[string]*model.RefreshToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{records: map[string]*model.RefreshToken{}}
}

func (f *fakeTokenStore) Store(_ context.Context, t model.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[t.ID] = &t
	return nil
}

func (f *fakeTokenStore) FindByID(_ context.Context, id string) (model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.records[id]; ok {
		return *rec, nil
	}
	return model.RefreshToken{}, model.ErrTokenInvalid
}

func (f *fakeTokenStore) Revoke(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok || rec.RevokedAt != nil {
		return false, nil
	}
	now := time.Now()
	rec.RevokedAt = &now
	return true, nil
}

func (f *fakeTokenStore) RevokeAllForUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for _, rec := range f.records {
		if rec.UserID == userID && rec.RevokedAt == nil {
			rec.RevokedAt = &now
		}
	}
	return nil
}

func newTestAuthService(t *testing.T) (*AuthService, *fakeTokenStore) {
	t.Helper()

	// Cost 4 hash keeps the test fast; the service itself always hashes new
	// secrets at its configured cost.
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	admin := model.User{
		ID:           "user-1",
		Email:        "admin@example.com",
		Name:         "Admin",
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
	}
	editorHash, err := bcrypt.GenerateFromPassword([]byte("editor-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	editor := model.User{
		ID:           "user-2",
		Email:        "editor@example.com",
		PasswordHash: string(editorHash),
		Role:         model.RoleEditor,
	}

	users := &fakeUserStore{
		byEmail: map[string]model.User{admin.Email: admin, editor.Email: editor},
		byID:    map[string]model.User{admin.ID: admin, editor.ID: editor},
	}
	tokens := newFakeTokenStore()

	svc, err := NewAuthService(
		"access-secret", "admin-secret",
		15*time.Minute, 7*24*time.Hour, 7*24*time.Hour,
		users, tokens,
	)
	require.NoError(t, err)

	return svc, tokens
}

func TestNewAuthService_RejectsSharedSecret(t *testing.T) {
	_, err := NewAuthService("same", "same", time.Minute, time.Hour, time.Hour, nil, nil)
	assert.Error(t, err)
}

func TestLogin_IssuesVerifiableTokens(t *testing.T) {
	svc, _ := newTestAuthService(t)

	pair, err := svc.Login(context.Background(), "admin@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", pair.User.Email)
	assert.NotEmpty(t, pair.User.ID)

	claims, err := svc.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.Equal(t, "admin@example.com", claims.Email)
}

func TestLogin_GenericFailureForUnknownEmailAndWrongPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, errUnknown := svc.Login(context.Background(), "nobody@example.com", "whatever")
	_, errWrongPw := svc.Login(context.Background(), "admin@example.com", "wrong")

	// Both failures must be the same sentinel so the handler produces
	// byte-identical responses.
	assert.ErrorIs(t, errUnknown, model.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPw, model.ErrInvalidCredentials)
}

func TestRotateRefreshToken_RotationInvariant(t *testing.T) {
	svc, _ := newTestAuthService(t)

	pair, err := svc.Login(context.Background(), "admin@example.com", "correct-horse")
	require.NoError(t, err)

	rotated, err := svc.RotateRefreshToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)
	assert.Equal(t, pair.User, rotated.User)

	// Replaying the original credential after rotation must fail even
	// though it is still within its expiry window.
	_, err = svc.RotateRefreshToken(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, model.ErrTokenInvalid)

	// The successor still works.
	_, err = svc.RotateRefreshToken(context.Background(), rotated.RefreshToken)
	assert.NoError(t, err)
}

func TestRotateRefreshToken_WrongSecretFails(t *testing.T) {
	svc, _ := newTestAuthService(t)

	pair, err := svc.Login(context.Background(), "admin@example.com", "correct-horse")
	require.NoError(t, err)

	id, _, ok := splitRefreshValue(pair.RefreshToken)
	require.True(t, ok)

	_, err = svc.RotateRefreshToken(context.Background(), id+".forged-secret")
	assert.ErrorIs(t, err, model.ErrTokenMismatch)

	// A failed hash check must not burn the token; the real credential
	// still rotates.
	_, err = svc.RotateRefreshToken(context.Background(), pair.RefreshToken)
	assert.NoError(t, err)
}

func TestRotateRefreshToken_MalformedValue(t *testing.T) {
	svc, _ := newTestAuthService(t)

	for _, raw := range []string{"", "no-separator", ".secret-only", "id-only.", "unknown-id.secret"} {
		_, err := svc.RotateRefreshToken(context.Background(), raw)
		assert.ErrorIs(t, err, model.ErrTokenInvalid, "value %q", raw)
	}
}

func TestRotateRefreshToken_ExpiredRecord(t *testing.T) {
	svc, tokens := newTestAuthService(t)

	pair, err := svc.Login(context.Background(), "admin@example.com", "correct-horse")
	require.NoError(t, err)

	id, _, _ := splitRefreshValue(pair.RefreshToken)
	tokens.mu.Lock()
	tokens.records[id].ExpiresAt = time.Now().Add(-time.Minute)
	tokens.mu.Unlock()

	_, err = svc.RotateRefreshToken(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, model.ErrTokenInvalid)
}

func TestRevokeRefreshToken_BestEffort(t *testing.T) {
	svc, _ := newTestAuthService(t)

	pair, err := svc.Login(context.Background(), "admin@example.com", "correct-horse")
	require.NoError(t, err)

	// None of these panic or error: valid, repeated, malformed, missing.
	svc.RevokeRefreshToken(context.Background(), pair.RefreshToken)
	svc.RevokeRefreshToken(context.Background(), pair.RefreshToken)
	svc.RevokeRefreshToken(context.Background(), "garbage")
	svc.RevokeRefreshToken(context.Background(), "")

	_, err = svc.RotateRefreshToken(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, model.ErrTokenInvalid)
}

func TestVerifyAccessToken_RejectsGarbageAndWrongDomain(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.VerifyAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	// An admin session token must not pass the user access verifier even
	// though both are HS256 JWTs.
	adminToken, err := svc.CreateAdminSessionToken("admin@example.com")
	require.NoError(t, err)
	_, err = svc.VerifyAccessToken(adminToken)
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestAdminSessionToken_RoundTrip(t *testing.T) {
	svc, _ := newTestAuthService(t)

	token, err := svc.CreateAdminSessionToken("admin@example.com")
	require.NoError(t, err)

	claims := svc.VerifyAdminSessionToken(token)
	require.NotNil(t, claims)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, model.RoleAdmin, claims.Role)

	// Cross-domain: a user access token is nil in the admin domain.
	pair, err := svc.Login(context.Background(), "admin@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Nil(t, svc.VerifyAdminSessionToken(pair.AccessToken))
	assert.Nil(t, svc.VerifyAdminSessionToken("garbage"))
}

func TestVerifyAdminCredentials_RequiresAdminRole(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.VerifyAdminCredentials(context.Background(), "editor@example.com", "editor-pass")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	user, err := svc.VerifyAdminCredentials(context.Background(), "admin@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, user.Role)
}

func TestConcurrentRotation_ExactlyOneWinner(t *testing.T) {
	svc, _ := newTestAuthService(t)

	pair, err := svc.Login(context.Background(), "admin@example.com", "correct-horse")
	require.NoError(t, err)

	const attempts = 8
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RotateRefreshToken(context.Background(), pair.RefreshToken)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes int
	for err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, model.ErrTokenInvalid)
		}
	}
	assert.Equal(t, 1, successes)
}
