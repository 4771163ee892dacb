package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"go-portfolio-cms/internal/model"
)

const (
	refreshSecretBytes = 48
	bcryptCost         = 12

	tokenTypeAccess = "access"
	tokenTypeAdmin  = "admin"
)

type userStore interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id string) (model.User, error)
}

type refreshTokenStore interface {
	Store(ctx context.Context, t model.RefreshToken) error
	FindByID(ctx context.Context, id string) (model.RefreshToken, error)
	Revoke(ctx context.Context, id string) (bool, error)
	RevokeAllForUser(ctx context.Context, userID string) error
}

// AuthService owns both session systems: the user access/refresh pair and
// the admin session token. The two signing secrets never cross; a token
// from one domain is garbage to the other.
type AuthService struct {
	accessSecret []byte
	adminSecret  []byte
	accessTTL    time.Duration
	refreshTTL   time.Duration
	adminTTL     time.Duration
	users        userStore
	tokens       refreshTokenStore

	// dummyHash burns a bcrypt compare on unknown emails so login timing
	// does not reveal account existence.
	dummyHash []byte

	now func() time.Time
}

func NewAuthService(
	accessSecret string,
	adminSecret string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
	adminTTL time.Duration,
	users userStore,
	tokens refreshTokenStore,
) (*AuthService, error) {
	if strings.TrimSpace(accessSecret) == "" || strings.TrimSpace(adminSecret) == "" {
		return nil, errors.New("auth service requires both signing secrets")
	}
	if accessSecret == adminSecret {
		return nil, errors.New("access and admin signing secrets must differ")
	}

	dummyHash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("generate dummy hash: %w", err)
	}

	return &AuthService{
		accessSecret: []byte(accessSecret),
		adminSecret:  []byte(adminSecret),
		accessTTL:    accessTTL,
		refreshTTL:   refreshTTL,
		adminTTL:     adminTTL,
		users:        users,
		tokens:       tokens,
		dummyHash:    dummyHash,
		now:          time.Now,
	}, nil
}

// Login verifies credentials and issues a fresh token pair. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email string, password string) (model.TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return model.TokenPair{}, model.ErrInvalidCredentials
		}
		return model.TokenPair{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.TokenPair{}, model.ErrInvalidCredentials
	}

	return s.issueTokenPair(ctx, user)
}

// RotateRefreshToken exchanges a valid refresh credential for a new token
// pair and kills the old record. A replayed credential fails here because
// the record is already revoked; that is the anti-replay property.
func (s *AuthService) RotateRefreshToken(ctx context.Context, rawValue string) (model.TokenPair, error) {
	id, secret, ok := splitRefreshValue(rawValue)
	if !ok {
		return model.TokenPair{}, model.ErrTokenInvalid
	}

	record, err := s.tokens.FindByID(ctx, id)
	if err != nil {
		return model.TokenPair{}, err
	}

	if record.RevokedAt != nil || !s.now().Before(record.ExpiresAt) {
		return model.TokenPair{}, model.ErrTokenInvalid
	}

	if err := bcrypt.CompareHashAndPassword([]byte(record.TokenHash), []byte(secret)); err != nil {
		return model.TokenPair{}, model.ErrTokenMismatch
	}

	// Conditional revoke is the concurrency gate: of N concurrent
	// rotations on one id, exactly one wins. Losers observe "already
	// revoked" and fail closed.
	revoked, err := s.tokens.Revoke(ctx, id)
	if err != nil {
		return model.TokenPair{}, err
	}
	if !revoked {
		return model.TokenPair{}, model.ErrTokenInvalid
	}

	user, err := s.users.FindByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.TokenPair{}, model.ErrTokenInvalid
		}
		return model.TokenPair{}, err
	}

	return s.issueTokenPair(ctx, user)
}

// RevokeRefreshToken is best-effort: logout must never error visibly, even
// with a malformed or already-dead credential.
func (s *AuthService) RevokeRefreshToken(ctx context.Context, rawValue string) {
	id, _, ok := splitRefreshValue(rawValue)
	if !ok {
		return
	}

	// Failures are swallowed; the cookie is cleared regardless.
	_, _ = s.tokens.Revoke(ctx, id)
}

func (s *AuthService) VerifyAccessToken(tokenString string) (*model.AccessClaims, error) {
	claimsMap, err := s.parseHS256(tokenString, s.accessSecret)
	if err != nil {
		return nil, model.ErrUnauthorized
	}

	typ, _ := claimsMap["typ"].(string)
	if typ != tokenTypeAccess {
		return nil, model.ErrUnauthorized
	}

	claims := &model.AccessClaims{}
	claims.UserID, _ = claimsMap["sub"].(string)
	claims.Email, _ = claimsMap["email"].(string)
	claims.Role, _ = claimsMap["role"].(string)
	claims.TokenID, _ = claimsMap["jti"].(string)

	if claims.UserID == "" || claims.Email == "" || claims.Role == "" {
		return nil, model.ErrUnauthorized
	}

	return claims, nil
}

// CreateAdminSessionToken mints a token in the isolated admin domain.
// Fixed expiry, no rotation, no revocation list; logout clears the cookie.
func (s *AuthService) CreateAdminSessionToken(email string) (string, error) {
	now := s.now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  email,
		"role": model.RoleAdmin,
		"typ":  tokenTypeAdmin,
		"iat":  now.Unix(),
		"exp":  now.Add(s.adminTTL).Unix(),
	})
	return token.SignedString(s.adminSecret)
}

// VerifyAdminSessionToken returns nil on any failure so call sites branch
// on "unauthenticated" without caring why.
func (s *AuthService) VerifyAdminSessionToken(tokenString string) *model.AdminClaims {
	claimsMap, err := s.parseHS256(tokenString, s.adminSecret)
	if err != nil {
		return nil
	}

	typ, _ := claimsMap["typ"].(string)
	if typ != tokenTypeAdmin {
		return nil
	}

	claims := &model.AdminClaims{}
	claims.Email, _ = claimsMap["sub"].(string)
	claims.Role, _ = claimsMap["role"].(string)

	if claims.Email == "" || claims.Role != model.RoleAdmin {
		return nil
	}

	return claims
}

// VerifyAdminCredentials checks email+password against the user table and
// requires the admin role. Used by the admin login endpoint only.
func (s *AuthService) VerifyAdminCredentials(ctx context.Context, email string, password string) (model.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return model.User{}, model.ErrInvalidCredentials
		}
		return model.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.User{}, model.ErrInvalidCredentials
	}

	if user.Role != model.RoleAdmin {
		return model.User{}, model.ErrInvalidCredentials
	}

	return user, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id string) (model.AuthUser, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.AuthUser{}, err
	}
	return user.Sanitized(), nil
}

func (s *AuthService) AccessTokenTTL() time.Duration  { return s.accessTTL }
func (s *AuthService) RefreshTokenTTL() time.Duration { return s.refreshTTL }
func (s *AuthService) AdminSessionTTL() time.Duration { return s.adminTTL }

func (s *AuthService) issueTokenPair(ctx context.Context, user model.User) (model.TokenPair, error) {
	now := s.now().UTC()
	accessExpiresAt := now.Add(s.accessTTL)

	accessToken, err := s.createAccessToken(user, now, accessExpiresAt)
	if err != nil {
		return model.TokenPair{}, err
	}

	refreshValue, refreshExpiresAt, err := s.issueRefreshToken(ctx, user.ID, now)
	if err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshValue,
		AccessExpiresAt:  accessExpiresAt,
		RefreshExpiresAt: refreshExpiresAt,
		User:             user.Sanitized(),
	}, nil
}

func (s *AuthService) createAccessToken(user model.User, now time.Time, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"typ":   tokenTypeAccess,
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	})
	return token.SignedString(s.accessSecret)
}

// issueRefreshToken persists a new record and returns the composite
// "{id}.{secret}" credential. Only the bcrypt hash of the secret is
// stored; the raw secret exists nowhere but the client cookie.
func (s *AuthService) issueRefreshToken(ctx context.Context, userID string, now time.Time) (string, time.Time, error) {
	buf := make([]byte, refreshSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, fmt.Errorf("generate refresh secret: %w", err)
	}
	secret := base64.RawURLEncoding.EncodeToString(buf)

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcryptCost)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("hash refresh secret: %w", err)
	}

	expiresAt := now.Add(s.refreshTTL)
	record := model.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: string(hash),
		ExpiresAt: expiresAt,
	}

	if err := s.tokens.Store(ctx, record); err != nil {
		return "", time.Time{}, err
	}

	return record.ID + "." + secret, expiresAt, nil
}

func (s *AuthService) parseHS256(tokenString string, secret []byte) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, model.ErrUnauthorized
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, model.ErrUnauthorized
	}

	return claimsMap, nil
}

func splitRefreshValue(raw string) (id string, secret string, ok bool) {
	id, secret, found := strings.Cut(strings.TrimSpace(raw), ".")
	if !found || id == "" || secret == "" {
		return "", "", false
	}
	return id, secret, true
}
