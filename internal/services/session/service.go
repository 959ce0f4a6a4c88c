package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/office671/nawader/internal/config"
	"github.com/office671/nawader/internal/infrastructure/redis"
)

const keyPrefix = "nawader:session:"

var ErrInvalidToken = errors.New("invalid session token")

type SessionClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

type SessionStore interface {
	Set(ctx context.Context, sessionID string, claims *SessionClaims) error
	Get(ctx context.Context, sessionID string) (*SessionClaims, error)
	Delete(ctx context.Context, sessionID string) error
}

type RedisStore struct {
	redisService *redis.Service
	ttl          time.Duration
}

type MemoryStore struct {
	sessions *cache.Cache
}

type Service struct {
	store SessionStore
	ttl   time.Duration
}

// NewService uses Redis for claims when it is reachable and an in-process cache otherwise
func NewService(redisService *redis.Service, ttl time.Duration) *Service {
	var store SessionStore
	if redisService != nil {
		if err := redisService.Ping(context.Background()); err != nil {
			log.Warn().Err(err).Msg("Redis unreachable - falling back to in-memory session store")
			store = NewMemoryStore(ttl)
		} else {
			store = &RedisStore{redisService: redisService, ttl: ttl}
		}
	} else {
		store = NewMemoryStore(ttl)
	}

	return &Service{store: store, ttl: ttl}
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: cache.New(ttl, 10*time.Minute),
	}
}

// Redis Store implementation
func (rs *RedisStore) Set(ctx context.Context, sessionID string, claims *SessionClaims) error {
	data, err := json.Marshal(claims)
	if err != nil {
		return err
	}

	return rs.redisService.Set(ctx, keyPrefix+sessionID, string(data), rs.ttl)
}

func (rs *RedisStore) Get(ctx context.Context, sessionID string) (*SessionClaims, error) {
	data, err := rs.redisService.Get(ctx, keyPrefix+sessionID)
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var claims SessionClaims
	if err := json.Unmarshal([]byte(data), &claims); err != nil {
		return nil, err
	}

	return &claims, nil
}

func (rs *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return rs.redisService.Delete(ctx, keyPrefix+sessionID)
}

// Memory Store implementation
func (ms *MemoryStore) Set(ctx context.Context, sessionID string, claims *SessionClaims) error {
	ms.sessions.SetDefault(sessionID, claims)
	return nil
}

func (ms *MemoryStore) Get(ctx context.Context, sessionID string) (*SessionClaims, error) {
	v, exists := ms.sessions.Get(sessionID)
	if !exists {
		return nil, nil
	}
	return v.(*SessionClaims), nil
}

func (ms *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	ms.sessions.Delete(sessionID)
	return nil
}

// CreateSession issues a signed token for a new session ID, stores its claims and sets the cookie
func (s *Service) CreateSession(ctx context.Context, w http.ResponseWriter) (string, *SessionClaims, error) {
	sessionID := uuid.New().String()
	now := time.Now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        sessionID,
		},
		SessionID: sessionID,
	}

	if err := s.store.Set(ctx, sessionID, claims); err != nil {
		return "", nil, fmt.Errorf("failed to store session: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(config.GetJWTSecret())
	if err != nil {
		return "", nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     config.GetSessionCookieName(),
		Value:    signedToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Expires:  now.Add(s.ttl),
	})

	return signedToken, claims, nil
}

// ValidateSession reads the token from the session cookie or a Bearer header.
// It returns nil claims and a nil error when no token is present.
func (s *Service) ValidateSession(r *http.Request) (*SessionClaims, error) {
	raw := tokenFromRequest(r)
	if raw == "" {
		return nil, nil
	}

	claims, err := parseToken(raw)
	if err != nil {
		return nil, err
	}

	storedClaims, err := s.store.Get(r.Context(), claims.SessionID)
	if err != nil {
		return nil, err
	}
	if storedClaims == nil {
		return nil, nil
	}

	return claims, nil
}

// ClearSession removes the session cookie and the stored claims. Returns the
// session ID that was cleared, if any.
func (s *Service) ClearSession(w http.ResponseWriter, r *http.Request) string {
	var sessionID string
	if raw := tokenFromRequest(r); raw != "" {
		if claims, err := parseToken(raw); err == nil {
			sessionID = claims.SessionID
			_ = s.store.Delete(r.Context(), claims.SessionID)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     config.GetSessionCookieName(),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})

	return sessionID
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(config.GetSessionCookieName()); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	// browsers cannot set headers on WebSocket upgrades
	return r.URL.Query().Get("token")
}

func parseToken(raw string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return config.GetJWTSecret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
