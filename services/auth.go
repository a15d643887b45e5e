package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"collectrip/config"
	"collectrip/models"
	"collectrip/storage"
)

const (
	kakaoTokenURL   = "https://kauth.kakao.com/oauth/token"
	kakaoProfileURL = "https://kapi.kakao.com/v2/user/me"
)

var (
	ErrInvalidAuthCode = errors.New("invalid authorization code")
	ErrInvalidToken    = errors.New("invalid token")
	ErrUserNotFound    = errors.New("user not found")
)

// AuthService exchanges Kakao authorization codes for application sessions.
// A first login creates the user with a placeholder nickname; the client is
// expected to follow up with a nickname change.
type AuthService struct {
	cfg    *config.Config
	store  *storage.PostgresStore
	client *http.Client
}

func NewAuthService(cfg *config.Config, store *storage.PostgresStore, client *http.Client) *AuthService {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &AuthService{cfg: cfg, store: store, client: client}
}

// TokenPair is one issued session.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type kakaoProfile struct {
	ID           int64
	Nickname     string
	ProfileImage string
}

// LoginWithKakao runs the full flow: code exchange, profile fetch, user
// get-or-create, token issue. IsNew reports whether the user was created by
// this call.
func (s *AuthService) LoginWithKakao(ctx context.Context, code string) (*models.User, *TokenPair, bool, error) {
	accessToken, err := s.exchangeCode(ctx, code)
	if err != nil {
		return nil, nil, false, err
	}

	profile, err := s.fetchProfile(ctx, accessToken)
	if err != nil {
		return nil, nil, false, err
	}

	user, err := s.store.GetUserByKakaoID(ctx, profile.ID)
	if err != nil {
		return nil, nil, false, fmt.Errorf("lookup user: %w", err)
	}

	isNew := user == nil
	if isNew {
		user = &models.User{
			UserID:       uuid.New(),
			KakaoID:      profile.ID,
			Nickname:     placeholderNickname(profile),
			ProfileImage: profile.ProfileImage,
			IsActive:     true,
		}
		if err := s.store.CreateUser(ctx, user); err != nil {
			return nil, nil, false, fmt.Errorf("create user: %w", err)
		}
		log.Printf("created user %s for kakao id %d", user.UserID, profile.ID)
	}

	pair, err := s.IssueTokens(user.UserID)
	if err != nil {
		return nil, nil, false, err
	}
	return user, pair, isNew, nil
}

func (s *AuthService) exchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", s.cfg.Kakao.RESTAPIKey)
	form.Set("redirect_uri", s.cfg.Kakao.RedirectURI)
	form.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, kakaoTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("kakao token exchange failed: status %d: %s", resp.StatusCode, body)
		return "", ErrInvalidAuthCode
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if parsed.AccessToken == "" {
		return "", ErrInvalidAuthCode
	}
	return parsed.AccessToken, nil
}

func (s *AuthService) fetchProfile(ctx context.Context, accessToken string) (*kakaoProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, kakaoProfileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("kakao profile fetch failed: status %d", resp.StatusCode)
		return nil, ErrInvalidAuthCode
	}

	var parsed struct {
		ID         int64 `json:"id"`
		Properties struct {
			Nickname     string `json:"nickname"`
			ProfileImage string `json:"profile_image"`
		} `json:"properties"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if parsed.ID == 0 {
		return nil, ErrInvalidAuthCode
	}

	return &kakaoProfile{
		ID:           parsed.ID,
		Nickname:     parsed.Properties.Nickname,
		ProfileImage: parsed.Properties.ProfileImage,
	}, nil
}

// placeholderNickname keeps first logins unique until the user picks a name.
func placeholderNickname(p *kakaoProfile) string {
	if p.Nickname != "" {
		return fmt.Sprintf("%s_%d", p.Nickname, p.ID%10000)
	}
	// The full kakao id keeps the anonymous fallback collision-free.
	return fmt.Sprintf("collector_%d", p.ID)
}

type sessionClaims struct {
	TokenUse string `json:"token_use"`
	jwt.RegisteredClaims
}

// IssueTokens signs an access/refresh pair for a user.
func (s *AuthService) IssueTokens(userID uuid.UUID) (*TokenPair, error) {
	now := time.Now()

	access, err := s.sign(userID, "access", now, s.cfg.JWT.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(userID, "refresh", now, s.cfg.JWT.RefreshTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.cfg.JWT.AccessTTL.Seconds()),
	}, nil
}

func (s *AuthService) sign(userID uuid.UUID, use string, now time.Time, ttl time.Duration) (string, error) {
	claims := sessionClaims{
		TokenUse: use,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", use, err)
	}
	return signed, nil
}

// VerifyAccessToken validates a bearer token and returns the user id.
func (s *AuthService) VerifyAccessToken(tokenString string) (uuid.UUID, error) {
	return s.verify(tokenString, "access")
}

// Refresh exchanges a valid refresh token for a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := s.verify(refreshToken, "refresh")
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, ErrUserNotFound
	}

	return s.IssueTokens(userID)
}

func (s *AuthService) verify(tokenString, use string) (uuid.UUID, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWT.Secret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}
	if claims.TokenUse != use {
		return uuid.Nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}
