package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jarcoal/httpmock"

	"collectrip/config"
)

func testAuthConfig() *config.Config {
	return &config.Config{
		Kakao: config.KakaoConfig{
			RESTAPIKey:  "test-rest-key",
			RedirectURI: "https://app.test/oauth",
		},
		JWT: config.JWTConfig{
			Secret:     "test-secret",
			AccessTTL:  30 * time.Minute,
			RefreshTTL: 14 * 24 * time.Hour,
		},
	}
}

func TestIssueAndVerifyTokens(t *testing.T) {
	auth := NewAuthService(testAuthConfig(), nil, nil)
	userID := uuid.New()

	pair, err := auth.IssueTokens(userID)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if pair.TokenType != "Bearer" {
		t.Fatalf("token type = %s", pair.TokenType)
	}
	if pair.ExpiresIn != int64((30 * time.Minute).Seconds()) {
		t.Fatalf("expires_in = %d", pair.ExpiresIn)
	}

	got, err := auth.VerifyAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if got != userID {
		t.Fatalf("verified user = %s, want %s", got, userID)
	}
}

func TestVerifyAccessToken_RejectsRefreshToken(t *testing.T) {
	auth := NewAuthService(testAuthConfig(), nil, nil)

	pair, err := auth.IssueTokens(uuid.New())
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := auth.VerifyAccessToken(pair.RefreshToken); err == nil {
		t.Fatalf("a refresh token must not pass as an access token")
	}
}

func TestVerifyAccessToken_RejectsTampering(t *testing.T) {
	auth := NewAuthService(testAuthConfig(), nil, nil)
	other := NewAuthService(&config.Config{JWT: config.JWTConfig{
		Secret: "different-secret", AccessTTL: time.Minute, RefreshTTL: time.Minute,
	}}, nil, nil)

	pair, err := other.IssueTokens(uuid.New())
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := auth.VerifyAccessToken(pair.AccessToken); err == nil {
		t.Fatalf("a token signed with another secret must be rejected")
	}
	if _, err := auth.VerifyAccessToken("not.a.token"); err == nil {
		t.Fatalf("garbage must be rejected")
	}
}

func TestVerifyAccessToken_RejectsExpired(t *testing.T) {
	cfg := testAuthConfig()
	cfg.JWT.AccessTTL = -time.Minute
	auth := NewAuthService(cfg, nil, nil)

	pair, err := auth.IssueTokens(uuid.New())
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := auth.VerifyAccessToken(pair.AccessToken); err == nil {
		t.Fatalf("an expired token must be rejected")
	}
}

func TestExchangeCode(t *testing.T) {
	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	defer httpmock.DeactivateAndReset()

	auth := NewAuthService(testAuthConfig(), nil, httpClient)

	httpmock.RegisterResponder("POST", kakaoTokenURL,
		func(req *http.Request) (*http.Response, error) {
			if err := req.ParseForm(); err != nil {
				t.Fatalf("parse form: %v", err)
			}
			if req.PostForm.Get("grant_type") != "authorization_code" {
				t.Fatalf("grant_type = %q", req.PostForm.Get("grant_type"))
			}
			if req.PostForm.Get("client_id") != "test-rest-key" {
				t.Fatalf("client_id = %q", req.PostForm.Get("client_id"))
			}
			if req.PostForm.Get("code") != "abc123" {
				t.Fatalf("code = %q", req.PostForm.Get("code"))
			}
			return httpmock.NewStringResponse(200, `{"access_token": "kakao-token", "token_type": "bearer"}`), nil
		})

	token, err := auth.exchangeCode(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("exchange failed: %v", err)
	}
	if token != "kakao-token" {
		t.Fatalf("token = %q", token)
	}
}

func TestExchangeCode_Rejected(t *testing.T) {
	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	defer httpmock.DeactivateAndReset()

	auth := NewAuthService(testAuthConfig(), nil, httpClient)

	httpmock.RegisterResponder("POST", kakaoTokenURL,
		httpmock.NewStringResponder(400, `{"error": "invalid_grant"}`))

	if _, err := auth.exchangeCode(context.Background(), "stale"); err != ErrInvalidAuthCode {
		t.Fatalf("expected ErrInvalidAuthCode, got %v", err)
	}
}

func TestFetchProfile(t *testing.T) {
	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	defer httpmock.DeactivateAndReset()

	auth := NewAuthService(testAuthConfig(), nil, httpClient)

	httpmock.RegisterResponder("GET", kakaoProfileURL,
		func(req *http.Request) (*http.Response, error) {
			if got := req.Header.Get("Authorization"); got != "Bearer kakao-token" {
				t.Fatalf("authorization header = %q", got)
			}
			return httpmock.NewStringResponse(200, `{
				"id": 987654321,
				"properties": {"nickname": "지우", "profile_image": "https://k.kakaocdn.net/p.jpg"}
			}`), nil
		})

	profile, err := auth.fetchProfile(context.Background(), "kakao-token")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if profile.ID != 987654321 {
		t.Fatalf("id = %d", profile.ID)
	}
	if profile.Nickname != "지우" {
		t.Fatalf("nickname = %s", profile.Nickname)
	}
}

func TestPlaceholderNickname(t *testing.T) {
	withName := placeholderNickname(&kakaoProfile{ID: 987654321, Nickname: "지우"})
	if withName != "지우_4321" {
		t.Fatalf("placeholder = %q", withName)
	}
	anonymous := placeholderNickname(&kakaoProfile{ID: 987654321})
	if anonymous != "collector_987654321" {
		t.Fatalf("placeholder = %q", anonymous)
	}
}
