package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrUnauthorized неверный, отсутствующий или истёкший токен
var ErrUnauthorized = errors.New("unauthorized")

// mockToken сентинельный токен для локальной разработки.
// Работает только при явно включённом allowMock (никогда в production).
const mockToken = "mock-access-token-for-development"

// Profile identity пользователя из платформы обмена сообщениями
type Profile struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	PictureURL  string `json:"pictureUrl,omitempty"`
}

// mockProfile фиксированная dev-identity для сентинельного токена
var mockProfile = Profile{
	UserID:      "U_dev_user_12345",
	DisplayName: "開発ユーザー",
}

// Verifier проверяет bearer-токен и возвращает профиль пользователя
type Verifier interface {
	Verify(ctx context.Context, accessToken string) (*Profile, error)
}

// LineVerifier проверяет токен через LINE Profile API
type LineVerifier struct {
	client     *http.Client
	profileURL string
	allowMock  bool
}

// NewLineVerifier создаёт верификатор. allowMock передаётся явно из
// конфигурации, а не через глобальное состояние.
func NewLineVerifier(profileURL string, allowMock bool) *LineVerifier {
	return &LineVerifier{
		client:     &http.Client{Timeout: 10 * time.Second},
		profileURL: profileURL,
		allowMock:  allowMock,
	}
}

// NewLineVerifierWithClient создаёт верификатор с кастомным HTTP-клиентом (для тестов)
func NewLineVerifierWithClient(client *http.Client, profileURL string, allowMock bool) *LineVerifier {
	return &LineVerifier{
		client:     client,
		profileURL: profileURL,
		allowMock:  allowMock,
	}
}

// Verify проверяет access token и возвращает профиль LINE-пользователя
func (v *LineVerifier) Verify(ctx context.Context, accessToken string) (*Profile, error) {
	if accessToken == "" {
		return nil, ErrUnauthorized
	}

	if accessToken == mockToken {
		if !v.allowMock {
			return nil, ErrUnauthorized
		}
		profile := mockProfile
		return &profile, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.profileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrUnauthorized
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}

	if profile.UserID == "" {
		return nil, ErrUnauthorized
	}

	return &profile, nil
}
