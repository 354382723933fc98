package trakt

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// ErrAuthorizationPending means the user has not approved the device code
// yet; the poll loop keeps going.
var ErrAuthorizationPending = errors.New("authorization pending")

// ErrSlowDown means polling too fast; treated like a pending response.
var ErrSlowDown = errors.New("slow down")

// ErrDeviceCodeExpired means the code can never be approved anymore.
var ErrDeviceCodeExpired = errors.New("device code expired")

// DeviceCode starts the device-code flow and returns the code the user has to
// enter at the verification URL.
func (api *Api) DeviceCode(ctx context.Context) (*DeviceCode, error) {
	body := map[string]string{
		"client_id": api.clientID,
	}
	resp, err := api.post(ctx, "/oauth/device/code", body)
	if err != nil {
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("trakt: device code request failed with status %v", resp.StatusCode)
	}
	var dc DeviceCode
	if err := json.NewDecoder(resp.Body).Decode(&dc); err != nil {
		return nil, errors.Wrap(err, "decode device code")
	}
	return &dc, nil
}

// ExchangeDeviceCode polls the token endpoint once for the given device code.
func (api *Api) ExchangeDeviceCode(ctx context.Context, deviceCode string) (*Token, error) {
	body := map[string]string{
		"code":          deviceCode,
		"client_id":     api.clientID,
		"client_secret": api.clientSecret,
	}
	resp, err := api.post(ctx, "/oauth/device/token", body)
	if err != nil {
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest:
		return nil, ErrAuthorizationPending
	case http.StatusTooManyRequests:
		return nil, ErrSlowDown
	case http.StatusNotFound, http.StatusGone:
		return nil, ErrDeviceCodeExpired
	default:
		return nil, errors.Errorf("trakt: token exchange failed with status %v", resp.StatusCode)
	}
	var t Token
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return nil, errors.Wrap(err, "decode token")
	}
	return &t, nil
}

// RefreshToken exchanges a refresh token for a fresh token pair.
func (api *Api) RefreshToken(ctx context.Context, refreshToken string) (*Token, error) {
	body := map[string]string{
		"refresh_token": refreshToken,
		"client_id":     api.clientID,
		"client_secret": api.clientSecret,
		"grant_type":    "refresh_token",
	}
	resp, err := api.post(ctx, "/oauth/token", body)
	if err != nil {
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("trakt: token refresh failed with status %v", resp.StatusCode)
	}
	var t Token
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return nil, errors.Wrap(err, "decode token")
	}
	return &t, nil
}

// CurrentUser resolves the identity behind an access token.
func (api *Api) CurrentUser(ctx context.Context, accessToken string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", api.url+"/users/me", nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("trakt-api-version", apiVersion)
	req.Header.Set("trakt-api-key", api.clientID)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := api.cl.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("trakt: user lookup failed with status %v", resp.StatusCode)
	}
	var u User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, errors.Wrap(err, "decode user")
	}
	return &u, nil
}
