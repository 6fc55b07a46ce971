package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// voiceTokenClient exchanges the voice platform credentials for a short-lived
// browser access token via the client-credentials grant.
type voiceTokenClient struct {
	tokenURL   string
	apiKey     string
	secretKey  string
	httpClient *http.Client
}

func newVoiceTokenClient(tokenURL, apiKey, secretKey string, httpClient *http.Client) *voiceTokenClient {
	return &voiceTokenClient{
		tokenURL:   strings.TrimSpace(tokenURL),
		apiKey:     strings.TrimSpace(apiKey),
		secretKey:  strings.TrimSpace(secretKey),
		httpClient: httpClient,
	}
}

func (v *voiceTokenClient) enabled() bool {
	return v.apiKey != "" && v.secretKey != ""
}

type voiceTokenError struct {
	Status int
	Detail string
}

func (e *voiceTokenError) Error() string {
	return fmt.Sprintf("token endpoint returned %d: %s", e.Status, e.Detail)
}

func (v *voiceTokenClient) FetchAccessToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	request, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		v.tokenURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return "", err
	}
	basic := base64.StdEncoding.EncodeToString([]byte(v.apiKey + ":" + v.secretKey))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.Header.Set("Authorization", "Basic "+basic)

	response, err := v.httpClient.Do(request)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return "", err
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return "", &voiceTokenError{
			Status: response.StatusCode,
			Detail: truncateForLog(string(responseBody), 400),
		}
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return "", err
	}
	if strings.TrimSpace(parsed.AccessToken) == "" {
		return "", fmt.Errorf("token endpoint returned no access_token")
	}
	return parsed.AccessToken, nil
}
