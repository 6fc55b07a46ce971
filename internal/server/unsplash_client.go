package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

type unsplashClient struct {
	baseURL    string
	accessKey  string
	httpClient *http.Client
}

func newUnsplashClient(baseURL, accessKey string, httpClient *http.Client) *unsplashClient {
	return &unsplashClient{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		accessKey:  strings.TrimSpace(accessKey),
		httpClient: httpClient,
	}
}

func (u *unsplashClient) enabled() bool {
	return u.accessKey != ""
}

type unsplashPhoto struct {
	ID   string `json:"id"`
	URLs struct {
		Raw     string `json:"raw"`
		Full    string `json:"full"`
		Regular string `json:"regular"`
		Small   string `json:"small"`
		Thumb   string `json:"thumb"`
	} `json:"urls"`
	AltDescription string `json:"alt_description"`
	Description    string `json:"description"`
	User           struct {
		Name  string `json:"name"`
		Links struct {
			HTML string `json:"html"`
		} `json:"links"`
	} `json:"user"`
	BlurHash string `json:"blur_hash"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type unsplashSearchResult struct {
	Total   int             `json:"total"`
	Results []unsplashPhoto `json:"results"`
}

func (u *unsplashClient) SearchPhotos(ctx context.Context, query string, count int, orientation string) (unsplashSearchResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(count))
	params.Set("orientation", orientation)

	request, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		u.baseURL+"/search/photos?"+params.Encode(),
		nil,
	)
	if err != nil {
		return unsplashSearchResult{}, err
	}
	request.Header.Set("Authorization", "Client-ID "+u.accessKey)

	response, err := u.httpClient.Do(request)
	if err != nil {
		return unsplashSearchResult{}, err
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return unsplashSearchResult{}, fmt.Errorf("unsplash returned %d", response.StatusCode)
	}

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return unsplashSearchResult{}, err
	}

	var parsed unsplashSearchResult
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return unsplashSearchResult{}, err
	}
	return parsed, nil
}
