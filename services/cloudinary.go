// Package services holds the narrow clients for external collaborators:
// the Cloudinary image store and Google's userinfo endpoint. Both are
// consumed as plain HTTP; neither call is retried.
package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"arzaq-api/apperr"

	"github.com/google/uuid"
)

const cloudinaryBaseURL = "https://api.cloudinary.com/v1_1"

// Cloudinary uploads image blobs and returns stable URLs. The zero-config
// client is disabled; upload endpoints then reject with a validation error
// instead of failing mid-request.
type Cloudinary struct {
	cloudName string
	apiKey    string
	apiSecret string
	baseURL   string
	client    *http.Client
}

func NewCloudinary(cloudName, apiKey, apiSecret string) *Cloudinary {
	return &Cloudinary{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   cloudinaryBaseURL,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *Cloudinary) Enabled() bool {
	return s.cloudName != "" && s.apiKey != "" && s.apiSecret != ""
}

type UploadResult struct {
	URL      string `json:"secure_url"`
	PublicID string `json:"public_id"`
}

// UploadImage stores the blob under a fresh uuid-based public ID in the
// given folder and returns its URL
func (s *Cloudinary) UploadImage(ctx context.Context, file io.Reader, folder string) (*UploadResult, error) {
	if !s.Enabled() {
		return nil, apperr.New(apperr.KindValidation, "image uploads are not configured")
	}

	publicID := uuid.NewString()
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	params := map[string]string{
		"folder":    folder,
		"public_id": publicID,
		"timestamp": timestamp,
	}

	body := &strings.Builder{}
	writer := multipart.NewWriter(body)
	for k, v := range params {
		if err := writer.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if err := writer.WriteField("api_key", s.apiKey); err != nil {
		return nil, err
	}
	if err := writer.WriteField("signature", s.sign(params)); err != nil {
		return nil, err
	}
	part, err := writer.CreateFormFile("file", "upload")
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s/image/upload", s.baseURL, s.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body.String()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cloudinary upload: unexpected status %d", resp.StatusCode)
	}

	result := &UploadResult{}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return nil, fmt.Errorf("cloudinary upload: decode response: %w", err)
	}
	return result, nil
}

// DeleteImage removes a previously uploaded image. Callers treat failures
// as best effort; a dangling blob is preferable to a failed delete request.
func (s *Cloudinary) DeleteImage(ctx context.Context, publicID string) error {
	if !s.Enabled() || publicID == "" {
		return nil
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	params := map[string]string{
		"public_id": publicID,
		"timestamp": timestamp,
	}

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	form.Set("api_key", s.apiKey)
	form.Set("signature", s.sign(params))

	endpoint := fmt.Sprintf("%s/%s/image/destroy", s.baseURL, s.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cloudinary destroy: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// sign builds the request signature: sha1 over the sorted parameter string
// plus the API secret, per Cloudinary's auth scheme
func (s *Cloudinary) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + s.apiSecret))
	return hex.EncodeToString(sum[:])
}

// PublicIDFromURL extracts the public ID from a stored image URL so the
// blob can be deleted alongside its resource
func PublicIDFromURL(imageURL string) string {
	if imageURL == "" {
		return ""
	}
	parts := strings.Split(imageURL, "/")
	last := parts[len(parts)-1]
	if dot := strings.LastIndex(last, "."); dot > 0 {
		last = last[:dot]
	}
	return last
}
