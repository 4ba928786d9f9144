package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoServiceAccount is returned when no Google credentials are configured.
var ErrNoServiceAccount = errors.New("google service account credentials are not configured")

// ServiceAccountJSON resolves the Google service account key. Inline JSON
// wins over base64 JSON, which wins over a file path.
func (c SheetsConfig) ServiceAccountJSON() ([]byte, error) {
	if raw := strings.TrimSpace(c.CredentialsJSON); raw != "" {
		return []byte(raw), nil
	}
	if encoded := strings.TrimSpace(c.CredentialsBase64); encoded != "" {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("decode GOOGLE_SERVICE_ACCOUNT_JSON_BASE64: %w", err)
		}
		return decoded, nil
	}
	if path := strings.TrimSpace(c.CredentialsFile); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read GOOGLE_SERVICE_ACCOUNT_FILE: %w", err)
		}
		return data, nil
	}
	return nil, ErrNoServiceAccount
}
