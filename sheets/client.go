// Package sheets reads spreadsheet values through the Google Sheets v4 API
// using a service-account token.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"publishing-ops-api/apperrors"
	"publishing-ops-api/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

const upstreamName = "google sheets"

// Client is a read-only Sheets client.
type Client struct {
	srv *sheetsapi.Service
}

// NewClient builds an authenticated client from the configured service
// account credentials.
func NewClient(ctx context.Context, cfg config.SheetsConfig) (*Client, error) {
	raw, err := cfg.ServiceAccountJSON()
	if err != nil {
		return nil, err
	}
	jwtCfg, err := google.JWTConfigFromJSON(raw, sheetsapi.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account json: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	// Token requests use a client with the same timeout.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: timeout})
	httpClient := jwtCfg.Client(ctx)
	httpClient.Timeout = timeout

	return NewClientWithHTTP(ctx, cfg.Endpoint, httpClient)
}

// NewClientWithHTTP uses hc as-is; hc is expected to add authorization.
func NewClientWithHTTP(ctx context.Context, endpoint string, hc *http.Client) (*Client, error) {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	opts := []option.ClientOption{option.WithHTTPClient(hc)}
	if endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/"); endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint+"/"))
	}
	srv, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{srv: srv}, nil
}

// Values returns the formatted cell values of rng, row-major. Trailing empty
// cells are omitted by the API, so rows may have different lengths.
func (c *Client) Values(ctx context.Context, spreadsheetID, rng string) ([][]string, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("spreadsheet id is required")
	}
	resp, err := c.srv.Spreadsheets.Values.Get(spreadsheetID, rng).
		MajorDimension("ROWS").
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, upstream(err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			if cell != nil {
				row[i] = fmt.Sprint(cell)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// FirstSheetTitle returns the title of the first tab.
func (c *Client) FirstSheetTitle(ctx context.Context, spreadsheetID string) (string, error) {
	meta, err := c.srv.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return "", upstream(err)
	}
	if len(meta.Sheets) == 0 || meta.Sheets[0].Properties == nil || meta.Sheets[0].Properties.Title == "" {
		return "", apperrors.Upstream(upstreamName, errors.New("spreadsheet has no sheets"))
	}
	return meta.Sheets[0].Properties.Title, nil
}

func upstream(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		msg := strings.TrimSpace(apiErr.Message)
		if msg == "" {
			msg = strings.TrimSpace(apiErr.Body)
		}
		return apperrors.Upstream(upstreamName, fmt.Errorf("status %d: %s", apiErr.Code, msg))
	}
	return apperrors.Upstream(upstreamName, err)
}
