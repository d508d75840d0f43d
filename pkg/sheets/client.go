// Package sheets writes rows into a Google Sheets tab.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Client appends to and clears whole tabs of a spreadsheet
type Client struct {
	values *sheets.SpreadsheetsValuesService
}

type Config struct {
	CredentialsPath string
	CredentialsJSON []byte

	// Endpoint points the client at an emulator; no credentials are sent to it
	Endpoint string
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	var opts []option.ClientOption

	switch {
	case cfg.Endpoint != "":
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	case cfg.CredentialsPath != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	case len(cfg.CredentialsJSON) > 0:
		opts = append(opts, option.WithCredentialsJSON(cfg.CredentialsJSON))
	default:
		return nil, fmt.Errorf("sheets: credentials path or JSON is required")
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: failed to create service: %w", err)
	}

	return &Client{values: service.Spreadsheets.Values}, nil
}

// AppendRows adds rows below the last filled row of tab and reports how many
// rows the API says it wrote
func (c *Client) AppendRows(ctx context.Context, spreadsheetID, tab string, rows [][]interface{}) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	resp, err := c.values.Append(spreadsheetID, TabRange(tab, "A1"), &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("sheets: append to %s: %w", tab, err)
	}

	if resp.Updates == nil {
		return len(rows), nil
	}
	return int(resp.Updates.UpdatedRows), nil
}

// ClearTab empties every cell of tab, keeping its formatting
func (c *Client) ClearTab(ctx context.Context, spreadsheetID, tab string) error {
	_, err := c.values.Clear(spreadsheetID, TabRange(tab, "A:Z"), &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: clear %s: %w", tab, err)
	}
	return nil
}

// TabRange builds an A1 range on tab, quoting names that are not plain words
func TabRange(tab, cells string) string {
	plain := tab != ""
	for _, r := range tab {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z') {
			plain = false
			break
		}
	}
	if !plain {
		tab = "'" + strings.ReplaceAll(tab, "'", "''") + "'"
	}
	return tab + "!" + cells
}
