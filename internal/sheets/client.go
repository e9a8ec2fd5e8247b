package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	dirErrors "github.com/podiumreach/speaker-directory-go/pkg/errors"
)

// ErrNotConfigured is returned when no spreadsheet or credentials are
// configured. Callers treat it as an immediate fallback trigger.
var ErrNotConfigured = errors.New("sheets source not configured")

type Config struct {
	APIKey          string
	CredentialsFile string
	SpreadsheetID   string
	ReadRange       string
	FetchTimeout    time.Duration
}

// Client reads speaker rows from a Google Sheets spreadsheet.
type Client struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	readRange     string
	timeout       time.Duration
	logger        *zap.Logger
}

func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.SpreadsheetID == "" {
		return nil, ErrNotConfigured
	}
	if cfg.APIKey == "" && cfg.CredentialsFile == "" {
		return nil, ErrNotConfigured
	}

	var clientOpt option.ClientOption
	if cfg.CredentialsFile != "" {
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheets credentials: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, sheetsapi.SpreadsheetsReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("failed to parse sheets credentials: %w", err)
		}
		clientOpt = option.WithTokenSource(creds.TokenSource)
	} else {
		clientOpt = option.WithAPIKey(cfg.APIKey)
	}

	svc, err := sheetsapi.NewService(ctx, clientOpt)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	logger.Info("Sheets source configured",
		zap.String("spreadsheet_id", cfg.SpreadsheetID),
		zap.String("range", cfg.ReadRange),
		zap.Bool("service_account", cfg.CredentialsFile != ""),
	)

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		readRange:     cfg.ReadRange,
		timeout:       timeout,
		logger:        logger,
	}, nil
}

// FetchRows reads the configured range and returns it as string cells. The
// first row is the header row; unrecognized columns are the normalizer's
// problem, not ours.
func (c *Client) FetchRows(ctx context.Context) ([][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.readRange).Context(ctx).Do()
	if err != nil {
		status := 0
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			status = apiErr.Code
		}
		c.logger.Error("Sheets fetch failed",
			zap.Int("status", status),
			zap.Error(err),
		)
		return nil, dirErrors.NewSourceError("sheets fetch failed", status, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		rows = append(rows, convertRow(row))
	}

	c.logger.Debug("Sheets rows fetched", zap.Int("rows", len(rows)))
	return rows, nil
}

// convertRow flattens the API's loosely typed cells into strings. Numeric
// cells keep their shortest decimal form so "50" never becomes "50.000000".
func convertRow(row []interface{}) []string {
	cells := make([]string, len(row))
	for i, cell := range row {
		switch v := cell.(type) {
		case string:
			cells[i] = v
		case float64:
			cells[i] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			cells[i] = strconv.FormatBool(v)
		case nil:
			cells[i] = ""
		default:
			cells[i] = fmt.Sprint(v)
		}
	}
	return cells
}
