// Package sheets implements the booking record store on top of a Google
// Spreadsheet.
package sheets

import (
	"fmt"
	"time"

	"github.com/Veraticus/qflow/internal/common"
)

// Tab names and their header rows.
const (
	DataSheet     = "Data"
	ConfigSheet   = "Config"
	BranchesSheet = "Branches"
)

// DefaultRecordLimit is how many trailing rows Records returns when no date
// range is given.
const DefaultRecordLimit = 3000

// Config holds the configuration for the Google Sheets record store.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	TimeZone           string
	RequestsPerSecond  float64
	RetryAttempts      int
	RetryDelay         time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SpreadsheetName:   "qflow bookings",
		TimeZone:          "Asia/Bangkok",
		RequestsPerSecond: 1,
		RetryAttempts:     3,
		RetryDelay:        time.Second,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	hasOAuth := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	hasServiceAccount := c.ServiceAccountPath != ""

	if !hasOAuth && !hasServiceAccount {
		return fmt.Errorf("%w: no authentication method configured", common.ErrMissingConfig)
	}

	if hasOAuth && hasServiceAccount {
		return fmt.Errorf("%w: multiple authentication methods configured; use either OAuth2 or service account", common.ErrInvalidConfig)
	}

	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("%w: requests per second must be positive", common.ErrInvalidConfig)
	}

	if c.RetryAttempts < 0 {
		return fmt.Errorf("%w: retry attempts cannot be negative", common.ErrInvalidConfig)
	}

	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: retry delay cannot be negative", common.ErrInvalidConfig)
	}

	if c.TimeZone != "" {
		if _, err := time.LoadLocation(c.TimeZone); err != nil {
			return fmt.Errorf("%w: unknown time zone %q", common.ErrInvalidConfig, c.TimeZone)
		}
	}

	return nil
}
