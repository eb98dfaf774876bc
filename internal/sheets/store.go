package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/qflow/internal/common"
	"github.com/Veraticus/qflow/internal/model"
	"github.com/Veraticus/qflow/internal/service"
)

var _ service.RecordStore = (*Store)(nil)

// Store implements service.RecordStore on a Google Spreadsheet with Data,
// Config and Branches tabs.
type Store struct {
	service       *sheets.Service
	logger        *slog.Logger
	limiter       *rate.Limiter
	sheetIDs      map[string]int64
	spreadsheetID string
	retry         service.RetryOptions
	config        Config
	mu            sync.Mutex
}

// NewStore creates a record store. The spreadsheet is created on first use
// when no spreadsheet ID is configured.
func NewStore(ctx context.Context, config Config, logger *slog.Logger) (*Store, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Store{
		service:       srv,
		logger:        logger,
		config:        config,
		spreadsheetID: config.SpreadsheetID,
		limiter:       rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1),
		retry: service.RetryOptions{
			MaxAttempts:  config.RetryAttempts + 1,
			InitialDelay: config.RetryDelay,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := oauthConfig(config.ClientID, config.ClientSecret, "")
		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}
		tokenSource = client.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// call paces and retries one API request.
func (s *Store) call(ctx context.Context, fn func() error) error {
	return common.WithRetry(ctx, func() error {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		return fn()
	}, s.retry)
}

// prepare resolves the spreadsheet and makes sure every tab exists.
func (s *Store) prepare(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.spreadsheetID != "" && s.sheetIDs != nil {
		return s.spreadsheetID, nil
	}

	if s.spreadsheetID == "" {
		id, err := s.createSpreadsheet(ctx)
		if err != nil {
			return "", err
		}
		s.spreadsheetID = id
	}

	var spreadsheet *sheets.Spreadsheet
	err := s.call(ctx, func() error {
		var getErr error
		spreadsheet, getErr = s.service.Spreadsheets.Get(s.spreadsheetID).
			Fields("sheets.properties").Context(ctx).Do()
		return getErr
	})
	if err != nil {
		return "", fmt.Errorf("unable to access spreadsheet %s: %w", s.spreadsheetID, err)
	}

	ids := make(map[string]int64)
	for _, sh := range spreadsheet.Sheets {
		if sh.Properties != nil {
			ids[sh.Properties.Title] = sh.Properties.SheetId
		}
	}

	for _, title := range []string{DataSheet, ConfigSheet, BranchesSheet} {
		if _, ok := ids[title]; ok {
			continue
		}
		id, err := s.createTab(ctx, title)
		if err != nil {
			return "", err
		}
		ids[title] = id
	}

	s.sheetIDs = ids
	return s.spreadsheetID, nil
}

func (s *Store) createSpreadsheet(ctx context.Context) (string, error) {
	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    s.config.SpreadsheetName,
			TimeZone: s.config.TimeZone,
		},
	}

	var created *sheets.Spreadsheet
	err := s.call(ctx, func() error {
		var createErr error
		created, createErr = s.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
		return createErr
	})
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	s.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	return created.SpreadsheetId, nil
}

// createTab adds a missing tab and writes its seed rows.
func (s *Store) createTab(ctx context.Context, title string) (int64, error) {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}

	var resp *sheets.BatchUpdateSpreadsheetResponse
	err := s.call(ctx, func() error {
		var updateErr error
		resp, updateErr = s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
		return updateErr
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create %s tab: %w", title, err)
	}

	var sheetID int64
	if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil {
		sheetID = resp.Replies[0].AddSheet.Properties.SheetId
	}

	values := &sheets.ValueRange{Values: seedRows[title]}
	err = s.call(ctx, func() error {
		_, updateErr := s.service.Spreadsheets.Values.Update(s.spreadsheetID, title+"!A1", values).
			ValueInputOption("RAW").Context(ctx).Do()
		return updateErr
	})
	if err != nil {
		return 0, fmt.Errorf("failed to seed %s tab: %w", title, err)
	}

	s.logger.Info("created tab", "title", title, "sheet_id", sheetID)
	return sheetID, nil
}

// LoadCatalog reads the service catalog and branch directory.
func (s *Store) LoadCatalog(ctx context.Context) (model.ServiceCatalog, model.BranchDirectory, error) {
	id, err := s.prepare(ctx)
	if err != nil {
		return nil, nil, err
	}

	var resp *sheets.BatchGetValuesResponse
	err = s.call(ctx, func() error {
		var getErr error
		resp, getErr = s.service.Spreadsheets.Values.BatchGet(id).
			Ranges(ConfigSheet+"!A:B", BranchesSheet+"!A:B").
			ValueRenderOption("UNFORMATTED_VALUE").
			Context(ctx).Do()
		return getErr
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var configRows, branchRows [][]any
	if len(resp.ValueRanges) > 0 {
		configRows = resp.ValueRanges[0].Values
	}
	if len(resp.ValueRanges) > 1 {
		branchRows = resp.ValueRanges[1].Values
	}

	catalog := parseCatalog(configRows)
	directory := parseBranches(branchRows)

	s.logger.Debug("loaded catalog", "categories", len(catalog), "branches", len(directory))
	return catalog, directory, nil
}

// Append writes one Data row per submitted item.
func (s *Store) Append(ctx context.Context, submission model.Submission) error {
	if len(submission.Items) == 0 {
		return common.ErrNoItems
	}

	id, err := s.prepare(ctx)
	if err != nil {
		return err
	}

	values := &sheets.ValueRange{Values: submissionRows(submission)}
	err = s.call(ctx, func() error {
		_, appendErr := s.service.Spreadsheets.Values.Append(id, DataSheet+"!A:E", values).
			ValueInputOption("USER_ENTERED").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).Do()
		return appendErr
	})
	if err != nil {
		return fmt.Errorf("failed to append records: %w", err)
	}

	s.logger.Info("appended records",
		"date", submission.Date,
		"branch", submission.Branch,
		"rows", len(submission.Items),
		"total_que", submission.TotalQue())
	return nil
}

// readData returns every Data row below the header.
func (s *Store) readData(ctx context.Context) ([]dataRow, error) {
	id, err := s.prepare(ctx)
	if err != nil {
		return nil, err
	}

	var resp *sheets.ValueRange
	err = s.call(ctx, func() error {
		var getErr error
		resp, getErr = s.service.Spreadsheets.Values.Get(id, DataSheet+"!A2:E").
			ValueRenderOption("UNFORMATTED_VALUE").
			DateTimeRenderOption("SERIAL_NUMBER").
			Context(ctx).Do()
		return getErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	return parseDataRows(resp.Values, 2), nil
}

// Records returns Data rows matching the query.
func (s *Store) Records(ctx context.Context, query service.RecordQuery) ([]model.Record, error) {
	rows, err := s.readData(ctx)
	if err != nil {
		return nil, err
	}
	return selectRecords(rows, query), nil
}

// UpdateQue sets the quantity of the first row matching key.
func (s *Store) UpdateQue(ctx context.Context, key service.RecordKey, que int) error {
	if que < 1 {
		return fmt.Errorf("%w: %d", common.ErrInvalidQuantity, que)
	}

	rows, err := s.readData(ctx)
	if err != nil {
		return err
	}

	target := 0
	for _, r := range rows {
		if matchesKey(r.record, key) {
			target = r.number
			break
		}
	}
	if target == 0 {
		return fmt.Errorf("%w: record %s %s %s/%s", common.ErrNotFound, key.Date, key.Branch, key.Program, key.Sub)
	}

	cellRange := fmt.Sprintf("%s!E%d", DataSheet, target)
	values := &sheets.ValueRange{Values: [][]any{{que}}}
	err = s.call(ctx, func() error {
		_, updateErr := s.service.Spreadsheets.Values.Update(s.spreadsheetID, cellRange, values).
			ValueInputOption("RAW").Context(ctx).Do()
		return updateErr
	})
	if err != nil {
		return fmt.Errorf("failed to update quantity: %w", err)
	}

	s.logger.Info("updated quantity", "row", target, "que", que)
	return nil
}

// DeleteRecords removes every Data row for date and branch and returns how
// many were removed.
func (s *Store) DeleteRecords(ctx context.Context, date, branch string) (int, error) {
	if date == "" || branch == "" {
		return 0, fmt.Errorf("%w: date and branch are required", common.ErrInvalidConfig)
	}

	rows, err := s.readData(ctx)
	if err != nil {
		return 0, err
	}

	numbers := rowsForDeletion(rows, date, branch)
	if len(numbers) == 0 {
		return 0, fmt.Errorf("%w: no records for %s on %s", common.ErrNotFound, branch, date)
	}

	s.mu.Lock()
	sheetID := s.sheetIDs[DataSheet]
	s.mu.Unlock()

	requests := make([]*sheets.Request, 0, len(numbers))
	for _, n := range numbers {
		requests = append(requests, &sheets.Request{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:         sheetID,
					Dimension:       "ROWS",
					StartIndex:      int64(n - 1),
					EndIndex:        int64(n),
					ForceSendFields: []string{"SheetId"},
				},
			},
		})
	}

	err = s.call(ctx, func() error {
		_, updateErr := s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: requests,
		}).Context(ctx).Do()
		return updateErr
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete records: %w", err)
	}

	s.logger.Info("deleted records", "date", date, "branch", branch, "rows", len(numbers))
	return len(numbers), nil
}

// SpreadsheetID returns the spreadsheet in use, which may have been created.
func (s *Store) SpreadsheetID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spreadsheetID
}
