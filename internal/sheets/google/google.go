// Package google implements the spreadsheet backend ports against the
// Google Sheets API. Each collection lives on a year-prefixed tab
// ("2026 Compromissos", "2026 Despesas", "2026 Receitas") plus one
// dashboard tab per year with the server-computed summary.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"carteira/internal/cache"
	"carteira/internal/core"
	"carteira/internal/sheets"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	commitmentsBaseDefault = "Compromissos"
	expensesBaseDefault    = "Despesas"
	incomesBaseDefault     = "Receitas"
	dashboardBaseDefault   = "Dashboard"

	commitmentCols = "A:I"
	expenseCols    = "A:D"
	incomeCols     = "A:E"

	dashboardTTL = 30 * time.Second
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string

	commitmentsBase string
	expensesBase    string
	incomesBase     string
	dashboardBase   string

	dashCache *cache.LRUCache[core.Dashboard]

	mu       sync.Mutex
	sheetIDs map[string]int64
}

var _ sheets.Backend = (*Client)(nil)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID. Credentials come from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS. Tab base names are overridable via
// SHEET_COMMITMENTS_NAME, SHEET_EXPENSES_NAME, SHEET_INCOMES_NAME and
// SHEET_DASHBOARD_NAME.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:             svc,
		spreadsheetID:   spreadsheetID,
		commitmentsBase: envOr("SHEET_COMMITMENTS_NAME", commitmentsBaseDefault),
		expensesBase:    envOr("SHEET_EXPENSES_NAME", expensesBaseDefault),
		incomesBase:     envOr("SHEET_INCOMES_NAME", incomesBaseDefault),
		dashboardBase:   envOr("SHEET_DASHBOARD_NAME", dashboardBaseDefault),
		dashCache:       cache.NewLRUCache[core.Dashboard](8, dashboardTTL),
		sheetIDs:        map[string]int64{},
	}, nil
}

// newSheetsService initializes a Sheets service. An OAuth client plus
// stored token (bootstrapped by cmd/oauth-init) wins over service account
// credentials when both are present.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	if clientJSON, tokenJSON, ok := oauthEnv(); ok {
		cfg, err := goauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("oauth config: %w", err)
		}
		var tok oauth2.Token
		if err := json.Unmarshal(tokenJSON, &tok); err != nil {
			return nil, fmt.Errorf("oauth token: %w", err)
		}
		service, err := gsheet.NewService(ctx,
			goption.WithTokenSource(cfg.TokenSource(ctx, &tok)))
		if err != nil {
			return nil, fmt.Errorf("create sheets service: %w", err)
		}
		return service, nil
	}

	inlineJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	credFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if inlineJSON == "" && credFile == "" {
		credFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case inlineJSON != "":
		credentialsJSON = []byte(inlineJSON)
	case credFile != "":
		credentialsJSON, err = os.ReadFile(credFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing Google credentials (set the GOOGLE_OAUTH_* pair or GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// oauthEnv reads the OAuth client and token from the environment,
// accepting inline JSON or file paths.
func oauthEnv() (clientJSON, tokenJSON []byte, ok bool) {
	clientJSON = jsonFromEnv("GOOGLE_OAUTH_CLIENT_JSON", "GOOGLE_OAUTH_CLIENT_FILE")
	tokenJSON = jsonFromEnv("GOOGLE_OAUTH_TOKEN_JSON", "GOOGLE_OAUTH_TOKEN_FILE")
	return clientJSON, tokenJSON, len(clientJSON) > 0 && len(tokenJSON) > 0
}

func jsonFromEnv(inlineKey, fileKey string) []byte {
	if v := strings.TrimSpace(os.Getenv(inlineKey)); v != "" {
		return []byte(v)
	}
	if path := strings.TrimSpace(os.Getenv(fileKey)); path != "" {
		if b, err := os.ReadFile(path); err == nil {
			return b
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (c *Client) tab(base, year string) string {
	return year + " " + base
}

func (c *Client) AppendCommitment(ctx context.Context, year string, cm core.Commitment) (int, error) {
	if err := cm.Validate(); err != nil {
		return 0, fmt.Errorf("validation failed: %w", err)
	}
	return c.appendRow(ctx, c.tab(c.commitmentsBase, year), commitmentToRow(cm))
}

func (c *Client) UpdateCommitment(ctx context.Context, year string, cm core.Commitment) error {
	return c.updateRow(ctx, c.tab(c.commitmentsBase, year), cm.RowIndex, commitmentCols, commitmentToRow(cm))
}

func (c *Client) DeleteCommitments(ctx context.Context, year string, rowIndexes []int) error {
	return c.deleteRows(ctx, c.tab(c.commitmentsBase, year), rowIndexes)
}

func (c *Client) ListCommitments(ctx context.Context, year string) ([]core.Commitment, error) {
	values, err := c.readRows(ctx, c.tab(c.commitmentsBase, year), commitmentCols)
	if err != nil {
		return nil, err
	}
	return parseCommitments(values), nil
}

func (c *Client) AppendExpense(ctx context.Context, year string, e core.Expense) (int, error) {
	if err := e.Validate(); err != nil {
		return 0, fmt.Errorf("validation failed: %w", err)
	}
	return c.appendRow(ctx, c.tab(c.expensesBase, year), expenseToRow(e))
}

func (c *Client) UpdateExpense(ctx context.Context, year string, e core.Expense) error {
	return c.updateRow(ctx, c.tab(c.expensesBase, year), e.RowIndex, expenseCols, expenseToRow(e))
}

func (c *Client) DeleteExpenses(ctx context.Context, year string, rowIndexes []int) error {
	return c.deleteRows(ctx, c.tab(c.expensesBase, year), rowIndexes)
}

func (c *Client) ListExpenses(ctx context.Context, year string) ([]core.Expense, error) {
	values, err := c.readRows(ctx, c.tab(c.expensesBase, year), expenseCols)
	if err != nil {
		return nil, err
	}
	return parseExpenses(values), nil
}

func (c *Client) AppendIncome(ctx context.Context, year string, i core.Income) (int, error) {
	if err := i.Validate(); err != nil {
		return 0, fmt.Errorf("validation failed: %w", err)
	}
	return c.appendRow(ctx, c.tab(c.incomesBase, year), incomeToRow(i))
}

func (c *Client) UpdateIncome(ctx context.Context, year string, i core.Income) error {
	return c.updateRow(ctx, c.tab(c.incomesBase, year), i.RowIndex, incomeCols, incomeToRow(i))
}

func (c *Client) DeleteIncomes(ctx context.Context, year string, rowIndexes []int) error {
	return c.deleteRows(ctx, c.tab(c.incomesBase, year), rowIndexes)
}

func (c *Client) ListIncomes(ctx context.Context, year string) ([]core.Income, error) {
	values, err := c.readRows(ctx, c.tab(c.incomesBase, year), incomeCols)
	if err != nil {
		return nil, err
	}
	return parseIncomes(values), nil
}

// ReadDashboard fetches the year's dashboard tab, with a short TTL cache
// so bursts of reconciliations do not hammer the API.
func (c *Client) ReadDashboard(ctx context.Context, year string) (core.Dashboard, error) {
	if d, ok := c.dashCache.Get(year); ok {
		return d.Clone(), nil
	}

	tab := c.tab(c.dashboardBase, year)
	ranges := []string{
		fmt.Sprintf("%s!A2:B", tab),
		fmt.Sprintf("%s!D2:E", tab),
		fmt.Sprintf("%s!G2:J", tab),
	}
	resp, err := c.svc.Spreadsheets.Values.BatchGet(c.spreadsheetID).
		Ranges(ranges...).Context(ctx).Do()
	if err != nil {
		return core.Dashboard{}, fmt.Errorf("read dashboard %s: %w", tab, err)
	}
	if len(resp.ValueRanges) != 3 {
		return core.Dashboard{}, fmt.Errorf("read dashboard %s: expected 3 ranges, got %d", tab, len(resp.ValueRanges))
	}

	d := parseDashboard(
		resp.ValueRanges[0].Values,
		resp.ValueRanges[1].Values,
		resp.ValueRanges[2].Values,
	)
	c.dashCache.Set(year, d)
	return d, nil
}

// ForgetDashboard drops the cached dashboard of a year so the next read
// hits the API. The refresh worker calls this after mutations.
func (c *Client) ForgetDashboard(year string) {
	c.dashCache.Delete(year)
}

// CleanExpired drops expired dashboard cache entries.
func (c *Client) CleanExpired() int {
	return c.dashCache.CleanExpired()
}

func (c *Client) appendRow(ctx context.Context, tab string, row []any) (int, error) {
	if c.svc == nil {
		return 0, errors.New("sheets service not initialized")
	}
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, tab+"!A:A", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("append to %s: %w", tab, err)
	}

	rowIndex := rowIndexFromRange(resp.Updates.UpdatedRange)
	if rowIndex < 1 {
		return 0, fmt.Errorf("append to %s: could not determine row from range %q", tab, resp.Updates.UpdatedRange)
	}
	slog.InfoContext(ctx, "Row appended", "tab", tab, "row_index", rowIndex)
	return rowIndex, nil
}

func (c *Client) updateRow(ctx context.Context, tab string, rowIndex int, cols string, row []any) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if rowIndex < 1 {
		return fmt.Errorf("update %s: invalid row index %d", tab, rowIndex)
	}
	// Record row N sits on sheet row N+1 because of the header.
	sheetRow := rowIndex + 1
	parts := strings.SplitN(cols, ":", 2)
	rng := fmt.Sprintf("%s!%s%d:%s%d", tab, parts[0], sheetRow, parts[1], sheetRow)
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s row %d: %w", tab, rowIndex, err)
	}
	return nil
}

// deleteRows removes sheet rows bottom-up so earlier deletions do not
// shift the offsets of later ones. The sheet renumbers survivors by
// shifting rows up, matching the cache's density invariant.
func (c *Client) deleteRows(ctx context.Context, tab string, rowIndexes []int) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if len(rowIndexes) == 0 {
		return nil
	}

	sheetID, err := c.sheetID(ctx, tab)
	if err != nil {
		return err
	}

	sorted := append([]int(nil), rowIndexes...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	requests := make([]*gsheet.Request, 0, len(sorted))
	for _, rowIndex := range sorted {
		// Sheet rows are zero-based in the dimension API; +1 skips the header.
		start := int64(rowIndex)
		requests = append(requests, &gsheet.Request{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: start,
					EndIndex:   start + 1,
				},
			},
		})
	}

	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("delete rows from %s: %w", tab, err)
	}
	return nil
}

func (c *Client) readRows(ctx context.Context, tab, cols string) ([][]any, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	parts := strings.SplitN(cols, ":", 2)
	rng := fmt.Sprintf("%s!%s2:%s", tab, parts[0], parts[1])
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", tab, err)
	}
	return resp.Values, nil
}

func (c *Client) sheetID(ctx context.Context, tab string) (int64, error) {
	c.mu.Lock()
	if id, ok := c.sheetIDs[tab]; ok {
		c.mu.Unlock()
		return id, nil
	}
	c.mu.Unlock()

	resp, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet metadata: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sheet := range resp.Sheets {
		if sheet.Properties != nil {
			c.sheetIDs[sheet.Properties.Title] = sheet.Properties.SheetId
		}
	}
	id, ok := c.sheetIDs[tab]
	if !ok {
		return 0, fmt.Errorf("sheet %q not found in spreadsheet", tab)
	}
	return id, nil
}

// rowIndexFromRange extracts the record row index from an A1 range like
// "2026 Despesas!A7:D7" (sheet row 7 is record row 6).
func rowIndexFromRange(a1 string) int {
	idx := strings.LastIndex(a1, "!")
	if idx >= 0 {
		a1 = a1[idx+1:]
	}
	first := strings.SplitN(a1, ":", 2)[0]
	digits := strings.TrimLeftFunc(first, func(r rune) bool {
		return r < '0' || r > '9'
	})
	row, err := strconv.Atoi(digits)
	if err != nil || row < 2 {
		return 0
	}
	return row - 1
}
