package sheets

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/qflow/internal/model"
	"github.com/Veraticus/qflow/internal/service"
)

var (
	dataHeader     = []any{"Day", "Province", "Program", "Sub", "Que"}
	configHeader   = []any{"Service Category", "Sub Services"}
	branchesHeader = []any{"Branch Name", "Branch Code"}
)

// seedRows are written when a tab has to be created.
var seedRows = map[string][][]any{
	DataSheet:     {dataHeader},
	ConfigSheet:   {configHeader, {"Botox", "ริ้วรอย, กราม, ลิฟกรอบหน้า"}},
	BranchesSheet: {branchesHeader, {"สยาม (SIAM)", "SIAM"}},
}

// sheetsEpoch is day zero of spreadsheet serial dates.
var sheetsEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// isoDate normalizes a Day cell to YYYY-MM-DD. Cells are read unformatted,
// so real dates arrive as serial day numbers and typed text as strings.
func isoDate(v any) string {
	switch d := v.(type) {
	case nil:
		return ""
	case float64:
		days := math.Floor(d)
		return sheetsEpoch.AddDate(0, 0, int(days)).Format("2006-01-02")
	case int:
		return sheetsEpoch.AddDate(0, 0, d).Format("2006-01-02")
	case string:
		s := strings.TrimSpace(d)
		if i := strings.IndexAny(s, "T "); i >= 0 {
			s = s[:i]
		}
		return s
	default:
		return fmt.Sprint(d)
	}
}

func cellString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}

func cellInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}

func cell(row []any, i int) any {
	if i < len(row) {
		return row[i]
	}
	return nil
}

// parseCatalog builds the service catalog from Config rows (header
// included). A sub cell may list several subs separated by commas.
func parseCatalog(rows [][]any) model.ServiceCatalog {
	var catalog model.ServiceCatalog
	for i, row := range rows {
		if i == 0 {
			continue
		}
		category := cellString(cell(row, 0))
		if category == "" {
			continue
		}
		subs := strings.Split(cellString(cell(row, 1)), ",")
		catalog = catalog.Add(category, "")
		for _, sub := range subs {
			if sub = strings.TrimSpace(sub); sub != "" {
				catalog = catalog.Add(category, sub)
			}
		}
	}
	return catalog
}

// parseBranches builds the branch directory from Branches rows (header
// included). Rows need both a name and a code.
func parseBranches(rows [][]any) model.BranchDirectory {
	var directory model.BranchDirectory
	seen := make(map[string]int)
	for i, row := range rows {
		if i == 0 {
			continue
		}
		name := cellString(cell(row, 0))
		code := cellString(cell(row, 1))
		if name == "" || code == "" {
			continue
		}
		// Later rows override earlier ones with the same name
		if idx, ok := seen[name]; ok {
			directory[idx].Code = code
			continue
		}
		seen[name] = len(directory)
		directory = append(directory, model.Branch{Name: name, Code: code})
	}
	return directory
}

// submissionRows renders one Data row per item. Items without a sub are
// written with the program in the Sub column.
func submissionRows(sub model.Submission) [][]any {
	rows := make([][]any, 0, len(sub.Items))
	for _, item := range sub.Items {
		subName := item.Sub
		if subName == "" {
			subName = item.Program
		}
		rows = append(rows, []any{sub.Date, sub.Branch, item.Program, subName, item.Que})
	}
	return rows
}

// dataRow is one Data row with its 1-based sheet row number.
type dataRow struct {
	record model.Record
	number int
}

// parseDataRows converts Data values read from row firstRow onwards.
func parseDataRows(values [][]any, firstRow int) []dataRow {
	rows := make([]dataRow, 0, len(values))
	for i, v := range values {
		number := firstRow + i
		date := isoDate(cell(v, 0))
		branch := cellString(cell(v, 1))
		if date == "" && branch == "" {
			continue
		}
		rows = append(rows, dataRow{
			number: number,
			record: model.Record{
				ID:      fmt.Sprintf("%s_%s_%d", date, branch, number),
				Date:    date,
				Branch:  branch,
				Program: cellString(cell(v, 2)),
				Sub:     cellString(cell(v, 3)),
				Que:     cellInt(cell(v, 4)),
			},
		})
	}
	return rows
}

// selectRecords applies a query to parsed rows. A full date range filters
// inclusively; otherwise the last Limit rows are kept.
func selectRecords(rows []dataRow, q service.RecordQuery) []model.Record {
	records := make([]model.Record, 0, len(rows))

	if q.StartDate != "" && q.EndDate != "" {
		for _, r := range rows {
			if r.record.Date >= q.StartDate && r.record.Date <= q.EndDate {
				records = append(records, r.record)
			}
		}
		return records
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultRecordLimit
	}
	if len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	for _, r := range rows {
		records = append(records, r.record)
	}
	return records
}

// matchesKey reports whether a record is the one a quantity update targets.
// Empty subs match each other.
func matchesKey(r model.Record, key service.RecordKey) bool {
	return r.Date == key.Date &&
		r.Branch == key.Branch &&
		r.Program == key.Program &&
		r.Sub == key.Sub
}

// rowsForDeletion returns the sheet row numbers matching date and branch,
// highest first so they can be deleted without shifting each other.
func rowsForDeletion(rows []dataRow, date, branch string) []int {
	var numbers []int
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].record.Date == date && rows[i].record.Branch == branch {
			numbers = append(numbers, rows[i].number)
		}
	}
	return numbers
}
