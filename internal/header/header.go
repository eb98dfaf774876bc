// Package header recovers the branch and booking date from pasted chat text.
package header

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/Veraticus/qflow/internal/model"
)

// buddhistEraOffset is the difference between Thai Buddhist Era and Common Era years.
const buddhistEraOffset = 543

var datePattern = regexp.MustCompile(`(\d{1,2})[/.-](\d{1,2})[/.-](\d{2,4})`)

// defaultAliases covers nicknames staff commonly use that are not in the
// branch directory. First match wins.
var defaultAliases = []model.BranchAlias{
	{Alias: "ฉะเชิงเทรา", Code: "CCO"},
	{Alias: "เครือสหพัฒน์", Code: "SPN"},
	{Alias: "สหพัฒน์", Code: "SPN"},
	{Alias: "อุบล", Code: "UBN"},
	{Alias: "หอกาญ", Code: "KAN"},
	{Alias: "กาญจนบุรี", Code: "KAN"},
	{Alias: "อุดร", Code: "UDN"},
	{Alias: "ขอนแก่น", Code: "KKC"},
	{Alias: "กังสดาล", Code: "KKC"},
}

// AliasLookup resolves learned branch nicknames.
type AliasLookup interface {
	BranchAlias(text string) (string, bool)
}

// Extractor finds branch codes and dates in free text.
type Extractor struct {
	aliases   AliasLookup
	directory model.BranchDirectory
	mu        sync.RWMutex
}

// NewExtractor creates an extractor. aliases may be nil.
func NewExtractor(directory model.BranchDirectory, aliases AliasLookup) *Extractor {
	return &Extractor{
		directory: directory,
		aliases:   aliases,
	}
}

// SetDirectory swaps in a freshly loaded branch directory.
func (e *Extractor) SetDirectory(directory model.BranchDirectory) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.directory = directory
}

// Extract returns the branch code and ISO date found in text. Fields that
// cannot be found are left empty.
func (e *Extractor) Extract(text string) model.HeaderData {
	return model.HeaderData{
		Branch: e.Branch(text),
		Date:   Date(text),
	}
}

// Branch resolves the branch code: directory names first, then learned
// aliases, then the built-in nickname table.
func (e *Extractor) Branch(text string) string {
	lower := strings.ToLower(text)

	e.mu.RLock()
	for _, b := range e.directory {
		if b.Name != "" && strings.Contains(lower, strings.ToLower(b.Name)) {
			e.mu.RUnlock()
			return b.Code
		}
	}
	e.mu.RUnlock()

	if e.aliases != nil {
		if code, ok := e.aliases.BranchAlias(lower); ok {
			return code
		}
	}

	for _, a := range defaultAliases {
		if strings.Contains(lower, a.Alias) {
			return a.Code
		}
	}

	return ""
}

// Date finds the first D/M/Y fragment in text and returns it as YYYY-MM-DD.
// Buddhist Era years are converted. The result is not checked for
// calendrical validity.
func Date(text string) string {
	m := datePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year := NormalizeYear(m[3])

	return fmt.Sprintf("%d-%02d-%02d", year, month, day)
}

// NormalizeYear converts a 2-4 digit year fragment to a Common Era year.
// Two-digit years above 50 are read as short Buddhist Era years (68 → 2568 →
// 2025); the rest as 20xx. Longer years above 2500 are Buddhist Era.
func NormalizeYear(fragment string) int {
	year, err := strconv.Atoi(fragment)
	if err != nil {
		return 0
	}

	if len(fragment) == 2 {
		if year > 50 {
			return 2500 + year - buddhistEraOffset
		}
		return 2000 + year
	}

	if year > 2500 {
		return year - buddhistEraOffset
	}
	return year
}
