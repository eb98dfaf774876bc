package header

import (
	"strings"
	"testing"

	"github.com/Veraticus/qflow/internal/model"
	"github.com/stretchr/testify/assert"
)

type staticAliases map[string]string

func (s staticAliases) BranchAlias(text string) (string, bool) {
	for alias, code := range s {
		if strings.Contains(text, alias) {
			return code, true
		}
	}
	return "", false
}

func TestDate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"short buddhist year", "วันที่ 1/1/68", "2025-01-01"},
		{"short western year", "1/1/25", "2025-01-01"},
		{"long buddhist year", "1/1/2568", "2025-01-01"},
		{"long western year", "15.12.2024", "2024-12-15"},
		{"dash separators", "ยอด 3-4-67", "2024-04-03"},
		{"boundary 50 is western", "1/1/50", "2050-01-01"},
		{"boundary 51 is buddhist", "1/1/51", "2008-01-01"},
		{"first fragment wins", "1/3/68 and 2/4/68", "2025-03-01"},
		{"no validation", "40/13/2024", "2024-13-40"},
		{"three digit year passes", "1/1/999", "999-01-01"},
		{"no date", "ไม่มีวันที่", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Date(tt.text))
		})
	}
}

func TestNormalizeYear(t *testing.T) {
	assert.Equal(t, 2025, NormalizeYear("68"))
	assert.Equal(t, 2025, NormalizeYear("25"))
	assert.Equal(t, 2025, NormalizeYear("2568"))
	assert.Equal(t, 2500, NormalizeYear("2500"))
	assert.Equal(t, 0, NormalizeYear("x"))
}

func TestExtractor_Branch(t *testing.T) {
	directory := model.BranchDirectory{
		{Name: "สยาม (SIAM)", Code: "SIAM"},
		{Name: "สยาม", Code: "SIAM2"},
		{Name: "Central Rama 9", Code: "RM9"},
	}

	tests := []struct {
		name    string
		aliases AliasLookup
		text    string
		want    string
	}{
		{
			name: "directory first match wins",
			text: "ยอดสาขาสยาม (siam) วันนี้",
			want: "SIAM",
		},
		{
			name: "directory case insensitive",
			text: "CENTRAL RAMA 9 report",
			want: "RM9",
		},
		{
			name: "hardcoded nickname",
			text: "สาขาหอกาญ",
			want: "KAN",
		},
		{
			name: "hardcoded order",
			text: "เครือสหพัฒน์",
			want: "SPN",
		},
		{
			name:    "learned alias before hardcoded",
			aliases: staticAliases{"อุดรเซ็นทรัล": "UDC"},
			text:    "สาขาอุดรเซ็นทรัล",
			want:    "UDC",
		},
		{
			name:    "directory before learned alias",
			aliases: staticAliases{"สยาม": "OTHER"},
			text:    "สยาม",
			want:    "SIAM2",
		},
		{
			name: "no match",
			text: "ไม่รู้สาขา",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExtractor(directory, tt.aliases)
			assert.Equal(t, tt.want, e.Branch(tt.text))
		})
	}
}

func TestExtractor_Extract(t *testing.T) {
	e := NewExtractor(model.BranchDirectory{{Name: "สยาม (SIAM)", Code: "SIAM"}}, nil)

	got := e.Extract("แชทวันที่ 1/3/68\nสาขา สยาม (SIAM)\nริ้วรอย 3 คน")
	assert.Equal(t, model.HeaderData{Branch: "SIAM", Date: "2025-03-01"}, got)

	assert.Equal(t, model.HeaderData{}, e.Extract(""))
}

func TestExtractor_SetDirectory(t *testing.T) {
	e := NewExtractor(nil, nil)
	assert.Empty(t, e.Branch("สาขา ABC"))

	e.SetDirectory(model.BranchDirectory{{Name: "abc", Code: "ABC"}})
	assert.Equal(t, "ABC", e.Branch("สาขา ABC"))
}
