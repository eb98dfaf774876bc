package parser

import (
	"regexp"
	"strings"
)

// space matches ASCII and Unicode space separators, which chat apps often
// paste instead of plain spaces.
const space = `[\s\p{Zs}\x{FEFF}]`

var quantityLine = regexp.MustCompile(`(?i)^(.*?)` + space + `+(\d+)(?:` + space + `*คน)?$`)

// noisePhrases mark chat lines that are never items: inquiries, rebookings,
// pending confirmations, closed bookings, customer notes, page totals and
// start times.
var noisePhrases = []string{
	"สอบถาม",
	"รีแชท",
	"รอคอนเฟิร์ม",
	"ปิดจอง",
	"ลูกค้า",
	"ยอดหน้าเพจ",
	"เริ่มเวลา",
	"_____",
}

// totalPrefix starts summary lines.
const totalPrefix = "รวม"

// IsNoise reports whether a trimmed line is chat boilerplate.
func IsNoise(line string) bool {
	if strings.HasPrefix(line, totalPrefix) {
		return true
	}
	for _, phrase := range noisePhrases {
		if strings.Contains(line, phrase) {
			return true
		}
	}
	return false
}
