package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"meibo/internal/domain"
)

// Japanese era year offsets: era year N = offset + N in the Gregorian calendar.
var eraOffsets = map[string]int{
	"令和": 2018,
	"平成": 1988,
	"昭和": 1925,
}

var warekiPattern = regexp.MustCompile(`^(令和|平成|昭和)\s*(\d+)\s*年\s*(\d+)\s*月\s*(\d+)\s*日`)

// dateFields are the schema fields that may carry era-format dates. Contract
// signature blocks are almost always 和暦; certificates usually print 西暦 but
// not reliably.
var dateFields = []string{
	domain.FieldContractDate,
	domain.FieldGrantStartDate,
	domain.FieldGrantEndDate,
	domain.FieldBirthDate,
}

var nonDigits = regexp.MustCompile(`[^\d]`)

// ConvertWarekiDate converts an era-format date (令和/平成/昭和) to the
// YYYY年MM月DD日 form. Text that does not start with an era date is returned
// unchanged.
func ConvertWarekiDate(text string) string {
	m := warekiPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return text
	}
	eraYear, _ := strconv.Atoi(m[2])
	month, _ := strconv.Atoi(m[3])
	day, _ := strconv.Atoi(m[4])
	year := eraOffsets[m[1]] + eraYear
	return fmt.Sprintf("%d年%02d月%02d日", year, month, day)
}

// PostProcess normalizes extractor output in place: postal codes are reduced
// to digits and era-format dates converted to the Gregorian calendar.
func PostProcess(fields map[string]string) {
	if postal, ok := fields[domain.FieldPostalCode]; ok && postal != "" {
		fields[domain.FieldPostalCode] = nonDigits.ReplaceAllString(postal, "")
	}
	for _, f := range dateFields {
		if v, ok := fields[f]; ok && v != "" {
			fields[f] = ConvertWarekiDate(v)
		}
	}
}
