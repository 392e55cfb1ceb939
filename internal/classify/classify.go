// Package classify maps free-form complaint text to the responsible
// organizational department via keyword matching.
package classify

import "strings"

// FallbackDepartment receives submissions no keyword claims.
const FallbackDepartment = "Общие обращения"

type keywordRule struct {
	keyword    string
	department string
}

// Rules are checked in declaration order; the first matching keyword
// wins, so the order below is a contract, not a style choice.
var rules = []keywordRule{
	{"дорога", "Отдел транспорта"},
	{"мусор", "ЖКХ"},
	{"вода", "Коммунальные службы"},
	{"освещение", "Энергетика"},
	{"интернет", "Цифровизация"},
	{"экология", "Экология"},
}

// Classify returns the department responsible for the given text.
// Matching is case-insensitive substring search over the rule table.
func Classify(text string) string {
	lowered := strings.ToLower(text)
	for _, rule := range rules {
		if strings.Contains(lowered, rule.keyword) {
			return rule.department
		}
	}
	return FallbackDepartment
}
