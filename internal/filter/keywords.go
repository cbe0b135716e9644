package filter

import "strings"

// Matches reports whether any keyword occurs, case-insensitively, in the
// concatenation of the given text fields. An empty keyword list matches
// everything. Matching is literal substring containment, no word boundaries:
// "Go" matches "Google". That permissiveness is the contract.
func Matches(fields []string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}

	text := strings.ToLower(strings.Join(fields, " "))
	for _, keyword := range keywords {
		if strings.Contains(text, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// JobFields returns the searchable text of a job in the order the filter
// inspects it: title, company, description, joined requirements.
func JobFields(title, company, description string, requirements []string) []string {
	return []string{title, company, description, strings.Join(requirements, " ")}
}
