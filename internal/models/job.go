package models

// NotSpecified is the sentinel for fields the source payload omits.
// hirehi.ru is a Russian-language site, so the sentinel matches its locale.
const NotSpecified = "Не указано"

// Job is one posting as served by the listing and the API.
// Constructed during scrape parsing or cache load, immutable afterwards.
type Job struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Salary       string   `json:"salary,omitempty"`
	Level        string   `json:"level"`
	Format       string   `json:"format"`
	URL          string   `json:"url"`
	Description  string   `json:"description,omitempty"`
	Requirements []string `json:"requirements,omitempty"`
	Benefits     []string `json:"benefits,omitempty"`
	Location     string   `json:"location,omitempty"`
	PublishedAt  string   `json:"publishedAt,omitempty"`
}

// SearchParams describe one search against the hirehi API.
type SearchParams struct {
	Category    string   `json:"category"`
	Format      string   `json:"format"`
	Levels      []string `json:"levels"`
	Subcategory string   `json:"subcategory"`
	Keywords    []string `json:"keywords"`
}

// JobStatistics summarize the latest refresh. Persisted with the cache
// envelope and recomputed on every refresh.
type JobStatistics struct {
	TotalJobs    int      `json:"totalJobs"`
	FilteredJobs int      `json:"filteredJobs"`
	LastUpdated  string   `json:"lastUpdated"`
	Keywords     []string `json:"keywords"`
}
