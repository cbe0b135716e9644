package hirehi

import "encoding/json"

// searchResponse is the top-level body of /api/search/jobs.
// has_more defaults to false when the field is absent.
type searchResponse struct {
	Jobs    []jobPayload `json:"jobs"`
	HasMore bool         `json:"has_more"`
}

// jobPayload is one job object as the site serves it. Only id and title are
// guaranteed; everything else degrades to a sentinel or stays empty.
type jobPayload struct {
	ID                 string       `json:"id"`
	Title              string       `json:"title"`
	Company            companyField `json:"company"`
	Salary             string       `json:"salary"`
	Level              string       `json:"level"`
	Format             string       `json:"format"`
	URL                string       `json:"url"`
	Description        string       `json:"description"`
	DescriptionDetails string       `json:"description_details"`
	Requirements       []string     `json:"requirements"`
	Benefits           []string     `json:"benefits"`
	Location           string       `json:"location"`
	CreatedAt          string       `json:"created_at"`
}

// companyField tolerates the two shapes the site uses for company: a plain
// string or an object carrying a name. Both resolve to a single string at
// parse time.
type companyField struct {
	Name string
}

func (c *companyField) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		c.Name = plain
		return nil
	}

	var named struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &named); err == nil {
		c.Name = named.Name
		return nil
	}

	// null or an unexpected shape; leave empty and let the parser apply
	// the sentinel
	c.Name = ""
	return nil
}
