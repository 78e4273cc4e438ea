package models

// PSAPopulation is the population report aggregate on a PSA record:
// how many copies exist at this grade and how many grade higher.
type PSAPopulation struct {
	TotalAtGrade int `json:"total_at_grade"`
	Higher       int `json:"higher"`
}

// RawPSARecord is a certificate record exactly as the PSA lookup service
// returns it. Name and Set carry PSA's own formatting (variant prefixes,
// all-caps set names) and are normalized by the parser, never in place.
type RawPSARecord struct {
	Cert       string         `json:"cert"`
	Name       string         `json:"name"`
	Set        string         `json:"set"`
	Grade      string         `json:"grade"`
	Number     string         `json:"number"`
	ImageURL   string         `json:"image_url,omitempty"`
	Population *PSAPopulation `json:"population,omitempty"`
}

// PSALookupResponse is the wire shape of the upstream PSA lookup service
// and of our own /api/psa/:cert endpoint. Failures travel as a status
// flag plus message; Timeout distinguishes an aborted request from a
// cert that genuinely does not exist.
type PSALookupResponse struct {
	Success bool                `json:"success"`
	PSA     *RawPSARecord       `json:"psa,omitempty"`
	Parsed  *ParsedCardIdentity `json:"parsed,omitempty"`
	Error   string              `json:"error,omitempty"`
	Timeout bool                `json:"timeout,omitempty"`
}
