package models

import "time"

// RequiredDocType marks the annual securities report in a filing description.
const RequiredDocType = "有価証券報告書"

// FilingEntry is one row of the disclosure index for a given date.
type FilingEntry struct {
	DocID          string
	EdinetCode     string
	SecCode        string
	FilerName      string
	DocDescription string
	SubmitDateTime string
}

// FilingRecord identifies a filing kept for screening.
type FilingRecord struct {
	FilerName  string
	EdinetCode string
	// CompanyCode is the local market code; it comes from the quote
	// provider, not the filing, and is empty until screening resolves it.
	CompanyCode string
	SubmittedAt time.Time
	DocID       string
	// Path to the stored XBRL artifact, empty until downloaded.
	Path string
}

// FilerKey identifies the filer for deduplication. Records built from stored
// artifacts carry no filer name and fall back to the EDINET code.
func (r FilingRecord) FilerKey() string {
	if r.FilerName != "" {
		return r.FilerName
	}
	return r.EdinetCode
}

// Artifact is a downloaded XBRL instance on disk.
type Artifact struct {
	EdinetCode     string
	SubmitDateTime string
	DocID          string
	Path           string
}
