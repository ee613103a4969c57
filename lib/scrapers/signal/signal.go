// Package signal extracts structured investor records from
// signal.nfx.com profile pages.
package signal

import (
	"encoding/json"
	"fmt"
)

// Method tags recorded on extracted records. The values are a wire
// contract with downstream consumers of the output JSON.
const (
	MethodApolloState = "apollo_state"
	MethodHTML        = "html"
)

// NullString marshals to JSON null when empty. Most profile fields
// are optional and downstream consumers expect explicit nulls rather
// than empty strings or missing keys.
type NullString string

func (s NullString) MarshalJSON() ([]byte, error) {
	if s == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(s))
}

func (s *NullString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	var value string
	err := json.Unmarshal(data, &value)
	if err != nil {
		return err
	}
	*s = NullString(value)
	return nil
}

type Investment struct {
	Company string     `json:"company"`
	Round   NullString `json:"round"`
	Date    NullString `json:"date"`
	Amount  NullString `json:"amount"`
	IsLead  bool       `json:"is_lead"`
}

type InvestmentRange struct {
	Min    *int64 `json:"min"`
	Max    *int64 `json:"max"`
	Target *int64 `json:"target"`
}

type InvestorRecord struct {
	Name             string            `json:"name"`
	Position         NullString        `json:"position"`
	Firm             NullString        `json:"firm"`
	Location         NullString        `json:"location"`
	InvestmentRange  InvestmentRange   `json:"investment_range"`
	AreasOfInterest  []string          `json:"areas_of_interest"`
	NotInterestedIn  []string          `json:"not_interested_in"`
	Investments      []Investment      `json:"investments"`
	InvestmentCount  int               `json:"investment_count"`
	CurrentFundSize  *int64            `json:"current_fund_size"`
	Roles            []string          `json:"roles"`
	CoInvestors      []string          `json:"co_investors"`
	ScoutsAngels     []string          `json:"scouts_angels"`
	Links            map[string]string `json:"links"`
	ExtractionMethod string            `json:"extraction_method"`
	SourceFile       string            `json:"source_file"`
}

// PageHint carries page context the extractors cannot recover from
// content alone: the file the content came from (recorded on the
// record) and, when known, the profile id that picks between multiple
// profile entities in the state blob.
type PageHint struct {
	SourceFile string
	ProfileID  string
}

func newRecord(sourceFile string) InvestorRecord {
	return InvestorRecord{
		AreasOfInterest: []string{},
		NotInterestedIn: []string{},
		Investments:     []Investment{},
		Roles:           []string{},
		CoInvestors:     []string{},
		ScoutsAngels:    []string{},
		Links:           map[string]string{},
		SourceFile:      sourceFile,
	}
}

const ReasonNoNameResolved = "no_name_resolved"

// ExtractionFailure reports a page neither extraction method could
// resolve to a named investor.
type ExtractionFailure struct {
	Reason string
	Source string
}

func (e *ExtractionFailure) Error() string {
	return fmt.Sprintf("extraction failed: %s (source %q)", e.Reason, e.Source)
}

// Extract pulls one investor record out of raw page content. The
// state blob is authoritative when it resolves to a named investor,
// markup heuristics cover everything else. A returned error is always
// *ExtractionFailure; malformed content alone is never an error.
func Extract(content string, hint PageHint) (InvestorRecord, error) {
	record, found := ExtractState(content, hint)
	if found && record.Name != "" {
		return record, nil
	}

	record = ExtractMarkup(content, hint)
	if record.Name != "" {
		return record, nil
	}

	return InvestorRecord{}, &ExtractionFailure{
		Reason: ReasonNoNameResolved,
		Source: hint.SourceFile,
	}
}
