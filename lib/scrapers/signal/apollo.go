package signal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"investor-parser/lib/htmlutil"
	"investor-parser/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

var apolloStateRegex = regexp.MustCompile(`(?s)window\.__APOLLO_STATE__\s*=\s*(\{.*?\});`)

// Type tags of entities in the normalized state store. The profile
// wrapper carries page-level fields and points at the person entity,
// bare person entries occur on older pages.
const (
	typeProfile    = "PublicInvestorProfile"
	typePerson     = "Person"
	typeInvestment = "Investment"
)

// person fields holding outbound links, keyed in the record by the
// field name minus its "_url" suffix
var linkFields = []string{
	"linkedin_url",
	"twitter_url",
	"facebook_url",
	"crunchbase_url",
	"angellist_url",
	"url",
}

// ExtractState pulls an investor record out of the client state blob
// embedded in the page. Returns found=false when there is no blob,
// the blob does not decode, or no candidate entity resolves to a name.
func ExtractState(content string, hint PageHint) (InvestorRecord, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return InvestorRecord{}, false
	}

	blob := findStateBlob(doc)
	if blob == nil {
		return InvestorRecord{}, false
	}

	graph, err := decodeStateGraph(blob)
	if err != nil {
		return InvestorRecord{}, false
	}

	primary := graph.primaryKey(hint)
	if primary == "" {
		return InvestorRecord{}, false
	}

	record := graph.buildRecord(primary, hint)
	if record.Name == "" {
		return InvestorRecord{}, false
	}
	record.ExtractionMethod = MethodApolloState
	return record, true
}

func findStateBlob(doc *goquery.Document) []byte {
	for _, script := range doc.Find("script").Nodes {
		text := htmlutil.GetText(script)
		if !strings.Contains(text, "__APOLLO_STATE__") {
			continue
		}
		groups := apolloStateRegex.FindStringSubmatch(text)
		if len(groups) < 2 {
			continue
		}
		return []byte(groups[1])
	}
	return nil
}

// stateGraph is the decoded store: a flat map of entities keyed by
// "<TypeTag>:<id>". keys preserves the order entities appeared in the
// blob so "first candidate" is stable across runs.
type stateGraph struct {
	keys     []string
	entities map[string]map[string]any
}

func decodeStateGraph(blob []byte) (*stateGraph, error) {
	decoder := json.NewDecoder(bytes.NewReader(blob))
	token, err := decoder.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("state blob is not a json object")
	}

	graph := &stateGraph{entities: map[string]map[string]any{}}
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		key, ok := token.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in state blob", token)
		}

		var raw json.RawMessage
		err = decoder.Decode(&raw)
		if err != nil {
			return nil, err
		}

		var entity map[string]any
		if json.Unmarshal(raw, &entity) != nil {
			// top level scalars and arrays are store metadata, not entities
			continue
		}
		graph.keys = append(graph.keys, key)
		graph.entities[key] = entity
	}
	// a truncated blob decodes entity by entity but never closes the
	// object, treat it as malformed rather than half-parsed
	if _, err := decoder.Token(); err != nil {
		return nil, err
	}
	return graph, nil
}

func typeTag(key string) string {
	tag, _, _ := strings.Cut(key, ":")
	return tag
}

func entityID(key string) string {
	_, id, _ := strings.Cut(key, ":")
	return id
}

// primaryKey picks the entity the page is about: an explicit profile
// id wins, otherwise the first candidate in blob order. Profile
// wrappers are preferred over bare person entries.
func (g *stateGraph) primaryKey(hint PageHint) string {
	for _, tag := range []string{typeProfile, typePerson} {
		var candidates []string
		for _, key := range g.keys {
			if typeTag(key) == tag {
				candidates = append(candidates, key)
			}
		}
		if len(candidates) == 0 {
			continue
		}
		if hint.ProfileID != "" {
			for _, key := range candidates {
				if entityID(key) == hint.ProfileID {
					return key
				}
			}
		}
		return candidates[0]
	}
	return ""
}

// refKey extracts the store key a reference field points at. The blob
// encodes references as {"__ref": "Key"}, {"ref": "Key"} or as
// {"typename": "T", "id": "I"} pairs depending on the client version
// that serialized it.
func refKey(value any) string {
	obj, ok := value.(map[string]any)
	if !ok {
		return ""
	}
	if ref, ok := obj["__ref"].(string); ok && ref != "" {
		return ref
	}
	if ref, ok := obj["ref"].(string); ok && ref != "" {
		return ref
	}
	typename, _ := obj["typename"].(string)
	if typename == "" {
		typename, _ = obj["__typename"].(string)
	}
	id := stringValue(obj["id"])
	if typename == "" || id == "" {
		return ""
	}
	return typename + ":" + id
}

func (g *stateGraph) resolve(value any) map[string]any {
	key := refKey(value)
	if key == "" {
		return nil
	}
	return g.entities[key]
}

func stringValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func boolValue(value any) bool {
	v, _ := value.(bool)
	return v
}

// entityText returns the first non-empty of the named fields
func entityText(entity map[string]any, fields ...string) string {
	for _, field := range fields {
		if text := strings.TrimSpace(stringValue(entity[field])); text != "" {
			return text
		}
	}
	return ""
}

// dollarValue reads an amount field that may be a formatted string
// ("$1M") or a plain number
func dollarValue(value any) *int64 {
	switch v := value.(type) {
	case string:
		if amount, ok := ParseAmount(v); ok {
			return &amount
		}
	case float64:
		amount := int64(v)
		return &amount
	}
	return nil
}

func (g *stateGraph) buildRecord(primary string, hint PageHint) InvestorRecord {
	record := newRecord(hint.SourceFile)
	profile := g.entities[primary]

	// the profile wrapper points at the person entity carrying the
	// display name and outbound links, a bare person entry is its own
	// subject
	person := profile
	if p := g.resolve(profile["person"]); p != nil {
		person = p
	}

	record.Name = entityText(person, "name")
	for _, field := range linkFields {
		if link := strings.TrimSpace(stringValue(person[field])); link != "" {
			record.Links[strings.TrimSuffix(field, "_url")] = link
		}
	}

	// remaining fields may sit on the wrapper or on the person entity
	lookup := func(field string) any {
		if value, ok := profile[field]; ok && value != nil {
			return value
		}
		if value, ok := person[field]; ok && value != nil {
			return value
		}
		return nil
	}

	record.Position = NullString(strings.TrimSpace(stringValue(lookup("position"))))
	if firm := g.resolve(lookup("firm")); firm != nil {
		record.Firm = NullString(entityText(firm, "name", "display_name"))
	}
	if location := g.resolve(lookup("location")); location != nil {
		record.Location = NullString(entityText(location, "display_name", "name"))
	}

	record.InvestmentRange.Min = dollarValue(lookup("min_investment"))
	record.InvestmentRange.Max = dollarValue(lookup("max_investment"))
	if target := dollarValue(lookup("target_investment")); target != nil && *target > 0 {
		record.InvestmentRange.Target = target
	}
	record.CurrentFundSize = dollarValue(lookup("current_fund_size"))

	record.AreasOfInterest = append(record.AreasOfInterest,
		textutil.SplitCommaList(stringValue(lookup("areas_of_interest_freeform")))...)
	record.NotInterestedIn = append(record.NotInterestedIn,
		textutil.SplitCommaList(stringValue(lookup("no_current_interest_freeform")))...)

	g.collectInvestments(&record, primary, profile)
	return record
}

// collectInvestments reads the profile's investment connection when it
// has one, otherwise scans the store for investment entities pointing
// back at the subject.
func (g *stateGraph) collectInvestments(record *InvestorRecord, primary string, profile map[string]any) {
	// the connection field name carries serialized query arguments, so
	// match by prefix. Sorted so runs over the same blob agree on which
	// connection wins.
	var connectionFields []string
	for field := range profile {
		if strings.HasPrefix(field, "investments_on_record") {
			connectionFields = append(connectionFields, field)
		}
	}
	sort.Strings(connectionFields)

	for _, field := range connectionFields {
		connection, ok := profile[field].(map[string]any)
		if !ok {
			continue
		}
		if count, ok := connection["record_count"].(float64); ok {
			record.InvestmentCount = int(count)
		}
		edges, _ := connection["edges"].([]any)
		for _, e := range edges {
			edge, ok := e.(map[string]any)
			if !ok {
				continue
			}
			node, ok := edge["node"].(map[string]any)
			if !ok {
				continue
			}
			if investment, ok := g.investmentFromNode(node); ok {
				record.Investments = append(record.Investments, investment)
			}
		}
		if record.InvestmentCount == 0 {
			record.InvestmentCount = len(record.Investments)
		}
		return
	}

	// no connection on the wrapper: fall back to store-wide scan
	personKey := refKey(profile["person"])
	for _, key := range g.keys {
		if typeTag(key) != typeInvestment {
			continue
		}
		node := g.entities[key]
		backref := refKey(node["investor"])
		if backref == "" {
			backref = refKey(node["person"])
		}
		if backref != primary && (personKey == "" || backref != personKey) {
			continue
		}
		if investment, ok := g.investmentFromNode(node); ok {
			record.Investments = append(record.Investments, investment)
		}
	}
	if record.InvestmentCount == 0 {
		record.InvestmentCount = len(record.Investments)
	}
}

// investmentFromNode normalizes one investment node. Nodes without a
// resolvable company name are dropped.
func (g *stateGraph) investmentFromNode(node map[string]any) (Investment, bool) {
	company := entityText(g.resolve(node["company"]), "name", "display_name")
	if company == "" {
		company = strings.TrimSpace(stringValue(node["company_name"]))
	}
	if company == "" {
		return Investment{}, false
	}

	investment := Investment{
		Company: company,
		IsLead:  boolValue(node["is_lead"]),
		Date:    NullString(strings.TrimSpace(stringValue(node["date"]))),
	}
	if round := g.resolve(node["funding_round"]); round != nil {
		investment.Round = NullString(entityText(round, "round_name", "name"))
		investment.Amount = NullString(strings.TrimSpace(stringValue(round["amount"])))
	}
	if investment.Round == "" {
		investment.Round = NullString(strings.TrimSpace(stringValue(node["round"])))
	}
	if investment.Amount == "" {
		investment.Amount = NullString(strings.TrimSpace(stringValue(node["amount"])))
	}
	return investment, true
}
