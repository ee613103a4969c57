package signal

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"investor-parser/lib/htmlutil"
	"investor-parser/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

var investmentHeadingMatchers = []string{"investments", "portfolio"}

var (
	stagePattern  = regexp.MustCompile(`(Seed|Pre-Seed|Series [A-Z]|Angel)`)
	datePattern   = regexp.MustCompile(`[A-Z][a-z]{2}\s+\d{4}`)
	amountPattern = regexp.MustCompile(`\$\d+(?:\.\d+)?[KMB]?`)
)

// ExtractMarkup pulls an investor record straight out of the rendered
// markup. Every field runs its own selector cascade, so a page that
// only matches some of them still yields a partial record. Callers
// check Name to decide whether the page resolved at all.
func ExtractMarkup(content string, hint PageHint) InvestorRecord {
	record := newRecord(hint.SourceFile)
	record.ExtractionMethod = MethodHTML

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return record
	}

	record.Name = firstText(doc,
		"h1.f3.f1-ns.mv1",
		"main h1",
		"h1",
	)
	extractRoles(doc, &record)
	extractPositionFirm(doc, &record)
	extractLocation(doc, &record)
	extractLabeledRows(doc, &record)
	extractAreas(doc, &record)
	record.CoInvestors = append(record.CoInvestors,
		networkNames(doc, "Investors who invest with")...)
	record.ScoutsAngels = append(record.ScoutsAngels,
		networkNames(doc, "Scouts & Angels Affiliated With")...)
	extractInvestments(doc, &record)
	return record
}

// firstText returns the text of the first selector that matches
// something non-empty
func firstText(doc *goquery.Document, selectors ...string) string {
	for _, selector := range selectors {
		if text := htmlutil.CleanText(doc.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func extractRoles(doc *goquery.Document, record *InvestorRecord) {
	doc.Find("div.subheader.white-subheader.b.pb1 span").Each(func(_ int, span *goquery.Selection) {
		if span.HasClass("middot-separator") {
			return
		}
		if text := htmlutil.CleanText(span.Text()); text != "" {
			record.Roles = append(record.Roles, text)
		}
	})
}

// extractPositionFirm reads the "CURRENT INVESTING POSITION" row. The
// value is either "Firm · Position" in one span or a firm anchor
// followed by the position text. Pages without the row fall back to
// the "Position at Firm" subheader.
func extractPositionFirm(doc *goquery.Document, record *InvestorRecord) {
	doc.Find("div.line-separated-row.row").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		label := htmlutil.CleanText(row.Find("div.col-xs-5 span").First().Text())
		if !strings.Contains(strings.ToUpper(label), "CURRENT INVESTING POSITION") {
			return true
		}

		value := htmlutil.CleanText(row.Find("div.col-xs-7 span").First().Text())
		if firm, position, found := strings.Cut(value, "·"); found {
			record.Firm = NullString(strings.TrimSpace(firm))
			record.Position = NullString(strings.TrimSpace(position))
			return false
		}

		if anchor := row.Find("div.col-xs-7 a").First(); anchor.Length() > 0 {
			firm := htmlutil.CleanText(anchor.Text())
			record.Firm = NullString(firm)
			position := strings.Replace(value, firm, "", 1)
			position = strings.Trim(position, "· ")
			record.Position = NullString(position)
		}
		return false
	})

	if record.Position != "" && record.Firm != "" {
		return
	}
	subheader := htmlutil.CleanText(doc.Find("div.subheader.lower-subheader.pb2").First().Text())
	if position, firm, found := strings.Cut(subheader, " at "); found {
		if record.Position == "" {
			record.Position = NullString(strings.TrimSpace(position))
		}
		if record.Firm == "" {
			record.Firm = NullString(strings.TrimSpace(firm))
		}
	}
}

func extractLocation(doc *goquery.Document, record *InvestorRecord) {
	location := firstText(doc,
		"span.f6.glyphicon.glyphicon-map-marker + span",
		"span.glyphicon-map-marker + span",
	)
	record.Location = NullString(location)
}

// extractLabeledRows walks the label/value row pairs making up the
// profile detail list
func extractLabeledRows(doc *goquery.Document, record *InvestorRecord) {
	doc.Find("div.line-separated-row.row").Each(func(_ int, row *goquery.Selection) {
		label := strings.ToUpper(htmlutil.CleanText(row.Find("div.col-xs-5 span").First().Text()))
		value := htmlutil.CleanText(row.Find("div.col-xs-7 span").First().Text())
		if label == "" || value == "" {
			return
		}
		switch {
		case strings.Contains(label, "INVESTMENT RANGE"):
			low, high, found := strings.Cut(value, "-")
			if !found {
				return
			}
			if amount, ok := ParseAmount(low); ok {
				record.InvestmentRange.Min = &amount
			}
			if amount, ok := ParseAmount(high); ok {
				record.InvestmentRange.Max = &amount
			}
		case strings.Contains(label, "SWEET SPOT"):
			if amount, ok := ParseAmount(value); ok {
				record.InvestmentRange.Target = &amount
			}
		case strings.Contains(label, "CURRENT FUND SIZE"):
			if amount, ok := ParseAmount(value); ok {
				record.CurrentFundSize = &amount
			}
		case strings.Contains(label, "INVESTMENTS ON RECORD"):
			if count, err := strconv.Atoi(value); err == nil {
				record.InvestmentCount = count
			}
		}
	})
}

// extractAreas reads the sector chips. Chip text carries a trailing
// rank like "Fintech (#3)" which gets cut off.
func extractAreas(doc *goquery.Document, record *InvestorRecord) {
	chips := sectionOf(doc, "Sector & Stage Rankings").Find("a.vc-list-chip")
	if chips.Length() == 0 {
		chips = doc.Find("a.vc-list-chip")
	}
	seen := map[string]bool{}
	chips.Each(func(_ int, chip *goquery.Selection) {
		text := htmlutil.CleanText(chip.Text())
		if idx := strings.Index(text, "("); idx >= 0 {
			text = strings.TrimSpace(text[:idx])
		}
		if text == "" || seen[text] {
			return
		}
		seen[text] = true
		record.AreasOfInterest = append(record.AreasOfInterest, text)
	})
}

// networkNames lists the investors shown in a titled network section,
// capped at the five the page renders without expansion
func networkNames(doc *goquery.Document, title string) []string {
	var names []string
	rows := sectionOf(doc, title).Find("div.network-row")
	rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		if i >= 5 {
			return false
		}
		if name := htmlutil.CleanText(row.Find("a.network-row-investor-name").First().Text()); name != "" {
			names = append(names, name)
		}
		return true
	})
	return names
}

// sectionOf finds the container around the deepest element holding the
// given section title
func sectionOf(doc *goquery.Document, title string) *goquery.Selection {
	return doc.Find("div:contains('" + title + "')").Last().Parent()
}

func extractInvestments(doc *goquery.Document, record *InvestorRecord) {
	table := findInvestmentsTable(doc)
	if table == nil {
		return
	}

	rows := table.Find("tbody tr")
	if rows.Length() == 0 {
		rows = table.Find("tr")
	}
	rows.Each(func(_ int, row *goquery.Selection) {
		if row.Find("th").Length() > 0 {
			return
		}
		if isCoInvestorRow(row) {
			harvestCoInvestors(row, record)
			return
		}

		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		company := cellText(cells.Eq(0))
		if company == "" {
			return
		}

		if cells.Length() >= 4 {
			// columnar layout: company | round | date | amount
			record.Investments = append(record.Investments, Investment{
				Company: company,
				Round:   NullString(cellText(cells.Eq(1))),
				Date:    NullString(cellText(cells.Eq(2))),
				Amount:  NullString(cellText(cells.Eq(3))),
				IsLead: hasLeadClass(row) ||
					leadMarked(cells.Eq(1)) || leadMarked(cells.Eq(2)) || leadMarked(cells.Eq(3)),
			})
			return
		}

		// packed layout: the second cell stacks one block per round
		blocks := cells.Eq(1).Find("div")
		if blocks.Length() == 0 {
			stage, date, amount := splitRoundBlock(htmlutil.CleanText(cells.Eq(1).Text()))
			record.Investments = append(record.Investments, Investment{
				Company: company,
				Round:   NullString(stage),
				Date:    NullString(date),
				Amount:  NullString(amount),
				IsLead:  hasLeadClass(row) || leadMarked(cells.Eq(1)),
			})
			return
		}
		blocks.Each(func(_ int, block *goquery.Selection) {
			stage, date, amount := splitRoundBlock(htmlutil.CleanText(block.Text()))
			if stage == "" && date == "" && amount == "" {
				return
			}
			record.Investments = append(record.Investments, Investment{
				Company: company,
				Round:   NullString(stage),
				Date:    NullString(date),
				Amount:  NullString(amount),
				IsLead:  hasLeadClass(row) || leadMarked(block),
			})
		})
	})
}

// findInvestmentsTable locates the investment history table: under a
// heading naming it, by a telling class, or the page's first table as
// the last resort.
func findInvestmentsTable(doc *goquery.Document) *goquery.Selection {
	var table *goquery.Selection
	doc.Find("h2, h3, h4").EachWithBreak(func(_ int, heading *goquery.Selection) bool {
		if !textutil.MatchName(heading.Text(), investmentHeadingMatchers) {
			return true
		}
		candidate := heading.Parent().Find("table").First()
		if candidate.Length() == 0 {
			candidate = heading.NextAllFiltered("table").First()
		}
		if candidate.Length() > 0 {
			table = candidate
			return false
		}
		return true
	})
	if table != nil {
		return table
	}
	for _, selector := range []string{"table.past-investments-table", "table[class*=investment]", "table"} {
		if candidate := doc.Find(selector).First(); candidate.Length() > 0 {
			return candidate
		}
	}
	return nil
}

func isCoInvestorRow(row *goquery.Selection) bool {
	if strings.Contains(row.AttrOr("class", ""), "coinvestor") {
		return true
	}
	return row.Find(`td[colspan="3"]`).Length() > 0
}

// harvestCoInvestors reads names out of a "Co-investors: a, b (firm)"
// spacer row
func harvestCoInvestors(row *goquery.Selection, record *InvestorRecord) {
	text := htmlutil.CleanText(row.Text())
	_, names, found := strings.Cut(text, "Co-investors:")
	if !found {
		return
	}
	for _, name := range textutil.SplitCommaList(names) {
		if idx := strings.Index(name, "("); idx >= 0 {
			name = strings.TrimSpace(name[:idx])
		}
		if name != "" && !slices.Contains(record.CoInvestors, name) {
			record.CoInvestors = append(record.CoInvestors, name)
		}
	}
}

// cellText prefers the cell's block or anchor content over stray
// whitespace around it
func cellText(cell *goquery.Selection) string {
	for _, selector := range []string{"div", "a", "span"} {
		if text := htmlutil.CleanText(cell.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return htmlutil.CleanText(cell.Text())
}

func hasLeadClass(sel *goquery.Selection) bool {
	return strings.Contains(strings.ToLower(sel.AttrOr("class", "")), "lead")
}

// leadMarked reports whether a round block carries the lead flag: an
// icon or a lead-ish class on the block or anything inside it
func leadMarked(sel *goquery.Selection) bool {
	if hasLeadClass(sel) || sel.Find("img").Length() > 0 {
		return true
	}
	marked := false
	sel.Find("[class]").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if hasLeadClass(el) {
			marked = true
			return false
		}
		return true
	})
	return marked
}

// splitRoundBlock breaks "Series A • Jan 2021 • $5M" into its parts.
// Older pages use " - " separators or run the fields together, in
// which case each part is probed for by pattern.
func splitRoundBlock(text string) (stage, date, amount string) {
	if text == "" {
		return "", "", ""
	}

	var parts []string
	switch {
	case strings.Contains(text, "•"):
		parts = splitTrim(text, "•")
	case strings.Contains(text, " - "):
		parts = splitTrim(text, " - ")
	default:
		if m := stagePattern.FindString(text); m != "" {
			parts = append(parts, m)
		}
		if m := datePattern.FindString(text); m != "" {
			parts = append(parts, m)
		}
		if m := amountPattern.FindString(text); m != "" {
			parts = append(parts, m)
		}
		if len(parts) == 0 {
			parts = []string{text}
		}
	}

	switch len(parts) {
	case 1:
		return parts[0], "", ""
	case 2:
		return parts[0], parts[1], ""
	default:
		return parts[0], parts[1], parts[2]
	}
}

func splitTrim(text, separator string) []string {
	var parts []string
	for _, part := range strings.Split(text, separator) {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
