package funding

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Requirement identifiers, in the order the appropriation form lists them.
const (
	ReqFundingType        = "funding_type"
	ReqFieldsComplete     = "fields_complete"
	ReqAlternativeFunding = "alternative_funding"
	ReqBroadBenefit       = "broad_benefit"
	ReqNoTransportation   = "no_transportation"
	ReqSpendingDate       = "spending_date"
	ReqAdvertisingPlan    = "advertising_plan"
)

// MinBeneficiaries is the smallest stated audience that counts as benefiting
// a large number of people.
const MinBeneficiaries = 25

// Check is the outcome of one requirement.
type Check struct {
	Requirement string `json:"requirement"`
	Met         bool   `json:"met"`
	Detail      string `json:"detail"`
}

// Analysis is the result of reviewing a funding request.
type Analysis struct {
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
	Checks          []Check  `json:"checks"`
}

// Analyzer reviews the text of an appropriation form.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (Analysis, error)
}

// RuleAnalyzer checks the seven appropriation requirements with keyword and
// pattern rules.
type RuleAnalyzer struct{}

var (
	fundingTypePattern  = regexp.MustCompile(`(?i)\b(one[- ]time|recurring|annual(ly)?|each (semester|year|month)|per (semester|year)|every (semester|year|month)|weekly|monthly)\b`)
	alternativePattern  = regexp.MustCompile(`(?i)(alternative|other|additional|outside) (funding|sources?)|fundrais|sponsor|donation|grant|dues|matching funds|co-?fund`)
	openAudiencePattern = regexp.MustCompile(`(?i)open to (all|the (entire|whole) campus|everyone|all students)|entire (campus|student body)|campus[- ]wide|whole student body`)
	audiencePattern     = regexp.MustCompile(`(?i)\b(\d{1,6})\+?\s+(students|people|attendees|participants|members|guests)\b`)
	transportPattern    = regexp.MustCompile(`(?i)\b(gas|gasoline|fuel|mileage|transportation|bus|buses|uber|lyft|taxi|airfare|flights?|rental car|parking)\b`)
	advertisingPattern  = regexp.MustCompile(`(?i)advertis|flyers?|posters?|social media|instagram|facebook|campus (newsletter|email|announcement)|email blast|bulletin|promot|tabling`)
	placeholderPattern  = regexp.MustCompile(`(?i)^(tbd|tba|n/?a|none|-+|_+|\?+|\[\s*\])$`)
	fieldLinePattern    = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z0-9 /&()'#-]{1,60}):\s*(.*)$`)
)

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`),
	regexp.MustCompile(`(?i)\b(jan(uary)?|feb(ruary)?|mar(ch)?|apr(il)?|may|june?|july?|aug(ust)?|sep(t(ember)?)?|oct(ober)?|nov(ember)?|dec(ember)?)\.?\s+\d{1,2}(st|nd|rd|th)?\b`),
}

// Analyze runs every requirement check against text.
// PRE: none
// POST: one Check per requirement in form order; every unmet check adds
// exactly one issue and one recommendation
func (RuleAnalyzer) Analyze(ctx context.Context, text string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}

	a := Analysis{Issues: []string{}, Recommendations: []string{}}
	if strings.TrimSpace(text) == "" {
		a.Issues = append(a.Issues, "No readable text was found in the uploaded form.")
		a.Recommendations = append(a.Recommendations, "Upload the completed form as a PDF, DOCX or plain text file.")
		return a, nil
	}

	checks := []Check{
		checkFundingType(text),
		checkFieldsComplete(text),
		checkAlternativeFunding(text),
		checkBroadBenefit(text),
		checkNoTransportation(text),
		checkSpendingDate(text),
		checkAdvertisingPlan(text),
	}
	for _, c := range checks {
		if c.Met {
			continue
		}
		a.Issues = append(a.Issues, c.Detail)
		a.Recommendations = append(a.Recommendations, recommendations[c.Requirement])
	}
	a.Checks = checks
	return a, nil
}

var recommendations = map[string]string{
	ReqFundingType:        "State whether this is a one-time request or recurring funding.",
	ReqFieldsComplete:     "Fill in every field on the form; write a short explanation instead of leaving a field blank or TBD.",
	ReqAlternativeFunding: "List other funding sources such as fundraising, dues, sponsors or grants.",
	ReqBroadBenefit:       fmt.Sprintf("Describe who benefits and how many people; events should be open to campus or reach at least %d people.", MinBeneficiaries),
	ReqNoTransportation:   "Remove transportation, gas and mileage costs; these cannot be reimbursed.",
	ReqSpendingDate:       "Give the specific date the money will be spent.",
	ReqAdvertisingPlan:    "Add a campus advertising plan (flyers, social media, campus email).",
}

func checkFundingType(text string) Check {
	if fundingTypePattern.MatchString(text) {
		return Check{Requirement: ReqFundingType, Met: true, Detail: "Funding type is stated."}
	}
	return Check{Requirement: ReqFundingType, Detail: "The form does not say whether funding is one-time or recurring."}
}

func checkFieldsComplete(text string) Check {
	var blank []string
	for _, line := range strings.Split(text, "\n") {
		m := fieldLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[2])
		if value == "" || placeholderPattern.MatchString(value) {
			blank = append(blank, strings.TrimSpace(m[1]))
		}
	}
	if len(blank) == 0 {
		return Check{Requirement: ReqFieldsComplete, Met: true, Detail: "All form fields are filled in."}
	}
	return Check{Requirement: ReqFieldsComplete, Detail: "These fields are blank or placeholders: " + strings.Join(blank, ", ") + "."}
}

func checkAlternativeFunding(text string) Check {
	if alternativePattern.MatchString(text) {
		return Check{Requirement: ReqAlternativeFunding, Met: true, Detail: "Alternative funding sources are listed."}
	}
	return Check{Requirement: ReqAlternativeFunding, Detail: "No alternative funding sources are shown."}
}

func checkBroadBenefit(text string) Check {
	if openAudiencePattern.MatchString(text) {
		return Check{Requirement: ReqBroadBenefit, Met: true, Detail: "The event is open to the wider campus."}
	}
	largest := 0
	for _, m := range audiencePattern.FindAllStringSubmatch(text, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > largest {
			largest = n
		}
	}
	switch {
	case largest >= MinBeneficiaries:
		return Check{Requirement: ReqBroadBenefit, Met: true, Detail: fmt.Sprintf("Expected reach is %d people.", largest)}
	case largest > 0:
		return Check{Requirement: ReqBroadBenefit, Detail: fmt.Sprintf("Expected reach of %d people is below %d.", largest, MinBeneficiaries)}
	}
	return Check{Requirement: ReqBroadBenefit, Detail: "The form does not show that the request benefits a large number of people."}
}

func checkNoTransportation(text string) Check {
	found := map[string]bool{}
	var terms []string
	for _, m := range transportPattern.FindAllString(text, -1) {
		t := strings.ToLower(m)
		if !found[t] {
			found[t] = true
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return Check{Requirement: ReqNoTransportation, Met: true, Detail: "No transportation costs requested."}
	}
	return Check{Requirement: ReqNoTransportation, Detail: "The request mentions transportation costs (" + strings.Join(terms, ", ") + "), which are not reimbursable."}
}

func checkSpendingDate(text string) Check {
	for _, p := range datePatterns {
		if p.MatchString(text) {
			return Check{Requirement: ReqSpendingDate, Met: true, Detail: "A spending date is given."}
		}
	}
	return Check{Requirement: ReqSpendingDate, Detail: "No specific date for spending the funds is given."}
}

func checkAdvertisingPlan(text string) Check {
	if advertisingPattern.MatchString(text) {
		return Check{Requirement: ReqAdvertisingPlan, Met: true, Detail: "A campus advertising plan is included."}
	}
	return Check{Requirement: ReqAdvertisingPlan, Detail: "No campus advertising plan is included."}
}
