package funding

import (
	"context"
	"strings"
	"testing"
)

const completeForm = `Club Name: Chess Club
Event: Spring Open Tournament
Funding Type: One-time request
Date of Purchase: 2024-04-12
Amount Requested: $450.00
Other Funding Sources: member dues and a bake sale fundraiser
Expected Attendance: 80 students, open to all students
Advertising Plan: flyers in the student center, Instagram posts and a campus email
`

func TestRuleAnalyzer_CompleteForm(t *testing.T) {
	a, err := RuleAnalyzer{}.Analyze(context.Background(), completeForm)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(a.Issues) != 0 {
		t.Errorf("issues = %v, want none", a.Issues)
	}
	if len(a.Checks) != 7 {
		t.Fatalf("checks = %d, want 7", len(a.Checks))
	}
	for _, c := range a.Checks {
		if !c.Met {
			t.Errorf("check %s not met: %s", c.Requirement, c.Detail)
		}
	}
}

func TestRuleAnalyzer_Violations(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(s string) string
		requirement string
	}{
		{"no funding type", func(s string) string {
			return strings.Replace(s, "Funding Type: One-time request", "Funding Type: Student activity", 1)
		}, ReqFundingType},
		{"blank field", func(s string) string {
			return strings.Replace(s, "Amount Requested: $450.00", "Amount Requested: TBD", 1)
		}, ReqFieldsComplete},
		{"no alternative funding", func(s string) string {
			return strings.Replace(s, "Other Funding Sources: member dues and a bake sale fundraiser\n", "", 1)
		}, ReqAlternativeFunding},
		{"small audience", func(s string) string {
			return strings.Replace(s, "80 students, open to all students", "8 members", 1)
		}, ReqBroadBenefit},
		{"gas money", func(s string) string {
			return s + "Notes: includes gas money for the drive to regionals\n"
		}, ReqNoTransportation},
		{"no date", func(s string) string {
			return strings.Replace(s, "Date of Purchase: 2024-04-12", "Date of Purchase: sometime in spring", 1)
		}, ReqSpendingDate},
		{"no advertising", func(s string) string {
			return strings.Replace(s, "Advertising Plan: flyers in the student center, Instagram posts and a campus email\n", "", 1)
		}, ReqAdvertisingPlan},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, err := RuleAnalyzer{}.Analyze(context.Background(), tc.modify(completeForm))
			if err != nil {
				t.Fatalf("Analyze: %v", err)
			}
			if len(a.Issues) != 1 || len(a.Recommendations) != 1 {
				t.Fatalf("issues = %v, recommendations = %v; want exactly one each", a.Issues, a.Recommendations)
			}
			for _, c := range a.Checks {
				if (c.Requirement == tc.requirement) == c.Met {
					t.Errorf("check %s met = %v", c.Requirement, c.Met)
				}
			}
		})
	}
}

func TestRuleAnalyzer_EmptyText(t *testing.T) {
	a, err := RuleAnalyzer{}.Analyze(context.Background(), "   \n")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(a.Issues) != 1 || len(a.Recommendations) != 1 {
		t.Errorf("analysis = %+v", a)
	}
}

func TestRuleAnalyzer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (RuleAnalyzer{}).Analyze(ctx, completeForm); err == nil {
		t.Error("expected context error")
	}
}
