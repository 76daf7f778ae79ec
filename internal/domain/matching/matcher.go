package matching

import (
	"sort"
	"strings"

	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/entity"
)

// MatchType names the rule that produced a score.
type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchPhone   MatchType = "phone"
	MatchID      MatchType = "id"
	MatchFuzzy   MatchType = "fuzzy"
	MatchPartial MatchType = "partial"
)

const (
	// MinScore is the lowest score kept in results.
	MinScore = 70.0
	// FuzzyThreshold is the name similarity needed for a fuzzy match.
	FuzzyThreshold = 0.8

	scoreExact   = 100.0
	scorePhone   = 95.0
	scoreID      = 95.0
	scoreFuzzy   = 90.0
	scorePartial = 75.0
)

// MatchResult is an application scored against a client.
type MatchResult struct {
	Application entity.LoanApplication `json:"application"`
	Score       float64                `json:"score"`
	MatchType   MatchType              `json:"match_type"`
}

// Score applies the match rules in order and returns the first that fires.
// A zero score means no rule matched.
func Score(client entity.Client, app entity.LoanApplication) (float64, MatchType) {
	clientName := NormalizeName(client.FullName)
	appName := NormalizeName(app.ClientName)
	if clientName != "" && clientName == appName {
		return scoreExact, MatchExact
	}

	clientPhone := NormalizePhone(client.PhoneNumber)
	if clientPhone != "" && clientPhone == NormalizePhone(app.PhoneNumber) {
		return scorePhone, MatchPhone
	}

	clientID := NormalizeID(client.IDNumber)
	if clientID != "" && clientID == NormalizeID(app.IDNumber) {
		return scoreID, MatchID
	}

	if clientName != "" && appName != "" {
		if sim := Similarity(clientName, appName); sim >= FuzzyThreshold {
			return sim * scoreFuzzy, MatchFuzzy
		}
		if strings.Contains(clientName, appName) || strings.Contains(appName, clientName) {
			return scorePartial, MatchPartial
		}
	}

	return 0, ""
}

// Rank scores every application, keeps those at or above MinScore and orders
// them by descending score. Ties keep their input order. An application ID
// seen twice is reported once.
func Rank(client entity.Client, apps []entity.LoanApplication) []MatchResult {
	results := make([]MatchResult, 0, len(apps))
	seen := make(map[int64]struct{}, len(apps))

	for _, app := range apps {
		if app.ID != 0 {
			if _, dup := seen[app.ID]; dup {
				continue
			}
		}
		score, kind := Score(client, app)
		if score < MinScore {
			continue
		}
		if app.ID != 0 {
			seen[app.ID] = struct{}{}
		}
		results = append(results, MatchResult{Application: app, Score: score, MatchType: kind})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// MatchClientToApplications returns the applications that probably belong to client,
// best match first.
func MatchClientToApplications(client entity.Client, apps []entity.LoanApplication) []entity.LoanApplication {
	ranked := Rank(client, apps)
	out := make([]entity.LoanApplication, len(ranked))
	for i, r := range ranked {
		out[i] = r.Application
	}
	return out
}
