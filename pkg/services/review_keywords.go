package services

import (
	"regexp"
	"sort"
	"strings"

	"review-insight-api/pkg/models"

	"github.com/mozillazg/go-unidecode"
)

const (
	maxReviewKeywords = 8
	minKeywordLength  = 3
	fallbackKeyword   = "general"
)

var (
	nonWordRe = regexp.MustCompile(`[^\w\s]`)
	digitsRe  = regexp.MustCompile(`^\d+$`)
)

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true, "not": true,
	"you": true, "all": true, "any": true, "can": true, "had": true, "her": true,
	"was": true, "one": true, "our": true, "out": true, "day": true, "get": true,
	"has": true, "him": true, "his": true, "how": true, "its": true, "may": true,
	"new": true, "now": true, "old": true, "see": true, "two": true, "who": true,
	"did": true, "yes": true, "too": true, "use": true, "app": true, "this": true,
	"that": true, "with": true, "have": true, "from": true, "they": true, "will": true,
	"what": true, "when": true, "your": true, "been": true, "were": true, "said": true,
	"each": true, "which": true, "their": true, "there": true, "would": true,
	"could": true, "should": true, "about": true, "into": true, "just": true,
	"than": true, "then": true, "them": true, "these": true, "some": true,
	"very": true, "really": true, "also": true, "only": true, "even": true,
	"much": true, "more": true, "most": true, "other": true, "does": true,
	"because": true, "while": true, "where": true, "after": true, "before": true,
	"dont": true, "doesnt": true, "cant": true, "yet": true, "got": true,
}

// categoryRule キーワードグループ（評価順）
type categoryRule struct {
	category string
	keywords []string
}

var categoryRules = []categoryRule{
	{models.CategoryBugReport, []string{"bug", "crash", "error", "broken", "fix", "issue", "problem", "not working", "doesn't work", "glitch"}},
	{models.CategoryFeatureRequest, []string{"add", "feature", "request", "please", "would be nice", "suggestion", "improve", "enhancement"}},
	{models.CategoryPerformance, []string{"slow", "lag", "performance", "speed", "fast", "loading"}},
	{models.CategoryUIUX, []string{"design", "ui", "ux", "interface", "layout", "button", "screen"}},
}

// ExtractKeywords 出現頻度の高い意味のある単語を最大8件返します（同数は初出順）。
// 該当がなければ ["general"]。
func ExtractKeywords(text string) []string {
	folded := strings.ToLower(unidecode.Unidecode(text))
	cleaned := nonWordRe.ReplaceAllString(folded, " ")

	counts := make(map[string]int)
	var order []string
	for _, tok := range strings.Fields(cleaned) {
		if len(tok) < minKeywordLength || stopwords[tok] || digitsRe.MatchString(tok) {
			continue
		}
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	if len(order) == 0 {
		return []string{fallbackKeyword}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > maxReviewKeywords {
		order = order[:maxReviewKeywords]
	}
	return order
}

// Categorize キーワードグループを優先順に部分一致で評価し、最初に一致したカテゴリを返します。
func Categorize(text string) string {
	lowered := strings.ToLower(text)
	for _, rule := range categoryRules {
		if containsAny(lowered, rule.keywords) {
			return rule.category
		}
	}
	return models.CategoryGeneral
}
