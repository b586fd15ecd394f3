// Package nlu holds the pattern-rule heuristics used to classify chat
// turns. Detection is best-effort: a miss degrades to IntentUnknown and
// never blocks a reply.
package nlu

import (
	"regexp"
	"strings"

	"github.com/vilahaus/concierge/internal/domain"
)

// Intent categories
const (
	IntentScheduling   = "scheduling"
	IntentPricing      = "pricing"
	IntentAvailability = "availability"
	IntentNavigation   = "navigation"
	IntentGeneral      = "general"
	IntentUnknown      = "unknown"
)

var (
	unitPattern      = regexp.MustCompile(`(?i)\b([A-D]\d{2})\b`)
	datePattern      = regexp.MustCompile(`\b\d{1,2}[./]\d{1,2}(?:[./]\d{2,4})?\b`)
	weekdayPattern   = regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday|tomorrow|today)\b`)
	timeframePattern = regexp.MustCompile(`(?i)\b(asap|immediately|this (week|month|year)|next (week|month|year)|within \d+ (days?|weeks?|months?))\b`)
	emailPattern     = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern     = regexp.MustCompile(`\+?\d[\d\s\-]{7,}\d`)

	schedulingWords = []string{"viewing", "tour", "visit", "appointment", "schedule", "book", "see the apartment", "meet"}
	pricingWords    = []string{"price", "cost", "how much", "financing", "mortgage", "payment", "deposit", "discount"}
	availableWords  = []string{"available", "availability", "still free", "reserved", "sold", "left"}
	navigationWords = []string{"show me", "take me to", "open", "go to", "navigate"}
)

// DetectIntent classifies a user message into one intent category.
func DetectIntent(message string) string {
	m := strings.ToLower(message)
	if m == "" {
		return IntentUnknown
	}

	if containsAny(m, navigationWords) && unitPattern.MatchString(message) {
		return IntentNavigation
	}
	if containsAny(m, schedulingWords) {
		return IntentScheduling
	}
	if containsAny(m, pricingWords) {
		return IntentPricing
	}
	if containsAny(m, availableWords) {
		return IntentAvailability
	}
	return IntentGeneral
}

// ExtractEntities pulls unit ids, dates and purchase timeframes from text.
func ExtractEntities(text string) domain.Entities {
	var entities domain.Entities

	for _, match := range unitPattern.FindAllString(text, -1) {
		entities.Units = appendUnique(entities.Units, strings.ToUpper(match))
	}
	for _, match := range datePattern.FindAllString(text, -1) {
		entities.Dates = appendUnique(entities.Dates, match)
	}
	for _, match := range weekdayPattern.FindAllString(text, -1) {
		entities.Dates = appendUnique(entities.Dates, strings.ToLower(match))
	}
	for _, match := range timeframePattern.FindAllString(text, -1) {
		entities.Timeframes = appendUnique(entities.Timeframes, strings.ToLower(match))
	}

	return entities
}

// NavigationTarget maps a navigation turn onto a site path, or "" when
// the message names no unit.
func NavigationTarget(intent string, entities domain.Entities) string {
	if intent != IntentNavigation || len(entities.Units) == 0 {
		return ""
	}
	return "/flats/" + strings.ToLower(entities.Units[0])
}

// HighIntent reports whether a turn signals concrete purchase interest:
// an explicit timeframe, volunteered contact details, or a scheduling
// ask naming a specific unit.
func HighIntent(message, intent string, entities domain.Entities) bool {
	if len(entities.Timeframes) > 0 {
		return true
	}
	if emailPattern.MatchString(message) || phonePattern.MatchString(message) {
		return true
	}
	if intent == IntentScheduling && len(entities.Units) > 0 {
		return true
	}
	return false
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
