// Package sector holds the closed vocabulary of industry sector labels.
package sector

import (
	"slices"
	"strings"

	"github.com/kailas-cloud/grantdex/internal/domain/search/text"
)

// CatchAll is returned when no specific sector applies.
const CatchAll = "Övrigt & tvärsektoriella satsningar"

var labels = []string{
	"Digitalisering, automatisering & AI",
	"Energi, klimat & hållbar utveckling",
	"Cirkulär ekonomi & resurshantering",
	"Bioteknik, life science & medicinteknik",
	"Vård, omsorg & folkhälsa",
	"Försvar, säkerhet & cybersäkerhet",
	"Rymdteknik & satellittillämpningar",
	"Industri 4.0, tillverkning & avancerade material",
	"Råvaror, gruv- & mineralnäringar",
	"Jordbruk, skogsbruk, vattenbruk & livsmedel",
	"Hav, marin miljö & blå ekonomi",
	"Transport, mobilitet & logistik",
	"Infrastruktur, samhällsbyggnad & smarta städer",
	"Handel, turism & besöksnäring",
	"Kultur, kreativa näringar & media",
	"Utbildning, pedagogik & livslångt lärande",
	"Arbetsmarknad, integration & social innovation",
	"Ekonomi, finans & fintech",
	"Entreprenörskap, affärsutveckling & kommersialisering",
	"Forskning, FoU-samverkan & testbäddar",
	"Offentlig förvaltning, e-tjänster & govtech",
	"Data, integritet & etik",
	"Internationalisering, export & marknadsetablering",
	"Idrott, hälsa & friluftsliv",
	CatchAll,
}

var known = func() map[string]struct{} {
	m := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		m[l] = struct{}{}
	}
	return m
}()

// Labels returns the vocabulary in canonical order.
func Labels() []string { return slices.Clone(labels) }

// IsKnown reports whether label belongs to the vocabulary (exact match).
func IsKnown(label string) bool {
	_, ok := known[label]
	return ok
}

// Filter keeps known labels in first-seen order, dropping unknown labels and duplicates.
func Filter(in []string) []string {
	out := make([]string, 0, len(in))
	for _, l := range in {
		l = strings.TrimSpace(l)
		if IsKnown(l) && !slices.Contains(out, l) {
			out = append(out, l)
		}
	}
	return out
}

type keywordRule struct {
	stems []string
	// words must match a whole token rather than a substring.
	words []string
	label string
}

var keywordRules = []keywordRule{
	{stems: []string{"hav", "marin", "ocean"}, label: "Hav, marin miljö & blå ekonomi"},
	{stems: []string{"digital"}, words: []string{"ai"}, label: "Digitalisering, automatisering & AI"},
	{stems: []string{"energi", "klimat"}, label: "Energi, klimat & hållbar utveckling"},
	{stems: []string{"transport", "mobilitet"}, label: "Transport, mobilitet & logistik"},
}

// Keywords classifies query with fixed keyword rules, used when no model is configured.
// It never returns an empty set.
func Keywords(query string) []string {
	normalized := text.Normalize(query)
	words := strings.Fields(normalized)

	var out []string
	for _, r := range keywordRules {
		if matchesRule(r, normalized, words) {
			out = append(out, r.label)
		}
	}
	if len(out) == 0 {
		return []string{CatchAll}
	}
	return out
}

func matchesRule(r keywordRule, normalized string, words []string) bool {
	for _, s := range r.stems {
		if strings.Contains(normalized, s) {
			return true
		}
	}
	for _, w := range r.words {
		if slices.Contains(words, w) {
			return true
		}
	}
	return false
}
