package grants

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/kailas-cloud/grantdex/internal/domain/grant"
)

// fromRecords converts raw records into grants. Invalid records and duplicate
// IDs are skipped with a warning.
func fromRecords(records []grant.Record, source string, logger *zap.Logger) []grant.Grant {
	out := make([]grant.Grant, 0, len(records))
	seen := make(map[string]struct{}, len(records))

	for i := range records {
		r := records[i]
		r.Description = plainText(r.Description)
		r.Subtitle = plainText(r.Subtitle)
		r.Eligibility = plainText(r.Eligibility)

		g, err := r.ToGrant()
		if err != nil {
			logger.Warn("Skipping invalid grant record",
				zap.String("source", source), zap.Int("position", i), zap.Error(err))
			continue
		}
		if _, dup := seen[g.ID()]; dup {
			logger.Warn("Skipping duplicate grant", zap.String("source", source), zap.String("id", g.ID()))
			continue
		}
		seen[g.ID()] = struct{}{}
		out = append(out, g)
	}
	return out
}

var blockElements = map[string]bool{
	"p": true, "br": true, "div": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"tr": true, "td": true, "th": true, "section": true,
}

// plainText strips HTML markup, keeping text content. Plain strings pass through.
func plainText(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			b.WriteByte(' ')
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(b.String()), " ")
}
