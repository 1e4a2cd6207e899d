// internal/profiles/quotes.go
package profiles

import (
	"encoding/json"
	"regexp"
	"strings"

	"sei-core/internal/models"
)

const anonymousQuoteName = "Verified Customer"

// quoteLineRe matches `"some quote" - Attribution` lines; the dash may be a
// hyphen, en dash or em dash.
var quoteLineRe = regexp.MustCompile(`^"?(.+?)"?\s*[-–—]\s*(.+)$`)

type structuredQuote struct {
	Quote string `json:"quote"`
	Text  string `json:"text"`
	Name  string `json:"name"`
}

// parseQuotes accepts either a JSON array (of strings or {quote,name}
// objects) or a free-text block of newline-separated `"quote" - name` lines.
// Unparsable lines become anonymous quotes rather than being dropped.
func parseQuotes(field string) []models.Quote {
	quotes := []models.Quote{}
	if strings.TrimSpace(field) == "" {
		return quotes
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(field), &items); err == nil {
		for _, item := range items {
			var text string
			if err := json.Unmarshal(item, &text); err == nil {
				quotes = append(quotes, models.Quote{Quote: text, Name: anonymousQuoteName})
				continue
			}
			var sq structuredQuote
			if err := json.Unmarshal(item, &sq); err != nil {
				continue
			}
			quote := sq.Quote
			if quote == "" {
				quote = sq.Text
			}
			name := sq.Name
			if name == "" {
				name = anonymousQuoteName
			}
			quotes = append(quotes, models.Quote{Quote: quote, Name: name})
		}
		return quotes
	}

	for _, line := range strings.Split(field, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := quoteLineRe.FindStringSubmatch(line); m != nil {
			quotes = append(quotes, models.Quote{Quote: m[1], Name: m[2]})
			continue
		}
		quotes = append(quotes, models.Quote{
			Quote: strings.Trim(line, `"'`),
			Name:  anonymousQuoteName,
		})
	}
	return quotes
}
