package customer

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

type Match struct {
	Customer Customer `json:"customer"`
	Distance int      `json:"distance"`
}

// Search ranks customers by the smallest edit distance between the query and
// any of name, name token, email, phone or number. A field containing the
// query counts as distance 0.
func Search(customers []Customer, query string, limit int) []Match {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	threshold := len([]rune(query)) / 3
	if threshold < 1 {
		threshold = 1
	}

	var matches []Match
	for _, c := range customers {
		d := distance(c, query)
		if d <= threshold {
			matches = append(matches, Match{Customer: c, Distance: d})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Customer.Name < matches[j].Customer.Name
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func distance(c Customer, query string) int {
	candidates := []string{c.Name, c.Email, c.Phone, c.Number}
	candidates = append(candidates, strings.Fields(c.Name)...)

	best := -1
	for _, field := range candidates {
		field = strings.ToLower(strings.TrimSpace(field))
		if field == "" {
			continue
		}
		if strings.Contains(field, query) {
			return 0
		}
		d := levenshtein.ComputeDistance(query, field)
		if best < 0 || d < best {
			best = d
		}
	}
	if best < 0 {
		return len(query)
	}
	return best
}
