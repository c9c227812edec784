package calendar

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"umzugsbuero/backend/internal/domain/customer"
	"umzugsbuero/backend/internal/domain/quote"
)

// PartialRecord is what could be read out of an event's free text. Nil
// pointers mean the value was not found.
type PartialRecord struct {
	Name        string
	Phone       string
	Email       string
	FromAddress string
	ToAddress   string
	Rooms       *float64
	Area        *float64
	Floor       *int
	Elevator    *bool
}

// Apartment fills in the defaults for values the text did not mention.
func (r PartialRecord) Apartment() customer.Apartment {
	a := customer.Apartment{Rooms: quote.DefaultRooms, Area: quote.DefaultArea}
	if r.Rooms != nil {
		a.Rooms = *r.Rooms
	}
	if r.Area != nil {
		a.Area = *r.Area
	}
	if r.Floor != nil {
		a.Floor = *r.Floor
	}
	if r.Elevator != nil {
		a.Elevator = *r.Elevator
	}
	return a
}

type rule struct {
	field string
	re    *regexp.Regexp
	// set stores the first submatch; false lets the next rule for the
	// field try.
	set func(r *PartialRecord, v string) bool
}

const word = `[A-ZÄÖÜ][\p{L}'\-]+`

// rules are evaluated top to bottom. The first rule that matches a field
// wins; later rules for the same field are ignored.
var rules = []rule{
	{"email", regexp.MustCompile(`([A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,})`), setString(func(r *PartialRecord) *string { return &r.Email })},

	{"phone", regexp.MustCompile(`(?i)(?:tel(?:efon)?|phone|mobil|handy|mob|fon)\.?\s*:?\s*(\+?[0-9][0-9 ()/\-]{4,}[0-9])`), setPhone},
	{"phone", regexp.MustCompile(`((?:\+49|0049|\b0)[1-9][0-9 /\-]{4,}[0-9])`), setPhone},

	{"name", regexp.MustCompile(`(?i:herr|frau|hr\.|fr\.)[ \t]+(` + word + `(?:[ \t]+` + word + `)?)`), setName},
	{"name", regexp.MustCompile(`(?im)^\s*(?:name|kunde|kundin|customer)\s*:\s*([^\n,;]+)`), setName},
	{"name", regexp.MustCompile(`^\s*(?:(?i:umzug|auszug|einzug|besichtigung|termin|transport|angebot)[ \t]*[:\-–]?[ \t]*)?(` + word + `(?:[ \t]+` + word + `){1,2})`), setName},

	{"from", regexp.MustCompile(`(?im)\b(?:von|from|auszug|alte adresse|abholadresse|abholung)\s*:\s*([^\n;]+)`), setString(func(r *PartialRecord) *string { return &r.FromAddress })},
	{"from", regexp.MustCompile(`(?i)\bvon\s+([^\n;]+?)\s+nach\s+[^\n;]+`), setString(func(r *PartialRecord) *string { return &r.FromAddress })},
	{"to", regexp.MustCompile(`(?im)\b(?:nach|to|einzug|neue adresse|zieladresse|lieferadresse)\s*:\s*([^\n;]+)`), setString(func(r *PartialRecord) *string { return &r.ToAddress })},
	{"to", regexp.MustCompile(`(?i)\bvon\s+[^\n;]+?\s+nach\s+([^\n;]+)`), setString(func(r *PartialRecord) *string { return &r.ToAddress })},

	{"rooms", regexp.MustCompile(`(?i)(?:zimmer|räume|rooms)\s*:\s*(\d+(?:[.,]\d+)?)`), setFloat(func(r *PartialRecord) **float64 { return &r.Rooms })},
	{"rooms", regexp.MustCompile(`(?i)(\d+(?:[.,]5)?)\s*-?\s*(?:zimmer|zi\.|räume|raum|rooms?)`), setFloat(func(r *PartialRecord) **float64 { return &r.Rooms })},

	{"area", regexp.MustCompile(`(?i)(?:wohnfläche|fläche|area)\s*:\s*(\d+(?:[.,]\d+)?)`), setFloat(func(r *PartialRecord) **float64 { return &r.Area })},
	{"area", regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:m²|m2|qm|sqm|quadratmeter)`), setFloat(func(r *PartialRecord) **float64 { return &r.Area })},

	{"floor", regexp.MustCompile(`(?i)(?:etage|stockwerk|stock|floor)\s*:\s*(-?\d+)`), setFloor},
	{"floor", regexp.MustCompile(`(?i)(\d+)\s*\.\s*(?:og\b|obergeschoss|etage|stock)`), setFloor},
	{"floor", regexp.MustCompile(`(?i)\b(EG|Erdgeschoss|ground floor)\b`), func(r *PartialRecord, _ string) bool {
		zero := 0
		r.Floor = &zero
		return true
	}},

	{"elevator", regexp.MustCompile(`(?i)\b((?:ohne|kein|keinen|no|without)\s+(?:aufzug|fahrstuhl|lift|elevator))`), setBool(false)},
	{"elevator", regexp.MustCompile(`(?i)\b((?:mit|with)\s+(?:aufzug|fahrstuhl|lift|elevator)|(?:aufzug|fahrstuhl|lift)\s*:?\s*(?:ja|vorhanden))`), setBool(true)},
}

// ExtractFields applies the rule list to text. The first line of text is
// treated as the event subject.
func ExtractFields(text string) PartialRecord {
	var rec PartialRecord
	done := make(map[string]bool)
	for _, rl := range rules {
		if done[rl.field] {
			continue
		}
		m := rl.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if rl.set(&rec, strings.TrimSpace(m[1])) {
			done[rl.field] = true
		}
	}
	return rec
}

func setString(target func(*PartialRecord) *string) func(*PartialRecord, string) bool {
	return func(r *PartialRecord, v string) bool {
		v = strings.Trim(v, " ,.")
		if v == "" {
			return false
		}
		*target(r) = v
		return true
	}
}

func setPhone(r *PartialRecord, v string) bool {
	p := customer.NormalizePhone(v)
	// Shorter numbers are usually postcodes or house numbers.
	if len(p) < 9 {
		return false
	}
	r.Phone = p
	return true
}

func setName(r *PartialRecord, v string) bool {
	v = strings.Join(strings.Fields(strings.Trim(v, " ,.")), " ")
	if v == "" {
		return false
	}
	if v == strings.ToLower(v) || v == strings.ToUpper(v) {
		v = cases.Title(language.German).String(v)
	}
	r.Name = v
	return true
}

func parseNumber(v string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.Replace(v, ",", ".", 1), 64)
	return f, err == nil
}

func setFloat(target func(*PartialRecord) **float64) func(*PartialRecord, string) bool {
	return func(r *PartialRecord, v string) bool {
		f, ok := parseNumber(v)
		if !ok || f <= 0 {
			return false
		}
		*target(r) = &f
		return true
	}
}

func setFloor(r *PartialRecord, v string) bool {
	n, err := strconv.Atoi(v)
	if err != nil {
		return false
	}
	r.Floor = &n
	return true
}

func setBool(b bool) func(*PartialRecord, string) bool {
	return func(r *PartialRecord, _ string) bool {
		r.Elevator = &b
		return true
	}
}
