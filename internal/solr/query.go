// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package solr

import (
	"fmt"
	"net/url"
	"strings"
)

// MatchAll is sent as q when no terms are set, so a bare session searches
// everything instead of sending an empty query.
const MatchAll = "*:*"

// DefaultTime is the time of day used by QueryDateTime when none is given.
const DefaultTime = "00:00:00.000Z"

// Precision selects how QueryDateRange renders the bounds of a day.
type Precision int

const (
	// ThreeDigit renders seconds with three digits, as ORA timestamps do:
	// [dT00:00:000Z TO dT23:59:590Z].
	ThreeDigit Precision = iota
	// TwoDigit renders seconds with two digits: [dT00:00:00Z TO dT23:59:59Z].
	TwoDigit
	// DateOnly omits the time component: [start TO end].
	DateOnly
)

// SetEndpoint records the base URL queries are sent to and marks the
// session ready. An empty URL leaves it not ready.
func (s *Session) SetEndpoint(u string) {
	s.endpoint = u
	s.ready = u != ""
}

// Query adds field:value to the q expression. A field already present keeps
// its position and takes the new value. The value is stored as given;
// quoting and escaping are the caller's business.
func (s *Session) Query(field, value string) {
	for i := range s.terms {
		if s.terms[i].Field == field {
			s.terms[i].Value = value
			return
		}
	}
	s.terms = append(s.terms, Term{Field: field, Value: value})
}

// Terms returns the query terms in insertion order.
func (s *Session) Terms() []Term {
	out := make([]Term, len(s.terms))
	copy(out, s.terms)
	return out
}

// Term returns the value of the query term for field.
func (s *Session) Term(field string) (string, bool) {
	for _, t := range s.terms {
		if t.Field == field {
			return t.Value, true
		}
	}
	return "", false
}

// QueryAuthor searches the author field.
func (s *Session) QueryAuthor(author string) {
	s.Query("author", author)
}

// QueryTitle searches the title field, as a quoted phrase unless quoted is false.
func (s *Session) QueryTitle(title string, quoted bool) {
	if quoted {
		title = `"` + title + `"`
	}
	s.Query("title", title)
}

// QuerySimple searches author and quoted title together.
func (s *Session) QuerySimple(author, title string) {
	s.QueryAuthor(author)
	s.QueryTitle(title, true)
}

// QueryID matches an ORA item id: field "id", value "uuid:<id>" in quotes.
func (s *Session) QueryID(id string) {
	s.QueryIDWith("id", "uuid:", id)
}

// QueryIDWith matches the quoted value prefix+id in field.
func (s *Session) QueryIDWith(field, prefix, id string) {
	s.Query(field, `"`+prefix+id+`"`)
}

// QueryDateTime matches an exact timestamp "<date>T<tm>" in field. An empty
// tm uses DefaultTime.
func (s *Session) QueryDateTime(field, date, tm string) {
	if tm == "" {
		tm = DefaultTime
	}
	s.Query(field, fmt.Sprintf(`"%sT%s"`, date, tm))
}

// QueryDateRange matches field between the start of day start and the end
// of day end, inclusive. Dates are "YYYY-MM-DD".
func (s *Session) QueryDateRange(field, start, end string, p Precision) {
	s.Query(field, DateRange(start, end, p))
}

// DateRange renders the range expression used by QueryDateRange.
func DateRange(start, end string, p Precision) string {
	switch p {
	case TwoDigit:
		return fmt.Sprintf("[%sT00:00:00Z TO %sT23:59:59Z]", start, end)
	case DateOnly:
		return fmt.Sprintf("[%s TO %s]", start, end)
	default:
		return fmt.Sprintf("[%sT00:00:000Z TO %sT23:59:590Z]", start, end)
	}
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// QueryExpression joins the terms as field:value pairs with the session's
// joiner, or returns MatchAll when there are none.
func (s *Session) QueryExpression() string {
	if len(s.terms) == 0 {
		return MatchAll
	}
	parts := make([]string, len(s.terms))
	for i, t := range s.terms {
		parts[i] = t.Field + ":" + t.Value
	}
	return strings.Join(parts, s.joiner)
}

// Encode returns the URL-encoded parameters including q, keys sorted.
func (s *Session) Encode() string {
	v := make(url.Values, len(s.params)+1)
	for k, val := range s.params {
		v.Set(k, val)
	}
	v.Set(ParamQuery, s.QueryExpression())
	return v.Encode()
}

// URL returns the request URL, or "" when no endpoint has been set. The
// endpoint is used as given when it already ends in "?" or "&"; otherwise
// the right separator is added.
func (s *Session) URL() string {
	if !s.ready {
		return ""
	}
	return s.endpoint + separator(s.endpoint) + s.Encode()
}

func separator(endpoint string) string {
	switch {
	case strings.HasSuffix(endpoint, "?"), strings.HasSuffix(endpoint, "&"):
		return ""
	case strings.Contains(endpoint, "?"):
		return "&"
	default:
		return "?"
	}
}
