// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package solr

import (
	"strconv"
	"strings"
)

// Recognized URL parameters outside the q expression.
const (
	ParamQuery  = "q"
	ParamRows   = "rows"
	ParamStart  = "start"
	ParamFields = "fl"
	ParamSort   = "sort"
	ParamFormat = "wt"
	ParamIndent = "indent"

	// DefaultAPIKeyParam names the API key parameter when the caller gives none.
	DefaultAPIKeyParam = "api_key"
)

// SetParam records a URL parameter, replacing any earlier value. Setting
// ParamQuery has no effect on the request; q is always built from terms.
func (s *Session) SetParam(key, value string) {
	s.params[key] = value
}

// Param returns the value of a URL parameter.
func (s *Session) Param(key string) (string, bool) {
	v, ok := s.params[key]
	return v, ok
}

// SetJSON requests JSON responses (wt=json). New sessions already do.
func (s *Session) SetJSON() {
	s.SetParam(ParamFormat, "json")
}

// SetIndent asks the server to indent its response. Disabling only stops
// a later request from adding it; an earlier indent=on is kept.
func (s *Session) SetIndent(enable bool) {
	if enable {
		s.SetParam(ParamIndent, "on")
	}
}

// SetAPIKey passes value under param, or under "api_key" when param is empty.
func (s *Session) SetAPIKey(value, param string) {
	if param == "" {
		param = DefaultAPIKeyParam
	}
	s.SetParam(param, value)
}

// SetRows sets the page size, clamped to [0, MaxRows].
func (s *Session) SetRows(n int) {
	if n > MaxRows {
		n = MaxRows
	}
	if n < 0 {
		n = 0
	}
	s.SetParam(ParamRows, strconv.Itoa(n))
}

// PageSize returns the rows parameter, or 0 and false when unset and the
// server default applies.
func (s *Session) PageSize() (int, bool) {
	v, ok := s.params[ParamRows]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SetStart sets the offset of the first record to return.
func (s *Session) SetStart(n int) {
	s.SetParam(ParamStart, strconv.Itoa(n))
}

// SetFields limits the returned fields (fl) to the given list.
func (s *Session) SetFields(fields ...string) {
	s.SetParam(ParamFields, strings.Join(fields, ","))
}

// SetSort orders results by key, ascending unless descending is set.
func (s *Session) SetSort(key string, descending bool) {
	order := "asc"
	if descending {
		order = "desc"
	}
	s.SetParam(ParamSort, key+" "+order)
}

// SetJoiner sets the token combining query terms. An empty joiner is ignored.
func (s *Session) SetJoiner(j string) {
	if j != "" {
		s.joiner = j
	}
}
