// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package solr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/repostats/pkg/types"
)

// --- fake Solr server ---

// fakeSolr serves docs[start:start+rows] for every request and records the
// query parameters it saw.
type fakeSolr struct {
	mu       sync.Mutex
	docs     []map[string]any
	numFound func(call int) int
	requests []url.Values
}

func newFakeSolr(n int) *fakeSolr {
	f := &fakeSolr{}
	for i := 0; i < n; i++ {
		f.docs = append(f.docs, map[string]any{
			"id":        fmt.Sprintf("uuid:doc-%02d", i),
			"title":     fmt.Sprintf("Title %d", i),
			"citations": i,
		})
	}
	return f
}

func (f *fakeSolr) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	q := r.URL.Query()
	f.requests = append(f.requests, q)

	start, _ := strconv.Atoi(q.Get("start"))
	rows := 10
	if v := q.Get("rows"); v != "" {
		rows, _ = strconv.Atoi(v)
	}
	end := start + rows
	if start > len(f.docs) {
		start = len(f.docs)
	}
	if end > len(f.docs) {
		end = len(f.docs)
	}

	numFound := len(f.docs)
	if f.numFound != nil {
		numFound = f.numFound(len(f.requests))
	}

	body := map[string]any{
		"responseHeader": map[string]any{
			"status": 0,
			"QTime":  1,
			"params": map[string]any{"q": q.Get("q"), "wt": q.Get("wt"), "start": q.Get("start")},
		},
		"response": map[string]any{
			"numFound": numFound,
			"start":    start,
			"docs":     f.docs[start:end],
		},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(body)
}

func (f *fakeSolr) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeSolr) request(i int) url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[i]
}

func newTestSession(t *testing.T, n int) (*Session, *fakeSolr) {
	t.Helper()
	fake := newFakeSolr(n)
	ts := httptest.NewServer(fake)
	t.Cleanup(ts.Close)

	s := New("test", nil)
	s.SetEndpoint(ts.URL + "/solr/select?")
	return s, fake
}

// --- query expression ---

func TestQueryExpression(t *testing.T) {
	tests := []struct {
		name   string
		joiner string
		terms  []Term
		want   string
	}{
		{"no terms", "", nil, "*:*"},
		{"author only", "", []Term{{"author", "cummings"}}, "author:cummings"},
		{"ampersand joiner", JoinerAmpersand, []Term{{"author", "cummings"}, {"title", `"eye"`}}, `author:cummings&title:"eye"`},
		{"AND joiner", JoinerAND, []Term{{"author", "Majlender"}, {"publication_date", "x"}}, "author:Majlender AND publication_date:x"},
		{"overwrite keeps position", "", []Term{{"a", "1"}, {"b", "2"}, {"a", "3"}}, "a:3&b:2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New("q", nil, WithJoiner(tt.joiner))
			for _, term := range tt.terms {
				s.Query(term.Field, term.Value)
			}
			assert.Equal(t, tt.want, s.QueryExpression())
		})
	}
}

func TestQueryStoresRawValue(t *testing.T) {
	s := New("q", nil)
	s.Query("author", "cummings")

	v, ok := s.Term("author")
	require.True(t, ok)
	assert.Equal(t, "cummings", v)
	assert.Equal(t, []Term{{Field: "author", Value: "cummings"}}, s.Terms())
}

func TestConvenienceQueries(t *testing.T) {
	tests := []struct {
		name  string
		apply func(s *Session)
		field string
		want  string
	}{
		{"author", func(s *Session) { s.QueryAuthor("cummings") }, "author", "cummings"},
		{"quoted title", func(s *Session) { s.QueryTitle("neural control", true) }, "title", `"neural control"`},
		{"unquoted title", func(s *Session) { s.QueryTitle("neural control", false) }, "title", "neural control"},
		{"simple sets title", func(s *Session) { s.QuerySimple("cummings", "neural") }, "title", `"neural"`},
		{"simple sets author", func(s *Session) { s.QuerySimple("cummings", "neural") }, "author", "cummings"},
		{"ora id", func(s *Session) { s.QueryID("83530474") }, "id", `"uuid:83530474"`},
		{"id without prefix", func(s *Session) { s.QueryIDWith("id", "", "oai:eprints:774") }, "id", `"oai:eprints:774"`},
		{"datetime", func(s *Session) { s.QueryDateTime("timestamp", "2013-01-21", "11:14:22.227Z") }, "timestamp", `"2013-01-21T11:14:22.227Z"`},
		{"datetime default time", func(s *Session) { s.QueryDateTime("timestamp", "2013-01-21", "") }, "timestamp", `"2013-01-21T00:00:00.000Z"`},
		{"date range", func(s *Session) { s.QueryDateRange("timestamp", "2013-01-21", "2013-01-21", ThreeDigit) }, "timestamp", "[2013-01-21T00:00:000Z TO 2013-01-21T23:59:590Z]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New("q", nil)
			tt.apply(s)
			got, ok := s.Term(tt.field)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		precision  Precision
		want       string
	}{
		{"three digit", "2013-01-21", "2013-01-21", ThreeDigit, "[2013-01-21T00:00:000Z TO 2013-01-21T23:59:590Z]"},
		{"two digit", "2010-06-23", "2010-06-30", TwoDigit, "[2010-06-23T00:00:00Z TO 2010-06-30T23:59:59Z]"},
		{"date only", "2012-08-21", "2012-08-22", DateOnly, "[2012-08-21 TO 2012-08-22]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DateRange(tt.start, tt.end, tt.precision))
		})
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "2013-01-21", FormatDate(2013, 1, 21))
	assert.Equal(t, "2082-12-05", FormatDate(2082, 12, 5))
}

// --- parameters ---

func TestSetRowsClamps(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{2, 2},
		{999, 999},
		{1000, 999},
		{-3, 0},
	}
	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.in), func(t *testing.T) {
			s := New("rows", nil)
			s.SetRows(tt.in)
			got, ok := s.PageSize()
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewSessionDefaults(t *testing.T) {
	s := New("defaults", nil)

	assert.Equal(t, "defaults", s.Name())
	assert.False(t, s.Ready())
	assert.Equal(t, JoinerAmpersand, s.Joiner())
	wt, ok := s.Param(ParamFormat)
	require.True(t, ok)
	assert.Equal(t, "json", wt)
	_, ok = s.PageSize()
	assert.False(t, ok)
	assert.Zero(t, s.TotalFound())
	assert.Zero(t, s.Cursor())
}

func TestReset(t *testing.T) {
	s := New("first", nil, WithJoiner(JoinerAND))
	s.SetEndpoint("http://example.org/solr?")
	s.QueryAuthor("cummings")
	s.SetRows(5)

	s.Reset("second")

	assert.Equal(t, "second", s.Name())
	assert.False(t, s.Ready())
	assert.Equal(t, JoinerAmpersand, s.Joiner())
	assert.Empty(t, s.Terms())
	assert.Equal(t, "", s.URL())
}

// --- URL building ---

func TestURLEmptyWithoutEndpoint(t *testing.T) {
	s := New("no-endpoint", nil)
	s.QueryAuthor("cummings")
	assert.Equal(t, "", s.URL())

	s.SetEndpoint("")
	assert.Equal(t, "", s.URL())
}

func TestURLWellFormed(t *testing.T) {
	s := New("url", nil)
	s.SetEndpoint("http://ora.ox.ac.uk/solr/?")
	s.QueryAuthor("cummings")

	raw := s.URL()
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Contains(t, raw, "q=")
	assert.Equal(t, "author:cummings", u.Query().Get("q"))
	assert.Equal(t, "json", u.Query().Get("wt"))
	assert.Equal(t, "ora.ox.ac.uk", u.Host)
}

func TestEncodeMatchAll(t *testing.T) {
	s := New("encode", nil)
	s.SetEndpoint("http://ora.ox.ac.uk/solr/?")
	assert.Contains(t, s.Encode(), "q=%2A%3A%2A")
}

func TestURLEncodesJoinerAndSort(t *testing.T) {
	s := New("plos", nil, WithJoiner(JoinerAND))
	s.SetEndpoint("http://api.plos.org/search?")
	s.QueryAuthor("Majlender")
	s.QueryDateTime("publication_date", "2010-06-23", "00:00:00Z")

	s.SetSort("title", false)
	assert.Contains(t, s.URL(), "+AND+")
	assert.Contains(t, s.URL(), "sort=title+asc")

	s.SetSort("title", true)
	assert.Contains(t, s.URL(), "sort=title+desc")
}

func TestURLAPIKey(t *testing.T) {
	s := New("key", nil)
	s.SetEndpoint("http://api.plos.org/search?")

	s.SetAPIKey("SECRET", "")
	assert.Contains(t, s.URL(), "api_key=SECRET")

	s.SetAPIKey("OTHER", "keyinurl")
	v, ok := s.Param("keyinurl")
	require.True(t, ok)
	assert.Equal(t, "OTHER", v)
}

func TestURLFieldsAndIndent(t *testing.T) {
	s := New("fl", nil)
	s.SetEndpoint("http://ora.ox.ac.uk/solr/?")
	s.SetFields("id", "timestamp")
	s.SetIndent(true)

	u, err := url.Parse(s.URL())
	require.NoError(t, err)
	assert.Equal(t, "id,timestamp", u.Query().Get("fl"))
	assert.Equal(t, "on", u.Query().Get("indent"))
}

func TestURLSeparator(t *testing.T) {
	tests := []struct {
		endpoint string
		prefix   string
	}{
		{"http://h/solr/?", "http://h/solr/?q="},
		{"http://h/solr/select", "http://h/solr/select?q="},
		{"http://h/solr/select?core=a", "http://h/solr/select?core=a&q="},
		{"http://h/solr/select?core=a&", "http://h/solr/select?core=a&q="},
	}
	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			s := New("sep", nil)
			s.SetEndpoint(tt.endpoint)
			// wt sorts after q, so q comes first.
			assert.Contains(t, s.URL(), tt.prefix)
		})
	}
}

// --- fetching ---

func TestFetchRawNotReady(t *testing.T) {
	s := New("not-ready", nil)
	_, err := s.FetchRaw(context.Background())
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestFetchRawStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	s := New("status", nil)
	s.SetEndpoint(ts.URL + "?")
	_, err := s.FetchRaw(context.Background())

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Code)
}

func TestFetchRawTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	endpoint := ts.URL + "?"
	ts.Close()

	s := New("down", nil)
	s.SetEndpoint(endpoint)
	_, err := s.FetchRaw(context.Background())
	assert.Error(t, err)
}

func TestFetchRawKeepsPayload(t *testing.T) {
	s, _ := newTestSession(t, 3)
	body, err := s.FetchRaw(context.Background())
	require.NoError(t, err)
	assert.Equal(t, body, s.Raw())
	assert.Contains(t, string(body), "numFound")
}

func TestParseJSONMalformed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"response": {"numFound": 3,`)
	}))
	defer ts.Close()

	s := New("malformed", nil)
	s.SetEndpoint(ts.URL + "?")
	_, err := s.FetchPage(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing search response")
}

func TestFetchPageMissingResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"error": {"msg": "undefined field"}}`)
	}))
	defer ts.Close()

	s := New("no-response", nil)
	s.SetEndpoint(ts.URL + "?")
	_, err := s.FetchPage(context.Background())
	assert.Error(t, err)
}

func TestParseJSONHeader(t *testing.T) {
	s, _ := newTestSession(t, 3)
	s.QueryAuthor("cummings")
	_, err := s.FetchRaw(context.Background())
	require.NoError(t, err)

	r, err := s.ParseJSON()
	require.NoError(t, err)
	assert.Equal(t, "author:cummings", r.Header.Params["q"])
	assert.Equal(t, "json", r.Header.Params["wt"])
}

func TestFetchPageAdvancesCursor(t *testing.T) {
	s, _ := newTestSession(t, 334)

	docs, err := s.FetchPage(context.Background())
	require.NoError(t, err)

	assert.Len(t, docs, 10)
	assert.Equal(t, 334, s.TotalFound())
	assert.Equal(t, 11, s.Cursor())

	s.SetStart(s.Cursor())
	assert.Contains(t, s.URL(), "start=11")
}

func TestFetchPageLatchesTotal(t *testing.T) {
	s, fake := newTestSession(t, 20)
	fake.numFound = func(call int) int { return 20 + call }

	_, err := s.FetchPage(context.Background())
	require.NoError(t, err)
	_, err = s.FetchPage(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 21, s.TotalFound())
}

func TestFetchAllBoundary(t *testing.T) {
	s, fake := newTestSession(t, 10)
	s.SetRows(5)

	require.NoError(t, s.FetchAll(context.Background()))

	assert.Equal(t, 2, fake.calls())
	assert.Equal(t, "", fake.request(0).Get("start"))
	assert.Equal(t, "6", fake.request(1).Get("start"))
	assert.Equal(t, 10, s.TotalFound())
	assert.Equal(t, 11, s.Cursor())

	// The offset skipped between pages is never requested.
	_, ok := s.Document("uuid:doc-05")
	assert.False(t, ok)
	assert.Equal(t, 9, s.Len())
}

func TestFetchAllRestoresStart(t *testing.T) {
	s, _ := newTestSession(t, 10)
	s.SetRows(5)
	require.NoError(t, s.FetchAll(context.Background()))
	_, ok := s.Param(ParamStart)
	assert.False(t, ok)

	s.SetStart(2)
	require.NoError(t, s.FetchAll(context.Background()))
	v, _ := s.Param(ParamStart)
	assert.Equal(t, "2", v)
}

func TestFetchAllIdempotent(t *testing.T) {
	s, fake := newTestSession(t, 23)
	s.SetRows(4)

	require.NoError(t, s.FetchAll(context.Background()))
	first := keys(s.Documents())
	calls := fake.calls()

	require.NoError(t, s.FetchAll(context.Background()))
	second := keys(s.Documents())

	assert.Equal(t, first, second)
	assert.Equal(t, 2*calls, fake.calls())
}

func TestFetchAllRoundTrip(t *testing.T) {
	s, _ := newTestSession(t, 3)
	require.NoError(t, s.FetchAll(context.Background()))

	doc, ok := s.Document("uuid:doc-01")
	require.True(t, ok)
	assert.Equal(t, "uuid:doc-01", doc["id"])
	assert.Equal(t, "Title 1", doc["title"])
	assert.Equal(t, json.Number("1"), doc["citations"])
	assert.Len(t, doc, 3)
}

func TestFetchAllDuplicatesOverwrite(t *testing.T) {
	// Every page returns the same two documents.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := r.URL.Query().Get("start")
		if start == "" {
			start = "0"
		}
		fmt.Fprintf(w, `{"response":{"numFound":6,"start":%s,"docs":[{"id":"a","n":%s},{"id":"b"}]}}`, start, start)
	}))
	defer ts.Close()

	s := New("dups", nil)
	s.SetEndpoint(ts.URL + "?")
	require.NoError(t, s.FetchAll(context.Background()))

	assert.Equal(t, 2, s.Len())
	doc, _ := s.Document("a")
	// Pages start at 0, 3 and 6; the last copy wins.
	assert.Equal(t, json.Number("6"), doc["n"])
}

func TestFetchAllEmptyPagesStillAdvance(t *testing.T) {
	// numFound claims 4 but no documents are ever returned: the cursor
	// moves by one per request until it passes numFound.
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		start := r.URL.Query().Get("start")
		if start == "" {
			start = "0"
		}
		fmt.Fprintf(w, `{"response":{"numFound":4,"start":%s,"docs":[]}}`, start)
	}))
	defer ts.Close()

	s := New("empty", nil)
	s.SetEndpoint(ts.URL + "?")
	require.NoError(t, s.FetchAll(context.Background()))

	assert.Equal(t, int32(5), atomic.LoadInt32(&calls))
	assert.Equal(t, 5, s.Cursor())
	assert.Zero(t, s.Len())
}

func TestFetchAllMissingID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"response":{"numFound":1,"start":0,"docs":[{"title":"no id"}]}}`)
	}))
	defer ts.Close()

	s := New("no-id", nil)
	s.SetEndpoint(ts.URL + "?")
	err := s.FetchAll(context.Background())
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestFetchAllNumericID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"response":{"numFound":1,"start":0,"docs":[{"id":774}]}}`)
	}))
	defer ts.Close()

	s := New("numeric", nil)
	s.SetEndpoint(ts.URL + "?")
	require.NoError(t, s.FetchAll(context.Background()))

	_, ok := s.Document("774")
	assert.True(t, ok)
}

func TestDocumentsIsCopy(t *testing.T) {
	s, _ := newTestSession(t, 2)
	require.NoError(t, s.FetchAll(context.Background()))

	docs := s.Documents()
	delete(docs, "uuid:doc-00")
	assert.Equal(t, 2, s.Len())
}

// --- ID discovery ---

func TestListMatchingIDs(t *testing.T) {
	fake := newFakeSolr(12)
	ts := httptest.NewServer(fake)
	defer ts.Close()

	s := New("ids", nil)
	ids, log, err := s.ListMatchingIDs(context.Background(), ts.URL+"?", "polonsky", "recordContentSource", 0)
	require.NoError(t, err)

	assert.Len(t, ids, 12)
	assert.Equal(t, "uuid:doc-00", ids[0])
	assert.Equal(t, 5, log.Len())

	v, _ := log.Get(LogValue)
	assert.Equal(t, "polonsky", v)
	v, _ = log.Get(LogField)
	assert.Equal(t, "recordContentSource", v)
	v, _ = log.Get(LogTotalFound)
	assert.Equal(t, 12, v)
	v, _ = log.Get(LogUniqueCount)
	assert.Equal(t, 12, v)

	first := fake.request(0)
	assert.Equal(t, "recordContentSource:polonsky", first.Get("q"))
	assert.Equal(t, "id", first.Get("fl"))
	assert.Equal(t, "999", first.Get("rows"))

	q, _ := log.Get(LogFirstQuery)
	assert.Contains(t, q, "fl=id")
}

func TestListMatchingIDsDefaultsField(t *testing.T) {
	fake := newFakeSolr(1)
	ts := httptest.NewServer(fake)
	defer ts.Close()

	s := New("ids", nil)
	_, _, err := s.ListMatchingIDs(context.Background(), ts.URL+"?", "jisc", "", 50)
	require.NoError(t, err)

	assert.Equal(t, "*:jisc", fake.request(0).Get("q"))
	assert.Equal(t, "50", fake.request(0).Get("rows"))
}

func TestListMatchingIDsStartsFresh(t *testing.T) {
	fake := newFakeSolr(3)
	ts := httptest.NewServer(fake)
	defer ts.Close()

	s := New("ids", nil)
	s.SetAPIKey("k", "")
	s.Query("title", `"eye"`)
	s.SetStart(2)
	require.NoError(t, s.Merge([]types.Document{{"id": "stale"}}))

	ids, _, err := s.ListMatchingIDs(context.Background(), ts.URL+"?", "jisc", "funder", 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"uuid:doc-00", "uuid:doc-01", "uuid:doc-02"}, ids)
	first := fake.request(0)
	assert.Equal(t, "funder:jisc", first.Get("q"))
	assert.Equal(t, "k", first.Get("api_key"))
	assert.Empty(t, first.Get("start"))
}

func TestListMatchingIDsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	s := New("ids", nil)
	_, log, err := s.ListMatchingIDs(context.Background(), ts.URL+"?", "jisc", "funder", 0)
	require.Error(t, err)
	// Configuration steps are logged even when the fetch fails.
	assert.Equal(t, 3, log.Len())
}

func TestRunSearch(t *testing.T) {
	fake := newFakeSolr(7)
	ts := httptest.NewServer(fake)
	defer ts.Close()

	docs, err := RunSearch(context.Background(), nil, ts.URL+"?",
		[]Term{{"author", "cummings"}, {"title", `"eye"`}},
		WithJoiner(JoinerAND), WithPageSize(3))
	require.NoError(t, err)

	assert.Equal(t, `author:cummings AND title:"eye"`, fake.request(0).Get("q"))
	// Pages at 0 and 4 are fetched; offset 3 is skipped.
	assert.Len(t, docs, 6)
	assert.IsType(t, types.Document{}, docs["uuid:doc-00"])
}

func keys(m map[string]types.Document) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
