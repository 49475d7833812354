package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetchGlobal(t *testing.T) {
	body := `{"items": [
		{"global_id": "E1", "title": "Spring Fair",
		 "texts": [{"rel": "details", "type": "text/html", "value": "<p>Hi</p>"}],
		 "timeIntervals": [{"start": "2024-05-01T10:00:00+02:00", "end": "2024-05-01T18:00:00+02:00"}],
		 "attributes": [{"key": "price_info", "value": 5}],
		 "categories": ["climate"]},
		{"global_id": 42, "title": "Numeric id"},
		{"global_id": "bad", "title": ["not", "a", "string"]}
	]}`
	server := newTestServer(t, http.StatusOK, body)

	client := NewClient(time.Second)
	items, err := client.FetchGlobal(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, items, 2, "malformed records are dropped")

	assert.Equal(t, "E1", items[0].ID())
	assert.Equal(t, "<p>Hi</p>", items[0].Text(TextRelDetails, ContentTypeHTML))
	assert.Equal(t, "5", items[0].Attribute(AttrFee))
	assert.Equal(t, []string{"climate"}, items[0].Categories)
	assert.Equal(t, "42", items[1].ID())
}

func TestFetchGlobalMissingItems(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `{"data": []}`)

	_, err := NewClient(time.Second).FetchGlobal(context.Background(), server.URL)
	require.Error(t, err)

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
	assert.Equal(t, server.URL, parseErr.URL)
}

func TestFetchGlobalInvalidJSON(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `{"items": [`)

	_, err := NewClient(time.Second).FetchGlobal(context.Background(), server.URL)
	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestFetchSplit(t *testing.T) {
	body := `[
		{"articleId": 123, "articleTitle": "Workshop",
		 "eventInfo": {"startDateUTC": "2024-06-01 08:00:00", "endDateUTC": "2024-06-01 12:00:00", "wholeDay": "0"},
		 "customFieldList": [{"name": "Target group", "value": "Teachers"}],
		 "articleCategories": [{"categoryName": "Education"}]}
	]`
	server := newTestServer(t, http.StatusOK, body)

	items, err := NewClient(time.Second).FetchSplit(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "123", items[0].ID())
	require.NotNil(t, items[0].EventInfo)
	assert.False(t, bool(items[0].EventInfo.WholeDay))
	assert.Equal(t, "Teachers", items[0].CustomField("target group"))
	assert.Equal(t, []string{"Education"}, items[0].CategoryNames())
}

func TestFetchSplitRequiresArray(t *testing.T) {
	for _, body := range []string{`{"items": []}`, `null`} {
		server := newTestServer(t, http.StatusOK, body)

		_, err := NewClient(time.Second).FetchSplit(context.Background(), server.URL)
		var parseErr *ParseError
		assert.ErrorAs(t, err, &parseErr, body)
	}
}

func TestFetchSplitEmptyArray(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `[]`)

	items, err := NewClient(time.Second).FetchSplit(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFetchErrors(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		server := newTestServer(t, http.StatusBadGateway, "upstream down")

		_, err := NewClient(time.Second).FetchSplit(context.Background(), server.URL)
		var fetchErr *FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, http.StatusBadGateway, fetchErr.StatusCode)
		assert.Contains(t, err.Error(), server.URL)
	})

	t.Run("false body", func(t *testing.T) {
		server := newTestServer(t, http.StatusOK, " false\n")

		_, err := NewClient(time.Second).FetchGlobal(context.Background(), server.URL)
		var fetchErr *FetchError
		assert.ErrorAs(t, err, &fetchErr)
	})

	t.Run("network failure", func(t *testing.T) {
		server := newTestServer(t, http.StatusOK, "[]")
		url := server.URL
		server.Close()

		_, err := NewClient(time.Second).FetchSplit(context.Background(), url)
		var fetchErr *FetchError
		assert.ErrorAs(t, err, &fetchErr)
	})

	t.Run("empty url", func(t *testing.T) {
		_, err := NewClient(0).FetchSplit(context.Background(), "")
		var fetchErr *FetchError
		assert.ErrorAs(t, err, &fetchErr)
	})
}

func TestFlexBool(t *testing.T) {
	tests := map[string]bool{
		`true`:    true,
		`false`:   false,
		`1`:       true,
		`0`:       false,
		`"1"`:     true,
		`"false"`: false,
		`null`:    false,
	}
	for input, want := range tests {
		var b FlexBool
		require.NoError(t, b.UnmarshalJSON([]byte(input)), input)
		assert.Equal(t, want, bool(b), input)
	}
}
