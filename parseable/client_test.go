package parseable

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() ServerConfig {
	return ServerConfig{
		URL:      "https://logs.example.com",
		Username: "admin",
		Password: "admin",
	}
}

// newMockedClient configures a client and attaches httpmock to its
// underlying transport.
func newMockedClient(t *testing.T) *Client {
	t.Helper()
	c := NewClient()
	require.NoError(t, c.Configure(testConfig()))
	httpmock.ActivateNonDefault(c.RestyClient().GetClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func TestUnconfiguredCallsFail(t *testing.T) {
	c := NewClient()

	assert.False(t, c.IsConfigured())

	_, err := c.ListStreams(context.Background())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindUnconfigured))

	_, err = c.Ping(context.Background())
	assert.True(t, IsKind(err, KindUnconfigured))
}

func TestConfigureValidation(t *testing.T) {
	c := NewClient()

	err := c.Configure(ServerConfig{URL: "not a url"})
	require.Error(t, err)
	assert.False(t, c.IsConfigured())

	require.NoError(t, c.Configure(testConfig()))
	assert.True(t, c.IsConfigured())
}

func TestListStreams(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder("GET", "https://logs.example.com/api/v1/logstream",
		httpmock.NewStringResponder(200, `[{"name":"app"},{"name":"audit"}]`))

	streams, err := c.ListStreams(context.Background())
	require.NoError(t, err)
	require.Len(t, streams, 2)
	assert.Equal(t, "app", streams[0].Name)
	assert.Equal(t, "audit", streams[1].Name)
}

func TestAuthFailureClassified(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder("GET", "https://logs.example.com/api/v1/logstream",
		httpmock.NewStringResponder(401, `invalid credentials`))

	_, err := c.ListStreams(context.Background())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindAuth))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)
	assert.Equal(t, "invalid credentials", apiErr.Message)
}

func TestMalformedResponseClassified(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder("GET", "https://logs.example.com/api/v1/about",
		httpmock.NewStringResponder(200, `{"version": `))

	_, err := c.GetAbout(context.Background())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindMalformed))
}

func TestGetSchema(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder("GET", "https://logs.example.com/api/v1/logstream/app/schema",
		httpmock.NewStringResponder(200, `{"fields":[{"name":"level","data_type":"Utf8"}]}`))

	schema, err := c.GetSchema(context.Background(), "app")
	require.NoError(t, err)
	require.Len(t, schema.Fields, 1)
	assert.Equal(t, "level", schema.Fields[0].Name)
	assert.Equal(t, "Utf8", schema.Fields[0].DataType)
}

func TestQuerySendsStatementAndBounds(t *testing.T) {
	c := newMockedClient(t)

	var got queryRequest
	httpmock.RegisterResponder("POST", "https://logs.example.com/api/v1/query",
		func(req *http.Request) (*http.Response, error) {
			if err := json.NewDecoder(req.Body).Decode(&got); err != nil {
				return nil, err
			}
			return httpmock.NewStringResponse(200, `[{"level":"error","msg":"boom"}]`), nil
		})

	start := time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 2, 4, 0, 0, 0, time.UTC)
	records, err := c.Query(context.Background(), `SELECT * FROM "app" LIMIT 10`, start, end)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "boom", records[0]["msg"])

	assert.Equal(t, `SELECT * FROM "app" LIMIT 10`, got.Query)
	assert.Equal(t, "2026-01-02T03:00:00Z", got.StartTime)
	assert.Equal(t, "2026-01-02T04:00:00Z", got.EndTime)
}

func TestDeleteStream(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder("DELETE", "https://logs.example.com/api/v1/logstream/app",
		httpmock.NewStringResponder(200, `log stream app deleted`))

	msg, err := c.DeleteStream(context.Background(), "app")
	require.NoError(t, err)
	assert.Equal(t, "log stream app deleted", msg)
}

func TestListAlertsAndUsers(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder("GET", "https://logs.example.com/api/v1/alerts",
		httpmock.NewStringResponder(200, `{"alerts":[{"id":"a1","title":"high error rate","stream":"app"}]}`))
	httpmock.RegisterResponder("GET", "https://logs.example.com/api/v1/user",
		httpmock.NewStringResponder(200, `[{"id":"admin","method":"native","roles":["admin"]}]`))

	alerts, err := c.ListAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "high error rate", alerts[0].Title)

	users, err := c.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, []string{"admin"}, users[0].Roles)
}

func TestReconfigureRetargets(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder("GET", "https://logs.example.com/api/v1/liveness",
		httpmock.NewStringResponder(200, "alive"))

	msg, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alive", msg)

	cfg := testConfig()
	cfg.URL = "https://other.example.com"
	require.NoError(t, c.Configure(cfg))
	httpmock.ActivateNonDefault(c.RestyClient().GetClient())
	httpmock.RegisterResponder("GET", "https://other.example.com/api/v1/liveness",
		httpmock.NewStringResponder(200, "alive too"))

	msg, err = c.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alive too", msg)
}
