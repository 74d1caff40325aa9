package graphql_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"goszakup/internal/graphql"
)

type seen struct {
	path   string
	auth   string
	method string
	body   graphql.Request
	rawVar map[string]any
}

func serve(t *testing.T, status int, body string) (*graphql.Client, *seen) {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	s := &seen{}
	srv := &fasthttp.Server{Handler: func(ctx *fasthttp.RequestCtx) {
		s.path = string(ctx.Path())
		s.auth = string(ctx.Request.Header.Peek("Authorization"))
		s.method = string(ctx.Method())
		_ = json.Unmarshal(ctx.PostBody(), &s.body)
		var generic struct {
			Variables map[string]any `json:"variables"`
		}
		_ = json.Unmarshal(ctx.PostBody(), &generic)
		s.rawVar = generic.Variables
		ctx.SetStatusCode(status)
		ctx.SetContentType("application/json")
		ctx.SetBodyString(body)
	}}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() {
		_ = srv.Shutdown()
		_ = ln.Close()
	})

	client := graphql.NewClient("http://ows.test/", "secret-token",
		graphql.WithTimeout(5*time.Second),
		graphql.WithDial(func(string) (net.Conn, error) { return ln.Dial() }),
	)
	return client, s
}

func TestClient_DoSuccess(t *testing.T) {
	client, s := serve(t, fasthttp.StatusOK, `{
		"data": {"Contract": [{"id": 1}, {"id": 2}]},
		"extensions": {"pageInfo": {"hasNextPage": true, "lastId": 2, "totalCount": 40}}
	}`)

	after := int64(0)
	resp, err := client.Do(context.Background(), graphql.Request{
		Query:     "query($limit: Int, $after: Int){ Contract(limit: $limit, after: $after){ id } }",
		Variables: graphql.Variables{Limit: 200, After: &after, Filter: map[string]any{"finYear": 2025}},
	})

	require.NoError(t, err)
	assert.Equal(t, graphql.EndpointPath, s.path)
	assert.Equal(t, "Bearer secret-token", s.auth)
	assert.Equal(t, fasthttp.MethodPost, s.method)
	assert.Equal(t, 200, s.body.Variables.Limit)
	require.NotNil(t, s.body.Variables.After)
	assert.Equal(t, int64(0), *s.body.Variables.After)

	records, err := resp.Records("Contract")
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, graphql.PageInfo{HasNextPage: true, LastID: 2, TotalCount: 40}, resp.Extensions.PageInfo)
}

func TestClient_OmitsAfterWhenNil(t *testing.T) {
	client, s := serve(t, fasthttp.StatusOK, `{"data": {"Contract": []}, "extensions": {"pageInfo": {"totalCount": 3}}}`)

	_, err := client.Do(context.Background(), graphql.Request{Variables: graphql.Variables{Limit: 1}})

	require.NoError(t, err)
	_, present := s.rawVar["after"]
	assert.False(t, present)
}

func TestClient_APIError(t *testing.T) {
	client, _ := serve(t, fasthttp.StatusOK, `{"data": null, "errors": [{"message": "invalid filter"}, {"message": "try again"}]}`)

	resp, err := client.Do(context.Background(), graphql.Request{})

	var apiErr *graphql.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Len(t, apiErr.Errors, 2)
	assert.Equal(t, "graphql api: invalid filter; try again", err.Error())
	require.NotNil(t, resp)
}

func TestClient_APIErrorWithErrorStatus(t *testing.T) {
	client, _ := serve(t, fasthttp.StatusBadRequest, `{"errors": [{"message": "bad query"}]}`)

	_, err := client.Do(context.Background(), graphql.Request{})

	var apiErr *graphql.APIError
	assert.True(t, errors.As(err, &apiErr))
}

func TestClient_ServerErrorIsTransportError(t *testing.T) {
	client, _ := serve(t, fasthttp.StatusInternalServerError, `{"message": "upstream down"}`)

	resp, err := client.Do(context.Background(), graphql.Request{})

	assert.Nil(t, resp)
	var te *graphql.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 500, te.StatusCode)
	assert.Contains(t, te.Body, "upstream down")
}

func TestClient_MalformedBody(t *testing.T) {
	client, _ := serve(t, fasthttp.StatusOK, `<html>gateway timeout</html>`)

	_, err := client.Do(context.Background(), graphql.Request{})

	var te *graphql.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 200, te.StatusCode)
	assert.Error(t, te.Err)
}

func TestClient_CancelledContext(t *testing.T) {
	client, _ := serve(t, fasthttp.StatusOK, `{}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Do(ctx, graphql.Request{})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestResponse_RecordsMissingEntity(t *testing.T) {
	resp := &graphql.Response{Data: map[string]json.RawMessage{"Other": json.RawMessage(`[{"id":1}]`)}}

	records, err := resp.Records("Contract")

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestResponse_RecordsNotAList(t *testing.T) {
	resp := &graphql.Response{Data: map[string]json.RawMessage{"Contract": json.RawMessage(`{"id":1}`)}}

	_, err := resp.Records("Contract")

	assert.Error(t, err)
}
