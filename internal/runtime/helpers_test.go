package runtime

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	configpkg "github.com/hasura/ndc-sdk-go/internal/runtime/config"
	"github.com/hasura/ndc-sdk-go/internal/runtime/jsoncodec"
	loggingpkg "github.com/hasura/ndc-sdk-go/internal/runtime/logging"
	"github.com/hasura/ndc-sdk-go/schema"
)

type testConfiguration struct {
	Name string
}

type testState struct {
	ID int
}

// mockConnector counts invocations and lets individual tests override any
// operation through function fields. The zero value serves empty but valid
// responses on every route.
type mockConnector struct {
	initCalls   atomic.Int64
	queryCalls  atomic.Int64
	healthCalls atomic.Int64
	fetchCalls  atomic.Int64

	parseConfiguration func(ctx context.Context, dir string) (*testConfiguration, error)
	tryInitState       func(ctx context.Context, configuration *testConfiguration, metrics *prometheus.Registry) (*testState, error)
	healthCheck        func(ctx context.Context, configuration *testConfiguration, state *testState) error
	fetchMetrics       func(ctx context.Context, configuration *testConfiguration, state *testState) error
	query              func(ctx context.Context, configuration *testConfiguration, state *testState, request *schema.QueryRequest) (*schema.Response[schema.QueryResponse], error)
	queryExplain       func(ctx context.Context, configuration *testConfiguration, state *testState, request *schema.QueryRequest) (*schema.Response[schema.ExplainResponse], error)
	mutation           func(ctx context.Context, configuration *testConfiguration, state *testState, request *schema.MutationRequest) (*schema.Response[schema.MutationResponse], error)
	mutationExplain    func(ctx context.Context, configuration *testConfiguration, state *testState, request *schema.MutationRequest) (*schema.Response[schema.ExplainResponse], error)
}

func (c *mockConnector) ParseConfiguration(ctx context.Context, configurationDir string) (*testConfiguration, error) {
	if c.parseConfiguration != nil {
		return c.parseConfiguration(ctx, configurationDir)
	}
	return &testConfiguration{Name: "test"}, nil
}

func (c *mockConnector) TryInitState(ctx context.Context, configuration *testConfiguration, metrics *prometheus.Registry) (*testState, error) {
	c.initCalls.Add(1)
	if c.tryInitState != nil {
		return c.tryInitState(ctx, configuration, metrics)
	}
	return &testState{ID: 1}, nil
}

func (c *mockConnector) FetchMetrics(ctx context.Context, configuration *testConfiguration, state *testState) error {
	c.fetchCalls.Add(1)
	if c.fetchMetrics != nil {
		return c.fetchMetrics(ctx, configuration, state)
	}
	return nil
}

func (c *mockConnector) HealthCheck(ctx context.Context, configuration *testConfiguration, state *testState) error {
	c.healthCalls.Add(1)
	if c.healthCheck != nil {
		return c.healthCheck(ctx, configuration, state)
	}
	return nil
}

func (c *mockConnector) GetCapabilities(configuration *testConfiguration) schema.Capabilities {
	return schema.Capabilities{
		Query: schema.QueryCapabilities{Explain: &schema.LeafCapability{}},
	}
}

func (c *mockConnector) GetSchema(ctx context.Context, configuration *testConfiguration) (*schema.Response[schema.SchemaResponse], error) {
	response := schema.SchemaResponse{
		ScalarTypes: map[string]schema.ScalarType{},
		ObjectTypes: map[string]schema.ObjectType{},
		Collections: []schema.CollectionInfo{},
		Functions:   []schema.FunctionInfo{},
		Procedures:  []schema.ProcedureInfo{},
	}
	return schema.NewResponse(&response), nil
}

func (c *mockConnector) Query(ctx context.Context, configuration *testConfiguration, state *testState, request *schema.QueryRequest) (*schema.Response[schema.QueryResponse], error) {
	c.queryCalls.Add(1)
	if c.query != nil {
		return c.query(ctx, configuration, state, request)
	}
	response := schema.QueryResponse{{Rows: []map[string]any{}}}
	return schema.NewResponse(&response), nil
}

func (c *mockConnector) QueryExplain(ctx context.Context, configuration *testConfiguration, state *testState, request *schema.QueryRequest) (*schema.Response[schema.ExplainResponse], error) {
	if c.queryExplain != nil {
		return c.queryExplain(ctx, configuration, state, request)
	}
	response := schema.ExplainResponse{Details: map[string]string{"plan": "none"}}
	return schema.NewResponse(&response), nil
}

func (c *mockConnector) Mutation(ctx context.Context, configuration *testConfiguration, state *testState, request *schema.MutationRequest) (*schema.Response[schema.MutationResponse], error) {
	if c.mutation != nil {
		return c.mutation(ctx, configuration, state, request)
	}
	response := schema.MutationResponse{OperationResults: []schema.MutationOperationResults{}}
	return schema.NewResponse(&response), nil
}

func (c *mockConnector) MutationExplain(ctx context.Context, configuration *testConfiguration, state *testState, request *schema.MutationRequest) (*schema.Response[schema.ExplainResponse], error) {
	if c.mutationExplain != nil {
		return c.mutationExplain(ctx, configuration, state, request)
	}
	response := schema.ExplainResponse{Details: map[string]string{"plan": "none"}}
	return schema.NewResponse(&response), nil
}

// newTestServer builds a server around the connector and serves its router
// over httptest.
func newTestServer(t *testing.T, connector *mockConnector, options configpkg.ServerOptions, deps ServerDependencies) *httptest.Server {
	t.Helper()

	if deps.Logger == nil {
		deps.Logger = loggingpkg.Discard()
	}
	server, err := TryNewServer[testConfiguration, testState](context.Background(), connector, options, deps)
	if err != nil {
		t.Fatalf("TryNewServer: %v", err)
	}

	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	return ts
}

// doRequest issues a request with an optional JSON body and headers.
func doRequest(t *testing.T, method, url string, body []byte, headers map[string]string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading response body: %v", err)
	}
	var value T
	if err := jsoncodec.Unmarshal(body, &value); err != nil {
		t.Fatalf("decoding response body %q: %v", body, err)
	}
	return value
}

func decodeErrorResponse(t *testing.T, resp *http.Response) schema.ErrorResponse {
	t.Helper()
	return decodeBody[schema.ErrorResponse](t, resp)
}

func queryBody(t *testing.T, collection string) []byte {
	t.Helper()

	request := schema.QueryRequest{Collection: collection, Query: schema.Query{}}
	body, err := jsoncodec.Marshal(&request)
	if err != nil {
		t.Fatalf("marshaling query request: %v", err)
	}
	return body
}
