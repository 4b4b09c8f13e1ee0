// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package framework

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telekom/horizon/pkg/checks"
)

// e2eTimeMargin is the accepted age of result timestamps.
const e2eTimeMargin = 5 * time.Minute

// e2eHttpAsserter is an HTTP asserter for end-to-end tests.
type e2eHttpAsserter struct {
	e2e      *E2E
	url      string
	response *e2eResponseAsserter
	schema   *openapi3.T
	router   routers.Router
}

// e2eResponseAsserter holds the expected response result and an asserter function.
type e2eResponseAsserter struct {
	want     any
	asserter func(r *http.Response) error
}

// HttpAssertion creates a new HTTP assertion for the given api path.
func (e *E2E) HttpAssertion(path string) *e2eHttpAsserter {
	return &e2eHttpAsserter{e2e: e, url: e.URL(path)}
}

// Assert asserts the status code and then runs schema and result validations.
func (a *e2eHttpAsserter) Assert(status int) {
	a.e2e.t.Helper()
	if !a.e2e.isRunning() {
		a.e2e.t.Fatal("e2eHttpAsserter.Assert must be called after E2E.Run")
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, a.url, http.NoBody)
	if err != nil {
		a.e2e.t.Fatalf("Failed to create request: %v", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		a.e2e.t.Errorf("Failed to get %s: %v", a.url, err)
		return
	}
	defer resp.Body.Close()

	assert.Equal(a.e2e.t, status, resp.StatusCode, "Unexpected status code for %s", a.url)
	if resp.StatusCode != http.StatusOK {
		return
	}

	if a.router != nil {
		if err = a.assertSchema(req, resp); err != nil {
			a.e2e.t.Errorf("Response from %q does not match schema: %v", a.url, err)
		}
	}
	if a.response != nil {
		if err = a.response.asserter(resp); err != nil {
			a.e2e.t.Errorf("Failed to assert response: %v", err)
		}
	}
}

// WithSchema fetches the OpenAPI schema and creates a router for response validation.
func (a *e2eHttpAsserter) WithSchema() *e2eHttpAsserter {
	a.e2e.t.Helper()
	schema, err := a.fetchSchema()
	if err != nil {
		a.e2e.t.Fatalf("Failed to fetch OpenAPI schema: %v", err)
	}

	router, err := gorillamux.NewRouter(schema)
	if err != nil {
		a.e2e.t.Fatalf("Failed to create router from OpenAPI schema: %v", err)
	}

	a.schema = schema
	a.router = router
	return a
}

// WithCheckResult sets the expected check result. Only the keys present in the
// expected data are compared.
func (a *e2eHttpAsserter) WithCheckResult(r checks.Result) *e2eHttpAsserter {
	a.response = &e2eResponseAsserter{
		want:     r,
		asserter: a.assertCheckResponse,
	}
	return a
}

// fetchSchema retrieves and validates the OpenAPI schema served by the monitor.
func (a *e2eHttpAsserter) fetchSchema() (*openapi3.T, error) {
	ctx := context.Background()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.e2e.URL("/openapi"), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to GET OpenAPI schema: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenAPI schema: %w", err)
	}

	schema, err := openapi3.NewLoader().LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI schema: %w", err)
	}
	if err = schema.Validate(ctx); err != nil {
		return nil, fmt.Errorf("OpenAPI schema validation error: %w", err)
	}
	return schema, nil
}

// assertSchema validates the response body against the OpenAPI schema.
func (a *e2eHttpAsserter) assertSchema(req *http.Request, resp *http.Response) error {
	route, _, err := a.router.FindRoute(req)
	if err != nil {
		return fmt.Errorf("failed to find route: %w", err)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(data))

	responseRef := route.Operation.Responses.Status(resp.StatusCode)
	if responseRef == nil || responseRef.Value == nil {
		return fmt.Errorf("no response defined in OpenAPI schema for status code %d", resp.StatusCode)
	}
	mediaType := responseRef.Value.Content.Get("application/json")
	if mediaType == nil {
		return errors.New("no media type defined in OpenAPI schema for Content-Type 'application/json'")
	}

	var body map[string]any
	if err = json.Unmarshal(data, &body); err != nil {
		return fmt.Errorf("failed to unmarshal response body: %w", err)
	}
	if err = mediaType.Schema.Value.VisitJSON(body); err != nil {
		return fmt.Errorf("response body does not match schema: %w", err)
	}
	return nil
}

// assertCheckResponse decodes the check result from the response and compares it against the expected result.
func (a *e2eHttpAsserter) assertCheckResponse(resp *http.Response) error {
	want, ok := a.response.want.(checks.Result)
	require.True(a.e2e.t, ok, "Invalid response type: %T", a.response.want)

	var got checks.Result
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}

	assertCheckResult(a.e2e.t, want, got)
	return nil
}

// assertCheckResult compares the expected data with the actual one and checks
// that the result is recent.
func assertCheckResult(t *testing.T, expected, actual checks.Result) {
	t.Helper()
	expMap, ok := expected.Data.(map[string]any)
	require.True(t, ok, "Expected Data is not a map, got %T", expected.Data)
	actMap, ok := actual.Data.(map[string]any)
	require.True(t, ok, "Actual Data is not a map, got %T", actual.Data)

	assert.Len(t, actMap, len(expMap), "Unexpected number of targets")
	assertMapSubset(t, expMap, actMap)
	assert.WithinDuration(t, time.Now(), actual.Timestamp, e2eTimeMargin, "Response timestamp is not recent")
}

// assertMapSubset compares the values of all expected keys.
func assertMapSubset(t *testing.T, expected, actual map[string]any) {
	t.Helper()
	for key, expVal := range expected {
		actVal, exists := actual[key]
		if !assert.True(t, exists, "Missing key %s in actual data", key) {
			continue
		}
		assertValueEqual(t, expVal, actVal)
	}
}

// assertValueEqual compares values the way they come out of a json document.
func assertValueEqual(t *testing.T, expected, actual any) {
	t.Helper()
	switch exp := expected.(type) {
	case map[string]any:
		act, ok := actual.(map[string]any)
		require.True(t, ok, "Expected value for map is not a map, got %T", actual)
		assertMapSubset(t, exp, act)
	case int:
		assert.Equal(t, float64(exp), actual, "Int value differs")
	default:
		assert.Equal(t, expected, actual, "Values differ")
	}
}
