package solver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"milp-runner/internal/lp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModel(t *testing.T) *lp.Model {
	t.Helper()
	m, err := lp.Parse(strings.NewReader(`Max
3x + 2y
x + y <= 10
Bounds:
y <= 8
z free
Integer:
x
`))
	require.NoError(t, err)
	return m
}

func TestBuildRequest(t *testing.T) {
	model := testModel(t)
	req := buildRequest(model, Options{UseDual: true, MIP: true, TimeLimit: 30 * time.Second})

	assert.Equal(t, "Max", req.Direction)
	assert.Equal(t, []wireTerm{{3, "x"}, {2, "y"}}, req.Objective)

	require.Len(t, req.Constraints, 1)
	assert.Equal(t, "<=", req.Constraints[0].Op)
	assert.Equal(t, 10.0, req.Constraints[0].RHS)
	assert.Equal(t, []wireTerm{{1, "x"}, {1, "y"}}, req.Constraints[0].Terms)

	// Columns follow first-reference order.
	require.Len(t, req.Columns, 3)
	assert.Equal(t, "x", req.Columns[0].Name)
	assert.Equal(t, "y", req.Columns[1].Name)
	assert.Equal(t, "z", req.Columns[2].Name)

	// x: integer, unbounded — infinite bounds are absent fields.
	assert.Equal(t, "integer", req.Columns[0].Kind)
	assert.Nil(t, req.Columns[0].Lower)
	assert.Nil(t, req.Columns[0].Upper)

	// y: continuous with an upper bound only.
	assert.Equal(t, "continuous", req.Columns[1].Kind)
	assert.Nil(t, req.Columns[1].Lower)
	require.NotNil(t, req.Columns[1].Upper)
	assert.Equal(t, 8.0, *req.Columns[1].Upper)

	// z: free.
	assert.True(t, req.Columns[2].Free)
	assert.Nil(t, req.Columns[2].Lower)
	assert.Nil(t, req.Columns[2].Upper)

	assert.Equal(t, "dual", req.Options.Method)
	assert.True(t, req.Options.MIP)
	assert.Equal(t, 30.0, req.Options.TimeLimitSeconds)
}

func TestBuildRequestBinaryColumn(t *testing.T) {
	m, err := lp.Parse(strings.NewReader("Max\na\na <= 1\nBinary:\na\n"))
	require.NoError(t, err)

	req := buildRequest(m, Options{MIP: true})
	require.Len(t, req.Columns, 1)
	col := req.Columns[0]
	assert.Equal(t, "binary", col.Kind)
	require.NotNil(t, col.Lower)
	require.NotNil(t, col.Upper)
	assert.Equal(t, 0.0, *col.Lower)
	assert.Equal(t, 1.0, *col.Upper)
}

func TestBuildRequestMarshals(t *testing.T) {
	// Infinite bounds must never reach json.Marshal.
	req := buildRequest(testModel(t), Options{})
	_, err := json.Marshal(req)
	require.NoError(t, err)
}

func TestClientSolve(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/v1/solve", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req solveRequest
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			assert.Equal(t, "Max", req.Direction)
		}

		json.NewEncoder(w).Encode(solveResponse{
			Status:     "optimal",
			Objective:  26,
			Values:     map[string]float64{"x": 2, "y": 8, "z": 0},
			Iterations: 5,
			SolveTime:  0.01,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", 10*time.Second)
	sol, err := client.Solve(context.Background(), testModel(t), Options{MIP: true})
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, StatusOptimal, sol.Status)
	assert.True(t, sol.IsOptimal())
	assert.Equal(t, 26.0, sol.Objective)
	assert.Equal(t, 2.0, sol.Value("x"))
	assert.Equal(t, int64(5), sol.Iterations)
}

func TestClientSolveRetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(solveResponse{Status: "optimal", Objective: 1, Values: map[string]float64{"x": 1}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 10*time.Second)
	sol, err := client.Solve(context.Background(), testModel(t), Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load())
	assert.Equal(t, StatusOptimal, sol.Status)
}

func TestClientSolveDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad model", http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 10*time.Second)
	_, err := client.Solve(context.Background(), testModel(t), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Equal(t, int64(1), calls.Load())
}

func TestClientSolveUnknownStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(solveResponse{Status: "mystifying"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 10*time.Second)
	_, err := client.Solve(context.Background(), testModel(t), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown solver status")
}

func TestClientSolveServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(solveResponse{Error: &wireError{Code: 12, Message: "singular basis"}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 10*time.Second)
	_, err := client.Solve(context.Background(), testModel(t), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "singular basis")
}

func TestSolutionHelpers(t *testing.T) {
	sol := &Solution{Status: StatusInfeasible}
	assert.False(t, sol.IsOptimal())
	assert.False(t, sol.HasSolution())

	sol = &Solution{Status: StatusTimeLimit, Values: map[string]float64{"x": 1}}
	assert.True(t, sol.HasSolution())
	assert.Equal(t, 1.0, sol.Value("x"))
	assert.Equal(t, 0.0, sol.Value("missing"))
}
