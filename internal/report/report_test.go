package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"milp-runner/internal/lp"
	"milp-runner/internal/solver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtures(t *testing.T) (*lp.Model, *solver.Solution) {
	t.Helper()
	m, err := lp.Parse(strings.NewReader("Max\n3x + 2y\nx + y <= 10\n"))
	require.NoError(t, err)
	sol := &solver.Solution{
		Status:    solver.StatusOptimal,
		Objective: 26,
		Values:    map[string]float64{"x": 2, "y": 8},
	}
	return m, sol
}

func TestWriteText(t *testing.T) {
	m, sol := fixtures(t)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, m, sol))

	want := "Status: optimal\n" +
		"Objective Value: 26\n" +
		"Variable Values:\n" +
		"  x = 2\n" +
		"  y = 8\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteTextNoSolution(t *testing.T) {
	m, _ := fixtures(t)
	sol := &solver.Solution{Status: solver.StatusInfeasible}

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, m, sol))
	assert.Equal(t, "Status: infeasible\n", buf.String())
}

func TestWriteTSV(t *testing.T) {
	m, sol := fixtures(t)

	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, m, sol))
	assert.Equal(t, "variable\tvalue\nx\t2\ny\t8\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	m, sol := fixtures(t)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, m, sol))

	var got jsonReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []string{"x", "y"}, got.Variables)
	assert.Equal(t, solver.StatusOptimal, got.Solution.Status)
	assert.Equal(t, 26.0, got.Solution.Objective)
	assert.Equal(t, 8.0, got.Solution.Values["y"])
}

func TestWriteUnknownFormat(t *testing.T) {
	m, sol := fixtures(t)
	err := Write(&bytes.Buffer{}, "xml", m, sol)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown report format")
}

func TestWriteFile(t *testing.T) {
	m, sol := fixtures(t)
	path := filepath.Join(t.TempDir(), "out.sol")

	require.NoError(t, WriteFile(path, FormatText, m, sol))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Objective Value: 26")
}
