package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"milp-runner/internal/lp"
	"milp-runner/internal/solver"

	"github.com/rs/zerolog/log"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatTSV  = "tsv"
)

// WriteText writes the classic solver log: status, objective value and
// one line per variable, in first-reference order.
func WriteText(w io.Writer, model *lp.Model, sol *solver.Solution) error {
	if _, err := fmt.Fprintf(w, "Status: %s\n", sol.Status); err != nil {
		return err
	}
	if !sol.HasSolution() {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Objective Value: %g\n", sol.Objective); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "Variable Values:"); err != nil {
		return err
	}
	for _, name := range model.VarOrder {
		if _, err := fmt.Fprintf(w, "  %s = %g\n", name, sol.Value(name)); err != nil {
			return err
		}
	}
	return nil
}

// jsonReport is the JSON report shape: the solution plus the variable
// order so consumers can reconstruct column ordering.
type jsonReport struct {
	Solution  *solver.Solution `json:"solution"`
	Variables []string         `json:"variables"`
}

// WriteJSON writes the solution as indented JSON.
func WriteJSON(w io.Writer, model *lp.Model, sol *solver.Solution) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(jsonReport{Solution: sol, Variables: model.VarOrder}); err != nil {
		return fmt.Errorf("encode JSON report: %w", err)
	}
	return nil
}

// WriteTSV writes the variable assignments as a two-column table.
func WriteTSV(w io.Writer, model *lp.Model, sol *solver.Solution) error {
	if _, err := fmt.Fprintln(w, "variable\tvalue"); err != nil {
		return err
	}
	for _, name := range model.VarOrder {
		if _, err := fmt.Fprintf(w, "%s\t%g\n", name, sol.Value(name)); err != nil {
			return err
		}
	}
	return nil
}

// Write dispatches to the writer for format.
func Write(w io.Writer, format string, model *lp.Model, sol *solver.Solution) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, model, sol)
	case FormatTSV:
		return WriteTSV(w, model, sol)
	case FormatText:
		return WriteText(w, model, sol)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// WriteFile writes the report for format to path.
func WriteFile(path, format string, model *lp.Model, sol *solver.Solution) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	if err := Write(f, format, model, sol); err != nil {
		return err
	}

	log.Info().Str("path", path).Str("format", format).Msg("Wrote solution report")
	return nil
}
