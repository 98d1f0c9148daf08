package lp

import (
	"math"
	"strconv"
	"strings"
)

// Format renders the model back into the input grammar with canonical
// spacing. Parsing the rendering yields a structurally identical model,
// which is what the solution cache fingerprints.
func (m *Model) Format() string {
	var b strings.Builder

	b.WriteString(m.Direction.String())
	b.WriteByte('\n')
	writeExpr(&b, m.Objective.Terms)
	b.WriteByte('\n')

	for _, c := range m.Constraints {
		writeExpr(&b, c.Terms)
		b.WriteByte(' ')
		b.WriteString(string(c.Op))
		b.WriteByte(' ')
		b.WriteString(formatNum(c.RHS))
		b.WriteByte('\n')
	}

	var bounds, integers, binaries []string
	for _, name := range m.VarOrder {
		bd := m.Bounds[name]
		switch bd.Kind {
		case Integer:
			integers = append(integers, name)
		case Binary:
			binaries = append(binaries, name)
		}
		if bd.Free {
			bounds = append(bounds, name+" free")
		}
		if bd.Kind == Binary {
			// [0,1] is implied by the declaration.
			continue
		}
		lo := !math.IsInf(bd.Lower, -1)
		hi := !math.IsInf(bd.Upper, 1)
		switch {
		case lo && hi && bd.Lower == bd.Upper:
			bounds = append(bounds, name+" = "+formatNum(bd.Lower))
		default:
			if lo {
				bounds = append(bounds, name+" >= "+formatNum(bd.Lower))
			}
			if hi {
				bounds = append(bounds, name+" <= "+formatNum(bd.Upper))
			}
		}
	}

	if len(bounds) > 0 {
		b.WriteString("Bounds:\n")
		for _, l := range bounds {
			b.WriteString(l)
			b.WriteByte('\n')
		}
	}
	if len(integers) > 0 {
		b.WriteString("Integer:\n")
		b.WriteString(strings.Join(integers, ", "))
		b.WriteByte('\n')
	}
	if len(binaries) > 0 {
		b.WriteString("Binary:\n")
		b.WriteString(strings.Join(binaries, ", "))
		b.WriteByte('\n')
	}

	return b.String()
}

func writeExpr(b *strings.Builder, terms []Term) {
	for i, t := range terms {
		switch {
		case i == 0 && t.Coeff < 0:
			b.WriteByte('-')
		case i > 0 && t.Coeff < 0:
			b.WriteString(" - ")
		case i > 0:
			b.WriteString(" + ")
		}
		if mag := math.Abs(t.Coeff); mag != 1 {
			b.WriteString(formatNum(mag))
		}
		b.WriteString(t.Var)
	}
}

// formatNum renders v as the shortest decimal that parses back exactly.
// Exponent notation is avoided because the term grammar does not admit it.
func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
