package lp

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// section is the state of the line classifier.
type section int

const (
	sectionNone section = iota
	sectionConstraints
	sectionBounds
	sectionInteger
	sectionBinary
)

const commentMarker = "//"

// parser accumulates one Model over a single forward pass of the input.
// Each Parse call builds a fresh parser, so repeated invocations are
// fully independent.
type parser struct {
	model        *Model
	section      section
	directionSet bool
	objectiveSet bool
}

// ParseFile reads a complete model from the file at path.
func ParseFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return m, nil
}

// Parse reads a complete model from r, one statement per line. The first
// error aborts the parse; no partial model is returned.
func Parse(r io.Reader) (*Model, error) {
	p := &parser{model: NewModel(), section: sectionNone}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := p.consume(scanner.Text(), lineNo); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan model: %w", err)
	}

	if !p.directionSet {
		return nil, formatErr(lineNo, 0, "", "missing Max/Min direction line")
	}
	if !p.objectiveSet {
		return nil, formatErr(lineNo, 0, "", "missing objective expression")
	}
	return p.model, nil
}

// consume routes one raw input line to the reader the current section
// demands.
func (p *parser) consume(raw string, lineNo int) error {
	line := strings.TrimSpace(raw)

	// Blank lines and full-line comments are skipped in every state.
	if line == "" || strings.HasPrefix(line, commentMarker) {
		return nil
	}

	// Direction line, exactly once, case-sensitive.
	if line == "Max" || line == "Min" {
		if p.directionSet {
			return &ParseError{Kind: ErrDuplicateSection, Line: lineNo, Snippet: line, Msg: "duplicate optimization direction"}
		}
		if line == "Max" {
			p.model.Direction = Maximize
		} else {
			p.model.Direction = Minimize
		}
		p.directionSet = true
		return nil
	}

	// First line after the direction is the objective; constraints follow
	// implicitly.
	if p.directionSet && !p.objectiveSet {
		terms, err := parseExpr(line, lineNo)
		if err != nil {
			return err
		}
		p.model.Objective = LinearExpr{Terms: terms, Op: RelNone, Line: lineNo}
		p.touch(terms)
		p.objectiveSet = true
		p.section = sectionConstraints
		return nil
	}

	// Section headers switch without consuming content and may reappear;
	// re-entering a section keeps adding to it.
	switch line {
	case "Bounds:":
		p.section = sectionBounds
		return nil
	case "Integer:":
		p.section = sectionInteger
		return nil
	case "Binary:":
		p.section = sectionBinary
		return nil
	}

	switch p.section {
	case sectionConstraints:
		return p.addConstraint(line, lineNo)
	case sectionBounds:
		return p.addBound(line, lineNo)
	case sectionInteger:
		return p.declareKind(line, lineNo, Integer)
	case sectionBinary:
		return p.declareKind(line, lineNo, Binary)
	default:
		return &ParseError{Kind: ErrUnexpectedLine, Line: lineNo, Snippet: line, Msg: "unexpected line: no section can accept it"}
	}
}

func (p *parser) addConstraint(line string, lineNo int) error {
	expr, err := parseConstraint(line, lineNo)
	if err != nil {
		return err
	}
	p.touch(expr.Terms)
	p.model.Constraints = append(p.model.Constraints, expr)
	return nil
}

// addBound handles one line of the Bounds section: either "<var> free" or
// "<var> (<=|>=|=) <number>". Narrowings on the same variable accumulate;
// "=" fixes both bounds at once.
func (p *parser) addBound(line string, lineNo int) error {
	fields := strings.Fields(line)
	if len(fields) == 2 && fields[1] == "free" {
		name := fields[0]
		if !isIdentifier(name) {
			return formatErr(lineNo, 1, name, "invalid variable name in bound")
		}
		b := p.model.BoundFor(name)
		b.Free = true
		p.model.SetBound(name, b)
		return nil
	}

	rel, pos, err := findRelation(line, lineNo)
	if err != nil {
		return formatErr(lineNo, 0, line, "invalid bound line")
	}

	name := strings.TrimSpace(line[:pos])
	if !isIdentifier(name) {
		return formatErr(lineNo, 1, name, "invalid variable name in bound")
	}

	valStr := strings.TrimSpace(line[pos+len(rel):])
	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil {
		return formatErr(lineNo, pos+len(rel)+1, valStr, "invalid bound value")
	}

	b := p.model.BoundFor(name)
	switch rel {
	case RelGE:
		b.Lower = val
	case RelLE:
		b.Upper = val
	case RelEQ:
		b.Lower, b.Upper = val, val
	}
	p.model.SetBound(name, b)
	return nil
}

// declareKind handles one comma-separated line of the Integer or Binary
// section. Binary forces the [0,1] range, overriding any prior narrowing.
func (p *parser) declareKind(line string, lineNo int, kind VarKind) error {
	for _, name := range strings.Split(line, ",") {
		name = strings.TrimSpace(name)
		if !isIdentifier(name) {
			return formatErr(lineNo, 0, name, "invalid variable name in declaration")
		}
		b := p.model.BoundFor(name)
		b.Kind = kind
		if kind == Binary {
			b.Lower, b.Upper = 0, 1
		}
		p.model.SetBound(name, b)
	}
	return nil
}

// touch materializes default bound records for every variable an
// expression references.
func (p *parser) touch(terms []Term) {
	for _, t := range terms {
		p.model.BoundFor(t.Var)
	}
}
