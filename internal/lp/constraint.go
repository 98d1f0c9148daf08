package lp

import (
	"strconv"
	"strings"
)

// findRelation locates the relational operator in s and returns it with
// its byte offset. Exactly one occurrence is required: zero or several
// operators in one line are both format errors, so a malformed right-hand
// side can never be silently swallowed by a greedy split.
func findRelation(s string, line int) (Relation, int, error) {
	var (
		rel   Relation
		pos   int
		count int
	)

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '>':
			if i+1 < len(s) && s[i+1] == '=' {
				if count == 0 {
					if s[i] == '<' {
						rel = RelLE
					} else {
						rel = RelGE
					}
					pos = i
				}
				count++
				i++ // consume '='
			}
		case '=':
			if count == 0 {
				rel = RelEQ
				pos = i
			}
			count++
		}
	}

	switch {
	case count == 0:
		return RelNone, 0, formatErr(line, 0, strings.TrimSpace(s), "constraint has no relational operator")
	case count > 1:
		return RelNone, 0, formatErr(line, 0, strings.TrimSpace(s), "constraint has multiple relational operators")
	}
	return rel, pos, nil
}

// parseConstraint splits a constraint line on its relational operator,
// parses the left side as a linear expression and the right side as a
// single numeric literal.
func parseConstraint(s string, line int) (LinearExpr, error) {
	rel, pos, err := findRelation(s, line)
	if err != nil {
		return LinearExpr{}, err
	}

	terms, err := parseExpr(s[:pos], line)
	if err != nil {
		return LinearExpr{}, err
	}

	rhsStr := strings.TrimSpace(s[pos+len(rel):])
	rhs, err := strconv.ParseFloat(rhsStr, 64)
	if err != nil {
		return LinearExpr{}, formatErr(line, pos+len(rel)+1, rhsStr, "invalid right-hand side")
	}

	return LinearExpr{Terms: terms, RHS: rhs, Op: rel, Line: line}, nil
}
