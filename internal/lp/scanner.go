package lp

import "strconv"

// Character classes of the term grammar. Identifiers follow
// [a-zA-Z_][a-zA-Z0-9_]*; coefficients are optional decimal literals with
// an optional leading sign.

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

func isSpace(c byte) bool { return c == ' ' || c == '\t' }

// isIdentifier reports whether s is a well-formed variable name.
func isIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}

// ParseTerm converts one whitespace-free algebraic token such as "+3.5x2"
// into a Term. The coefficient defaults to 1 when absent and to -1 for a
// bare minus sign. line is the 1-based source line used in diagnostics.
func ParseTerm(token string, line int) (Term, error) {
	return parseTermAt(token, line, 1)
}

// parseTermAt is ParseTerm with the token's 1-based start column within
// the source line, so errors point at the exact character.
func parseTermAt(token string, line, column int) (Term, error) {
	if token == "" {
		return Term{}, formatErr(line, column, token, "empty term")
	}

	i := 0
	if token[i] == '+' || token[i] == '-' {
		i++
	}

	// Optional decimal coefficient: digits, an optional dot, more digits.
	for i < len(token) && isDigit(token[i]) {
		i++
	}
	if i < len(token) && token[i] == '.' {
		i++
		for i < len(token) && isDigit(token[i]) {
			i++
		}
	}
	numEnd := i

	if i == len(token) || !isIdentStart(token[i]) {
		return Term{}, formatErr(line, column+i, token, "invalid term: expected variable name")
	}
	identStart := i
	for i++; i < len(token) && isIdentPart(token[i]); i++ {
	}
	if i != len(token) {
		return Term{}, formatErr(line, column+i, token, "invalid term: trailing characters")
	}

	coeff := 1.0
	switch num := token[:numEnd]; num {
	case "", "+":
		// implicit +1
	case "-":
		coeff = -1
	default:
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return Term{}, formatErr(line, column, token, "invalid coefficient")
		}
		coeff = v
	}

	return Term{Coeff: coeff, Var: token[identStart:]}, nil
}
