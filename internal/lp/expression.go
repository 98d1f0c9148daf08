package lp

import "strings"

// parseExpr scans s left to right and extracts every maximal run shaped
// like an optionally signed coefficient followed by an identifier, in
// source order. Whitespace between the sign, the coefficient and the
// identifier is stripped before term parsing, so "3 x" and "3x" parse
// identically. Fails when no term at all can be extracted.
func parseExpr(s string, line int) ([]Term, error) {
	var terms []Term
	n := len(s)
	i := 0

	for i < n {
		c := s[i]
		if c != '+' && c != '-' && c != '.' && !isDigit(c) && !isIdentStart(c) {
			i++
			continue
		}

		start := i
		j := i
		var token []byte

		if s[j] == '+' || s[j] == '-' {
			token = append(token, s[j])
			j++
			for j < n && isSpace(s[j]) {
				j++
			}
		}

		numStart := j
		for j < n && (isDigit(s[j]) || s[j] == '.') {
			token = append(token, s[j])
			j++
		}

		k := j
		if j > numStart {
			for k < n && isSpace(s[k]) {
				k++
			}
		}

		if k < n && isIdentStart(s[k]) {
			j = k
			for j < n && isIdentPart(s[j]) {
				token = append(token, s[j])
				j++
			}
			term, err := parseTermAt(string(token), line, start+1)
			if err != nil {
				return nil, err
			}
			terms = append(terms, term)
			i = j
			continue
		}

		// A bare sign or number with no identifier attached is not a term.
		if j == start {
			j++
		}
		i = j
	}

	if len(terms) == 0 {
		return nil, formatErr(line, 0, strings.TrimSpace(s), "no valid terms in expression")
	}
	return terms, nil
}
