package statement

import (
	"strconv"
	"strings"

	"github.com/coderi421/adkit/statement/internal/errs"
)

const (
	kwLimit  = "LIMIT"
	kwOffset = "OFFSET"
)

// WithOffset returns a copy of s whose trailing OFFSET clause is n.
// An existing OFFSET operand is replaced; otherwise the clause is appended
// after whatever the query already ends with, LIMIT included.
//
// OFFSET has to be the last clause of the query. A second OFFSET, an OFFSET
// followed by anything else, a non-numeric operand or a negative n are
// reported as ErrMalformedClause instead of producing a corrupted query.
func (s Statement) WithOffset(n int) (Statement, error) {
	if n < 0 {
		return s, errs.NewErrMalformedClause(kwOffset, s.Query, "negative offset")
	}
	offsets := findKeyword(s.Query, kwOffset)
	switch len(offsets) {
	case 0:
		return s.withQuery(appendClause(s.Query, kwOffset, n)), nil
	case 1:
		start, end, err := operand(s.Query, kwOffset, offsets[0])
		if err != nil {
			return s, err
		}
		if strings.TrimSpace(s.Query[end:]) != "" {
			return s, errs.NewErrMalformedClause(kwOffset, s.Query, "OFFSET is not the last clause")
		}
		return s.withQuery(s.Query[:start] + strconv.Itoa(n) + s.Query[end:]), nil
	default:
		return s, errs.NewErrMalformedClause(kwOffset, s.Query, "more than one OFFSET")
	}
}

// WithLimit returns a copy of s whose LIMIT clause is n. A missing LIMIT is
// inserted in front of a trailing OFFSET, or appended when there is none.
func (s Statement) WithLimit(n int) (Statement, error) {
	if n < 0 {
		return s, errs.NewErrMalformedClause(kwLimit, s.Query, "negative limit")
	}
	limits := findKeyword(s.Query, kwLimit)
	offsets := findKeyword(s.Query, kwOffset)
	if len(offsets) > 1 {
		return s, errs.NewErrMalformedClause(kwOffset, s.Query, "more than one OFFSET")
	}

	switch len(limits) {
	case 0:
		if len(offsets) == 1 {
			p := offsets[0]
			return s.withQuery(s.Query[:p] + kwLimit + " " + strconv.Itoa(n) + " " + s.Query[p:]), nil
		}
		return s.withQuery(appendClause(s.Query, kwLimit, n)), nil
	case 1:
		start, end, err := operand(s.Query, kwLimit, limits[0])
		if err != nil {
			return s, err
		}
		// LIMIT 后面只允许跟 OFFSET
		next := end
		for next < len(s.Query) && isSpace(s.Query[next]) {
			next++
		}
		if next < len(s.Query) && (len(offsets) == 0 || offsets[0] != next) {
			return s, errs.NewErrMalformedClause(kwLimit, s.Query, "LIMIT must be followed by OFFSET or nothing")
		}
		return s.withQuery(s.Query[:start] + strconv.Itoa(n) + s.Query[end:]), nil
	default:
		return s, errs.NewErrMalformedClause(kwLimit, s.Query, "more than one LIMIT")
	}
}

func (s Statement) withQuery(q string) Statement {
	return Statement{Query: q, Values: s.Values}
}

func appendClause(query string, kw string, n int) string {
	q := strings.TrimRight(query, " \t\r\n")
	if q == "" {
		return kw + " " + strconv.Itoa(n)
	}
	return q + " " + kw + " " + strconv.Itoa(n)
}

// operand locates the integer following the keyword that starts at pos and
// returns its byte range.
func operand(query string, kw string, pos int) (int, int, error) {
	i := pos + len(kw)
	for i < len(query) && isSpace(query[i]) {
		i++
	}
	start := i
	for i < len(query) && !isSpace(query[i]) {
		i++
	}
	if start == i {
		return 0, 0, errs.NewErrMalformedClause(kw, query, "missing operand")
	}
	if v, err := strconv.Atoi(query[start:i]); err != nil || v < 0 {
		return 0, 0, errs.NewErrMalformedClause(kw, query, "operand is not a non-negative integer")
	}
	return start, i, nil
}

// findKeyword returns the byte offsets of every whole-word, case-insensitive
// occurrence of kw outside quoted literals.
func findKeyword(query string, kw string) []int {
	var res []int
	for i := 0; i < len(query); i++ {
		c := query[i]
		if c == '\'' || c == '"' {
			i = skipQuoted(query, i)
			continue
		}
		if i > 0 && isIdent(query[i-1]) {
			continue
		}
		end := i + len(kw)
		if end > len(query) || !strings.EqualFold(query[i:end], kw) {
			continue
		}
		if end < len(query) && isIdent(query[end]) {
			continue
		}
		res = append(res, i)
		i = end - 1
	}
	return res
}

// skipQuoted returns the index of the quote closing the literal opened at i.
// Backslash escapes and doubled quotes are both honoured.
func skipQuoted(query string, i int) int {
	q := query[i]
	for j := i + 1; j < len(query); j++ {
		switch query[j] {
		case '\\':
			j++
		case q:
			if j+1 < len(query) && query[j+1] == q {
				j++
				continue
			}
			return j
		}
	}
	return len(query)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdent(c byte) bool {
	return c == '_' || c == ':' || c == '.' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
