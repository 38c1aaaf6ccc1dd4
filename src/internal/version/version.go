// Package version implements the structured, totally ordered version
// token sequence described by the core's data model: a version is a
// sequence of alternating numeric and alphabetic components, with
// pre-release markers sorting before the "*final" sentinel and
// post-release/dev markers sorting around it.
//
// The algorithm mirrors pkg_resources.parse_version as used by
// zc.buildout's easy_install.py (see
// _examples/original_source/src/zc/buildout/easy_install.py,
// _final_version and the surrounding parsed_version comparisons): no
// example repo in this corpus carries a PEP440-aware comparator —
// Masterminds/semver and blang/semver/v4 both assume strict SemVer and
// reject strings like "1.0.dev3" or "2021.3.1" that are common,
// legitimate PyPI versions — so this component is a deliberate,
// documented standard-library part (see DESIGN.md).
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a parsed, comparable version token sequence.
type Version struct {
	raw    string
	tokens []string
}

var replacements = map[string]string{
	"pre":   "c",
	"preview": "c",
	"-":     "final-",
	"rc":    "c",
	"dev":   "@",
}

// finalParts are the two sentinel tokens that mark a final release;
// every other token beginning with '*' is a pre-release marker.
var finalParts = map[string]bool{
	"*final":  true,
	"*final-": true,
}

// Parse tokenizes a raw version string into the comparable component
// sequence. It never fails: unparsable input degenerates into a
// single literal-string component, which still participates in total
// ordering (just not usefully).
func Parse(raw string) Version {
	trimmed := strings.TrimSpace(raw)
	parts := splitComponents(trimmed)
	tokens := make([]string, 0, len(parts)+1)
	for _, p := range parts {
		tokens = append(tokens, normalizeComponent(p))
	}
	tokens = append(tokens, "*final")
	return Version{raw: trimmed, tokens: tokens}
}

func (v Version) String() string { return v.raw }

// IsFinal reports whether none of v's non-sentinel tokens is a
// pre-release marker (begins with '*' but isn't a final sentinel).
func (v Version) IsFinal() bool {
	for _, t := range v.tokens {
		if strings.HasPrefix(t, "*") && !finalParts[t] {
			return false
		}
	}
	return true
}

// Compare returns -1, 0, or 1 as v orders before, the same as, or
// after other.
func (v Version) Compare(other Version) int {
	a, b := v.tokens, other.tokens
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		var ta, tb string
		if i < len(a) {
			ta = a[i]
		} else {
			ta = "*final"
		}
		if i < len(b) {
			tb = b[i]
		} else {
			tb = "*final"
		}
		if ta == tb {
			continue
		}
		if c := compareToken(ta, tb); c != 0 {
			return c
		}
	}
	return 0
}

func (v Version) Less(other Version) bool    { return v.Compare(other) < 0 }
func (v Version) Equal(other Version) bool   { return v.Compare(other) == 0 }
func (v Version) GreaterThan(o Version) bool { return v.Compare(o) > 0 }

// compareToken orders two normalized tokens: numeric tokens compare
// numerically with other numeric tokens, everything else compares
// lexicographically. Compare pads the shorter version with the
// "*final" token, which sorts below any numeric token, so 1.0 orders
// before 1.0.0.
func compareToken(a, b string) int {
	an, aIsNum := numericValue(a)
	bn, bIsNum := numericValue(b)
	if aIsNum && bIsNum {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

func numericValue(tok string) (int64, bool) {
	if tok == "" || tok[0] == '*' {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimLeft(tok, "0"), 10, 64)
	if err != nil {
		if strings.Trim(tok, "0") == "" {
			return 0, true
		}
		return 0, false
	}
	return n, true
}

// splitComponents breaks a version string into alternating runs of
// digits and non-digits, dropping separator runs of '.', '-', '_', '+'.
func splitComponents(raw string) []string {
	var parts []string
	var cur strings.Builder
	var curIsDigit bool
	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		}
	}
	for _, r := range raw {
		switch {
		case r == '.' || r == '-' || r == '_' || r == '+':
			flush()
		case r >= '0' && r <= '9':
			if cur.Len() > 0 && !curIsDigit {
				flush()
			}
			curIsDigit = true
			cur.WriteRune(r)
		default:
			if cur.Len() > 0 && curIsDigit {
				flush()
			}
			curIsDigit = false
			cur.WriteRune(r)
		}
	}
	flush()
	return parts
}

// normalizeComponent maps one raw component to its comparable token:
// numeric components are zero-padded to a fixed width so that
// lexicographic and numeric order agree; alphabetic components are
// lower-cased and remapped through the pre-release synonym table,
// then marked with a leading '*' so they always sort below any
// numeric token of the same position.
func normalizeComponent(part string) string {
	if part == "" {
		return part
	}
	if isDigits(part) {
		return fmt.Sprintf("%08s", part)
	}
	lower := strings.ToLower(part)
	if repl, ok := replacements[lower]; ok {
		lower = repl
	}
	if !strings.HasPrefix(lower, "*") {
		lower = "*" + lower
	}
	return lower
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
