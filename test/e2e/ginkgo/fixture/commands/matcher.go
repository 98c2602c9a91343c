package commands

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/onsi/gomega"
	"github.com/onsi/gomega/gcustom"
	"github.com/onsi/gomega/types"
)

// TextMatcher checks the rendered text of an element. Any gomega matcher accepting a string fits.
type TextMatcher = types.GomegaMatcher

// Contains matches text containing s. Whitespace runs are collapsed on both sides first.
func Contains(s string) TextMatcher {
	return gomega.WithTransform(normalizeSpace, gomega.ContainSubstring(normalizeSpace(s)))
}

// Matches matches text against re.
func Matches(re *regexp.Regexp) TextMatcher {
	return gomega.MatchRegexp(re.String())
}

// nonEmpty matches any rendered content.
var nonEmpty = regexp.MustCompile(`\S`)

var ratioPattern = regexp.MustCompile(`(\d+)\s*/\s*(\d+)`)

// AllReady matches text holding a ready ratio "N/N" with N > 0, e.g. "1/1" or "6 / 6".
func AllReady() TextMatcher {
	return gcustom.MakeMatcher(func(text string) (bool, error) {
		for _, m := range ratioPattern.FindAllStringSubmatch(text, -1) {
			ready, err1 := strconv.Atoi(m[1])
			total, err2 := strconv.Atoi(m[2])
			if err1 == nil && err2 == nil && ready > 0 && ready == total {
				return true, nil
			}
		}
		return false, nil
	}).WithMessage("hold an all ready ratio (N/N, N>0)")
}

// Not inverts m.
func Not(m TextMatcher) TextMatcher {
	return gomega.Not(m)
}

// allOf matches when every non-nil matcher matches.
func allOf(ms ...TextMatcher) TextMatcher {
	set := make([]types.GomegaMatcher, 0, len(ms))
	for _, m := range ms {
		if m != nil {
			set = append(set, m)
		}
	}
	return gomega.And(set...)
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
