package browser

import (
	"fmt"
	"regexp"
	"strings"
)

// Target identifies one or more elements on the page.
//
// Selector is a CSS selector (playwright pseudo-classes allowed). When Selector is empty the target
// is the innermost element containing Text. Targets are values: every builder returns a copy.
type Target struct {
	Selector string
	// Text keeps only elements whose text contains this substring.
	Text string
	// Pattern keeps only elements whose text matches.
	Pattern *regexp.Regexp
	// Index selects the n-th match when HasIndex is set; -1 selects the last one.
	Index    int
	HasIndex bool
	// Parent scopes the lookup to the first element matching it.
	Parent *Target
}

// CSS targets elements matching a CSS selector.
func CSS(selector string) Target {
	return Target{Selector: selector}
}

// CSSf is CSS with fmt.Sprintf formatting.
func CSSf(format string, args ...any) Target {
	return CSS(fmt.Sprintf(format, args...))
}

// Text targets the innermost element containing text.
func Text(text string) Target {
	return Target{Text: text}
}

// ExactPattern matches text as a whole, ignoring surrounding whitespace.
func ExactPattern(text string) *regexp.Regexp {
	return regexp.MustCompile(`^\s*` + regexp.QuoteMeta(text) + `\s*$`)
}

// WithText narrows t to elements containing text.
func (t Target) WithText(text string) Target {
	t.Text = text
	return t
}

// Matching narrows t to elements whose text matches re.
func (t Target) Matching(re *regexp.Regexp) Target {
	t.Pattern = re
	return t
}

// Nth selects the i-th (zero-based) match.
func (t Target) Nth(i int) Target {
	t.Index = i
	t.HasIndex = true
	return t
}

// Last selects the last match.
func (t Target) Last() Target {
	return t.Nth(-1)
}

// Within scopes t to parent.
func (t Target) Within(parent Target) Target {
	t.Parent = &parent
	return t
}

// String renders the target for logs, errors and fakes. Equal targets render equally.
func (t Target) String() string {
	var parts []string

	if t.Parent != nil {
		parts = append(parts, t.Parent.String(), ">>")
	}
	if t.Selector != "" {
		parts = append(parts, t.Selector)
	}
	if t.Text != "" {
		parts = append(parts, fmt.Sprintf("[text*=%q]", t.Text))
	}
	if t.Pattern != nil {
		parts = append(parts, fmt.Sprintf("[text~=/%s/]", t.Pattern.String()))
	}
	if t.HasIndex {
		if t.Index < 0 {
			parts = append(parts, ":last")
		} else {
			parts = append(parts, fmt.Sprintf(":nth(%d)", t.Index))
		}
	}

	return strings.Join(parts, " ")
}
