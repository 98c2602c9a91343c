package browser

import "strings"

// benignPageErrors are raised by the dashboard during redirects and do not break anything.
var benignPageErrors = []string{
	"navigation guard",
	"on cross-origin object",
	"Navigation cancelled",
}

// IsBenignPageError reports whether an uncaught page error can be ignored.
func IsBenignPageError(err error) bool {
	if err == nil {
		return true
	}
	msg := err.Error()
	for _, s := range benignPageErrors {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
