package reqlua

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

var (
	lineRe = regexp.MustCompile(`<string>:(\d+)`)
	msgRe  = regexp.MustCompile(`^<[^>]+>:\d+:\s*(.+?)(?:\nstack traceback:|\z)`)
)

// FmtError rewrites a gopher-lua ApiError into something a script author can
// act on: the bare message, the line number and the offending line of code.
// Other errors pass through untouched.
func FmtError(code string, err error) error {
	apiErr, ok := err.(*lua.ApiError)
	if !ok {
		return err
	}
	raw := apiErr.Object.String()

	msg := raw
	if m := msgRe.FindStringSubmatch(raw); len(m) > 1 {
		msg = strings.TrimSpace(m[1])
	} else if i := strings.IndexByte(raw, '\n'); i >= 0 {
		msg = strings.TrimSpace(raw[:i])
	}

	var b strings.Builder
	b.WriteString(msg)
	if m := lineRe.FindStringSubmatch(raw); len(m) > 1 {
		if n, convErr := strconv.Atoi(m[1]); convErr == nil {
			b.WriteString("\nline " + strconv.Itoa(n))
			if loc := lineOfCode(code, n); loc != "" {
				b.WriteString(" -> " + loc)
			}
		}
	}
	return errors.New(b.String())
}

func lineOfCode(code string, n int) string {
	lines := strings.Split(code, "\n")
	if n > 0 && n <= len(lines) {
		return strings.TrimSpace(lines[n-1])
	}
	return ""
}
