package api

import (
	"fmt"
	"regexp"
	"strings"
)

// compiledPattern is derived once at registration time. Literal
// segments are regex-escaped, :name segments capture any run of
// non-slash characters, and the match is anchored at both ends, so
// trailing slashes are significant and never normalized.
type compiledPattern struct {
	raw    string
	regex  *regexp.Regexp
	params []string
}

func compilePattern(pattern string) (*compiledPattern, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("pattern %q must start with /", pattern)
	}

	var expr strings.Builder
	var params []string
	expr.WriteString("^")
	for i, segment := range strings.Split(pattern, "/") {
		if i > 0 {
			expr.WriteString("/")
		}
		if name, ok := strings.CutPrefix(segment, ":"); ok {
			if name == "" {
				return nil, fmt.Errorf("pattern %q has an unnamed parameter", pattern)
			}
			params = append(params, name)
			expr.WriteString("([^/]+)")
			continue
		}
		expr.WriteString(regexp.QuoteMeta(segment))
	}
	expr.WriteString("$")

	regex, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	return &compiledPattern{raw: pattern, regex: regex, params: params}, nil
}

// match returns the named captures when path matches.
func (p *compiledPattern) match(path string) (map[string]string, bool) {
	groups := p.regex.FindStringSubmatch(path)
	if groups == nil {
		return nil, false
	}
	params := make(map[string]string, len(p.params))
	for i, name := range p.params {
		params[name] = groups[i+1]
	}
	return params, true
}
