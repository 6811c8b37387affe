package core

import (
	"net/url"
	"strings"
)

// VetURL inspects a project or repository URL for shapes that do not belong
// in a published notice document. It returns a comma-separated description of
// the problems found, or "" when the URL is clean.
func VetURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "URL does not parse"
	}

	var problems []string
	if u.Scheme != "https" {
		problems = append(problems, "Scheme is not https://")
	}
	if u.RawQuery != "" || strings.Contains(u.Path, ";") {
		problems = append(problems, "URL includes parameters or a query string")
	}
	if u.Fragment != "" {
		problems = append(problems, "URL includes a #fragment")
	}
	return strings.Join(problems, ", ")
}
