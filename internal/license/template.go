package license

import (
	"regexp"
	"strconv"
	"strings"
)

// SPDX templates mark substitutable fields with <<var;...>> markup and
// skippable regions with <<beginOptional>>...<<endOptional>>.
var (
	copyrightVar = "<<var;name=copyright;original= <year> <owner>;match=.+>>"
	genericVar   = regexp.MustCompile(`<<var;name=.+?;original=(.+?);match=.+?>>`)
	optionalVar  = regexp.MustCompile(`(?s)<<beginOptional.*?<<endOptional>>`)
)

// Render returns the full license text for id with owner and year filled in.
// Compound identifiers produce one body per license token, joined by their
// connectives spelled out.
func (s *Store) Render(id, owner string, year int) (string, error) {
	if !IsCompound(id) {
		return s.renderOne(id, owner, year)
	}

	var b strings.Builder
	for _, tok := range strings.Fields(strings.Trim(id, "()")) {
		switch tok {
		case "AND":
			b.WriteString("\n\nAND the following license:\n\n")
		case "OR":
			b.WriteString("\n\nOR the following license:\n\n")
		default:
			body, err := s.renderOne(tok, owner, year)
			if err != nil {
				return "", err
			}
			b.WriteString(body)
		}
	}
	return b.String(), nil
}

// renderOne substitutes the placeholder spellings that appear across the
// template corpus. The named copyright var goes first so the generic var
// rule cannot eat it, and optional regions are dropped after substitution.
func (s *Store) renderOne(id, owner string, year int) (string, error) {
	tpl, err := s.Template(id)
	if err != nil {
		return "", err
	}

	y := strconv.Itoa(year)
	out := tpl
	out = strings.ReplaceAll(out, copyrightVar, y+" "+owner)
	out = strings.ReplaceAll(out, "[yyyy]", y)
	out = strings.ReplaceAll(out, "<year>", y)
	out = strings.ReplaceAll(out, "<dates>", y)
	out = strings.ReplaceAll(out, "<owner>", owner)
	out = strings.ReplaceAll(out, "[name of copyright owner]", owner)
	out = strings.ReplaceAll(out, "<copyright holders>", owner)
	out = strings.ReplaceAll(out, "<Copyright Holder> (<URL|email>)", owner)
	out = genericVar.ReplaceAllString(out, "$1")
	out = optionalVar.ReplaceAllString(out, "")

	if i := strings.Index(out, "<<"); i >= 0 {
		end := i + 40
		if end > len(out) {
			end = len(out)
		}
		return "", &IncompleteTemplateError{ID: id, Leftover: out[i:end]}
	}
	return out, nil
}
