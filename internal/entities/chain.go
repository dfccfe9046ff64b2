package entities

import (
	"strconv"
	"strings"
)

// candidate yields an entity id, or "" when it has nothing to offer.
type candidate func() string

// firstOf evaluates candidates in order and returns the first non-empty id.
func firstOf(candidates ...candidate) string {
	for _, c := range candidates {
		if id := c(); id != "" {
			return id
		}
	}
	return ""
}

// explicit offers a configured id as is.
func explicit(id string) candidate {
	return func() string { return id }
}

// expandVars holds the placeholder values substituted into a template.
type expandVars struct {
	prefix string
	n      int
	span   string
}

func (v expandVars) apply(tpl string) string {
	n := ""
	if v.n > 0 {
		n = strconv.Itoa(v.n)
	}
	return strings.NewReplacer("{prefix}", v.prefix, "{n}", n, "{range}", v.span).Replace(tpl)
}

// pattern offers a user supplied pattern. It applies even without a prefix.
func pattern(tpl string, vars expandVars) candidate {
	return func() string {
		if tpl == "" {
			return ""
		}
		return vars.apply(tpl)
	}
}

// template offers a preset template. Preset templates need a prefix.
func template(tpl string, ok bool, vars expandVars) candidate {
	return func() string {
		if !ok || tpl == "" || vars.prefix == "" {
			return ""
		}
		return vars.apply(tpl)
	}
}
