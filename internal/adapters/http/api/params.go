package api

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/agonhq/agon/internal/domain/filter"
	"github.com/agonhq/agon/internal/domain/paging"
)

// queryParams is the decoded form of the shared list-endpoint query string.
type queryParams struct {
	filter filter.Filter
	page   paging.Request
}

// paramKind selects the coercion applied to a raw query value.
type paramKind int

const (
	kindInt paramKind = iota
	kindInt64
	kindFloat
	kindString
)

func (k paramKind) String() string {
	switch k {
	case kindInt, kindInt64:
		return "an integer"
	case kindFloat:
		return "a number"
	default:
		return "a string"
	}
}

// paramValue holds one coerced value; only the field matching the kind is set.
type paramValue struct {
	i   int
	i64 int64
	f   float64
	s   string
}

// paramSpec is one row of the query schema: the parameter name, the type it
// must coerce to, and the setter that binds it.
type paramSpec struct {
	name string
	kind paramKind
	bind func(*queryParams, paramValue)
}

// querySchema declares every query parameter the list endpoints accept.
// Unknown parameters are ignored; known ones either coerce or fail the
// request, there is no silent fallback to a default.
var querySchema = []paramSpec{
	{"page", kindInt, func(q *queryParams, v paramValue) { q.page.Page = v.i }},
	{"limit", kindInt, func(q *queryParams, v paramValue) { q.page.Limit = v.i }},
	{"studyProgramId", kindInt64, func(q *queryParams, v paramValue) { q.filter.StudyProgramID = &v.i64 }},
	{"entryYear", kindInt, func(q *queryParams, v paramValue) { q.filter.EntryYear = &v.i }},
	{"minMatchScore", kindFloat, func(q *queryParams, v paramValue) { q.filter.MinMatchScore = &v.f }},
	{"keywords", kindString, func(q *queryParams, v paramValue) { q.filter.Keywords = v.s }},
}

// parseQuery decodes and validates the query string in one pass over the
// schema. The page defaults to 1; the limit stays 0 so the service can
// apply its configured default.
func parseQuery(values url.Values) (queryParams, error) {
	out := queryParams{page: paging.Request{Page: 1}}
	for _, spec := range querySchema {
		raw := values.Get(spec.name)
		if strings.TrimSpace(raw) == "" {
			continue
		}
		v, err := coerce(spec.kind, strings.TrimSpace(raw))
		if err != nil {
			return queryParams{}, WrapKind("api.parse_query", ErrBadRequest, err)
		}
		spec.bind(&out, v)
	}
	return out, nil
}

func coerce(kind paramKind, raw string) (paramValue, error) {
	var v paramValue
	switch kind {
	case kindInt:
		i, err := strconv.Atoi(raw)
		if err != nil {
			return v, err
		}
		v.i = i
	case kindInt64:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return v, err
		}
		v.i64 = i
	case kindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return v, err
		}
		v.f = f
	case kindString:
		v.s = raw
	}
	return v, nil
}

// pathID extracts the numeric id from paths shaped like
// /{prefix}/{id}/matches.
func pathID(path, prefix string) (int64, bool) {
	rest := strings.TrimPrefix(path, prefix)
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "matches" {
		return 0, false
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
