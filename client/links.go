package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
)

// linkParseRegex matches a single `<url>; rel="name"` Link header segment.
var linkParseRegex = regexp.MustCompile(`<(.+?)>; rel="(.*)"`)

// LinkSet holds the pagination relations of a Link header.
// An empty field means the relation was absent.
type LinkSet struct {
	First string
	Last  string
	Prev  string
	Next  string
}

// MarshalJSON always emits the four relations, absent ones as null.
func (l LinkSet) MarshalJSON() ([]byte, error) {
	orNull := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}

	return json.Marshal(struct {
		First *string `json:"first"`
		Last  *string `json:"last"`
		Prev  *string `json:"prev"`
		Next  *string `json:"next"`
	}{orNull(l.First), orNull(l.Last), orNull(l.Prev), orNull(l.Next)})
}

// ParseLinks extracts the first, last, prev and next relations from a Link
// header value. Segments are applied in order, so a repeated relation keeps
// its last value, and "previous" is stored as prev. Relations outside those
// four are ignored.
//
// Segments that don't look like `<url>; rel="name"` are skipped; the returned
// error joins a *ParseError for each of them while the LinkSet still carries
// every well-formed relation.
func ParseLinks(header string) (LinkSet, error) {
	var (
		links LinkSet
		errs  []error
	)

	if header == "" {
		return links, nil
	}

	for i, segment := range strings.Split(header, ",") {
		matches := linkParseRegex.FindStringSubmatch(segment)
		if matches == nil {
			errs = append(errs, &ParseError{Index: i, Segment: strings.TrimSpace(segment)})
			continue
		}

		link, rel := matches[1], matches[2]
		switch rel {
		case "first":
			links.First = link
		case "last":
			links.Last = link
		case "prev", "previous":
			links.Prev = link
		case "next":
			links.Next = link
		}
	}

	return links, errors.Join(errs...)
}

// linkHeader joins every Link header value of h into one.
func linkHeader(h http.Header) string {
	return strings.Join(h.Values("Link"), ", ")
}
