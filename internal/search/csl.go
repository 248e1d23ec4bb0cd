// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"io"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/repostats/pkg/types"
)

// CSLItem is a bibliographic entry in CSL (Citation Style Language) form,
// consumable by Pandoc and reference managers.
type CSLItem struct {
	ID       string    `yaml:"id"`
	Type     string    `yaml:"type"`
	Title    string    `yaml:"title"`
	Author   []CSLName `yaml:"author,omitempty"`
	Abstract string    `yaml:"abstract,omitempty"`
	Issued   *CSLDate  `yaml:"issued,omitempty"`
	DOI      string    `yaml:"DOI,omitempty"`
	ISSN     string    `yaml:"ISSN,omitempty"`
}

// CSLName is a person's name in CSL form.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate is a date in CSL form using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// FormatCSL writes the documents as a CSL-YAML list to w.
func FormatCSL(out Output, w io.Writer) error {
	items := make([]CSLItem, len(out.Documents))
	for i, d := range out.Documents {
		items[i] = toCSLItem(d)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

func toCSLItem(d types.Document) CSLItem {
	id, _ := d.ID()
	item := CSLItem{
		ID:       id,
		Type:     "article-journal",
		Title:    first(d, TitleFields),
		Abstract: d.String("abstract"),
		ISSN:     d.String("issn"),
	}
	if d.String("type") == "thesis" {
		item.Type = "thesis"
	}

	for _, n := range AuthorFields {
		if authors := d.Strings(n); len(authors) > 0 {
			for _, a := range authors {
				item.Author = append(item.Author, parseAuthorName(a))
			}
			break
		}
	}

	if parts := dateParts(first(d, DateFields)); parts != nil {
		item.Issued = &CSLDate{DateParts: [][]int{parts}}
	}

	switch {
	case d.String("doi") != "":
		item.DOI = d.String("doi")
	case strings.HasPrefix(id, "10."):
		item.DOI = id
	}
	return item
}

// dateParts reads the leading YYYY, YYYY-MM or YYYY-MM-DD of s.
func dateParts(s string) []int {
	if len(s) > 10 {
		s = s[:10]
	}
	var parts []int
	for _, p := range strings.Split(s, "-") {
		n, err := strconv.Atoi(p)
		if err != nil {
			break
		}
		parts = append(parts, n)
	}
	if len(parts) == 0 || parts[0] < 1000 {
		return nil
	}
	return parts
}

// parseAuthorName splits a name into CSL parts. "Family, Given" is split on
// the comma, as ORA records names; otherwise the last token is the family
// name. Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	if family, given, ok := strings.Cut(name, ","); ok {
		return CSLName{Family: strings.TrimSpace(family), Given: strings.TrimSpace(given)}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{Given: name[:idx], Family: name[idx+1:]}
}
