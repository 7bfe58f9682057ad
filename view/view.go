// Copyright 2025 The GeoForm Authors
// SPDX-License-Identifier: Apache-2.0

// Package view turns a form state into display rows and renders them.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"slices"
	"strconv"
	"strings"
	ttemplate "text/template"

	"github.com/jcodagnone/geoform/form"
	"github.com/jcodagnone/geoform/geocode"
	"github.com/jcodagnone/geoform/reference"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// NotAvailable is shown for a result without a state.
const NotAvailable = "N/A"

//go:embed templates/*.html templates/*.txt
var templatesFS embed.FS

var (
	htmlTemplates = template.Must(template.New("").Funcs(template.FuncMap{
		"toggleIcon": toggleIcon,
	}).ParseFS(templatesFS, "templates/*.html"))
	textTemplates = ttemplate.Must(ttemplate.New("").ParseFS(templatesFS, "templates/*.txt"))

	languageNamer = display.English.Tags()
)

// Option is one entry of a selection control.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// FormView is the input half of the page.
type FormView struct {
	City            string
	Country         string
	State           string
	StateSelectable bool
	Pending         bool
	Countries       []Option
	States          []Option
}

// LocalName is one (language-code, name) pair of a result.
type LocalName struct {
	Code string
	Name string
	// Language is the English name of Code, empty when unknown.
	Language string
}

// Row is one displayed result.
type Row struct {
	Index         int
	Country       string
	Name          string
	State         string
	Lat           string
	Lon           string
	HasLocalNames bool
	Expanded      bool
	LocalNames    []LocalName
}

// Page is everything needed to draw the form and its results.
type Page struct {
	Form        FormView
	Message     string
	ShowResults bool
	Rows        []Row
}

// Render builds the page for s. It has no side effects.
func Render(s form.State) Page {
	p := Page{
		Form: renderForm(s),
	}

	switch s.Outcome.Kind {
	case geocode.OutcomeNone:
	case geocode.OutcomeSuccess:
		p.Rows = Rows(s.Outcome.Results, s.IsExpanded)
		p.ShowResults = len(p.Rows) > 0
	case geocode.OutcomeEmpty, geocode.OutcomeFailure:
		p.Message = s.Outcome.Message
	}

	return p
}

// Rows converts results into display rows, in service order. expanded
// reports whether the local names of row i are shown.
func Rows(results []geocode.Result, expanded func(i int) bool) []Row {
	rows := make([]Row, 0, len(results))

	for i, r := range results {
		row := Row{
			Index:         i,
			Country:       r.Country,
			Name:          r.Name,
			State:         r.State,
			Lat:           strconv.FormatFloat(r.Lat, 'f', -1, 64),
			Lon:           strconv.FormatFloat(r.Lon, 'f', -1, 64),
			HasLocalNames: r.LocalNames != nil,
		}

		if strings.TrimSpace(row.State) == "" {
			row.State = NotAvailable
		}

		if row.HasLocalNames && expanded != nil && expanded(i) {
			row.Expanded = true
			row.LocalNames = LocalNames(r.LocalNames)
		}

		rows = append(rows, row)
	}

	return rows
}

// LocalNames lists names sorted by language code.
func LocalNames(names map[string]string) []LocalName {
	out := make([]LocalName, 0, len(names))
	for code, name := range names {
		out = append(out, LocalName{Code: code, Name: name, Language: languageName(code)})
	}

	slices.SortFunc(out, func(a, b LocalName) int {
		return strings.Compare(a.Code, b.Code)
	})

	return out
}

func languageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return ""
	}

	return languageNamer.Name(tag)
}

func renderForm(s form.State) FormView {
	fv := FormView{
		City:            s.City,
		Country:         s.Country,
		State:           s.USState,
		StateSelectable: s.StateSelectable,
		Pending:         s.Pending,
	}

	countries := reference.Countries()
	fv.Countries = make([]Option, 0, len(countries))

	for _, c := range countries {
		fv.Countries = append(fv.Countries, Option{Value: c.Code, Label: c.Name, Selected: c.Code == s.Country})
	}

	states := reference.USStates()
	fv.States = make([]Option, 0, len(states))

	for _, st := range states {
		fv.States = append(fv.States, Option{Value: st.Code, Label: st.Name, Selected: st.Code == s.USState})
	}

	return fv
}

func toggleIcon(expanded bool) string {
	if expanded {
		return "▲"
	}

	return "▼"
}

// WriteHTML renders p as the full HTML page.
func WriteHTML(w io.Writer, p Page) error {
	if err := htmlTemplates.ExecuteTemplate(w, "index.html", p); err != nil {
		return fmt.Errorf("rendering page: %w", err)
	}

	return nil
}

// WriteText renders the message or the result rows as plain text.
func WriteText(w io.Writer, p Page) error {
	if err := textTemplates.ExecuteTemplate(w, "results.txt", p); err != nil {
		return fmt.Errorf("rendering text: %w", err)
	}

	return nil
}
