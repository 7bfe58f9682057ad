// Copyright 2025 The GeoForm Authors
// SPDX-License-Identifier: Apache-2.0

package view

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jcodagnone/geoform/form"
	"github.com/jcodagnone/geoform/geocode"
	"github.com/jcodagnone/geoform/utils/htmlutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

var paris = []geocode.Result{
	{
		Name:       "Paris",
		Country:    "FR",
		State:      "Ile-de-France",
		Lat:        48.8588897,
		Lon:        2.3200410217200766,
		LocalNames: map[string]string{"ja": "パリ", "fr": "Paris", "en": "Paris", "ru": "Париж"},
	},
	{Name: "Paris", Country: "US", Lat: 33.6617962, Lon: -95.555513},
}

func resolve(s form.State, outcome geocode.Outcome) form.State {
	s = form.Update(s, form.SearchIssued{})

	return form.Update(s, form.SearchResolved{Seq: s.Seq, Outcome: outcome})
}

func renderHTML(t *testing.T, p Page) *html.Node {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, p))

	n, err := htmlutils.AsNode(&buf)
	require.NoError(t, err)

	return n
}

func TestRenderInitial(t *testing.T) {
	p := Render(form.State{})

	assert.False(t, p.ShowResults)
	assert.Empty(t, p.Message)
	assert.Empty(t, p.Rows)
	assert.NotEmpty(t, p.Form.Countries)
	assert.Len(t, p.Form.States, 51)
	assert.False(t, p.Form.StateSelectable)
}

func TestRenderParis(t *testing.T) {
	s := form.Update(form.State{}, form.CityChanged{City: "Paris"})
	s = resolve(s, geocode.Success(paris))

	p := Render(s)
	require.True(t, p.ShowResults)
	require.Len(t, p.Rows, 2)

	want := []Row{
		{Index: 0, Country: "FR", Name: "Paris", State: "Ile-de-France", Lat: "48.8588897", Lon: "2.3200410217200766", HasLocalNames: true},
		{Index: 1, Country: "US", Name: "Paris", State: NotAvailable, Lat: "33.6617962", Lon: "-95.555513"},
	}
	if diff := cmp.Diff(want, p.Rows); diff != "" {
		t.Errorf("unexpected rows (-want +got):\n%s", diff)
	}

	doc := renderHTML(t, p)

	results := htmlutils.ByClass(doc, "result")
	require.Len(t, results, 2)
	assert.Contains(t, htmlutils.Text(results[0]), "Country: FR")
	assert.Contains(t, htmlutils.Text(results[1]), "State: N/A")
	assert.Empty(t, htmlutils.ByTag(doc, "li"), "both rows start collapsed")
	assert.Contains(t, htmlutils.Text(results[0]), "Local Names ▼")
	assert.Empty(t, htmlutils.ByClass(results[1], "local-names"))
}

func TestRenderExpandedRow(t *testing.T) {
	s := resolve(form.State{}, geocode.Success(paris))
	s = form.Update(s, form.ExpansionToggled{Row: 0})

	p := Render(s)
	require.True(t, p.Rows[0].Expanded)
	assert.False(t, p.Rows[1].Expanded)

	want := []LocalName{
		{Code: "en", Name: "Paris", Language: "English"},
		{Code: "fr", Name: "Paris", Language: "French"},
		{Code: "ja", Name: "パリ", Language: "Japanese"},
		{Code: "ru", Name: "Париж", Language: "Russian"},
	}
	if diff := cmp.Diff(want, p.Rows[0].LocalNames); diff != "" {
		t.Errorf("unexpected local names (-want +got):\n%s", diff)
	}

	doc := renderHTML(t, p)
	items := htmlutils.ByTag(doc, "li")
	require.Len(t, items, 4)
	assert.Equal(t, "en: Paris", htmlutils.Text(items[0]))
	assert.Contains(t, htmlutils.Text(doc), "Local Names ▲")

	forms := htmlutils.ByTag(htmlutils.ByClass(doc, "local-names")[0], "form")
	require.Len(t, forms, 1)

	action, _ := htmlutils.Attr(forms[0], "action")
	assert.Equal(t, "/results/0/toggle", action)

	// toggling again collapses it
	s = form.Update(s, form.ExpansionToggled{Row: 0})
	assert.Empty(t, htmlutils.ByTag(renderHTML(t, Render(s)), "li"))
}

func TestRenderMessages(t *testing.T) {
	tests := []struct {
		name    string
		outcome geocode.Outcome
		want    string
	}{
		{"empty", geocode.Empty(), "No results found."},
		{"failure", geocode.Failure(errors.New("dial tcp: connection refused")), "Error fetching data"},
		{"validation", geocode.Failure(geocode.Query{}.Validate()), "City is required."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := resolve(form.State{}, geocode.Success(paris))
			s = resolve(s, tc.outcome)

			p := Render(s)
			assert.Equal(t, tc.want, p.Message)
			assert.False(t, p.ShowResults)
			assert.Empty(t, p.Rows)

			doc := renderHTML(t, p)
			assert.Empty(t, htmlutils.ByClass(doc, "results"))

			msg := htmlutils.ByClass(doc, "message")
			require.Len(t, msg, 1)
			assert.Equal(t, tc.want, htmlutils.Text(msg[0]))
		})
	}
}

func TestRenderEmptyLocalNames(t *testing.T) {
	rows := Rows([]geocode.Result{{Name: "X", LocalNames: map[string]string{}}}, func(int) bool { return true })

	require.Len(t, rows, 1)
	assert.True(t, rows[0].HasLocalNames)
	assert.True(t, rows[0].Expanded)
	assert.Empty(t, rows[0].LocalNames)
}

func TestLocalNamesUnknownLanguage(t *testing.T) {
	got := LocalNames(map[string]string{"feature_name": "Paris", "ascii": "Paris"})

	require.Len(t, got, 2)
	assert.Equal(t, "ascii", got[0].Code)
	assert.Equal(t, "feature_name", got[1].Code)
	assert.Empty(t, got[1].Language)
}

func TestRenderFormSelections(t *testing.T) {
	s := form.Update(form.State{}, form.CityChanged{City: `Saint "Paul"`})
	s = form.Update(s, form.CountryChanged{Code: "US"})
	s = form.Update(s, form.StateChanged{Code: "MN"})

	doc := renderHTML(t, Render(s))

	selected := htmlutils.FindAll(doc, func(n *html.Node) bool {
		_, ok := htmlutils.Attr(n, "selected")
		return ok
	})
	require.Len(t, selected, 2)

	v0, _ := htmlutils.Attr(selected[0], "value")
	v1, _ := htmlutils.Attr(selected[1], "value")
	assert.Equal(t, "MN", v0)
	assert.Equal(t, "US", v1)

	inputs := htmlutils.ByTag(doc, "input")
	require.Len(t, inputs, 1)

	city, _ := htmlutils.Attr(inputs[0], "value")
	assert.Equal(t, `Saint "Paul"`, city)

	for _, sel := range htmlutils.ByTag(doc, "select") {
		_, disabled := htmlutils.Attr(sel, "disabled")
		assert.False(t, disabled)
	}

	s = form.Update(s, form.CountryChanged{Code: "CA"})
	doc = renderHTML(t, Render(s))

	stateSelect := htmlutils.ByTag(doc, "select")[0]
	_, disabled := htmlutils.Attr(stateSelect, "disabled")
	assert.True(t, disabled)
}

func TestWriteText(t *testing.T) {
	s := resolve(form.State{}, geocode.Success(paris))
	s = form.Update(s, form.ExpansionToggled{Row: 0})

	var buf strings.Builder
	require.NoError(t, WriteText(&buf, Render(s)))

	want := "[0] Paris, Ile-de-France, FR (48.8588897, 2.3200410217200766)\n" +
		"      en: Paris (English)\n" +
		"      fr: Paris (French)\n" +
		"      ja: パリ (Japanese)\n" +
		"      ru: Париж (Russian)\n" +
		"[1] Paris, N/A, US (33.6617962, -95.555513)\n"
	assert.Equal(t, want, buf.String())

	buf.Reset()
	require.NoError(t, WriteText(&buf, Render(resolve(form.State{}, geocode.Empty()))))
	assert.Equal(t, "No results found.\n", buf.String())
}
