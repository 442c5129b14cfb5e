package outline

import (
	"bytes"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/dgallion1/docsift/internal/pdftext"
	"github.com/jung-kurt/gofpdf"
)

func TestBuild_EmptyDocument(t *testing.T) {
	for name, doc := range map[string]*pdftext.Document{
		"nil":        nil,
		"no pages":   {Name: "empty.pdf"},
		"blank page": {Pages: []pdftext.Page{{Number: 1, Width: 612, Height: 792}}},
	} {
		t.Run(name, func(t *testing.T) {
			got, err := json.Marshal(Build(doc, DefaultOptions()))
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != `{"title":"","outline":[]}` {
				t.Errorf("unexpected output %s", got)
			}
		})
	}
}

func TestBuild_Invariants(t *testing.T) {
	doc := docOf(
		[][]pdftext.Span{
			{span("Project Overview", 20, true, 72, 60)},
			{span("1 Introduction", 14, true, 72, 120)},
			{span("This paragraph is ordinary body text.", 11, false, 72, 150)},
			{span("More ordinary body text follows here.", 11, false, 72, 170)},
			{span("1 Introduction", 14, true, 72, 400)},
		},
		[][]pdftext.Span{
			{span("1.1 Scope", 11, false, 72, 60)},
			{span("Body copy on the second page.", 11, false, 72, 90)},
			{span("--", 30, true, 72, 300)},
		},
	)
	out := Build(doc, DefaultOptions())

	if out.Title != "Project Overview" {
		t.Errorf("unexpected title %q", out.Title)
	}
	seen := map[Entry]bool{}
	for _, e := range out.Outline {
		if e.Level != H1 && e.Level != H2 && e.Level != H3 {
			t.Errorf("invalid level %q", e.Level)
		}
		if e.Page < 1 {
			t.Errorf("invalid page %d", e.Page)
		}
		if seen[e] {
			t.Errorf("duplicate entry %+v", e)
		}
		seen[e] = true
	}

	want := []Entry{
		{Level: H1, Text: "Project Overview", Page: 1},
		{Level: H1, Text: "1 Introduction", Page: 1},
		{Level: H3, Text: "1.1 Scope", Page: 2},
	}
	if !reflect.DeepEqual(out.Outline, want) {
		t.Errorf("outline = %+v, want %+v", out.Outline, want)
	}
}

func TestBuild_ExcludeTitleHeading(t *testing.T) {
	doc := docOf([][]pdftext.Span{
		{span("Field Guide", 24, true, 72, 60)},
		{span("Getting Started", 16, true, 72, 120)},
		{span("Plain body text for the guide.", 12, false, 72, 160)},
		{span("Plain body text continues on.", 12, false, 72, 180)},
	})
	opts := DefaultOptions()
	opts.ExcludeTitleHeading = true
	out := Build(doc, opts)

	if out.Title != "Field Guide" {
		t.Fatalf("unexpected title %q", out.Title)
	}
	if len(out.Outline) != 1 || out.Outline[0].Text != "Getting Started" {
		t.Errorf("expected only the non-title heading, got %+v", out.Outline)
	}
}

func TestOutline_JSONRoundTrip(t *testing.T) {
	in := Outline{
		Title: "Annual Report",
		Outline: []Entry{
			{Level: H1, Text: "Overview", Page: 1},
			{Level: H2, Text: "Revenue & Costs", Page: 2},
			{Level: H3, Text: "Détails régionaux", Page: 3},
		},
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var out Outline
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch: %+v vs %+v", in, out)
	}
}

func TestBuild_GeneratedPDF(t *testing.T) {
	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 24)
	pdf.Text(72, 72, "ANNUAL REPORT")
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(72, 140, "Revenue grew steadily across all regions this year.")
	pdf.Text(72, 156, "Costs were kept under control.")
	pdf.Text(72, 172, "Staffing levels held flat through the period.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("generate pdf: %v", err)
	}
	doc, err := pdftext.Parse(buf.Bytes(), "annual.pdf")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	out := Build(doc, DefaultOptions())
	if out.Title != "ANNUAL REPORT" {
		t.Errorf("expected title ANNUAL REPORT, got %q", out.Title)
	}
	want := []Entry{{Level: H1, Text: "ANNUAL REPORT", Page: 1}}
	if !reflect.DeepEqual(out.Outline, want) {
		t.Errorf("outline = %+v, want %+v", out.Outline, want)
	}
}

func TestBuild_FractionalBodySize(t *testing.T) {
	const body = 9.9626
	d := docOf([][]pdftext.Span{
		{span("Introduction to things", 14, true, 72, 72)},
		{span("the quick brown fox jumps over", body, false, 72, 100)},
		{span("the lazy dog sleeping in the sun", body, false, 72, 115)},
		{span("and some more ordinary body text", body, false, 72, 130)},
	})

	out := Build(d, DefaultOptions())
	want := []Entry{{Level: H1, Text: "Introduction to things", Page: 1}}
	if !reflect.DeepEqual(out.Outline, want) {
		t.Errorf("outline = %+v, want %+v", out.Outline, want)
	}
}
