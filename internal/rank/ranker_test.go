package rank

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/docsift/internal/pdftext"
)

func pageOf(number int, blocks ...[]string) pdftext.Page {
	p := pdftext.Page{Number: number, Width: 612, Height: 792}
	for _, lines := range blocks {
		var b pdftext.Block
		for _, l := range lines {
			b.Lines = append(b.Lines, pdftext.Line{Spans: []pdftext.Span{{Text: l, FontSize: 11}}})
		}
		p.Blocks = append(p.Blocks, b)
	}
	return p
}

// fixtureDir writes stub files for each name and returns an OpenFunc serving docs by basename.
func fixtureDir(t *testing.T, docs map[string]*pdftext.Document) (string, pdftext.OpenFunc) {
	t.Helper()
	dir := t.TempDir()
	for name := range docs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("%PDF-stub"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir, func(path string) (*pdftext.Document, error) {
		return docs[filepath.Base(path)], nil
	}
}

func travelRequest(files ...string) *Request {
	req := &Request{
		Persona:     Persona{Role: "Beach lover"},
		JobToBeDone: Job{Task: "Find the best beach days"},
	}
	for _, f := range files {
		req.Documents = append(req.Documents, Document{Filename: f})
	}
	return req
}

func TestRanker_Run(t *testing.T) {
	dir, open := fixtureDir(t, map[string]*pdftext.Document{
		"coast.pdf": {Pages: []pdftext.Page{
			pageOf(1,
				[]string{"Beaches of the Coast", "The long beach at the bay is ideal for a beach day.", "Parking fills up by ten."},
				[]string{"Museums nearby", "The museum of modern art is downtown."},
			),
			pageOf(2,
				[]string{"Hidden coves", "A short beach walk leads to a quiet cove with clear water."},
			),
		}},
		"city.pdf": {Pages: []pdftext.Page{
			pageOf(1, []string{"City museum guide", "Every museum in the city offers free entry on Sundays."}),
		}},
	})
	ce := &scriptedCrossEncoder{scores: map[string]float64{}}
	opts := Options{TopK: 10, MaxRerank: 3, MaxSubsections: 2}
	r := NewRanker(&keywordEmbedder{}, ce, open, opts, testLogger())

	res, err := r.Run(context.Background(), travelRequest("coast.pdf", "missing.pdf", "city.pdf"), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := res.Metadata.InputDocuments; len(got) != 3 || got[1] != "missing.pdf" {
		t.Errorf("metadata must list every requested document, got %v", got)
	}
	if len(res.ExtractedSections) != 3 {
		t.Fatalf("expected 3 sections after re-rank, got %+v", res.ExtractedSections)
	}
	first := res.ExtractedSections[0]
	if first.Document != "coast.pdf" || first.SectionTitle != "Beaches of the Coast" || first.PageNumber != 1 || first.ImportanceRank != 1 {
		t.Errorf("unexpected top section %+v", first)
	}
	for i, s := range res.ExtractedSections {
		if s.ImportanceRank != i+1 {
			t.Errorf("section %d has rank %d", i, s.ImportanceRank)
		}
	}
	if len(ce.pairs) != 4 || !strings.HasPrefix(ce.pairs[0].Query, "Persona: Beach lover. Job: ") {
		t.Errorf("expected the cross-encoder to see all 4 candidates with the query text, got %+v", ce.pairs)
	}

	sub := res.SubsectionAnalysis[0]
	if sub.Document != "coast.pdf" || sub.RefinedText != "The long beach at the bay is ideal for a beach day." {
		t.Errorf("unexpected top subsection %+v", sub)
	}
}

func TestRanker_NoSectionsGivesEmptyArrays(t *testing.T) {
	dir, open := fixtureDir(t, map[string]*pdftext.Document{"blank.pdf": {}})
	emb := &keywordEmbedder{}
	res, err := NewRanker(emb, &scriptedCrossEncoder{}, open, DefaultOptions(), testLogger()).
		Run(context.Background(), travelRequest("blank.pdf"), dir)
	if err != nil {
		t.Fatal(err)
	}
	if emb.textCalls != 0 {
		t.Error("model must not be called without sections")
	}

	var buf bytes.Buffer
	if err := res.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if string(decoded["extracted_sections"]) != "[]" || string(decoded["subsection_analysis"]) != "[]" {
		t.Errorf("expected empty arrays, got %s", buf.String())
	}
}

func TestRanker_ModelErrorIsFatal(t *testing.T) {
	dir, open := fixtureDir(t, map[string]*pdftext.Document{
		"coast.pdf": {Pages: []pdftext.Page{pageOf(1, []string{"Beach notes", "Enough text here to become a section."})}},
	})
	boom := errors.New("embedding server down")
	_, err := NewRanker(&keywordEmbedder{err: boom}, &scriptedCrossEncoder{}, open, DefaultOptions(), testLogger()).
		Run(context.Background(), travelRequest("coast.pdf"), dir)
	if !errors.Is(err, boom) {
		t.Errorf("expected model error, got %v", err)
	}
	var inErr *InputError
	if errors.As(err, &inErr) {
		t.Errorf("model failure must not be reported as input error: %v", err)
	}
}

func TestRanker_UnreadableDocumentIsInputError(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.pdf"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	parseErr := errors.New("not a PDF file")
	open := func(string) (*pdftext.Document, error) { return nil, parseErr }
	emb := &keywordEmbedder{}

	_, err := NewRanker(emb, &scriptedCrossEncoder{}, open, DefaultOptions(), testLogger()).
		Run(context.Background(), travelRequest("broken.pdf"), dir)
	var inErr *InputError
	if !errors.As(err, &inErr) || inErr.Field != "documents" {
		t.Fatalf("expected InputError on documents, got %v", err)
	}
	if !errors.Is(err, parseErr) {
		t.Errorf("expected the parse error to be kept as cause, got %v", err)
	}
	if emb.textCalls != 0 {
		t.Error("model must not be called for unusable documents")
	}
}
