package outline

import (
	"testing"

	"github.com/dgallion1/docsift/internal/pdftext"
)

func block(text string, size float64, bold bool, page int, y0 float64) Block {
	return Block{
		Text:     text,
		FontSize: size,
		Bold:     bold,
		Page:     page,
		BBox:     pdftext.BBox{X0: 72, Y0: y0, X1: 400, Y1: y0 + size},
	}
}

func TestSelectTitle_KeywordTier(t *testing.T) {
	blocks := []Block{
		block("of LTC advance", 12, false, 1, 130),
		block("Application form for grant", 14, false, 1, 100),
		block("Signature of the applicant", 10, false, 1, 700),
		block("Grant conditions apply", 10, false, 2, 100),
		block("Late request", 10, false, 1, 400),
	}
	got := SelectTitle(blocks, 14, DefaultOptions())
	if got != "Application form for grant of LTC advance" {
		t.Errorf("unexpected title %q", got)
	}
}

func TestSelectTitle_KeywordTierStopsAtGap(t *testing.T) {
	blocks := []Block{
		block("Quarterly report 2024", 18, true, 1, 80),
		block("Summary of findings", 12, false, 1, 200),
	}
	got := SelectTitle(blocks, 18, DefaultOptions())
	if got != "Quarterly report 2024" {
		t.Errorf("unexpected title %q", got)
	}
}

func TestSelectTitle_ShortKeywordIgnored(t *testing.T) {
	blocks := []Block{
		block("Form", 10, false, 1, 40),
		block("Overview of Foundation Level", 24, true, 1, 80),
		block("Extensions", 23.5, true, 1, 110),
		block("Version 2014", 12, false, 1, 160),
	}
	got := SelectTitle(blocks, 24, DefaultOptions())
	if got != "Overview of Foundation Level Extensions" {
		t.Errorf("unexpected title %q", got)
	}
}

func TestSelectTitle_TypographyFilters(t *testing.T) {
	tests := []struct {
		name   string
		blocks []Block
		want   string
	}{
		{
			name: "not bold",
			blocks: []Block{
				block("Large plain heading", 24, false, 1, 80),
			},
			want: "Large plain heading",
		},
		{
			name: "too low on the page",
			blocks: []Block{
				block("x", 10, false, 1, 20),
				block("Bottom banner text", 24, true, 1, 500),
			},
			want: "Bottom banner text",
		},
		{
			name: "excluded words",
			blocks: []Block{
				block("RSVP by Friday", 24, true, 1, 50),
				block("Party Time", 24, true, 1, 80),
				block("Before Lunch", 24, true, 1, 110),
				block("Welcome aboard", 10, false, 1, 200),
			},
			want: "Welcome aboard",
		},
		{
			name: "trailing colon",
			blocks: []Block{
				block("Contact us:", 24, true, 1, 50),
			},
			want: "",
		},
		{
			name: "page two only",
			blocks: []Block{
				block("ab", 12, false, 1, 50),
				block("Pathways to health", 12, false, 2, 50),
			},
			want: "Pathways to health",
		},
		{
			name:   "nothing usable",
			blocks: []Block{block("--", 24, true, 1, 50), block("a b", 12, false, 1, 80)},
			want:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectTitle(tt.blocks, MaxFontSize(sizesOf(tt.blocks)), DefaultOptions()); got != tt.want {
				t.Errorf("SelectTitle = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSelectTitle_TypographyGap(t *testing.T) {
	blocks := []Block{
		block("Main Heading", 20, true, 1, 60),
		block("Far Away Line", 20, true, 1, 200),
	}
	if got := SelectTitle(blocks, 20, DefaultOptions()); got != "Main Heading" {
		t.Errorf("unexpected title %q", got)
	}
}

func sizesOf(blocks []Block) []float64 {
	out := make([]float64, len(blocks))
	for i, b := range blocks {
		out[i] = b.FontSize
	}
	return out
}
