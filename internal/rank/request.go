package rank

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Request is the ranking input document.
type Request struct {
	Persona     Persona    `json:"persona"`
	JobToBeDone Job        `json:"job_to_be_done"`
	Documents   []Document `json:"documents"`
}

type Persona struct {
	Role string `json:"role"`
}

type Job struct {
	Task string `json:"task"`
}

// Document names one input PDF relative to the PDF folder.
type Document struct {
	Filename string `json:"filename"`
	Title    string `json:"title,omitempty"`
}

// InputError reports a missing or malformed field of the ranking input.
type InputError struct {
	Field   string
	Message string
	Err     error // underlying cause, if any
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Message)
}

func (e *InputError) Unwrap() error { return e.Err }

// ParseRequest decodes and validates a ranking input.
func ParseRequest(r io.Reader) (*Request, error) {
	var req Request
	dec := json.NewDecoder(r)
	if err := dec.Decode(&req); err != nil {
		return nil, &InputError{Field: "body", Message: err.Error()}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

// Validate checks that the persona, task and every document filename are present.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Persona.Role) == "" {
		return &InputError{Field: "persona.role", Message: "required"}
	}
	if strings.TrimSpace(r.JobToBeDone.Task) == "" {
		return &InputError{Field: "job_to_be_done.task", Message: "required"}
	}
	if len(r.Documents) == 0 {
		return &InputError{Field: "documents", Message: "at least one document is required"}
	}
	for i, d := range r.Documents {
		if strings.TrimSpace(d.Filename) == "" {
			return &InputError{Field: fmt.Sprintf("documents[%d].filename", i), Message: "required"}
		}
		if !filepath.IsLocal(d.Filename) {
			return &InputError{Field: fmt.Sprintf("documents[%d].filename", i), Message: "must be a relative path inside the pdf directory"}
		}
	}
	return nil
}

// Filenames returns the document filenames in input order.
func (r *Request) Filenames() []string {
	out := make([]string, len(r.Documents))
	for i, d := range r.Documents {
		out[i] = d.Filename
	}
	return out
}

// Result is the ranking output document.
type Result struct {
	Metadata           Metadata           `json:"metadata"`
	ExtractedSections  []ExtractedSection `json:"extracted_sections"`
	SubsectionAnalysis []Subsection       `json:"subsection_analysis"`
}

type Metadata struct {
	InputDocuments []string `json:"input_documents"`
	Persona        string   `json:"persona"`
	JobToBeDone    string   `json:"job_to_be_done"`
}

type ExtractedSection struct {
	Document       string `json:"document"`
	SectionTitle   string `json:"section_title"`
	ImportanceRank int    `json:"importance_rank"`
	PageNumber     int    `json:"page_number"`
}

// WriteJSON writes the result indented by two spaces.
func (r *Result) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
