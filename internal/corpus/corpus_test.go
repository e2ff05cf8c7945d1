package corpus

import (
	"errors"
	"strings"
	"testing"

	apperrors "github.com/AustinPardosi/IR-System-BE/pkg/errors"
)

const sampleCollection = `.I 1
.T
Information Retrieval Systems
.A
Salton, G.
.W
A survey of automatic indexing
and retrieval techniques.
.B
(Journal of Documentation, 1968)
.I 2
.W
Vector space models for ranking documents.
`

func TestParseDocuments(t *testing.T) {
	docs, err := ParseDocuments(strings.NewReader(sampleCollection))
	if err != nil {
		t.Fatalf("ParseDocuments: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("parsed %d documents, want 2", len(docs))
	}

	d := docs[0]
	if d.ID != "1" {
		t.Errorf("ID = %q, want 1", d.ID)
	}
	if d.Title != "Information Retrieval Systems" {
		t.Errorf("Title = %q", d.Title)
	}
	if d.Author != "Salton, G." {
		t.Errorf("Author = %q", d.Author)
	}
	if want := "A survey of automatic indexing and retrieval techniques."; d.Text != want {
		t.Errorf("Text = %q, want %q", d.Text, want)
	}
	if d.Bibliography != "(Journal of Documentation, 1968)" {
		t.Errorf("Bibliography = %q", d.Bibliography)
	}

	if docs[1].ID != "2" || docs[1].Title != "" {
		t.Errorf("second document = %+v", docs[1])
	}
}

func TestFullTextConcatenatesTitleAndBody(t *testing.T) {
	d := Document{Title: "Indexing", Text: "A survey."}
	if got := d.FullText(); got != "Indexing A survey." {
		t.Errorf("FullText = %q", got)
	}
	untitled := Document{Text: "Body only."}
	if got := untitled.FullText(); got != "Body only." {
		t.Errorf("FullText without title = %q", got)
	}
}

func TestParseDocumentsRejectsNonNumericID(t *testing.T) {
	_, err := ParseDocuments(strings.NewReader(".I abc\n.W\ntext\n"))
	if err == nil {
		t.Fatal("expected error for non-numeric document id")
	}
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestParseDocumentsSkipsUnknownMarkers(t *testing.T) {
	input := ".I 1\n.X\nignored cross reference\n.W\nkept text\n"
	docs, err := ParseDocuments(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseDocuments: %v", err)
	}
	if docs[0].Text != "kept text" {
		t.Errorf("Text = %q, want %q", docs[0].Text, "kept text")
	}
}

func TestParseDocumentsEmptyInput(t *testing.T) {
	docs, err := ParseDocuments(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ParseDocuments: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("parsed %d documents from empty input", len(docs))
	}
}

func TestParseQueries(t *testing.T) {
	input := ".I 1\n.W\nwhat is information retrieval\n.I 2\n.T\nRanking\n.W\nhow are documents ranked\n"
	queries, err := ParseQueries(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseQueries: %v", err)
	}
	if len(queries) != 2 {
		t.Fatalf("parsed %d queries, want 2", len(queries))
	}
	if queries["1"] != "what is information retrieval" {
		t.Errorf("query 1 = %q", queries["1"])
	}
	if queries["2"] != "Ranking how are documents ranked" {
		t.Errorf("query 2 = %q", queries["2"])
	}
}

func TestParseQrels(t *testing.T) {
	input := "1 28 0 0.0\n1 35 0 0.0\n2 28 0 0.0\n\n3 19\n"
	judgments, err := ParseQrels(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseQrels: %v", err)
	}
	if len(judgments) != 3 {
		t.Fatalf("parsed %d queries, want 3", len(judgments))
	}
	if _, ok := judgments["1"]["28"]; !ok {
		t.Error("judgment (1, 28) missing")
	}
	if _, ok := judgments["1"]["35"]; !ok {
		t.Error("judgment (1, 35) missing")
	}
	if len(judgments["2"]) != 1 {
		t.Errorf("query 2 has %d judged documents, want 1", len(judgments["2"]))
	}
}

func TestParseQrelsRejectsShortLines(t *testing.T) {
	_, err := ParseQrels(strings.NewReader("1 28\njustone\n"))
	if err == nil {
		t.Fatal("expected error for malformed qrels line")
	}
	if !errors.Is(err, apperrors.ErrConfiguration) {
		t.Errorf("error = %v, want ErrConfiguration", err)
	}
}
