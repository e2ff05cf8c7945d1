// Package corpus parses the CISI-style collection files the system was
// built around: document and query files with .I/.T/.A/.W/.B field markers,
// and whitespace-separated relevance judgment (qrels) files.
package corpus

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/AustinPardosi/IR-System-BE/internal/engine/eval"
	apperrors "github.com/AustinPardosi/IR-System-BE/pkg/errors"
)

// Document is one record of a CISI-format collection file.
type Document struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	Text         string `json:"text"`
	Bibliography string `json:"bibliography"`
}

// FullText returns the indexable content: title and body concatenated.
func (d Document) FullText() string {
	if d.Title == "" {
		return d.Text
	}
	return d.Title + " " + d.Text
}

// ParseDocuments reads a CISI document file. Records start at ".I <id>";
// ".T", ".A", ".W", and ".B" switch the target field for subsequent lines.
func ParseDocuments(r io.Reader) ([]Document, error) {
	var docs []Document
	var current *Document
	field := ""

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, ".I "):
			if current != nil {
				docs = append(docs, *current)
			}
			id := strings.TrimSpace(line[3:])
			if _, err := strconv.Atoi(id); err != nil {
				return nil, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
					"line %d: document id %q is not numeric", lineNo, id)
			}
			current = &Document{ID: id}
			field = ""
		case line == ".T":
			field = "title"
		case line == ".A":
			field = "author"
		case line == ".W":
			field = "text"
		case line == ".B":
			field = "bibliography"
		case strings.HasPrefix(line, "."):
			// Unrecognized marker; following lines are discarded.
			field = ""
		default:
			if current == nil || field == "" {
				continue
			}
			appendField(current, field, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading document file: %w", err)
	}
	if current != nil {
		docs = append(docs, *current)
	}
	return docs, nil
}

func appendField(doc *Document, field string, line string) {
	target := map[string]*string{
		"title":        &doc.Title,
		"author":       &doc.Author,
		"text":         &doc.Text,
		"bibliography": &doc.Bibliography,
	}[field]
	if *target == "" {
		*target = line
	} else {
		*target += " " + line
	}
}

// ParseQueries reads a CISI query file (same markers as the document file)
// and returns query id to query text.
func ParseQueries(r io.Reader) (map[string]string, error) {
	docs, err := ParseDocuments(r)
	if err != nil {
		return nil, err
	}
	queries := make(map[string]string, len(docs))
	for _, doc := range docs {
		queries[doc.ID] = doc.FullText()
	}
	return queries, nil
}

// ParseQrels reads a relevance judgment file: one "queryID docID ..."
// record per line, extra columns ignored. A non-empty line with fewer than
// two columns is a configuration error.
func ParseQrels(r io.Reader) (eval.Judgments, error) {
	judgments := make(eval.Judgments)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, apperrors.Newf(apperrors.ErrConfiguration, http.StatusBadRequest,
				"qrels line %d: expected \"queryID docID ...\", got %q", lineNo, line)
		}
		queryID, docID := fields[0], fields[1]
		if judgments[queryID] == nil {
			judgments[queryID] = make(eval.RelevantSet)
		}
		judgments[queryID][docID] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading qrels file: %w", err)
	}
	return judgments, nil
}
