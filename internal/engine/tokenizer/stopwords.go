package tokenizer

import (
	"bufio"
	"net/http"
	"os"
	"strings"

	apperrors "github.com/AustinPardosi/IR-System-BE/pkg/errors"
)

// defaultStopwords is the built-in English list used when no stopword file
// is configured.
var defaultStopwords = []string{
	"a", "an", "and", "are", "as", "at",
	"be", "by", "for", "from", "has", "he",
	"in", "is", "it", "its", "of", "on",
	"or", "that", "the", "to", "was", "were",
	"will", "with", "this", "but", "they",
	"have", "had", "what", "when", "where",
	"who", "which", "their", "if", "each",
	"do", "not", "no", "so", "can",
}

// loadStopwords reads a stopword file (one word per line, '#' starts a
// comment) or returns the built-in defaults when path is empty. The set is
// built once at construction and treated as read-only afterwards.
func loadStopwords(path string) (map[string]struct{}, error) {
	set := make(map[string]struct{})
	if path == "" {
		for _, w := range defaultStopwords {
			set[w] = struct{}{}
		}
		return set, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrConfiguration, http.StatusBadRequest,
			"opening stopword file %s: %v", path, err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set[strings.ToLower(line)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.Newf(apperrors.ErrConfiguration, http.StatusBadRequest,
			"reading stopword file %s: %v", path, err)
	}
	return set, nil
}
