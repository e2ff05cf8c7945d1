package weighting

import (
	"net/http"

	apperrors "github.com/AustinPardosi/IR-System-BE/pkg/errors"
)

// Scheme is the closed set of term-frequency variants. Unknown scheme names
// are rejected at the boundary by ParseScheme, never deep in scoring logic.
type Scheme int

const (
	// SchemeRaw uses the raw term frequency.
	SchemeRaw Scheme = iota
	// SchemeLog uses 1 + ln(tf) for tf > 0, else 0.
	SchemeLog
	// SchemeBinary uses 1 when the term is present, else 0.
	SchemeBinary
	// SchemeAugmented uses 0.5 + 0.5 * tf / maxtf.
	SchemeAugmented
)

var schemeNames = map[Scheme]string{
	SchemeRaw:       "raw",
	SchemeLog:       "log",
	SchemeBinary:    "binary",
	SchemeAugmented: "augmented",
}

func (s Scheme) String() string {
	if name, ok := schemeNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseScheme maps a scheme name to its Scheme tag. Unknown names are a
// configuration error.
func ParseScheme(name string) (Scheme, error) {
	for scheme, n := range schemeNames {
		if n == name {
			return scheme, nil
		}
	}
	return 0, apperrors.Newf(apperrors.ErrConfiguration, http.StatusBadRequest,
		"unknown weighting scheme %q", name)
}

// Options selects the weighting behaviour for one query or document vector:
// the TF variant and whether IDF is applied on top of it.
type Options struct {
	Scheme Scheme
	UseIDF bool
}

// DefaultOptions is raw TF with IDF, the reference configuration.
func DefaultOptions() Options {
	return Options{Scheme: SchemeRaw, UseIDF: true}
}
