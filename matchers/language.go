package matchers

import (
	"fmt"
	"strings"

	"github.com/pemistahl/lingua-go"
)

// LanguageFilter keeps texts written in one of the allowed languages. Texts
// the detector cannot classify are kept.
type LanguageFilter struct {
	detector lingua.LanguageDetector
	allowed  map[lingua.Language]bool
}

// NewLanguageFilter builds a filter for ISO 639-1 codes such as "en" or "de".
func NewLanguageFilter(codes []string) (*LanguageFilter, error) {
	allowed, err := parseLanguages(codes)
	if err != nil {
		return nil, err
	}
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		WithLowAccuracyMode().
		Build()
	return newLanguageFilter(detector, allowed), nil
}

func newLanguageFilter(detector lingua.LanguageDetector, allowed map[lingua.Language]bool) *LanguageFilter {
	return &LanguageFilter{detector: detector, allowed: allowed}
}

func (f *LanguageFilter) Allows(text string) bool {
	language, ok := f.detector.DetectLanguageOf(text)
	if !ok {
		return true
	}
	return f.allowed[language]
}

func parseLanguages(codes []string) (map[lingua.Language]bool, error) {
	allowed := make(map[lingua.Language]bool, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(strings.ToLower(code))
		if code == "" {
			continue
		}
		iso := lingua.GetIsoCode639_1FromValue(code)
		language := lingua.GetLanguageFromIsoCode639_1(iso)
		if language == lingua.Unknown {
			return nil, fmt.Errorf("unknown language code %q", code)
		}
		allowed[language] = true
	}
	if len(allowed) == 0 {
		return nil, fmt.Errorf("no languages given")
	}
	return allowed, nil
}
