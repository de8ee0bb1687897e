package parser

import (
	"regexp"
	"strings"

	"github.com/balkashynov/tally/internal/apperr"
)

var (
	codeRegex    = regexp.MustCompile(`^[A-Z0-9][A-Z0-9_.-]*$`)
	jobCodeRegex = regexp.MustCompile(`@([A-Za-z0-9][A-Za-z0-9_.-]*)`)
	jobRateRegex = regexp.MustCompile(`(?:^|\s)(?:rate:|\$)(\S+)`)
)

// NormalizeCode trims and upper-cases a job code, e.g. " dev " -> "DEV".
func NormalizeCode(code string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return "", apperr.Invalid("code", code, "value is empty")
	}
	if !codeRegex.MatchString(normalized) {
		return "", apperr.Invalid("code", code, "use letters, digits, '-', '_' or '.'")
	}
	return normalized, nil
}

// NormalizeName collapses whitespace in a job name and upper-cases it.
func NormalizeName(name string) (string, error) {
	normalized := strings.ToUpper(strings.Join(strings.Fields(name), " "))
	if normalized == "" {
		return "", apperr.Invalid("name", name, "value is empty")
	}
	return normalized, nil
}

// ParsedJob is a job described in one line of natural syntax.
type ParsedJob struct {
	Code      string
	Name      string
	RateCents int64
	HasRate   bool
}

// ParseJobSpec extracts a job from a single line.
// Syntax: "Website redesign @WEB $85.50" or "Website redesign @WEB rate:85.50"
func ParseJobSpec(input string) (ParsedJob, error) {
	var result ParsedJob

	codeMatches := jobCodeRegex.FindAllStringSubmatch(input, -1)
	if len(codeMatches) == 0 {
		return result, apperr.Invalid("job", input, "missing @CODE")
	}
	if len(codeMatches) > 1 {
		return result, apperr.Invalid("job", input, "more than one @CODE")
	}
	code, err := NormalizeCode(codeMatches[0][1])
	if err != nil {
		return result, err
	}
	result.Code = code
	input = jobCodeRegex.ReplaceAllString(input, "")

	if m := jobRateRegex.FindStringSubmatch(input); m != nil {
		cents, err := ParseRate(m[1])
		if err != nil {
			return result, err
		}
		result.RateCents = cents
		result.HasRate = true
		input = jobRateRegex.ReplaceAllString(input, " ")
	}

	name, err := NormalizeName(input)
	if err != nil {
		return result, err
	}
	result.Name = name
	return result, nil
}

// CollapseSpace trims s and collapses internal whitespace runs to one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
