// Package validation provides centralized input validation for sweep
// criteria. Patterns are validated before any provider call is made so
// malformed input fails fast with ErrInvalidInput.
package validation

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/bucketsweep/bucketsweep/errors"
	"github.com/bucketsweep/bucketsweep/models"
)

// CompileBucketPattern compiles the bucket-name regular expression.
// The pattern is applied with unanchored substring search.
func CompileBucketPattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.NewError("compilePattern", errors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("invalid bucket pattern %q: %v", pattern, err))
	}
	return re, nil
}

// ValidateGlob checks that a glob pattern is usable as a key filter.
func ValidateGlob(pattern string) error {
	if pattern == "" {
		return errors.NewError("validateGlob", errors.ErrInvalidInput).
			WithMessage("glob pattern cannot be empty")
	}
	if strings.HasPrefix(pattern, "/") {
		return errors.NewError("validateGlob", errors.ErrInvalidInput).
			WithMessage("glob pattern cannot start with '/'")
	}
	return nil
}

// ValidateCutoff rejects a zero cutoff. Go timestamps always carry a
// location, so the unusable-cutoff case is the zero value, not a
// missing zone.
func ValidateCutoff(cutoff time.Time) error {
	if cutoff.IsZero() {
		return errors.NewError("validateCutoff", errors.ErrInvalidInput).
			WithMessage("cutoff timestamp is required")
	}
	return nil
}

// CompileGlob translates a shell-style glob into a regular expression
// matched against the whole key. Unlike path.Match, wildcards cross
// path separators, matching the behavior expected for object keys
// ("*.log" matches "logs/2024/app.log").
func CompileGlob(pattern string) (*regexp.Regexp, error) {
	if err := ValidateGlob(pattern); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; c {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '[':
			j := i + 1
			if j < len(pattern) && (pattern[j] == '!' || pattern[j] == '^') {
				j++
			}
			if j < len(pattern) && pattern[j] == ']' {
				j++
			}
			for j < len(pattern) && pattern[j] != ']' {
				j++
			}
			if j >= len(pattern) {
				// Unterminated group: treat '[' as a literal,
				// as fnmatch-style matchers do.
				b.WriteString(`\[`)
			} else {
				group := strings.ReplaceAll(pattern[i+1:j], `\`, `\\`)
				b.WriteString("[")
				if strings.HasPrefix(group, "!") {
					b.WriteString("^")
					group = group[1:]
				}
				b.WriteString(group)
				b.WriteString("]")
				i = j
			}
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, errors.NewError("compileGlob", errors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("invalid glob pattern %q: %v", pattern, err))
	}
	return re, nil
}

// Extension extracts the final dot-suffix of a key ("archive.tar.gz"
// yields ".gz"). Keys without a suffix, including dotfiles, yield the
// NoExtension sentinel.
func Extension(key string) string {
	base := path.Base(key)
	ext := path.Ext(base)
	if ext == "" || ext == "." || ext == base {
		return models.NoExtension
	}
	return ext
}
