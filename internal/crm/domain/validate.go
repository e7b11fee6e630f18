package domain

import (
	"fmt"
	"net/mail"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	MinPasswordLength = 8

	minCompanyName = 2
	maxCompanyName = 100
	minSlug        = 2
	maxSlug        = 50
)

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9-]+$`)
	colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	nonSlugRun   = regexp.MustCompile(`[^a-z0-9]+`)
)

// ValidationError collects per-field messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records msg for field, keeping the first message per field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Err returns e when any field failed, nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Slugify lowercases s, strips diacritics and collapses everything that is not
// [a-z0-9] into single hyphens. "Açaí & Cia" becomes "acai-cia".
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}
	return strings.Trim(nonSlugRun.ReplaceAllString(folded, "-"), "-")
}

// FoldName normalises a stage name for comparisons: lowercase, no diacritics,
// single spaces.
func FoldName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(folded), " ")
}

func ValidateCompany(name, slug string) error {
	var v ValidationError
	if n := utf8.RuneCountInString(strings.TrimSpace(name)); n < minCompanyName || n > maxCompanyName {
		v.Add("name", fmt.Sprintf("must be between %d and %d characters", minCompanyName, maxCompanyName))
	}
	switch {
	case len(slug) < minSlug || len(slug) > maxSlug:
		v.Add("slug", fmt.Sprintf("must be between %d and %d characters", minSlug, maxSlug))
	case !slugPattern.MatchString(slug):
		v.Add("slug", "may only contain lowercase letters, digits and hyphens")
	}
	return v.Err()
}

func ValidateColor(v *ValidationError, field, color string) {
	if !colorPattern.MatchString(color) {
		v.Add(field, "must be a #RRGGBB color")
	}
}

func ValidateStage(s Stage) error {
	var v ValidationError
	if strings.TrimSpace(s.Name) == "" {
		v.Add("name", "is required")
	}
	ValidateColor(&v, "color", s.Color)
	return v.Err()
}

func ValidateLead(l Lead) error {
	var v ValidationError
	if strings.TrimSpace(l.Name) == "" {
		v.Add("name", "is required")
	}
	if l.Value < 0 {
		v.Add("value", "must not be negative")
	}
	if l.Email != "" {
		if _, err := mail.ParseAddress(l.Email); err != nil {
			v.Add("email", "is not a valid address")
		}
	}
	return v.Err()
}

func ValidateEmail(v *ValidationError, email string) {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		v.Add("email", "is not a valid address")
	}
}

func ValidatePassword(v *ValidationError, field, password string) {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		v.Add(field, fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
}

// NormalizeEmail trims and lowercases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
