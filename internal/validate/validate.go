// Package validate holds the field-level validation rules for client
// records. Every function returns the normalized value or an error naming
// the offending field.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
)

const birthDateLayout = "02-01-2006"

var (
	phoneCleanRe   = regexp.MustCompile(`[()\s\-]`)
	phonePlus7Re   = regexp.MustCompile(`^\+7\d{10}$`)
	phoneEight9Re  = regexp.MustCompile(`^89\d{9}$`)
	emailLocalRe   = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+$`)
	emailLabelRe   = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9\-]*[A-Za-z0-9])?$`)
	emailTLDRe     = regexp.MustCompile(`^[A-Za-z]{2,}$`)
	digitsOnly4Re  = regexp.MustCompile(`^\d{4}$`)
	digitsOnly6Re  = regexp.MustCompile(`^\d{6}$`)
)

func NonEmpty(field, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", fmt.Errorf("field %q is required and must not be empty", field)
	}
	return v, nil
}

// Name accepts letters only, no spaces or punctuation.
func Name(field, value string) (string, error) {
	v, err := NonEmpty(field, value)
	if err != nil {
		return "", err
	}
	for _, r := range v {
		if !unicode.IsLetter(r) {
			return "", fmt.Errorf("field %q must contain letters only", field)
		}
	}
	return v, nil
}

func PassportSeries(value string) (string, error) {
	v, err := NonEmpty("passport_series", value)
	if err != nil {
		return "", err
	}
	v = strings.ReplaceAll(v, " ", "")
	if !digitsOnly4Re.MatchString(v) {
		return "", fmt.Errorf("field %q must be exactly 4 digits", "passport_series")
	}
	return v, nil
}

func PassportNumber(value string) (string, error) {
	v, err := NonEmpty("passport_number", value)
	if err != nil {
		return "", err
	}
	v = strings.ReplaceAll(v, " ", "")
	if !digitsOnly6Re.MatchString(v) {
		return "", fmt.Errorf("field %q must be exactly 6 digits", "passport_number")
	}
	return v, nil
}

// BirthDate parses dd-mm-yyyy, requires a real calendar date not in the
// future.
func BirthDate(value string) (time.Time, error) {
	v, err := NonEmpty("birth_date", value)
	if err != nil {
		return time.Time{}, err
	}
	d, err := time.Parse(birthDateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("field %q must be a valid date in dd-mm-yyyy format", "birth_date")
	}
	if d.After(time.Now()) {
		return time.Time{}, fmt.Errorf("field %q must not be a future date", "birth_date")
	}
	return d, nil
}

func FormatBirthDate(d time.Time) string {
	return d.Format(birthDateLayout)
}

// Phone accepts +7XXXXXXXXXX or 89XXXXXXXXX after stripping spaces,
// parentheses and dashes.
func Phone(value string) (string, error) {
	v, err := NonEmpty("phone", value)
	if err != nil {
		return "", err
	}
	v = phoneCleanRe.ReplaceAllString(v, "")
	if strings.Count(v, "+") > 1 || (strings.Contains(v, "+") && !strings.HasPrefix(v, "+")) {
		return "", fmt.Errorf("field %q has a misplaced '+'; only a leading '+' is allowed", "phone")
	}
	if phonePlus7Re.MatchString(v) || phoneEight9Re.MatchString(v) {
		return v, nil
	}
	return "", fmt.Errorf("field %q must match +7XXXXXXXXXX or 89XXXXXXXXX", "phone")
}

func Email(value string) (string, error) {
	v, err := NonEmpty("email", value)
	if err != nil {
		return "", err
	}
	if strings.Count(v, "@") != 1 {
		return "", fmt.Errorf("field %q must contain exactly one '@'", "email")
	}
	local, domain, _ := strings.Cut(v, "@")
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") || strings.Contains(local, "..") {
		return "", fmt.Errorf("field %q has a malformed local part", "email")
	}
	if !emailLocalRe.MatchString(local) {
		return "", fmt.Errorf("field %q has invalid characters in the local part", "email")
	}
	if strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") || strings.Contains(domain, "..") {
		return "", fmt.Errorf("field %q has a malformed domain", "email")
	}
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return "", fmt.Errorf("field %q domain must contain at least one dot", "email")
	}
	for _, label := range labels {
		if !emailLabelRe.MatchString(label) {
			return "", fmt.Errorf("field %q has an invalid domain label", "email")
		}
	}
	if !emailTLDRe.MatchString(labels[len(labels)-1]) {
		return "", fmt.Errorf("field %q top-level domain must be at least two letters", "email")
	}
	return v, nil
}

func Address(value string) (string, error) {
	return NonEmpty("address", value)
}
