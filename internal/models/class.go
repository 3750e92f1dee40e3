package models

import "strings"

// ClassGraduated is the terminal class state. Graduated students are
// excluded from term rollover and promotion.
const ClassGraduated = "Graduated"

// Streams recognised for senior-secondary classes.
var AllowedStreams = []string{"Science", "Art", "Commercial"}

// CanonicalClassName strips non-alphanumerics and uppercases, so "SS 1",
// "ss-1" and "SS1" address the same configuration row.
func CanonicalClassName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 32)
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ClassLevel maps a class name to its education level key.
func ClassLevel(name string) string {
	key := CanonicalClassName(name)
	if strings.HasPrefix(key, "SS") {
		return "ss"
	}
	if strings.HasPrefix(key, "JSS") {
		return "jss"
	}
	return "primary"
}

// ClassUsesStream reports whether the class is a senior-secondary class
// that carries streams at all.
func ClassUsesStream(name string) bool {
	switch CanonicalClassName(name) {
	case "SS1", "SS2", "SS3", "SSS1", "SSS2", "SSS3":
		return true
	}
	return false
}

// IsSS1Class reports whether the class is the entry-level stream class.
func IsSS1Class(name string) bool {
	switch CanonicalClassName(name) {
	case "SS1", "SSS1":
		return true
	}
	return false
}

// UsesStreamForSchool applies the tenant's SS1 stream mode: in combined
// mode SS1 is treated as one non-stream cohort.
func UsesStreamForSchool(school *School, name string) bool {
	if !ClassUsesStream(name) {
		return false
	}
	if school != nil && IsSS1Class(name) && school.SS1StreamMode == StreamModeCombined {
		return false
	}
	return true
}

// IsGraduated reports whether a class name is the terminal state.
func IsGraduated(name string) bool {
	return CanonicalClassName(name) == "GRADUATED"
}

var classProgression = map[string]string{
	"NURSERY1": "NURSERY2",
	"NURSERY2": "NURSERY3",
	"NURSERY3": "PRIMARY1",
	"PRIMARY1": "PRIMARY2",
	"PRIMARY2": "PRIMARY3",
	"PRIMARY3": "PRIMARY4",
	"PRIMARY4": "PRIMARY5",
	"PRIMARY5": "PRIMARY6",
	"PRIMARY6": "JSS1",
	"JSS1":     "JSS2",
	"JSS2":     "JSS3",
	"JSS3":     "SS1",
	"SS1":      "SS2",
	"SS2":      "SS3",
	"SS3":      "GRADUATED",
}

// NextClassInSequence returns the canonical next class, or "" for a
// terminal or unknown class.
func NextClassInSequence(name string) string {
	return classProgression[CanonicalClassName(name)]
}

// IsValidPromotionTarget allows only direct next-class progression.
func IsValidPromotionTarget(fromClass, toClass string) bool {
	expected := NextClassInSequence(fromClass)
	if expected == "" {
		return false
	}
	return CanonicalClassName(toClass) == expected
}

// NormalizeStream validates and title-cases a stream for a class. For
// non-stream classes the stream is always StreamUnassigned.
func NormalizeStream(school *School, className, stream string) (string, bool) {
	if !UsesStreamForSchool(school, className) {
		return StreamUnassigned, true
	}
	normalized := strings.TrimSpace(stream)
	if normalized != "" {
		normalized = strings.ToUpper(normalized[:1]) + strings.ToLower(normalized[1:])
	}
	for _, allowed := range AllowedStreams {
		if normalized == allowed {
			return normalized, true
		}
	}
	return "", false
}

// TermSortValue orders terms First < Second < Third; unknown terms last.
func TermSortValue(term string) int {
	switch strings.ToLower(strings.TrimSpace(term)) {
	case "first term":
		return 1
	case "second term":
		return 2
	case "third term":
		return 3
	}
	return 99
}
