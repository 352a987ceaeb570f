package toast

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// TemplateType identifies one of the legacy toast templates.
type TemplateType int

const (
	// TemplateUnknown is the zero value and never returned by SelectTemplate.
	TemplateUnknown TemplateType = iota

	// ToastText01 is a single wrapped line.
	ToastText01
	// ToastText02 is a bold line followed by a body wrapped over two lines.
	ToastText02
	// ToastText03 is a bold line wrapped over two lines followed by a body line.
	ToastText03
	// ToastText04 is a bold line followed by two body lines.
	ToastText04

	ToastImageAndText01
	ToastImageAndText02
	ToastImageAndText03
	ToastImageAndText04
)

var templateNames = map[TemplateType]string{
	ToastText01:         "ToastText01",
	ToastText02:         "ToastText02",
	ToastText03:         "ToastText03",
	ToastText04:         "ToastText04",
	ToastImageAndText01: "ToastImageAndText01",
	ToastImageAndText02: "ToastImageAndText02",
	ToastImageAndText03: "ToastImageAndText03",
	ToastImageAndText04: "ToastImageAndText04",
}

// Templates returns all known template types in declaration order.
func Templates() []TemplateType {
	return []TemplateType{
		ToastText01, ToastText02, ToastText03, ToastText04,
		ToastImageAndText01, ToastImageAndText02, ToastImageAndText03, ToastImageAndText04,
	}
}

// String returns the platform name of the template.
func (t TemplateType) String() string {
	if name, ok := templateNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TemplateType(%d)", int(t))
}

// Valid reports whether t is one of the eight known templates.
func (t TemplateType) Valid() bool {
	_, ok := templateNames[t]
	return ok
}

// HasImage reports whether the template carries an image slot.
func (t TemplateType) HasImage() bool {
	return t >= ToastImageAndText01 && t <= ToastImageAndText04
}

// LineCount returns the number of text slots in the template.
func (t TemplateType) LineCount() int {
	if !t.Valid() {
		return 0
	}
	switch variant(t) {
	case 1:
		return 1
	case 4:
		return 3
	default:
		return 2
	}
}

// variant returns 1..4 within the template's family.
func variant(t TemplateType) int {
	if t.HasImage() {
		return int(t-ToastImageAndText01) + 1
	}
	return int(t-ToastText01) + 1
}

// ParseTemplateType resolves a platform template name, case-insensitively.
func ParseTemplateType(name string) (TemplateType, error) {
	for t, n := range templateNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return t, nil
		}
	}
	return TemplateUnknown, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
}

// SelectTemplate picks the template for the given lines and image presence.
//
// One line maps to the *01 template and three lines to *04. Two lines map to
// *03 when the first line is expected to be the longer one (it is non-blank
// and the second line is blank or shorter), otherwise to *02.
func SelectTemplate(lines []string, hasImage bool) (TemplateType, error) {
	var v int
	switch len(lines) {
	case 1:
		v = 1
	case 2:
		v = 2
		if isFirstLineLonger(lines[0], lines[1]) {
			v = 3
		}
	case 3:
		v = 4
	default:
		return TemplateUnknown, fmt.Errorf("%w: got %d lines, want 1 to 3", ErrUnsupportedLineCount, len(lines))
	}

	if hasImage {
		return ToastImageAndText01 + TemplateType(v-1), nil
	}
	return ToastText01 + TemplateType(v-1), nil
}

func isFirstLineLonger(first, second string) bool {
	if isBlank(first) {
		return false
	}
	return isBlank(second) || utf8.RuneCountInString(first) > utf8.RuneCountInString(second)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
