// Package ids issues document-unique identifiers made of word characters.
package ids

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	trailingDigits = regexp.MustCompile(`^(.*[^0-9])[0-9]*$`)
	nonWord        = regexp.MustCompile(`\W`)
)

// Registry maps a sanitized stem to the last suffix issued for it.
type Registry struct {
	counters map[string]int
}

// NewRegistry seeds reserved stems, so that the first dynamic request for
// one of them already gets a numeric suffix.
func NewRegistry(reserved ...string) *Registry {
	r := &Registry{counters: make(map[string]int)}
	for _, stem := range reserved {
		r.counters[stem] = 0
	}
	return r
}

// Stem drops the trailing digit run of the trimmed hint and maps non-word
// characters to '_'. Hints made only of digits keep them and get a '_'.
func Stem(hint string) string {
	hint = strings.TrimSpace(hint)
	if m := trailingDigits.FindStringSubmatch(hint); m != nil {
		hint = m[1]
	} else {
		hint = hint + "_"
	}
	return nonWord.ReplaceAllString(hint, "_")
}

// GetID returns the stem of hint the first time it is seen and the stem
// with the next counter value afterwards.
func (r *Registry) GetID(hint string) string {
	stem := Stem(hint)
	if count, ok := r.counters[stem]; ok {
		count++
		r.counters[stem] = count
		return stem + strconv.Itoa(count)
	}
	r.counters[stem] = 0
	return stem
}
