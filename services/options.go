// Package services
// File: services/options.go
package services

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"go-drop-registry/models"
)

// minLooseInput is the shortest input accepted as a prefix of an option.
const minLooseInput = 3

// ResolveOption maps user input onto the canonical option name of catalog.
// Exact matches win, then matches ignoring case and accents. Failing that, an
// input of at least three letters resolves when it starts exactly one option
// or one word of one option.
func ResolveOption(catalog models.MapCatalog, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("no %s drop selected", catalog.Name)
	}
	if catalog.Contains(input) {
		return input, nil
	}
	for _, o := range catalog.Options {
		if foldEqual(o, input) {
			return o, nil
		}
	}

	if utf8.RuneCountInString(input) < minLooseInput {
		return "", fmt.Errorf("%q is not a %s drop location", input, catalog.Name)
	}
	var found []string
	for _, o := range catalog.Options {
		if startsWord(o, input) {
			found = append(found, o)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("%q is not a %s drop location", input, catalog.Name)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%q matches more than one %s drop location", input, catalog.Name)
	}
}

// foldEqual compares ignoring case and accents. Two strings that are each a
// normalized subsequence of the other are the same string.
func foldEqual(a, b string) bool {
	return fuzzy.MatchNormalizedFold(a, b) && fuzzy.MatchNormalizedFold(b, a)
}

func hasFoldPrefix(s, prefix string) bool {
	r := []rune(s)
	n := utf8.RuneCountInString(prefix)
	if len(r) < n {
		return false
	}
	return foldEqual(string(r[:n]), prefix)
}

// startsWord reports whether prefix starts option or any word in it.
func startsWord(option, prefix string) bool {
	if hasFoldPrefix(option, prefix) {
		return true
	}
	words := strings.FieldsFunc(option, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if hasFoldPrefix(w, prefix) {
			return true
		}
	}
	return false
}
