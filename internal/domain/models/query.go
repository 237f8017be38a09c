package models

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidIdentifier indicates the input does not look like an order or
// item number.
var ErrInvalidIdentifier = errors.New("invalid order or item identifier")

// QueryKind distinguishes order-level from item-level searches.
type QueryKind string

const (
	OrderQuery QueryKind = "order"
	ItemQuery  QueryKind = "item"
)

// Query is a classified search request.
type Query struct {
	Kind QueryKind
	Text string
}

var (
	identifierRe  = regexp.MustCompile(`^[0-9./_]+$`)
	orderNumberRe = regexp.MustCompile(`^[0-9/_]+$`)
	itemSuffixRe  = regexp.MustCompile(`\.[0-9]`)
)

// ParseQuery validates raw input and classifies it. An identifier containing
// a period followed by at least one digit is an item query; anything else,
// including a trailing period, falls back to an order query.
func ParseQuery(raw string) (Query, error) {
	text := strings.TrimSpace(raw)
	if text == "" || !identifierRe.MatchString(text) {
		return Query{}, ErrInvalidIdentifier
	}

	kind := OrderQuery
	if itemSuffixRe.MatchString(text) {
		kind = ItemQuery
	}
	return Query{Kind: kind, Text: text}, nil
}

// ValidateOrderNumber checks input that must be an order number only, as used
// by the packaged-items lookup (digits, slashes and underscores).
func ValidateOrderNumber(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" || !orderNumberRe.MatchString(text) {
		return "", ErrInvalidIdentifier
	}
	return text, nil
}

// ValidateItemIdentifier checks a scanned payload before it enters a ledger.
func ValidateItemIdentifier(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" || !identifierRe.MatchString(text) {
		return "", ErrInvalidIdentifier
	}
	return text, nil
}
