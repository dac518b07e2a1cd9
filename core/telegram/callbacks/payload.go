// Package callbacks decodes inline button callback data.
//
// Buttons built with markup.Data(text, unique, data) reach handlers with
// cb.Unique set and cb.Data holding only the payload. Raw "\f<unique>|<payload>"
// data is still parsed for updates that bypassed telebot's own decoding.
package callbacks

import (
	"errors"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Sep separates the parts of a payload.
const Sep = "|"

// ErrMalformed reports payload that does not have the expected shape.
var ErrMalformed = errors.New("callbacks: malformed payload")

// Parse returns the unique key and the payload of cb.
func Parse(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	key, payload, _ := strings.Cut(raw, Sep)
	return strings.TrimSpace(key), payload
}

// Key returns the unique key of the current callback.
func Key(c tele.Context) string {
	key, _ := Parse(c.Callback())
	return key
}

// Payload returns the payload of the current callback.
func Payload(c tele.Context) string {
	_, payload := Parse(c.Callback())
	return payload
}

// Join encodes parts into one payload.
func Join(parts ...string) string {
	return strings.Join(parts, Sep)
}

// Pair splits a "<token>|<value>" payload.
func Pair(payload string) (string, string, error) {
	token, value, ok := strings.Cut(payload, Sep)
	if !ok || token == "" || value == "" {
		return "", "", ErrMalformed
	}
	return token, value, nil
}

// PairInt splits a "<token>|<n>" payload and parses n.
func PairInt(payload string) (string, int, error) {
	token, value, err := Pair(payload)
	if err != nil {
		return "", 0, err
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return "", 0, ErrMalformed
	}
	return token, n, nil
}
