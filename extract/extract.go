// Package extract pulls a fixed set of structured fields out of free text
// with deterministic pattern rules. No external calls, no state.
package extract

import (
	"regexp"
	"strings"

	"ragchat/types"
)

var (
	// "order" followed by a run of 6+ digits, any non-digits in between.
	orderRe = regexp.MustCompile(`(?i)order\D*(\d{6,})`)
	// Optional leading + followed by 10 to 15 digits.
	phoneRe = regexp.MustCompile(`\+?\d{10,15}`)
	// The 地址 marker followed by CJK ideographs, ASCII alphanumerics,
	// whitespace and comma/full-width-comma/period.
	addressRe = regexp.MustCompile(`地址[:：\s]*([\x{4e00}-\x{9fa5}a-zA-Z0-9\s,，。]+)`)
)

// Entities extracts order number, phone number and address from text.
// Only the first match per field is taken; unmatched fields stay empty.
func Entities(text string) types.Entities {
	var out types.Entities

	if m := orderRe.FindStringSubmatch(text); m != nil {
		out.OrderNumber = m[1]
	}
	if m := phoneRe.FindString(text); m != "" {
		out.PhoneNumber = m
	}
	if m := addressRe.FindStringSubmatch(text); m != nil {
		out.Address = strings.TrimSpace(m[1])
	}
	return out
}
