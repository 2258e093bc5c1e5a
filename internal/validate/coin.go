// Package validate holds the small set of input-validation checks shared
// by any collaborator that takes a coin name off the command line or a
// config file before using it in a file path or an API call
// (original_source/src/perps/funding.rs's validate_coin_for_api).
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

var coinPattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,20}$`)

// Coin rejects path traversal, path separators, NUL bytes, empty or
// over-length names, and anything outside [A-Za-z0-9_] — the
// coin grammar plus original_source's extra injection checks.
func Coin(coin string) error {
	if strings.Contains(coin, "..") || strings.ContainsAny(coin, "/\\\x00") {
		return fmt.Errorf("validate: coin %q contains invalid characters", coin)
	}
	if !coinPattern.MatchString(coin) {
		return fmt.Errorf("validate: coin %q must match %s", coin, coinPattern.String())
	}
	return nil
}
