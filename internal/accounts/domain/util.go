package domain

import "strings"

// visibleDigits is the number of trailing account digits kept in the log.
const visibleDigits = 4

// MaskAccount hides all but the last four digits of an account number.
func MaskAccount(account string) string {
	if len(account) <= visibleDigits {
		return account
	}
	return strings.Repeat("*", len(account)-visibleDigits) + account[len(account)-visibleDigits:]
}
