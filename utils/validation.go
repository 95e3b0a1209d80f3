package utils

import "regexp"

// Local mobile numbers are exactly 11 digits and start with 01.
var phoneRegex = regexp.MustCompile(`^01\d{9}$`)

func IsValidPhoneNumber(phone string) bool {
	return phoneRegex.MatchString(phone)
}
