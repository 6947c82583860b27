// Package validation holds input rules for requester profiles and bag applications.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	peselRegex = regexp.MustCompile(`^[0-9]{11}$`)
	nipRegex   = regexp.MustCompile(`^[0-9]{10}$`)
	phoneRegex = regexp.MustCompile(`^[0-9+\-\s]{9,}$`)
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// ValidatePESEL checks the national identification number format.
func ValidatePESEL(pesel string) error {
	if !peselRegex.MatchString(pesel) {
		return fmt.Errorf("PESEL must be exactly 11 digits")
	}
	return nil
}

// ValidateNIP checks the optional tax identification number.
func ValidateNIP(nip string) error {
	if nip == "" {
		return nil
	}
	if !nipRegex.MatchString(nip) {
		return fmt.Errorf("NIP must be exactly 10 digits")
	}
	return nil
}

// ValidatePersonName checks a first or last name.
func ValidatePersonName(field, name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < 2 {
		return fmt.Errorf("%s must be at least 2 characters", field)
	}
	if n > 80 {
		return fmt.Errorf("%s must not exceed 80 characters", field)
	}
	return nil
}

func ValidatePhone(phone string) error {
	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("phone must have at least 9 characters of digits, '+', '-' or spaces")
	}
	if len(phone) > 32 {
		return fmt.Errorf("phone must not exceed 32 characters")
	}
	return nil
}

func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}
	return nil
}

// ValidateAddress checks the requester's correspondence address.
func ValidateAddress(address string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(address))
	if n < 5 {
		return fmt.Errorf("address must be at least 5 characters")
	}
	if n > 255 {
		return fmt.Errorf("address must not exceed 255 characters")
	}
	return nil
}
