package validation

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"bagportal/internal/models"
)

// MaxNotesLength is the maximum number of characters in request notes.
const MaxNotesLength = 256

var postalCodeRegex = regexp.MustCompile(`^[0-9]{2}-[0-9]{3}$`)

var allowedAttachmentTypes = map[string][]string{
	"application/pdf": {".pdf"},
	"image/jpeg":      {".jpg", ".jpeg"},
	"image/png":       {".png"},
}

var propertyKindAliases = map[string]models.PropertyKind{
	"apartment":  models.PropertyKindApartment,
	"mieszkanie": models.PropertyKindApartment,
	"house":      models.PropertyKindHouse,
	"dom":        models.PropertyKindHouse,
}

// ParsePropertyKind accepts the canonical kinds and their Polish names.
func ParsePropertyKind(kind string) (models.PropertyKind, error) {
	k, ok := propertyKindAliases[strings.ToLower(strings.TrimSpace(kind))]
	if !ok {
		return "", fmt.Errorf("property kind must be apartment or house")
	}
	return k, nil
}

func ValidatePostalCode(code string) error {
	if !postalCodeRegex.MatchString(code) {
		return fmt.Errorf("postal code must match NN-NNN")
	}
	return nil
}

func ValidateStreet(street string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(street))
	if n < 2 {
		return fmt.Errorf("street must be at least 2 characters")
	}
	if n > 120 {
		return fmt.Errorf("street must not exceed 120 characters")
	}
	return nil
}

func ValidateBuilding(building string) error {
	b := strings.TrimSpace(building)
	if b == "" {
		return fmt.Errorf("building number is required")
	}
	if len(b) > 20 {
		return fmt.Errorf("building number must not exceed 20 characters")
	}
	return nil
}

func ValidateApartment(apartment string) error {
	if len(strings.TrimSpace(apartment)) > 20 {
		return fmt.Errorf("apartment number must not exceed 20 characters")
	}
	return nil
}

// ValidateBagCount requires at least one bag and, when max > 0, at most max.
func ValidateBagCount(count, max int) error {
	if count < 1 {
		return fmt.Errorf("bag count must be at least 1")
	}
	if max > 0 && count > max {
		return fmt.Errorf("bag count must not exceed %d", max)
	}
	return nil
}

// ValidateStay checks that arrival, when both dates are given, is not after departure.
func ValidateStay(arrival, depart *time.Time) error {
	if arrival == nil || depart == nil {
		return nil
	}
	if arrival.After(*depart) {
		return fmt.Errorf("arrival date must not be after depart date")
	}
	return nil
}

// ValidateNotes checks length and that notes survive the sector document
// encoding unchanged: valid UTF-8 with no control characters besides tab and
// line breaks.
func ValidateNotes(notes string) error {
	if utf8.RuneCountInString(notes) > MaxNotesLength {
		return fmt.Errorf("notes must not exceed %d characters", MaxNotesLength)
	}
	if !utf8.ValidString(notes) {
		return fmt.Errorf("notes must be valid UTF-8 text")
	}
	for _, r := range notes {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
		case unicode.IsControl(r), r == 0xFFFE, r == 0xFFFF:
			return fmt.Errorf("notes must not contain control characters")
		}
	}
	return nil
}

// ValidateAttachment checks an uploaded certificate against the allowed types and size.
// contentType is the sniffed type of the payload, not the client's claim.
func ValidateAttachment(filename, contentType string, size, maxBytes int64) error {
	if size <= 0 {
		return fmt.Errorf("attachment %q is empty", filename)
	}
	if maxBytes > 0 && size > maxBytes {
		return fmt.Errorf("attachment %q exceeds the %d MB limit", filename, maxBytes/(1<<20))
	}

	exts, ok := allowedAttachmentTypes[contentType]
	if !ok {
		return fmt.Errorf("attachment %q must be a PDF, JPEG or PNG file", filename)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range exts {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("attachment %q has an extension that does not match its content", filename)
}
