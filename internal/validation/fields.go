package validation

import (
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"
)

const (
	UsernameMaxLength = 50
	NameMaxLength     = 50
	EmailMaxLength    = 254
	BioMaxLength      = 500
	TitleMaxLength    = 150
	BodyMaxLength     = 500
)

const (
	MsgRequired         = "This field is required."
	MsgUsernamePattern  = "Username must consist of @ followed by at least three alphanumericals."
	MsgEmailInvalid     = "Enter a valid email address."
	MsgPasswordPattern  = "Password must contain an uppercase character, a lowercase character and a number."
	MsgPasswordMismatch = "Confirmation does not match password."
	MsgUsernameTaken    = "User with this Username already exists."
	MsgEmailTaken       = "User with this Email already exists."
	MsgWrongPassword    = "Password is invalid."
	MsgInvalidImage     = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	MsgInvalidLogin     = "Invalid username or password. Please try again."
)

var (
	usernamePattern = regexp.MustCompile(`^@[\p{L}\p{N}_]{3,}$`)
	emailPattern    = regexp.MustCompile(`^[A-Za-z0-9!#$%&'*+/=?^_{|}~-]+(\.[A-Za-z0-9!#$%&'*+/=?^_{|}~-]+)*@([A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?\.)+[A-Za-z]{2,63}$`)
)

// ValidateUsername checks the "@" + three or more word characters format.
// Word characters are Unicode letters, digits and underscore.
func ValidateUsername(username string) error {
	if err := ValidateMaxLength(username, UsernameMaxLength); err != nil {
		return err
	}
	if !usernamePattern.MatchString(username) {
		return errors.New(MsgUsernamePattern)
	}
	return nil
}

// ValidateEmail checks address syntax.
func ValidateEmail(email string) error {
	if err := ValidateMaxLength(email, EmailMaxLength); err != nil {
		return err
	}
	if !emailPattern.MatchString(email) {
		return errors.New(MsgEmailInvalid)
	}
	return nil
}

// ValidatePassword requires an ASCII uppercase letter, a lowercase letter
// and a digit. There is no minimum length.
func ValidatePassword(password string) error {
	var hasUpper, hasLower, hasDigit bool
	for i := 0; i < len(password); i++ {
		switch b := password[i]; {
		case b >= 'A' && b <= 'Z':
			hasUpper = true
		case b >= 'a' && b <= 'z':
			hasLower = true
		case b >= '0' && b <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errors.New(MsgPasswordPattern)
	}
	return nil
}

// ValidateMaxLength counts characters, not bytes.
func ValidateMaxLength(value string, limit int) error {
	if n := utf8.RuneCountInString(value); n > limit {
		return fmt.Errorf("Ensure this value has at most %d characters (it has %d).", limit, n)
	}
	return nil
}

// check runs validators against one field and records the first failure.
// A blank value on a required field short-circuits the rest.
func check(errs FieldErrors, field, value string, required bool, validators ...func(string) error) {
	if value == "" {
		if required {
			errs.Add(field, MsgRequired)
		}
		return
	}
	for _, v := range validators {
		if err := v(value); err != nil {
			errs.Add(field, err.Error())
			return
		}
	}
}

func maxLength(limit int) func(string) error {
	return func(v string) error { return ValidateMaxLength(v, limit) }
}
