package directory

import (
	"regexp"
	"strings"

	"freequilt/internal/pkg/errs"
)

// Form field names used in validation failures.
const (
	FieldFirstName       = "firstName"
	FieldLastName        = "lastName"
	FieldEmail           = "email"
	FieldUsername        = "username"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldSkillLevel      = "skillLevel"
	FieldTerms           = "terms"
)

// Validation messages shown next to the form inputs.
const (
	MsgFirstNameRequired = "First name is required"
	MsgLastNameRequired  = "Last name is required"
	MsgInvalidEmail      = "Please enter a valid email address"
	MsgInvalidUsername   = "Username must be 3-20 characters, letters and numbers only"
	MsgUsernameTaken     = "Username is already taken"
	MsgEmailTaken        = "Email is already registered"
	MsgPasswordTooShort  = "Password must be at least 8 characters long"
	MsgPasswordMismatch  = "Passwords do not match"
	MsgSkillRequired     = "Please select your skill level"
	MsgTermsRequired     = "You must agree to the terms and conditions"
	MsgPasswordRequired  = "Please enter your password"
	MsgInvalidLogin      = "Invalid email or password"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

var (
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9]{3,20}$`)
)

// ValidEmail reports whether email has the shape local@domain.tld.
func ValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// ValidUsername reports whether username is 3-20 ASCII letters or digits.
func ValidUsername(username string) bool {
	return usernameRe.MatchString(username)
}

// normalize trims the text inputs the way the form does.
func (in *RegisterInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
}

// validateRegistration runs every check against in and the current
// collection. All failures are reported; a later check on the same field
// replaces the earlier message.
func validateRegistration(in RegisterInput, users []User) errs.FieldErrors {
	var fields errs.FieldErrors

	if in.FirstName == "" {
		fields.Add(FieldFirstName, MsgFirstNameRequired)
	}

	if in.LastName == "" {
		fields.Add(FieldLastName, MsgLastNameRequired)
	}

	if !ValidEmail(in.Email) {
		fields.Add(FieldEmail, MsgInvalidEmail)
	}

	if !ValidUsername(in.Username) {
		fields.Add(FieldUsername, MsgInvalidUsername)
	}

	uniquenessErrors(&fields, in, users)

	if len(in.Password) < MinPasswordLength {
		fields.Add(FieldPassword, MsgPasswordTooShort)
	}

	if in.Password != in.ConfirmPassword {
		fields.Add(FieldConfirmPassword, MsgPasswordMismatch)
	}

	if !in.SkillLevel.Valid() {
		fields.Add(FieldSkillLevel, MsgSkillRequired)
	}

	if !in.AgreeTerms {
		fields.Add(FieldTerms, MsgTermsRequired)
	}

	return fields
}

// uniquenessErrors reports a username or email already present in users.
// Both comparisons are exact.
func uniquenessErrors(fields *errs.FieldErrors, in RegisterInput, users []User) {
	for i := range users {
		if users[i].Username == in.Username {
			fields.Add(FieldUsername, MsgUsernameTaken)
			break
		}
	}

	for i := range users {
		if users[i].Email == in.Email {
			fields.Add(FieldEmail, MsgEmailTaken)
			break
		}
	}
}

// validateLogin checks the login form. Only the first failure is reported.
func validateLogin(email, password string) errs.FieldErrors {
	var fields errs.FieldErrors

	switch {
	case !ValidEmail(email):
		fields.Add(FieldEmail, MsgInvalidEmail)
	case password == "":
		fields.Add(FieldPassword, MsgPasswordRequired)
	}

	return fields
}

// validatePatch checks the member-editable fields that are present.
func validatePatch(patch ProfilePatch) errs.FieldErrors {
	var fields errs.FieldErrors

	if patch.FirstName != nil && strings.TrimSpace(*patch.FirstName) == "" {
		fields.Add(FieldFirstName, MsgFirstNameRequired)
	}

	if patch.LastName != nil && strings.TrimSpace(*patch.LastName) == "" {
		fields.Add(FieldLastName, MsgLastNameRequired)
	}

	if patch.SkillLevel != nil && !patch.SkillLevel.Valid() {
		fields.Add(FieldSkillLevel, MsgSkillRequired)
	}

	return fields
}
