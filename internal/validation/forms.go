package validation

import "strings"

// SignUpForm is the registration form.
type SignUpForm struct {
	FirstName       string `form:"first_name" json:"first_name"`
	LastName        string `form:"last_name" json:"last_name"`
	Username        string `form:"username" json:"username"`
	Email           string `form:"email" json:"email"`
	Bio             string `form:"bio" json:"bio"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate trims text fields in place and runs the sign-up pipeline.
// A password mismatch is reported on confirm_password.
func (f *SignUpForm) Validate() FieldErrors {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	f.Bio = strings.TrimSpace(f.Bio)

	errs := FieldErrors{}
	check(errs, "first_name", f.FirstName, true, maxLength(NameMaxLength))
	check(errs, "last_name", f.LastName, true, maxLength(NameMaxLength))
	check(errs, "username", f.Username, true, ValidateUsername)
	check(errs, "email", f.Email, true, ValidateEmail)
	check(errs, "bio", f.Bio, false, maxLength(BioMaxLength))
	check(errs, "password", f.Password, true, ValidatePassword)
	check(errs, "confirm_password", f.ConfirmPassword, true)
	if f.ConfirmPassword != "" && f.Password != f.ConfirmPassword {
		errs.Add("confirm_password", MsgPasswordMismatch)
	}
	return errs
}

// Values returns the non-secret input for re-rendering.
func (f *SignUpForm) Values() map[string]string {
	return map[string]string{
		"first_name": f.FirstName,
		"last_name":  f.LastName,
		"username":   f.Username,
		"email":      f.Email,
		"bio":        f.Bio,
	}
}

// LogInForm carries credentials.
type LogInForm struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

func (f *LogInForm) Validate() FieldErrors {
	f.Username = strings.TrimSpace(f.Username)

	errs := FieldErrors{}
	check(errs, "username", f.Username, true)
	check(errs, "password", f.Password, true)
	return errs
}

// EditProfileForm updates the mutable profile fields. Username is fixed at sign-up.
type EditProfileForm struct {
	FirstName string `form:"first_name" json:"first_name"`
	LastName  string `form:"last_name" json:"last_name"`
	Email     string `form:"email" json:"email"`
	Bio       string `form:"bio" json:"bio"`
}

func (f *EditProfileForm) Validate() FieldErrors {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)
	f.Bio = strings.TrimSpace(f.Bio)

	errs := FieldErrors{}
	check(errs, "first_name", f.FirstName, true, maxLength(NameMaxLength))
	check(errs, "last_name", f.LastName, true, maxLength(NameMaxLength))
	check(errs, "email", f.Email, true, ValidateEmail)
	check(errs, "bio", f.Bio, false, maxLength(BioMaxLength))
	return errs
}

func (f *EditProfileForm) Values() map[string]string {
	return map[string]string{
		"first_name": f.FirstName,
		"last_name":  f.LastName,
		"email":      f.Email,
		"bio":        f.Bio,
	}
}

// ChangePasswordForm checks shape only. Whether Password matches the stored
// hash is decided by the account service, which holds the identity.
type ChangePasswordForm struct {
	Password             string `form:"password" json:"password"`
	NewPassword          string `form:"new_password" json:"new_password"`
	PasswordConfirmation string `form:"password_confirmation" json:"password_confirmation"`
}

func (f *ChangePasswordForm) Validate() FieldErrors {
	errs := FieldErrors{}
	check(errs, "password", f.Password, true)
	check(errs, "new_password", f.NewPassword, true, ValidatePassword)
	check(errs, "password_confirmation", f.PasswordConfirmation, true)
	if f.PasswordConfirmation != "" && f.NewPassword != f.PasswordConfirmation {
		errs.Add("password_confirmation", MsgPasswordMismatch)
	}
	return errs
}

// PostForm holds the text part of a new post. The image, if any, is
// validated by the image service and reported on the "image" field.
type PostForm struct {
	Title string `form:"title" json:"title"`
	Body  string `form:"body" json:"body"`
}

func (f *PostForm) Validate() FieldErrors {
	f.Title = strings.TrimSpace(f.Title)
	f.Body = strings.TrimSpace(f.Body)

	errs := FieldErrors{}
	check(errs, "title", f.Title, true, maxLength(TitleMaxLength))
	check(errs, "body", f.Body, false, maxLength(BodyMaxLength))
	return errs
}

func (f *PostForm) Values() map[string]string {
	return map[string]string{
		"title": f.Title,
		"body":  f.Body,
	}
}
