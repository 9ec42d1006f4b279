package service

import (
	"context"
	"errors"

	"postline/internal/models"
	"postline/internal/observability"
	"postline/internal/repository"
	"postline/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// AccountService owns credentials and the user lifecycle.
type AccountService struct {
	users    repository.UserRepository
	hashCost int
}

func NewAccountService(users repository.UserRepository) *AccountService {
	return &AccountService{users: users, hashCost: bcrypt.DefaultCost}
}

// SetHashCost overrides the bcrypt cost. Seeders and tests lower it.
func (s *AccountService) SetHashCost(cost int) {
	s.hashCost = cost
}

// SignUp validates the form, checks uniqueness and persists an active user.
// Field errors come back with a nil error; the error return is reserved for
// infrastructure failures.
func (s *AccountService) SignUp(ctx context.Context, form validation.SignUpForm) (*models.User, validation.FieldErrors, error) {
	errs := form.Validate()

	if !errs.Has("username") {
		existing, err := s.users.GetByUsername(ctx, form.Username)
		if err != nil {
			return nil, nil, err
		}
		if existing != nil {
			errs.Add("username", validation.MsgUsernameTaken)
		}
	}
	if !errs.Has("email") {
		existing, err := s.users.GetByEmail(ctx, form.Email)
		if err != nil {
			return nil, nil, err
		}
		if existing != nil {
			errs.Add("email", validation.MsgEmailTaken)
		}
	}
	if errs.Any() {
		observability.RecordAuth("sign_up", observability.OutcomeInvalid)
		return nil, errs, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), s.hashCost)
	if err != nil {
		return nil, nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:  form.Username,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Bio:       form.Bio,
		Password:  string(hash),
		IsActive:  true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent sign-up.
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			errs.Add("username", validation.MsgUsernameTaken)
			return nil, errs, nil
		case errors.Is(err, repository.ErrDuplicateEmail):
			errs.Add("email", validation.MsgEmailTaken)
			return nil, errs, nil
		}
		observability.RecordAuth("sign_up", observability.OutcomeError)
		return nil, nil, err
	}

	observability.RecordAuth("sign_up", observability.OutcomeSuccess)
	return user, nil, nil
}

// Authenticate returns the user for a valid username/password pair.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		observability.RecordAuth("log_in", observability.OutcomeError)
		return nil, err
	}
	if user == nil || !user.IsActive {
		observability.RecordAuth("log_in", observability.OutcomeInvalid)
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		observability.RecordAuth("log_in", observability.OutcomeInvalid)
		return nil, ErrInvalidCredentials
	}

	observability.RecordAuth("log_in", observability.OutcomeSuccess)
	return user, nil
}

// UpdateProfile applies the edit form to userID. The email must stay unique
// among other users.
func (s *AccountService) UpdateProfile(ctx context.Context, userID uint, form validation.EditProfileForm) (*models.User, validation.FieldErrors, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	errs := form.Validate()
	if !errs.Has("email") {
		other, err := s.users.GetByEmail(ctx, form.Email)
		if err != nil {
			return nil, nil, err
		}
		if other != nil && other.ID != user.ID {
			errs.Add("email", validation.MsgEmailTaken)
		}
	}
	if errs.Any() {
		return user, errs, nil
	}

	user.FirstName = form.FirstName
	user.LastName = form.LastName
	user.Email = form.Email
	user.Bio = form.Bio

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			errs.Add("email", validation.MsgEmailTaken)
			return user, errs, nil
		}
		return nil, nil, err
	}
	return user, nil, nil
}

// ChangePassword verifies the current password before storing the new one.
func (s *AccountService) ChangePassword(ctx context.Context, userID uint, form validation.ChangePasswordForm) (validation.FieldErrors, error) {
	errs := form.Validate()
	if errs.Any() {
		observability.RecordAuth("change_password", observability.OutcomeInvalid)
		return errs, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(form.Password)) != nil {
		errs.Add("password", validation.MsgWrongPassword)
		observability.RecordAuth("change_password", observability.OutcomeInvalid)
		return errs, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.NewPassword), s.hashCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return nil, err
	}

	observability.RecordAuth("change_password", observability.OutcomeSuccess)
	return nil, nil
}

// SetActive flips the account's active flag by username.
func (s *AccountService) SetActive(ctx context.Context, username string, active bool) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if err := s.users.SetActive(ctx, user.ID, active); err != nil {
		return nil, err
	}
	user.IsActive = active
	return user, nil
}

// GetUser returns the user by id.
func (s *AccountService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// ListUsers pages through all accounts ordered by username.
func (s *AccountService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.users.List(ctx, limit, offset)
}
