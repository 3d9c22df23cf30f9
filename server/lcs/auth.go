package lcs

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/dekarrin/lexcheck/server/dao"
	"github.com/dekarrin/lexcheck/server/serr"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Login verifies the provided username and password against the existing user
// in persistence and returns that user if they match. Returns the user entity
// from the persistence layer that the username and password are valid for.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If the credentials do not match
// a user or if the password is incorrect, it will match ErrBadCredentials. If
// the error occured due to an unexpected problem with the DB, it will match
// serr.ErrDB.
func (svc Service) Login(ctx context.Context, username string, password string) (dao.User, error) {
	user, err := svc.DB.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.User{}, serr.ErrBadCredentials
		}
		return dao.User{}, serr.WrapDB("", err)
	}

	// verify password
	bcryptHash, err := base64.StdEncoding.DecodeString(user.Password)
	if err != nil {
		return dao.User{}, err
	}

	err = bcrypt.CompareHashAndPassword(bcryptHash, []byte(password))
	if err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			return dao.User{}, serr.ErrBadCredentials
		}
		return dao.User{}, serr.WrapDB("", err)
	}

	user.LastLoginTime = time.Now()
	user, err = svc.DB.Users().Update(ctx, user.ID, user)
	if err != nil {
		return dao.User{}, serr.WrapDB("cannot update user login time", err)
	}

	return user, nil
}

// Logout marks the user with the given ID as having logged out, which
// invalidates every token issued to them before now. Returns the user that
// was logged out.
//
// The returned error, if non-nil, will match serr.ErrNotFound if no user with
// that ID exists and serr.ErrDB for any other problem with the DB.
func (svc Service) Logout(ctx context.Context, who uuid.UUID) (dao.User, error) {
	existing, err := svc.DB.Users().GetByID(ctx, who)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.User{}, serr.ErrNotFound
		}
		return dao.User{}, serr.WrapDB("could not retrieve user", err)
	}

	existing.LastLogoutTime = time.Now()

	updated, err := svc.DB.Users().Update(ctx, existing.ID, existing)
	if err != nil {
		return dao.User{}, serr.WrapDB("could not update user", err)
	}

	return updated, nil
}

// GetUser returns the user with the given ID.
//
// The returned error, if non-nil, will match serr.ErrBadArgument if id is not
// a valid UUID, serr.ErrNotFound if no user with that ID exists, and
// serr.ErrDB for any other problem with the DB.
func (svc Service) GetUser(ctx context.Context, id string) (dao.User, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.User{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	user, err := svc.DB.Users().GetByID(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.User{}, serr.ErrNotFound
		}
		return dao.User{}, serr.WrapDB("could not get user", err)
	}

	return user, nil
}

// CreateUser creates a new user with the given username, password, and role.
// The password is stored as a base64-encoded bcrypt hash.
//
// The returned error, if non-nil, will match serr.ErrAlreadyExists if a user
// with that username is already present, serr.ErrBadArgument if one of the
// arguments is invalid, and serr.ErrDB for any other problem with the DB.
func (svc Service) CreateUser(ctx context.Context, username, password string, role dao.Role) (dao.User, error) {
	if password == "" {
		return dao.User{}, serr.New("password cannot be blank", serr.ErrBadArgument)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if err == bcrypt.ErrPasswordTooLong {
			return dao.User{}, serr.New("password is too long", err, serr.ErrBadArgument)
		}
		return dao.User{}, serr.New("password could not be encrypted", err)
	}

	return svc.EnsureUser(ctx, username, base64.StdEncoding.EncodeToString(passHash), role)
}

// EnsureUser makes sure a user with the given username exists and has the
// given password hash and role. passwordHash must already be a base64-encoded
// bcrypt hash. If the user already exists it is updated, otherwise it is
// created.
//
// The returned error, if non-nil, will match serr.ErrBadArgument if one of the
// arguments is invalid and serr.ErrDB for any problem with the DB.
func (svc Service) EnsureUser(ctx context.Context, username, passwordHash string, role dao.Role) (dao.User, error) {
	if username == "" {
		return dao.User{}, serr.New("username cannot be blank", serr.ErrBadArgument)
	}
	hash, err := base64.StdEncoding.DecodeString(passwordHash)
	if err != nil {
		return dao.User{}, serr.New("password hash is not base64", err, serr.ErrBadArgument)
	}
	if _, err := bcrypt.Cost(hash); err != nil {
		return dao.User{}, serr.New("password hash is not a bcrypt hash", err, serr.ErrBadArgument)
	}

	existing, err := svc.DB.Users().GetByUsername(ctx, username)
	if err == nil {
		existing.Password = passwordHash
		existing.Role = role
		updated, err := svc.DB.Users().Update(ctx, existing.ID, existing)
		if err != nil {
			return dao.User{}, serr.WrapDB("could not update user", err)
		}
		return updated, nil
	} else if !errors.Is(err, dao.ErrNotFound) {
		return dao.User{}, serr.WrapDB("", err)
	}

	user, err := svc.DB.Users().Create(ctx, dao.User{
		Username: username,
		Password: passwordHash,
		Role:     role,
	})
	if err != nil {
		if errors.Is(err, dao.ErrConstraintViolation) {
			return dao.User{}, serr.ErrAlreadyExists
		}
		return dao.User{}, serr.WrapDB("could not create user", err)
	}

	return user, nil
}
