// Package account manages registered users.
package account

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/errs"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/model"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/store"
)

// Service registers and looks up users.
type Service struct {
	store  *store.Store
	cost   int
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Service over st.
func New(st *store.Store, opts ...Option) *Service {
	s := &Service{store: st, cost: bcrypt.DefaultCost, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registration is the input to Register.
type Registration struct {
	Username string
	Email    string
	Password string
	FullName string
	Phone    string
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user. The email is normalized and must not already be
// registered; the password is stored as a bcrypt hash.
func (s *Service) Register(ctx context.Context, r Registration) (model.User, error) {
	const op = "account.register"

	u := model.User{
		Username: strings.TrimSpace(r.Username),
		Email:    NormalizeEmail(r.Email),
		FullName: strings.TrimSpace(r.FullName),
		Phone:    strings.TrimSpace(r.Phone),
	}
	switch {
	case u.Username == "":
		return model.User{}, errs.New(errs.InvalidArgument, op, "username is required")
	case u.Email == "" || !strings.Contains(u.Email, "@"):
		return model.User{}, errs.Newf(errs.InvalidArgument, op, "invalid email %q", r.Email)
	case r.Password == "":
		return model.User{}, errs.New(errs.InvalidArgument, op, "password is required")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(r.Password), s.cost)
	if err != nil {
		return model.User{}, errs.Wrap(errs.InvalidArgument, op, err)
	}
	u.Password = string(hashed)

	err = s.store.Write(ctx, func(tx *store.Tx) error {
		_, taken, err := tx.FindUserByEmail(ctx, u.Email)
		if err != nil {
			return err
		}
		if taken {
			return errs.New(errs.ConstraintViolation, op, "email already registered").
				WithDetail("email", u.Email)
		}
		u.ID, err = tx.InsertUser(ctx, u)
		return err
	})
	if err != nil {
		return model.User{}, err
	}

	s.logger.Info("user registered", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id int64) (model.User, error) {
	return s.store.GetUser(ctx, id)
}

// GetByEmail returns a user by email, normalized first.
func (s *Service) GetByEmail(ctx context.Context, email string) (model.User, error) {
	u, found, err := s.store.FindUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return model.User{}, err
	}
	if !found {
		return model.User{}, errs.Newf(errs.NotFound, "account.get_by_email", "no user with email %q", email)
	}
	return u, nil
}

// Profile holds the editable user fields.
type Profile struct {
	Username string
	FullName string
	Phone    string
}

// UpdateProfile replaces a user's editable fields and returns the result.
func (s *Service) UpdateProfile(ctx context.Context, id int64, p Profile) (model.User, error) {
	const op = "account.update_profile"
	if strings.TrimSpace(p.Username) == "" {
		return model.User{}, errs.New(errs.InvalidArgument, op, "username is required")
	}

	var u model.User
	err := s.store.Write(ctx, func(tx *store.Tx) error {
		var err error
		if u, err = tx.GetUser(ctx, id); err != nil {
			return err
		}
		u.Username = strings.TrimSpace(p.Username)
		u.FullName = strings.TrimSpace(p.FullName)
		u.Phone = strings.TrimSpace(p.Phone)
		return tx.UpdateUser(ctx, u)
	})
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

// CheckPassword returns the user when email and password match. Unknown
// emails and wrong passwords are reported the same way.
func (s *Service) CheckPassword(ctx context.Context, email, password string) (model.User, error) {
	const op = "account.check_password"

	u, found, err := s.store.FindUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return model.User{}, err
	}
	if !found || bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return model.User{}, errs.New(errs.InvalidArgument, op, "invalid credentials")
	}
	return u, nil
}

// Delete removes a user together with their cart, orders and order lines.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.store.Write(ctx, func(tx *store.Tx) error {
		return tx.DeleteUser(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}
