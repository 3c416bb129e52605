package app

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"suggestboard/internal/model"
	"suggestboard/internal/pkg/jwtutil"
	"suggestboard/internal/queue"
	"suggestboard/internal/repository"
)

// PasswordHashCost trades login latency for attacker throughput; 12 keeps
// an interactive login under a few hundred milliseconds while making
// offline brute force impractical.
const PasswordHashCost = 12

// TopicUserAdded is the fan-out topic every successful registration
// publishes the new user to.
const TopicUserAdded = "user.added"

// AuthenticationError covers the two login failures. Both surface their
// message text verbatim to the caller and are never retried.
type AuthenticationError struct {
	msg string
}

func (e *AuthenticationError) Error() string { return e.msg }

var (
	ErrUserNotFound      = &AuthenticationError{msg: "User does not exist"}
	ErrIncorrectPassword = &AuthenticationError{msg: "Incorrect password"}
)

// UserStore is the slice of the data-access layer the auth service needs.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindOne(ctx context.Context, f repository.UserFilter) (*model.User, error)
}

// Broadcaster is the in-process fan-out leg of the userAdded contract.
type Broadcaster interface {
	Publish(topic string, payload any)
}

// UserEventPublisher is the durable leg: registrations land on a broker
// queue for consumers that are not subscribed in-process.
type UserEventPublisher interface {
	PublishUserAdded(ctx context.Context, event queue.UserAddedEvent) error
}

type AuthService struct {
	users     UserStore
	hub       Broadcaster
	events    UserEventPublisher
	jwtSecret string
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// NewAuthService wires the core. hub and events may be nil in contexts
// that have no fan-out (tests, one-shot tools); Register then skips the
// publish step.
func NewAuthService(users UserStore, hub Broadcaster, events UserEventPublisher, jwtSecret string) *AuthService {
	return &AuthService{
		users:     users,
		hub:       hub,
		events:    events,
		jwtSecret: jwtSecret,
	}
}

// Register hashes the plaintext password and persists the user. No
// uniqueness check happens here; a duplicate email surfaces as the
// repository's constraint error, propagated unchanged.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), PasswordHashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Username: input.Username,
		Email:    input.Email,
		Password: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publishUserAdded(ctx, user)
	return user, nil
}

// Login verifies credentials and issues a signed session token carrying
// only the user's id and username. No session state is persisted; the
// token is the complete credential.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindOne(ctx, repository.UserFilter{Email: &email})
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrIncorrectPassword
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, user.ID, user.Username)
	if err != nil {
		return "", fmt.Errorf("sign token failed: %w", err)
	}
	return token, nil
}

// CurrentUser resolves a verified claim back to its user record. A nil
// claim is an anonymous caller, not an error.
func (s *AuthService) CurrentUser(ctx context.Context, claims *jwtutil.Claims) (*model.User, error) {
	if claims == nil {
		return nil, nil
	}
	return s.users.FindOne(ctx, repository.UserFilter{ID: &claims.UserID})
}

// Registration SHOULD publish; a broken fan-out never fails the register
// call itself.
func (s *AuthService) publishUserAdded(ctx context.Context, user *model.User) {
	if s.hub != nil {
		s.hub.Publish(TopicUserAdded, user)
	}
	if s.events != nil {
		event := queue.UserAddedEvent{
			UserID:    user.ID,
			Username:  user.Username,
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
		}
		if err := s.events.PublishUserAdded(ctx, event); err != nil {
			log.Printf("publish user added event failed: %v", err)
		}
	}
}
