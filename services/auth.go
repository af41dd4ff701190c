package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/linesmerrill/relief-api/databases"
	"github.com/linesmerrill/relief-api/models"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ErrDuplicate is returned when registering an email or wallet that is taken
var ErrDuplicate = databases.ErrDuplicateKey

// Session is the authenticated caller of one request
type Session struct {
	UserID    string
	Email     string
	Name      string
	ExpiresAt time.Time
}

// Expired reports whether the session's token is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Claims are carried in every issued token
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// AuthService registers users and issues and verifies their tokens
type AuthService struct {
	UDB    databases.UserDatabase
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthService signs tokens with secret, valid for ttl
func NewAuthService(udb databases.UserDatabase, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		UDB:    udb,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Register creates an account with a bcrypt hashed password and logs it in.
func (a *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.LoginResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" {
		return nil, validationError("name is required")
	}
	if !emailPattern.MatchString(email) {
		return nil, validationError("a valid email is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, validationError("password must be at least %d characters", minPasswordLength)
	}
	account := strings.TrimSpace(req.Account)
	if account != "" && !walletAddressPattern.MatchString(account) {
		return nil, validationError("invalid wallet account")
	}

	_, err := a.UDB.FindOne(ctx, bson.M{"email": email})
	if err == nil {
		return nil, fmt.Errorf("%w: email %s", ErrDuplicate, email)
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Name:      name,
		Email:     email,
		Mobile:    strings.TrimSpace(req.Mobile),
		Password:  hash,
		Account:   account,
		CreatedAt: a.now().UTC(),
	}
	user.ID, err = a.UDB.InsertOne(ctx, user)
	if errors.Is(err, ErrDuplicate) {
		return nil, fmt.Errorf("%w: email %s", ErrDuplicate, email)
	}
	if err != nil {
		return nil, err
	}
	return a.loginResponse(&user)
}

// Authenticate checks an email and password pair.
func (a *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := a.UDB.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	return user, nil
}

// Login authenticates with email and password and issues a token.
func (a *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	user, err := a.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return a.loginResponse(user)
}

// LoginMeta logs in by wallet account, creating the user on first sight.
func (a *AuthService) LoginMeta(ctx context.Context, req models.MetaLoginRequest) (*models.LoginResponse, error) {
	account := strings.TrimSpace(req.Account)
	if !walletAddressPattern.MatchString(account) {
		return nil, validationError("invalid wallet account")
	}
	user, err := a.UDB.FindOne(ctx, bson.M{"account": account})
	if errors.Is(err, mongo.ErrNoDocuments) {
		user = &models.User{
			Name:      "Wallet " + account[:8],
			Account:   account,
			CreatedAt: a.now().UTC(),
		}
		user.ID, err = a.UDB.InsertOne(ctx, *user)
		if errors.Is(err, ErrDuplicate) {
			// a concurrent first login created the wallet user
			user, err = a.UDB.FindOne(ctx, bson.M{"account": account})
		}
	}
	if err != nil {
		return nil, err
	}
	return a.loginResponse(user)
}

// Profile returns the stored user behind a session.
func (a *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrNotFound
	}
	user, err := a.UDB.FindOne(ctx, bson.M{"_id": oid})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	return user, err
}

// UpdateProfile changes the name, mobile or wallet account of a user and
// returns the stored result.
func (a *AuthService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrNotFound
	}

	set := bson.M{}
	unset := bson.M{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, validationError("name cannot be empty")
		}
		set["name"] = name
	}
	if req.Mobile != nil {
		set["mobile"] = strings.TrimSpace(*req.Mobile)
	}
	if req.Account != nil {
		account := strings.TrimSpace(*req.Account)
		switch {
		case account == "":
			// the account index is sparse, so an empty string would collide
			unset["account"] = ""
		case !walletAddressPattern.MatchString(account):
			return nil, validationError("invalid wallet account")
		default:
			set["account"] = account
		}
	}
	if len(set) == 0 && len(unset) == 0 {
		return nil, validationError("nothing to update")
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	err = a.UDB.UpdateOne(ctx, oid, update)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return nil, fmt.Errorf("%w: wallet account is linked to another user", ErrDuplicate)
	}
	if err != nil {
		return nil, err
	}
	return a.Profile(ctx, userID)
}

// IssueToken signs a token for user that expires after the configured ttl.
func (a *AuthService) IssueToken(user *models.User) (string, time.Time, error) {
	now := a.now()
	expiresAt := now.Add(a.ttl)
	claims := Claims{
		Email: user.Email,
		Name:  user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseToken verifies the signature and expiry of token. An expired token
// yields ErrAuthExpired, anything else that fails ErrUnauthorized.
func (a *AuthService) ParseToken(token string) (Session, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now), jwt.WithExpirationRequired())
	if errors.Is(err, jwt.ErrTokenExpired) {
		return Session{}, ErrAuthExpired
	}
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return Session{}, fmt.Errorf("%w: token has no subject", ErrUnauthorized)
	}
	return Session{
		UserID:    claims.Subject,
		Email:     claims.Email,
		Name:      claims.Name,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// WithClock replaces the clock used to issue and check tokens.
func (a *AuthService) WithClock(now func() time.Time) *AuthService {
	a.now = now
	return a
}

// Now is the clock tokens are checked against.
func (a *AuthService) Now() time.Time {
	return a.now()
}

func (a *AuthService) loginResponse(user *models.User) (*models.LoginResponse, error) {
	token, _, err := a.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &models.LoginResponse{Token: token, User: *user}, nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
