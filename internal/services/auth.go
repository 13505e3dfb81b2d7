package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	userrepo "github.com/yungbote/healthyback-backend/internal/data/repos/user"
	types "github.com/yungbote/healthyback-backend/internal/domain"
	pkgerrors "github.com/yungbote/healthyback-backend/internal/pkg/errors"
	"github.com/yungbote/healthyback-backend/internal/platform/apierr"
	"github.com/yungbote/healthyback-backend/internal/platform/logger"
	"github.com/yungbote/healthyback-backend/internal/requestdata"
)

// passwordHashCost matches the cost the existing user rows were hashed with.
const passwordHashCost = 10

type AuthService interface {
	Register(ctx context.Context, email, password string) (string, *types.User, error)
	Login(ctx context.Context, email, password string) (string, *types.User, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	log            *logger.Logger
	userRepo       userrepo.UserRepo
	jwtSecretKey   string
	accessTokenTTL time.Duration
}

func NewAuthService(baseLog *logger.Logger, userRepo userrepo.UserRepo, jwtSecretKey string, accessTokenTTL time.Duration) AuthService {
	serviceLog := baseLog.With("service", "AuthService")
	return &authService{
		log:            serviceLog,
		userRepo:       userRepo,
		jwtSecretKey:   jwtSecretKey,
		accessTokenTTL: accessTokenTTL,
	}
}

func (as *authService) Register(ctx context.Context, email, password string) (string, *types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("email and password required: %w", pkgerrors.ErrInvalidArgument)
	}

	exists, err := as.userRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return "", nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return "", nil, fmt.Errorf("user already exists: %w", pkgerrors.ErrInvalidArgument)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	user := &types.User{
		ID:       uuid.New(),
		Email:    email,
		Password: string(hash),
	}
	if _, err := as.userRepo.Create(ctx, nil, []*types.User{user}); err != nil {
		return "", nil, fmt.Errorf("create user: %w", err)
	}

	token, err := as.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	as.log.Info("Registered user", "user_id", user.ID.String())
	return token, user, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (string, *types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("email and password required: %w", pkgerrors.ErrInvalidArgument)
	}

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return "", nil, fmt.Errorf("lookup user: %w", err)
	}
	if len(users) == 0 {
		return "", nil, fmt.Errorf("invalid credentials: %w", pkgerrors.ErrUnauthorized)
	}
	user := users[0]

	// A row with a missing or mangled hash can never authenticate; flag it
	// as data corruption instead of reporting bad credentials forever.
	if !strings.HasPrefix(user.Password, "$2") {
		as.log.Error("User row has corrupt password hash", "user_id", user.ID.String())
		return "", nil, apierr.New(http.StatusInternalServerError, apierr.CodeStoreFault, fmt.Errorf("auth data corruption"))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("invalid credentials: %w", pkgerrors.ErrUnauthorized)
	}

	token, err := as.generateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// SetContextFromToken validates the token and attaches the request identity,
// including both the stable owner key and the email-derived legacy key.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil || !token.Valid {
		return ctx, fmt.Errorf("invalid token: %w", pkgerrors.ErrUnauthorized)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx, fmt.Errorf("invalid token claims: %w", pkgerrors.ErrUnauthorized)
	}
	idStr, _ := claims["id"].(string)
	email, _ := claims["email"].(string)
	userID, err := uuid.Parse(idStr)
	if err != nil {
		return ctx, fmt.Errorf("invalid token subject: %w", pkgerrors.ErrUnauthorized)
	}

	rd := &requestdata.RequestData{
		TokenString:    tokenString,
		UserID:         userID,
		OwnerKey:       userID.String(),
		LegacyOwnerKey: strings.ToLower(email),
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) generateToken(user *types.User) (string, error) {
	claims := jwt.MapClaims{
		"id":    user.OwnerKey(),
		"email": user.Email,
		"exp":   time.Now().Add(as.accessTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
