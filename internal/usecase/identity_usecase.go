package usecase

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/qrave1/Gamefinity/internal/domain/engine"
	"github.com/qrave1/Gamefinity/internal/domain/models"
)

const maxDisplayNameRunes = 32

var (
	ErrInvalidDisplayName = errors.New("display name must be 1-32 characters")
	ErrInvalidToken       = errors.New("invalid or expired jwt")
)

type identityClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// IdentityUsecase выпускает и проверяет JWT с {id, displayName}
type IdentityUsecase interface {
	IssueGuest(displayName string) (string, models.Identity, error)
	Issue(identity models.Identity) (string, error)
	Parse(token string) (models.Identity, error)
}

type identityUsecase struct {
	secret []byte
	ttl    time.Duration
	clock  engine.Clock
}

func NewIdentityUsecase(secret []byte, ttl time.Duration, clock engine.Clock) IdentityUsecase {
	return &identityUsecase{secret: secret, ttl: ttl, clock: clock}
}

func (uc *identityUsecase) IssueGuest(displayName string) (string, models.Identity, error) {
	displayName = strings.TrimSpace(displayName)

	n := utf8.RuneCountInString(displayName)
	if n == 0 || n > maxDisplayNameRunes {
		return "", models.Identity{}, ErrInvalidDisplayName
	}

	identity := models.Identity{
		ID:          "guest-" + uuid.NewString(),
		DisplayName: displayName,
	}

	token, err := uc.Issue(identity)
	if err != nil {
		return "", models.Identity{}, err
	}

	return token, identity, nil
}

func (uc *identityUsecase) Issue(identity models.Identity) (string, error) {
	now := uc.clock.Now()

	claims := &identityClaims{
		Name: identity.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(uc.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.secret)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}

	return token, nil
}

func (uc *identityUsecase) Parse(raw string) (models.Identity, error) {
	token, err := jwt.ParseWithClaims(
		raw,
		&identityClaims{},
		func(token *jwt.Token) (any, error) {
			return uc.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(uc.clock.Now),
	)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*identityClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return models.Identity{}, ErrInvalidToken
	}

	return models.Identity{ID: claims.Subject, DisplayName: claims.Name}, nil
}
