package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	apikeyDomain "github.com/allisson/appconfig/internal/apikey/domain"
	apperrors "github.com/allisson/appconfig/internal/errors"
	keyDomain "github.com/allisson/appconfig/internal/key/domain"
)

// Claims is the payload of an API key token.
type Claims struct {
	jwt.RegisteredClaims
	AppCode   string            `json:"appCode"`
	Namespace string            `json:"namespace"`
	Type      apikeyDomain.Type `json:"type"`
	Key       string            `json:"key"`
}

// KeyResolver resolves the signing secret of a key type.
type KeyResolver interface {
	GetRotateKey(ctx context.Context, keyType string, opts keyDomain.RotateOptions) (*keyDomain.RotateKey, error)
}

// tokenService implements TokenService with golang-jwt and the rotating key resolver.
type tokenService struct {
	resolver KeyResolver
	policy   keyDomain.KeyPolicy
}

// NewTokenService creates a new TokenService. The policy sizes and rotates the
// JWT keys bootstrapped on first use.
func NewTokenService(resolver KeyResolver, policy keyDomain.KeyPolicy) TokenService {
	return &tokenService{
		resolver: resolver,
		policy:   policy,
	}
}

func (t *tokenService) Sign(ctx context.Context, claims *Claims) (string, error) {
	keyType, err := keyDomain.TypeFor(keyDomain.PurposeAPIKeyJWT, claims.AppCode, claims.Namespace)
	if err != nil {
		return "", err
	}

	opts := t.policy.RotateOptions()
	key, err := t.resolver.GetRotateKey(ctx, keyType, opts)
	if err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = strconv.FormatUint(uint64(key.Version), 10)

	signed, err := token.SignedString([]byte(key.Secret))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign api key token")
	}
	return signed, nil
}

func (t *tokenService) Parse(ctx context.Context, appCode, namespace, token string) (*Claims, error) {
	keyType, err := keyDomain.TypeFor(keyDomain.PurposeAPIKeyJWT, appCode, namespace)
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (any, error) {
		return t.verificationSecret(ctx, keyType, token)
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, apperrors.Wrap(apikeyDomain.ErrPayloadExtractFailed, err.Error())
	}
	if !parsed.Valid {
		return nil, apikeyDomain.ErrPayloadExtractFailed
	}

	return claims, nil
}

// verificationSecret resolves the key version named by the "kid" header. A key
// renewed during the lookup hands back its expired secret once.
func (t *tokenService) verificationSecret(ctx context.Context, keyType string, token *jwt.Token) ([]byte, error) {
	kid, ok := token.Header["kid"].(string)
	if !ok {
		return nil, fmt.Errorf("missing kid header")
	}

	version64, err := strconv.ParseUint(kid, 10, 0)
	if err != nil || version64 == 0 {
		return nil, fmt.Errorf("invalid kid header %q", kid)
	}
	version := uint(version64)

	opts := t.policy.RotateOptions()
	opts.Version = &version

	key, err := t.resolver.GetRotateKey(ctx, keyType, opts)
	if err != nil {
		return nil, err
	}

	switch {
	case key.ExpiredKey != nil:
		if key.ExpiredKey.Version != version {
			return nil, fmt.Errorf("%w: renewed version %d, token version %d",
				keyDomain.ErrKeyNotExist, key.ExpiredKey.Version, version)
		}
	case key.Version != version:
		return nil, fmt.Errorf("%w: resolved version %d, token version %d",
			keyDomain.ErrKeyNotExist, key.Version, version)
	}
	return []byte(key.DecryptSecret()), nil
}
