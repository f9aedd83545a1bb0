package usecase

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/domain"
)

type impl struct {
	jwtSecret []byte
	clock     clock.Clock
}

func New(jwtSecret string, clk clock.Clock) domain.AuthUsecase {
	if clk == nil {
		clk = clock.New()
	}
	return &impl{
		jwtSecret: []byte(jwtSecret),
		clock:     clk,
	}
}

func (im *impl) SignToken(ctx ctx.Ctx, userId domain.UserId, ttl time.Duration) (string, error) {
	if userId.IsEmpty() {
		return "", domain.ErrBadParamInput
	}

	now := im.clock.Now()
	claims := domain.JwtCustomClaims{
		UserId: userId.String(),
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	if ss, err := token.SignedString(im.jwtSecret); err != nil {
		ctx.WithField("err", err).Error("token.SignedString failed")
		return "", err
	} else {
		return ss, nil
	}
}

func (im *impl) ParseToken(ctx ctx.Ctx, str string) (domain.UserId, error) {
	claims := &domain.JwtCustomClaims{}
	parser := &jwt.Parser{SkipClaimsValidation: true}
	token, err := parser.ParseWithClaims(str, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("Unexpected signing method: %v", token.Header["alg"])
		}
		return im.jwtSecret, nil
	})
	if err != nil {
		return "", err
	}

	if !token.Valid || !claims.VerifyExpiresAt(im.clock.Now().Unix(), true) {
		return "", fmt.Errorf("token expired")
	}
	if len(claims.UserId) == 0 {
		return "", fmt.Errorf("token carries no user")
	}

	return domain.UserId(claims.UserId), nil
}
