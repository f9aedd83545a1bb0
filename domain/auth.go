package domain

import (
	"time"

	"github.com/golang-jwt/jwt"

	"github.com/x-xyz/goauction/base/ctx"
)

type JwtCustomClaims struct {
	UserId string `json:"uid"`
	jwt.StandardClaims
}

type AuthUsecase interface {
	SignToken(ctx ctx.Ctx, userId UserId, ttl time.Duration) (string, error)
	ParseToken(ctx ctx.Ctx, token string) (UserId, error)
}
