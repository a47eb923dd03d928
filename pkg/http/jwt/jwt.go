// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-arcade/workhub/pkg/id"
	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	issuer = "workhub"
)

var (
	ErrTokenExpired = jwt.ErrTokenExpired
	ErrInvalidToken = errors.New("invalid token")
)

// AuthClaims identify the principal of a request. Both tokens of a pair
// share the session id carried in the jti claim.
type AuthClaims struct {
	UserId         uint64  `json:"userId"`
	Username       string  `json:"username"`
	Role           string  `json:"role"`
	OrganizationId *uint64 `json:"orgId,omitempty"`
	DepartmentId   *uint64 `json:"deptId,omitempty"`
	TokenType      string  `json:"typ"`
	jwt.RegisteredClaims
}

func (a *AuthClaims) SessionId() string {
	return a.ID
}

type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
	SessionId        string    `json:"-"`
}

// GenToken signs a new access/refresh pair for identity under a fresh session id.
func GenToken(identity AuthClaims, secretKey []byte, accessExpire, refreshExpire time.Duration) (*TokenPair, error) {
	now := time.Now()
	session := id.GetXid()
	pair := &TokenPair{
		AccessExpiresAt:  now.Add(accessExpire),
		RefreshExpiresAt: now.Add(refreshExpire),
		SessionId:        session,
	}

	sign := func(typ string, exp time.Time) (string, error) {
		claims := identity
		claims.TokenType = typ
		claims.RegisteredClaims = jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   fmt.Sprintf("%d", identity.UserId),
			ID:        session,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		}
		return jwt.NewWithClaims(jwt.SigningMethodHS256, &claims).SignedString(secretKey)
	}

	var err error
	if pair.AccessToken, err = sign(TokenTypeAccess, pair.AccessExpiresAt); err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	if pair.RefreshToken, err = sign(TokenTypeRefresh, pair.RefreshExpiresAt); err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return pair, nil
}

// ParseToken validates the signature and expiry of token and checks its type.
func ParseToken(token, secretKey, tokenType string) (*AuthClaims, error) {
	claims := new(AuthClaims)
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secretKey), nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.TokenType != tokenType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
