// Package jwt glues the hertz jwt middleware to the services' actor model.
// Token issuance lives with the external auth service; this side only parses
// access tokens and exposes the authenticated actor id.
package jwt

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/jwt"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"VidTube.com/pkg/errno"
)

const identityKey = "user_id"

var AccessTokenJwt *jwt.HertzJWTMiddleware

func AccessTokenJwtInit(secret string) {
	var err error
	AccessTokenJwt, err = jwt.New(&jwt.HertzJWTMiddleware{
		Realm:       "vidtube",
		Key:         []byte(secret),
		Timeout:     24 * time.Hour,
		MaxRefresh:  time.Hour,
		IdentityKey: identityKey,
		IdentityHandler: func(ctx context.Context, c *app.RequestContext) interface{} {
			claims := jwt.ExtractClaims(ctx, c)
			return claims[identityKey]
		},
		Unauthorized: func(ctx context.Context, c *app.RequestContext, code int, message string) {
			c.JSON(code, map[string]interface{}{
				"status_code": errno.UnauthorizedErrCode,
				"message":     message,
				"success":     false,
			})
		},
	})
	if err != nil {
		logrus.Fatalf("failed to init access token jwt: %v", err)
	}
}

// GetActorID returns the authenticated actor's id from the request context.
func GetActorID(ctx context.Context, c *app.RequestContext) (primitive.ObjectID, error) {
	v, ok := c.Get(identityKey)
	if !ok {
		return primitive.NilObjectID, errno.UnauthorizedErr.WithMessage("missing identity")
	}
	hex, ok := v.(string)
	if !ok {
		return primitive.NilObjectID, errno.UnauthorizedErr.WithMessage("malformed identity")
	}
	actor, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, errno.UnauthorizedErr.WithMessage("malformed identity")
	}
	return actor, nil
}
