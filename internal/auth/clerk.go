package auth

import (
	"context"
	"strings"

	"statshub-app/internal/apperr"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/jwt"
	"github.com/clerk/clerk-sdk-go/v2/user"
	"github.com/rs/zerolog/log"
)

// ClerkProvider verifies Clerk session tokens and loads the user's primary
// email and name from Clerk.
type ClerkProvider struct{}

func NewClerkProvider(secretKey string) (*ClerkProvider, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, apperr.Validation("clerk secret key is required")
	}
	clerk.SetKey(secretKey)
	return &ClerkProvider{}, nil
}

func (p *ClerkProvider) Authenticate(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, apperr.ErrUnauthenticated
	}
	claims, err := jwt.Verify(ctx, &jwt.VerifyParams{Token: token})
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("invalid clerk session token")
		return Identity{}, apperr.ErrUnauthenticated
	}
	clerkUser, err := user.Get(ctx, claims.Subject)
	if err != nil {
		return Identity{}, apperr.External("load clerk user", err)
	}
	return identityFromClerk(clerkUser), nil
}

func identityFromClerk(u *clerk.User) Identity {
	id := Identity{UID: u.ID}
	if u.PrimaryEmailAddressID != nil {
		for _, email := range u.EmailAddresses {
			if email.ID == *u.PrimaryEmailAddressID {
				id.Email = email.EmailAddress
				break
			}
		}
	}
	if id.Email == "" && len(u.EmailAddresses) > 0 {
		id.Email = u.EmailAddresses[0].EmailAddress
	}
	var parts []string
	if u.FirstName != nil && *u.FirstName != "" {
		parts = append(parts, *u.FirstName)
	}
	if u.LastName != nil && *u.LastName != "" {
		parts = append(parts, *u.LastName)
	}
	id.DisplayName = strings.Join(parts, " ")
	return id
}
