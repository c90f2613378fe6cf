package rbac

import (
	"errors"

	jwt "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.ApiService/implementation/jwt"
)

// Authorizer provides authorization operations
type Authorizer struct {
	rbacService *Service
	jwtService  *jwt.Service
}

// NewAuthorizer creates a new authorizer
func NewAuthorizer(rbacService *Service, jwtService *jwt.Service) *Authorizer {
	return &Authorizer{
		rbacService: rbacService,
		jwtService:  jwtService,
	}
}

// AuthorizeWithToken checks role using access token
func (a *Authorizer) AuthorizeWithToken(accessToken string, requiredRole string) error {
	accessClaims, err := a.jwtService.ValidateAccessToken(accessToken)
	if err != nil {
		return err
	}

	if accessClaims.Role != requiredRole {
		return errors.New("unauthorized: insufficient role")
	}

	return nil
}

// RequireAdmin checks if user is admin
func (a *Authorizer) RequireAdmin(accessToken string) error {
	return a.AuthorizeWithToken(accessToken, "admin")
}
