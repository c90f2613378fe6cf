package rbac

import (
	api_models "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models/api"
)

// Service provides RBAC operations
type Service struct {
	roles map[string]bool
}

// NewService creates a new RBAC service with predefined roles
func NewService() *Service {
	roles := make(map[string]bool)
	for _, role := range api_models.GetPredefinedRoles() {
		roles[role.Name] = true
	}
	return &Service{roles: roles}
}

// IsValidRole checks if a role is valid
func (s *Service) IsValidRole(roleName string) bool {
	return s.roles[roleName]
}

// IsAdmin checks if a role is admin
func (s *Service) IsAdmin(roleName string) bool {
	return roleName == "admin"
}

// IsOperator checks if a role is operator
func (s *Service) IsOperator(roleName string) bool {
	return roleName == "operator"
}

// AddRole adds a new role
func (s *Service) AddRole(roleName string) {
	s.roles[roleName] = true
}

// GetValidRoles returns all valid roles
func (s *Service) GetValidRoles() []string {
	var roles []string
	for role := range s.roles {
		roles = append(roles, role)
	}
	return roles
}
