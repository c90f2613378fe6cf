package api_models

// PredefinedRole represents a predefined role
type PredefinedRole struct {
	Name        string
	Description string
}

// GetPredefinedRoles returns a list of predefined roles
func GetPredefinedRoles() []PredefinedRole {
	return []PredefinedRole{
		{
			Name:        "admin",
			Description: "Administrator who can change configuration and restart sampling",
		},
		{
			Name:        "operator",
			Description: "Operator with read access to dashboard, history and reports",
		},
	}
}
