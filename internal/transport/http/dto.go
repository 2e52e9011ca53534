package http

import (
	"ecommerce-api/internal/service"
)

// CreateRoleRequestDTO represents the HTTP request for creating a role
type CreateRoleRequestDTO struct {
	Name        string   `json:"name" validate:"required,min=2,max=50"`
	Type        string   `json:"type" validate:"required,min=2,max=50"`
	Description string   `json:"description" validate:"max=500"`
	Actions     []string `json:"actions" validate:"omitempty,dive,required,max=200"`
}

// ToNewRole converts the DTO to the service payload
func (dto *CreateRoleRequestDTO) ToNewRole() service.NewRole {
	return service.NewRole{
		Name:        dto.Name,
		Type:        dto.Type,
		Description: dto.Description,
		Actions:     dto.Actions,
	}
}

// AssignRoleRequestDTO represents the HTTP request for assigning a role to a user
type AssignRoleRequestDTO struct {
	RoleID uint `json:"roleId" validate:"required,gt=0"`
}

// MergeCartRequestDTO represents the HTTP request for merging a guest cart at login
type MergeCartRequestDTO struct {
	SessionID string `json:"sessionId" validate:"required,session_id"`
}

// HealthResponseDTO represents the health check response
type HealthResponseDTO struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Version  string `json:"version,omitempty"`
}
