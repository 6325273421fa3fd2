package services

import "job-board-api/models"

// Identity is the authenticated caller of a service operation.
type Identity struct {
	UserID    uint
	Role      models.Role
	Email     string
	FirstName string
	LastName  string
}

func NewIdentity(u *models.User) Identity {
	if u == nil {
		return Identity{}
	}
	return Identity{
		UserID:    u.ID,
		Role:      u.Role,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func (id Identity) IsSeeker() bool { return id.Role == models.RoleJobSeeker }
func (id Identity) IsPoster() bool { return id.Role == models.RoleJobPoster }

func (id Identity) DisplayName() string {
	u := models.User{FirstName: id.FirstName, LastName: id.LastName}
	return u.DisplayName()
}
