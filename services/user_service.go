package services

import (
	"context"
	"strings"

	"job-board-api/auth"
	"job-board-api/config"
	"job-board-api/models"
	"job-board-api/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RegisterInput struct {
	FirstName   string      `json:"first_name" binding:"required,max=100"`
	LastName    string      `json:"last_name" binding:"required,max=100"`
	Email       string      `json:"email" binding:"required,email"`
	Password    string      `json:"password" binding:"required,min=8,max=72"`
	Role        models.Role `json:"role" binding:"required,oneof=job-seeker job-poster"`
	CompanyName string      `json:"company_name" binding:"max=200"`
}

// ProfileUpdate holds the fields a user may change. Nil fields are left as is.
// Role and email are not part of it.
type ProfileUpdate struct {
	FirstName          *string   `json:"first_name" binding:"omitempty,max=100"`
	LastName           *string   `json:"last_name" binding:"omitempty,max=100"`
	Phone              *string   `json:"phone" binding:"omitempty,max=50"`
	Location           *string   `json:"location" binding:"omitempty,max=200"`
	Skills             *[]string `json:"skills"`
	Education          *string   `json:"education"`
	Experience         *string   `json:"experience"`
	ProfilePicture     *string   `json:"profile_picture"`
	Resume             *string   `json:"resume"`
	LinkedinURL        *string   `json:"linkedin_url"`
	GithubURL          *string   `json:"github_url"`
	PortfolioURL       *string   `json:"portfolio_url"`
	Bio                *string   `json:"bio" binding:"omitempty,max=500"`
	CompanyName        *string   `json:"company_name" binding:"omitempty,max=200"`
	CompanyDescription *string   `json:"company_description"`
	CompanyWebsite     *string   `json:"company_website"`
	CompanyLogo        *string   `json:"company_logo"`
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type UserService struct {
	db     *gorm.DB
	tokens *auth.TokenManager
}

func NewUserService(db *gorm.DB, tokens *auth.TokenManager) *UserService {
	if db == nil {
		db = config.DB
	}
	return &UserService{db: db, tokens: tokens}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := utils.NormalizeEmail(in.Email)
	if !utils.ValidateEmail(email) {
		return nil, BadRequest("Invalid email format")
	}
	if ok, msg := utils.ValidatePassword(in.Password); !ok {
		return nil, BadRequest(msg)
	}
	if !in.Role.Valid() {
		return nil, BadRequest("Role must be 'job-seeker' or 'job-poster'")
	}
	first := utils.SanitizeInput(in.FirstName)
	last := utils.SanitizeInput(in.LastName)
	if first == "" || last == "" {
		return nil, BadRequest("First name and last name are required")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, Internal(err)
	}

	user := models.User{
		FirstName: first,
		LastName:  last,
		Email:     email,
		Password:  hash,
		Role:      in.Role,
	}
	if company := utils.SanitizeInput(in.CompanyName); company != "" && in.Role == models.RoleJobPoster {
		user.CompanyName = &company
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, Conflict("User already exists with this email")
		}
		return nil, Internal(err)
	}
	return s.issue(&user)
}

func (s *UserService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, BadRequest("Email and password are required")
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if isNotFound(err) {
			return nil, Unauthorized("Invalid credentials")
		}
		return nil, Internal(err)
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, Unauthorized("Invalid credentials")
	}
	return s.issue(&user)
}

func (s *UserService) issue(user *models.User) (*AuthResult, error) {
	if s.tokens == nil {
		return &AuthResult{User: user}, nil
	}
	token, err := s.tokens.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, Internal(err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *UserService) GetProfile(ctx context.Context, id Identity) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id.UserID).Error; err != nil {
		if isNotFound(err) {
			return nil, NotFound("User not found")
		}
		return nil, Internal(err)
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id Identity, in ProfileUpdate) (*models.User, error) {
	updates := map[string]interface{}{}

	setText := func(column string, v *string, required bool) error {
		if v == nil {
			return nil
		}
		val := utils.SanitizeInput(*v)
		if required && val == "" {
			return BadRequest(column + " cannot be empty")
		}
		if val == "" {
			updates[column] = nil
			return nil
		}
		updates[column] = val
		return nil
	}
	setURL := func(column string, v *string) error {
		if v == nil {
			return nil
		}
		if !utils.ValidateURL(*v) {
			return BadRequest("Invalid URL for " + column)
		}
		return setText(column, v, false)
	}

	steps := []error{
		setText("first_name", in.FirstName, true),
		setText("last_name", in.LastName, true),
		setText("phone", in.Phone, false),
		setText("location", in.Location, false),
		setText("education", in.Education, false),
		setText("experience", in.Experience, false),
		setText("bio", in.Bio, false),
		setText("company_name", in.CompanyName, false),
		setText("company_description", in.CompanyDescription, false),
		setURL("profile_picture", in.ProfilePicture),
		setURL("resume", in.Resume),
		setURL("linkedin_url", in.LinkedinURL),
		setURL("github_url", in.GithubURL),
		setURL("portfolio_url", in.PortfolioURL),
		setURL("company_website", in.CompanyWebsite),
		setURL("company_logo", in.CompanyLogo),
	}
	for _, err := range steps {
		if err != nil {
			return nil, err
		}
	}
	if in.Bio != nil && !utils.MaxLength(strings.TrimSpace(*in.Bio), 500) {
		return nil, BadRequest("Bio must be at most 500 characters")
	}
	if in.Skills != nil {
		skills := make([]string, 0, len(*in.Skills))
		for _, sk := range *in.Skills {
			if sk = utils.SanitizeInput(sk); sk != "" {
				skills = append(skills, sk)
			}
		}
		updates["skills"] = datatypes.NewJSONSlice(skills)
	}

	user, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, Internal(err)
	}
	return s.GetProfile(ctx, id)
}

// IdentityByID loads the caller identity for an authenticated user id.
func (s *UserService) IdentityByID(ctx context.Context, userID uint) (Identity, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Select("id", "email", "role", "first_name", "last_name").
		First(&user, userID).Error; err != nil {
		if isNotFound(err) {
			return Identity{}, NotFound("User not found")
		}
		return Identity{}, Internal(err)
	}
	return NewIdentity(&user), nil
}
