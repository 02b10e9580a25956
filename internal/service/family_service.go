package service

import (
	"errors"
	"fmt"
	"time"

	"phonicsquest/internal/credentials"
	"phonicsquest/internal/models"
	"phonicsquest/internal/repository"
	"phonicsquest/internal/security"
	"phonicsquest/internal/validation"
)

var (
	ErrFamilyNotFound     = errors.New("family not found")
	ErrNotFamilyMember    = errors.New("user is not a member of this family")
	ErrKidNotFound        = errors.New("kid not found")
	ErrKidLoginFailed     = errors.New("invalid username or password")
	ErrKidSessionNotFound = errors.New("kid session not found")
)

// FamilyService handles family and kid business logic
type FamilyService struct {
	familyRepo      *repository.FamilyRepository
	kidRepo         *repository.KidRepository
	sessionDuration time.Duration
}

// NewFamilyService creates a new family service
func NewFamilyService(familyRepo *repository.FamilyRepository, kidRepo *repository.KidRepository, sessionDuration time.Duration) *FamilyService {
	return &FamilyService{
		familyRepo:      familyRepo,
		kidRepo:         kidRepo,
		sessionDuration: sessionDuration,
	}
}

// GetUserFamilies retrieves all families a user belongs to
func (s *FamilyService) GetUserFamilies(userID int64) ([]models.Family, error) {
	families, err := s.familyRepo.GetUserFamilies(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user families: %w", err)
	}
	return families, nil
}

// GetFamily retrieves a family by ID
func (s *FamilyService) GetFamily(familyID int64) (*models.Family, error) {
	family, err := s.familyRepo.GetFamilyByID(familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	if family == nil {
		return nil, ErrFamilyNotFound
	}
	return family, nil
}

// VerifyFamilyAccess checks if a user has access to a family
func (s *FamilyService) VerifyFamilyAccess(userID, familyID int64) error {
	isMember, err := s.familyRepo.IsFamilyMember(userID, familyID)
	if err != nil {
		return fmt.Errorf("failed to verify family access: %w", err)
	}
	if !isMember {
		return ErrNotFamilyMember
	}
	return nil
}

// CreateKid creates a new kid profile in a family with generated credentials
func (s *FamilyService) CreateKid(familyID, creatorUserID int64, name, avatarColor string) (*models.Kid, error) {
	// Verify user has access to family
	if err := s.VerifyFamilyAccess(creatorUserID, familyID); err != nil {
		return nil, err
	}

	if err := validation.ValidateKidName(name); err != nil {
		return nil, err
	}

	// Use default color if not provided
	if avatarColor == "" {
		avatarColor = "#4A90E2"
	}

	// Generate random username and password
	username, err := credentials.GenerateKidUsername()
	if err != nil {
		return nil, fmt.Errorf("failed to generate username: %w", err)
	}

	password, err := credentials.GenerateKidPassword()
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}

	// Ensure username is unique (retry if collision)
	maxRetries := 10
	for i := 0; i < maxRetries; i++ {
		existing, err := s.kidRepo.GetKidByUsername(username)
		if err != nil {
			return nil, fmt.Errorf("failed to check username uniqueness: %w", err)
		}
		if existing == nil {
			break // Username is unique
		}
		// Generate a new username
		username, err = credentials.GenerateKidUsername()
		if err != nil {
			return nil, fmt.Errorf("failed to generate username: %w", err)
		}
	}

	// Create kid
	kid, err := s.kidRepo.CreateKid(familyID, name, username, password, avatarColor)
	if err != nil {
		return nil, fmt.Errorf("failed to create kid: %w", err)
	}

	return kid, nil
}

// GetFamilyKids retrieves all kids in a family
func (s *FamilyService) GetFamilyKids(familyID, userID int64) ([]models.Kid, error) {
	// Verify user has access to family
	if err := s.VerifyFamilyAccess(userID, familyID); err != nil {
		return nil, err
	}

	kids, err := s.kidRepo.GetFamilyKids(familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family kids: %w", err)
	}

	return kids, nil
}

// GetKid retrieves a kid by ID
func (s *FamilyService) GetKid(kidID int64) (*models.Kid, error) {
	kid, err := s.kidRepo.GetKidByID(kidID)
	if err != nil {
		return nil, fmt.Errorf("failed to get kid: %w", err)
	}
	if kid == nil {
		return nil, ErrKidNotFound
	}
	return kid, nil
}

// VerifyKidAccess checks if a user has access to a kid's family and returns
// the kid
func (s *FamilyService) VerifyKidAccess(userID, kidID int64) (*models.Kid, error) {
	kid, err := s.GetKid(kidID)
	if err != nil {
		return nil, err
	}
	if err := s.VerifyFamilyAccess(userID, kid.FamilyID); err != nil {
		return nil, err
	}
	return kid, nil
}

// UpdateKid updates a kid's information
func (s *FamilyService) UpdateKid(kidID, userID int64, name, avatarColor string) error {
	if _, err := s.VerifyKidAccess(userID, kidID); err != nil {
		return err
	}

	if err := validation.ValidateKidName(name); err != nil {
		return err
	}

	if err := s.kidRepo.UpdateKid(kidID, name, avatarColor); err != nil {
		return fmt.Errorf("failed to update kid: %w", err)
	}

	return nil
}

// RegenerateKidPassword generates a new random password for a kid
func (s *FamilyService) RegenerateKidPassword(kidID, userID int64) (string, error) {
	if _, err := s.VerifyKidAccess(userID, kidID); err != nil {
		return "", err
	}

	newPassword, err := credentials.GenerateKidPassword()
	if err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}

	if err := s.kidRepo.UpdateKidPassword(kidID, newPassword); err != nil {
		return "", fmt.Errorf("failed to update kid password: %w", err)
	}

	return newPassword, nil
}

// DeleteKid deletes a kid profile along with its saved progress
func (s *FamilyService) DeleteKid(kidID, userID int64) error {
	if _, err := s.VerifyKidAccess(userID, kidID); err != nil {
		return err
	}

	if err := s.kidRepo.DeleteKid(kidID); err != nil {
		return fmt.Errorf("failed to delete kid: %w", err)
	}

	return nil
}

// LoginKid authenticates a kid by username and password and creates a
// session. Kid passwords are short generated codes, compared directly.
func (s *FamilyService) LoginKid(username, password string) (string, *models.Kid, error) {
	kid, err := s.kidRepo.GetKidByUsername(username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to get kid: %w", err)
	}
	if kid == nil || kid.Password != password {
		return "", nil, ErrKidLoginFailed
	}

	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)
	if err := s.kidRepo.CreateKidSession(sessionID, kid.ID, expiresAt); err != nil {
		return "", nil, fmt.Errorf("failed to create kid session: %w", err)
	}

	return sessionID, kid, nil
}

// ValidateKidSession returns the kid for a live session
func (s *FamilyService) ValidateKidSession(sessionID string) (*models.Kid, error) {
	kidID, err := s.kidRepo.GetKidSession(sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrKidSessionNotFound) {
			return nil, ErrKidSessionNotFound
		}
		return nil, fmt.Errorf("failed to get kid session: %w", err)
	}

	kid, err := s.kidRepo.GetKidByID(kidID)
	if err != nil {
		return nil, fmt.Errorf("failed to get kid: %w", err)
	}
	if kid == nil {
		return nil, ErrKidSessionNotFound
	}
	return kid, nil
}

// LogoutKid invalidates a kid session
func (s *FamilyService) LogoutKid(sessionID string) error {
	if err := s.kidRepo.DeleteKidSession(sessionID); err != nil {
		return fmt.Errorf("failed to logout kid: %w", err)
	}
	return nil
}

// CleanupExpiredKidSessions removes expired kid sessions from the database
func (s *FamilyService) CleanupExpiredKidSessions() error {
	if err := s.kidRepo.DeleteExpiredKidSessions(); err != nil {
		return fmt.Errorf("failed to cleanup kid sessions: %w", err)
	}
	return nil
}
