package models

import "time"

// User is a parent account.
type User struct {
	ID            int64
	Email         string
	PasswordHash  string
	Name          string
	OAuthProvider string
	OAuthSubject  string
	CreatedAt     time.Time
}

// Session is a parent login session.
type Session struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Family groups parents and kids; parents join by code.
type Family struct {
	ID        int64
	Name      string
	Code      string
	CreatedBy int64
	CreatedAt time.Time
}

// FamilyMember links a parent to a family.
type FamilyMember struct {
	FamilyID int64
	UserID   int64
	Role     string
	JoinedAt time.Time
}

// Kid is a child profile. Each kid owns exactly one AppState snapshot.
type Kid struct {
	ID          int64
	FamilyID    int64
	Name        string
	Username    string
	Password    string
	AvatarColor string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
