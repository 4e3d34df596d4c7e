package directory

import (
	"encoding/json"
	"slices"
	"time"
)

// SkillLevel is the self-declared quilting experience of a member.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
	SkillExpert       SkillLevel = "expert"
)

// Valid reports whether s is one of the known skill levels.
func (s SkillLevel) Valid() bool {
	switch s {
	case SkillBeginner, SkillIntermediate, SkillAdvanced, SkillExpert:
		return true
	}
	return false
}

// Profile is the free-form part of a member page.
type Profile struct {
	Avatar   string `json:"avatar"`
	Bio      string `json:"bio"`
	Location string `json:"location"`
	Website  string `json:"website"`
}

// Stats are the counters shown on the dashboard.
type Stats struct {
	PatternsDownloaded int       `json:"patternsDownloaded"`
	ProjectsCompleted  int       `json:"projectsCompleted"`
	Favorites          int       `json:"favorites"`
	JoinDate           time.Time `json:"joinDate"`
}

// DownloadEntry records one pattern download by a member.
type DownloadEntry struct {
	PatternID string    `json:"patternId"`
	Timestamp time.Time `json:"timestamp"`
}

// User is a member of the mock user collection.
type User struct {
	ID           int64           `json:"id"`
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName"`
	Email        string          `json:"email"`
	Username     string          `json:"username"`
	PasswordHash string          `json:"passwordHash,omitempty"`
	SkillLevel   SkillLevel      `json:"skillLevel"`
	Newsletter   bool            `json:"newsletter"`
	CreatedAt    time.Time       `json:"createdAt"`
	Profile      Profile         `json:"profile"`
	Stats        Stats           `json:"stats"`
	Favorites    []string        `json:"favorites"`
	Downloads    []DownloadEntry `json:"downloads"`
}

// FullName returns "First Last".
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// HasFavorite reports whether patternID is among the favorites.
func (u *User) HasFavorite(patternID string) bool {
	return slices.Contains(u.Favorites, patternID)
}

// Public returns a deep copy of u without credentials, safe to send to clients.
func (u *User) Public() *User {
	c := *u
	c.PasswordHash = ""
	c.Favorites = slices.Clone(u.Favorites)
	c.Downloads = slices.Clone(u.Downloads)
	if c.Favorites == nil {
		c.Favorites = []string{}
	}
	if c.Downloads == nil {
		c.Downloads = []DownloadEntry{}
	}
	return &c
}

// SessionRef is what the currentUser slot of a profile holds. The user record
// is always resolved from the collection.
type SessionRef struct {
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	StartedAt time.Time `json:"startedAt"`
}

// RegisterInput is the submitted registration form.
type RegisterInput struct {
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Email           string     `json:"email"`
	Username        string     `json:"username"`
	Password        string     `json:"password"`
	ConfirmPassword string     `json:"confirmPassword"`
	SkillLevel      SkillLevel `json:"skillLevel"`
	Newsletter      bool       `json:"newsletter"`
	AgreeTerms      bool       `json:"terms"`
}

// ProfilePatch lists the member-editable fields. Nil fields are left alone;
// Profile replaces the whole sub-record.
type ProfilePatch struct {
	FirstName  *string     `json:"firstName,omitempty"`
	LastName   *string     `json:"lastName,omitempty"`
	SkillLevel *SkillLevel `json:"skillLevel,omitempty"`
	Newsletter *bool       `json:"newsletter,omitempty"`
	Profile    *Profile    `json:"profile,omitempty"`
}

// FavoriteResult is the outcome of a favorite toggle.
type FavoriteResult int

const (
	FavoriteAdded FavoriteResult = iota + 1
	FavoriteAlreadyPresent
	FavoriteRemoved
	FavoriteNotPresent
)

func (r FavoriteResult) String() string {
	switch r {
	case FavoriteAdded:
		return "added"
	case FavoriteAlreadyPresent:
		return "already_present"
	case FavoriteRemoved:
		return "removed"
	case FavoriteNotPresent:
		return "not_present"
	}
	return "unknown"
}

// PublicCollection re-encodes a stored user collection without credentials.
func PublicCollection(raw []byte) ([]byte, error) {
	var users []User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, err
	}
	public := make([]*User, len(users))
	for i := range users {
		public[i] = users[i].Public()
	}
	return json.Marshal(public)
}
