package models

import (
	"fmt"
	"strings"
	"time"
)

// Privacy levels for photos
const (
	PrivacyPublic      = "public"
	PrivacyFriendsOnly = "friends_only"
	PrivacyPrivate     = "private"
)

// Connection statuses
const (
	ConnectionPending  = "pending"
	ConnectionApproved = "approved"
	ConnectionRejected = "rejected"
)

// Ref is a typed cross-collection reference, stored on the wire as
// "{collection}/{id}". It is parsed once at the store boundary so business
// logic never handles the raw string form.
type Ref struct {
	Collection string
	ID         string
}

// NewRef creates a reference to a record in a collection.
func NewRef(collection, id string) Ref {
	return Ref{Collection: collection, ID: id}
}

// ParseRef parses the "{collection}/{id}" wire form.
func ParseRef(s string) (Ref, error) {
	collection, id, ok := strings.Cut(s, "/")
	if !ok || collection == "" || id == "" {
		return Ref{}, fmt.Errorf("malformed reference %q", s)
	}
	return Ref{Collection: collection, ID: id}, nil
}

// IsZero reports whether the reference is unset.
func (r Ref) IsZero() bool {
	return r.Collection == "" && r.ID == ""
}

// String returns the "{collection}/{id}" wire form, or "" for an unset ref.
func (r Ref) String() string {
	if r.IsZero() {
		return ""
	}
	return r.Collection + "/" + r.ID
}

// MarshalJSON encodes the reference in its wire form.
func (r Ref) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

// UnmarshalJSON decodes the "{collection}/{id}" wire form. An empty string
// decodes to the zero reference (legacy records omit some refs).
func (r *Ref) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" {
		*r = Ref{}
		return nil
	}
	ref, err := ParseRef(s)
	if err != nil {
		return err
	}
	*r = ref
	return nil
}

// User represents an account in the system
type User struct {
	ID        string    `json:"id" mapstructure:"id"`
	Email     string    `json:"email" mapstructure:"email"`
	Nickname  string    `json:"nickname" mapstructure:"nickname"`
	Pets      []Ref     `json:"pets" mapstructure:"pets"`
	Tags      []string  `json:"tags" mapstructure:"tags"`
	Onboarded bool      `json:"onboarded" mapstructure:"onboarded"`
	CreatedAt time.Time `json:"created_at" mapstructure:"created_at"`
}

// Pet represents a pet profile owned by a user
type Pet struct {
	ID        string `json:"id" mapstructure:"id"`
	Name      string `json:"name" mapstructure:"name"`
	Species   string `json:"species" mapstructure:"species"`
	Age       int    `json:"age" mapstructure:"age"`
	Gender    string `json:"gender" mapstructure:"gender"`
	PhotoLink string `json:"photo_link" mapstructure:"photo_link"`
	Owner     Ref    `json:"owner" mapstructure:"owner"`
}

// Photo represents an uploaded photo of a pet
type Photo struct {
	ID          string    `json:"id" mapstructure:"id"`
	Pet         Ref       `json:"pet" mapstructure:"pet"`
	ImageLink   string    `json:"image_link" mapstructure:"image_link"`
	Privacy     string    `json:"privacy" mapstructure:"privacy"`
	Uploader    Ref       `json:"uploader" mapstructure:"uploader"`
	UploadedAt  time.Time `json:"uploaded_at" mapstructure:"uploaded_at"`
	FriendVotes int       `json:"friend_votes" mapstructure:"friend_votes"`
}

// Connection represents a friend relationship between two users. Sender may
// be unset on legacy records, which makes the row unresolvable when the
// caller is the recipient.
type Connection struct {
	ID        string    `json:"id" mapstructure:"id"`
	Sender    Ref       `json:"sender,omitzero" mapstructure:"sender"`
	Recipient Ref       `json:"recipient" mapstructure:"recipient"`
	Status    string    `json:"status" mapstructure:"status"`
	CreatedAt time.Time `json:"created_at" mapstructure:"created_at"`
}

// Contest represents a time-boxed photo contest. At most one contest is
// active at a time; the rotation controller maintains that invariant.
type Contest struct {
	ID       string    `json:"id" mapstructure:"id"`
	Prompt   string    `json:"prompt" mapstructure:"prompt"`
	StartsAt time.Time `json:"starts_at" mapstructure:"starts_at"`
	EndsAt   time.Time `json:"ends_at" mapstructure:"ends_at"`
	Active   bool      `json:"active" mapstructure:"active"`
}

// ContestPhoto represents a photo submitted to a contest
type ContestPhoto struct {
	ID          string    `json:"id" mapstructure:"id"`
	Contest     Ref       `json:"contest" mapstructure:"contest"`
	Photo       Ref       `json:"photo" mapstructure:"photo"`
	Votes       int       `json:"votes" mapstructure:"votes"`
	SubmittedAt time.Time `json:"submitted_at" mapstructure:"submitted_at"`
}

// FeedItem is the denormalized projection of a photo with its pet and owner,
// built fresh per feed request and never persisted. Score is only set for
// ranked contest entries; the caller's own entries keep the zero sentinel.
type FeedItem struct {
	ID            string    `json:"id"`
	PetName       string    `json:"pet_name"`
	OwnerNickname string    `json:"owner_nickname"`
	OwnerID       string    `json:"owner_id"`
	ImageLink     string    `json:"image_link"`
	Votes         int       `json:"votes"`
	Timestamp     time.Time `json:"timestamp"`
	HasVoted      bool      `json:"has_voted"`
	ContestPrompt string    `json:"contest_prompt,omitempty"`
	Score         float64   `json:"score,omitempty"`
}
