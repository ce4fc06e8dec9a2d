package models

import (
	"errors"
	"fmt"
	"strings"
)

// Level is the ordered skill level of a user or a rep.
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
	LevelPro          Level = "Pro"
)

var levelOrder = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced, LevelPro}

// ParseLevel maps a free-form level string onto the enum. "Expert" is an alias of Pro.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "beginner":
		return LevelBeginner, true
	case "intermediate":
		return LevelIntermediate, true
	case "advanced":
		return LevelAdvanced, true
	case "pro", "expert":
		return LevelPro, true
	}
	return "", false
}

// Index returns the ordinal of the level, or -1 when it is unknown.
func (l Level) Index() int {
	parsed, ok := ParseLevel(string(l))
	if !ok {
		return -1
	}
	for i, v := range levelOrder {
		if v == parsed {
			return i
		}
	}
	return -1
}

// Compatible reports whether two levels are at most one step apart.
func (l Level) Compatible(other Level) bool {
	a, b := l.Index(), other.Index()
	if a < 0 || b < 0 {
		return false
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= 1
}

// WebPushSubscription is a browser PushSubscription as serialized by the client.
type WebPushSubscription struct {
	Endpoint string      `json:"endpoint" dynamodbav:"endpoint"`
	Keys     WebPushKeys `json:"keys" dynamodbav:"keys"`
}

type WebPushKeys struct {
	Auth   string `json:"auth" dynamodbav:"auth"`
	P256dh string `json:"p256dh" dynamodbav:"p256dh"`
}

type UserProfile struct {
	UserID                string               `json:"userId" dynamodbav:"userId"`
	Name                  string               `json:"name" dynamodbav:"name"`
	Email                 string               `json:"email,omitempty" dynamodbav:"email,omitempty"`
	Age                   int                  `json:"age,omitempty" dynamodbav:"age,omitempty"`
	Gender                string               `json:"gender,omitempty" dynamodbav:"gender,omitempty"`
	LifeStage             string               `json:"lifeStage,omitempty" dynamodbav:"lifeStage,omitempty"`
	JobTitle              string               `json:"jobTitle,omitempty" dynamodbav:"jobTitle,omitempty"`
	Goals                 string               `json:"goals,omitempty" dynamodbav:"goals,omitempty"`
	FocusAreas            []string             `json:"focusAreas" dynamodbav:"focusAreas"` // focus area ids
	CurrentLevel          Level                `json:"currentLevel" dynamodbav:"currentLevel"`
	RepStyle              string               `json:"repStyle,omitempty" dynamodbav:"repStyle,omitempty"`
	Subscribed            bool                 `json:"subscribed" dynamodbav:"subscribed"`
	TrialEndsAt           string               `json:"trialEndsAt,omitempty" dynamodbav:"trialEndsAt,omitempty"`         // RFC3339
	LastFreeRepDate       string               `json:"lastFreeRepDate,omitempty" dynamodbav:"lastFreeRepDate,omitempty"` // YYYY-MM-DD
	AutoGenerate          bool                 `json:"autoGenerate" dynamodbav:"autoGenerate"`
	PreferredDeliveryHour *int                 `json:"preferredDeliveryHour,omitempty" dynamodbav:"preferredDeliveryHour,omitempty"`
	PushEnabled           bool                 `json:"pushEnabled" dynamodbav:"pushEnabled"`
	PushToken             string               `json:"pushToken,omitempty" dynamodbav:"pushToken,omitempty"`
	WebPushSubscription   *WebPushSubscription `json:"webPushSubscription,omitempty" dynamodbav:"webPushSubscription,omitempty"`
	LineUserID            string               `json:"lineUserId,omitempty" dynamodbav:"lineUserId,omitempty"`
	CurrentStreak         int                  `json:"currentStreak" dynamodbav:"currentStreak"`
	LongestStreak         int                  `json:"longestStreak" dynamodbav:"longestStreak"`
	LastCompletedDate     string               `json:"lastCompletedDate,omitempty" dynamodbav:"lastCompletedDate,omitempty"` // YYYY-MM-DD
	UpdatedAt             string               `json:"updatedAt,omitempty" dynamodbav:"updatedAt,omitempty"`
}

// Level returns the profile's level, defaulting to Beginner.
func (p *UserProfile) Level() Level {
	if l, ok := ParseLevel(string(p.CurrentLevel)); ok {
		return l
	}
	return LevelBeginner
}

// HasFocusArea reports whether id is one of the profile's focus areas.
func (p *UserProfile) HasFocusArea(id string) bool {
	for _, fa := range p.FocusAreas {
		if fa == id {
			return true
		}
	}
	return false
}

// ProfileSettings is a partial update of the user-editable delivery settings.
// Nil fields are left unchanged.
type ProfileSettings struct {
	FocusAreas            []string             `json:"focusAreas,omitempty"`
	CurrentLevel          *Level               `json:"currentLevel,omitempty"`
	RepStyle              *string              `json:"repStyle,omitempty"`
	AutoGenerate          *bool                `json:"autoGenerate,omitempty"`
	PreferredDeliveryHour *int                 `json:"preferredDeliveryHour,omitempty"`
	PushEnabled           *bool                `json:"pushEnabled,omitempty"`
	PushToken             *string              `json:"pushToken,omitempty"`
	WebPushSubscription   *WebPushSubscription `json:"webPushSubscription,omitempty"`
	LineUserID            *string              `json:"lineUserId,omitempty"`
}

func (s ProfileSettings) Validate() error {
	if s.PreferredDeliveryHour != nil && (*s.PreferredDeliveryHour < 0 || *s.PreferredDeliveryHour > 23) {
		return fmt.Errorf("preferredDeliveryHour must be between 0 and 23, got %d", *s.PreferredDeliveryHour)
	}
	if s.CurrentLevel != nil {
		if _, ok := ParseLevel(string(*s.CurrentLevel)); !ok {
			return fmt.Errorf("unknown level %q", *s.CurrentLevel)
		}
	}
	if s.WebPushSubscription != nil && s.WebPushSubscription.Endpoint == "" {
		return errors.New("webPushSubscription.endpoint is required")
	}
	return nil
}

// IsEmpty reports whether the update changes nothing.
func (s ProfileSettings) IsEmpty() bool {
	return s.FocusAreas == nil && s.CurrentLevel == nil && s.RepStyle == nil && s.AutoGenerate == nil &&
		s.PreferredDeliveryHour == nil && s.PushEnabled == nil && s.PushToken == nil &&
		s.WebPushSubscription == nil && s.LineUserID == nil
}
