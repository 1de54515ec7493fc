package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Attribute / column names used in partial update maps. Both stores use the
// same names.
const (
	FieldOTP           = "otp"
	FieldVerified      = "verified"
	FieldQuestionnaire = "questionnaire"
	FieldUpdatedAt     = "updated_at"
)

// Fields a partial update may touch. Identity fields (id, email) are fixed at
// creation.
var updatableFields = map[string]bool{
	FieldOTP:           true,
	FieldVerified:      true,
	FieldQuestionnaire: true,
	FieldUpdatedAt:     true,
}

// CheckUpdate rejects an empty partial update or one naming a field outside
// the updatable set.
func CheckUpdate(updates map[string]interface{}) error {
	if len(updates) == 0 {
		return fmt.Errorf("no fields to update: %w", ErrBadRequest)
	}
	for k := range updates {
		if !updatableFields[k] {
			return fmt.Errorf("field %q is not updatable: %w", k, ErrBadRequest)
		}
	}
	return nil
}

// User is one registrant. OTP is nil until the first code is issued and is
// overwritten on every issuance. Questionnaire holds the JSON-encoded answers
// and stays nil until onboarding completes.
type User struct {
	UserID        string    `json:"id" dynamodbav:"user_id"`
	Name          string    `json:"name" dynamodbav:"name"`
	Age           int       `json:"age" dynamodbav:"age"`
	CollegeYear   string    `json:"college_year" dynamodbav:"college_year"`
	Email         string    `json:"email" dynamodbav:"email"`
	OTP           *string   `json:"-" dynamodbav:"otp,omitempty"`
	Verified      bool      `json:"verified" dynamodbav:"verified"`
	Questionnaire *string   `json:"questionnaire,omitempty" dynamodbav:"questionnaire,omitempty"`
	CreatedAt     time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time `json:"updated" dynamodbav:"updated_at"`
}

// Answers decodes the stored questionnaire. It returns nil when none was
// submitted yet.
func (u *User) Answers() (map[string]string, error) {
	if u.Questionnaire == nil {
		return nil, nil
	}
	var answers map[string]string
	if err := json.Unmarshal([]byte(*u.Questionnaire), &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

// HasQuestionnaire reports whether onboarding answers were stored.
func (u *User) HasQuestionnaire() bool { return u.Questionnaire != nil }

// RegisterRequest carries the registration form. Length limits follow the
// users table column sizes.
type RegisterRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Age         int    `json:"age" validate:"required,gt=0"`
	CollegeYear string `json:"college_year" validate:"required,max=20"`
	Email       string `json:"email" validate:"required,email,max=120"`
}
