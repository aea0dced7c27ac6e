package validation

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type signup struct {
	Username string `json:"username" validate:"required,uname"`
	Email    string `json:"email" validate:"required,basicemail"`
	Password string `json:"password" validate:"required,pwd"`
}

func TestStruct_Valid(t *testing.T) {
	assert.Nil(t, Struct(signup{Username: "bob", Email: "bob@x.io", Password: "12345"}))
	assert.Nil(t, Struct(signup{Username: "bob", Email: "bob@x.io", Password: strings.Repeat("x", MaxPasswordBytes)}))
}

func TestStruct_FieldDetails(t *testing.T) {
	tests := []struct {
		name string
		in   signup
		want map[string]string
	}{
		{
			name: "all missing",
			in:   signup{},
			want: map[string]string{"username": "is required", "email": "is required", "password": "is required"},
		},
		{
			name: "too short",
			in:   signup{Username: "ab", Email: "a@b.co", Password: "1234"},
			want: map[string]string{
				"username": "must be at least 3 characters long",
				"password": "must be at least 5 characters long",
			},
		},
		{
			name: "password over bcrypt limit",
			in:   signup{Username: "abc", Email: "a@b.co", Password: strings.Repeat("x", 73)},
			want: map[string]string{"password": "must be at most 72 bytes long"},
		},
		{
			name: "multibyte password counted in bytes",
			in:   signup{Username: "abc", Email: "a@b.co", Password: strings.Repeat("ж", 37)},
			want: map[string]string{"password": "must be at most 72 bytes long"},
		},
		{
			name: "email without domain dot",
			in:   signup{Username: "abc", Email: "a@b", Password: "12345"},
			want: map[string]string{"email": "must be a valid email"},
		},
		{
			name: "email with whitespace",
			in:   signup{Username: "abc", Email: "a b@c.de", Password: "12345"},
			want: map[string]string{"email": "must be a valid email"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Struct(tt.in))
		})
	}
}

func TestToDetails_NonValidationErrors(t *testing.T) {
	assert.Nil(t, ToDetails(nil))
	assert.Equal(t, map[string]string{"payload": "invalid payload"}, ToDetails(errors.New("boom")))

	err := jsonErr(`{"username":`)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
}

func jsonErr(body string) error {
	var v map[string]any
	return json.NewDecoder(strings.NewReader(body)).Decode(&v)
}
