package forms

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/isdelr/ender-crm/internal/models"
	"github.com/isdelr/ender-crm/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// accountStore is an in-memory UserServiceProvider.
type accountStore struct {
	users map[string]models.User
}

func newAccountStore(usernames ...string) *accountStore {
	s := &accountStore{users: map[string]models.User{}}
	for _, u := range usernames {
		s.users[u] = models.User{ID: "id-" + u, Username: u}
	}
	return s
}

func (s *accountStore) GetUserByID(_ context.Context, id string) (models.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, services.ErrUserNotFound
}

func (s *accountStore) UsernameExists(_ context.Context, username string) (bool, error) {
	_, ok := s.users[username]
	return ok, nil
}

func (s *accountStore) CreateUser(_ context.Context, username, email, _ string) (models.User, error) {
	if _, ok := s.users[username]; ok {
		return models.User{}, services.ErrUsernameTaken
	}
	u := models.User{ID: "id-" + username, Username: username, Email: email}
	s.users[username] = u
	return u, nil
}

func (s *accountStore) AuthenticateUser(context.Context, string, string) (models.User, error) {
	return models.User{}, services.ErrInvalidCredentials
}

func signup(username, email, p1, p2 string) url.Values {
	return url.Values{
		"username":  {username},
		"email":     {email},
		"password1": {p1},
		"password2": {p2},
	}
}

func TestRegistrationForm_CreatesAccount(t *testing.T) {
	accounts := newAccountStore()
	form := NewRegistrationForm(signup("ana", "ana@x.com", "s3cret-pass", "s3cret-pass"))

	user, err := form.Save(context.Background(), accounts)
	require.NoError(t, err)
	assert.Equal(t, "ana", user.Username)
	assert.Contains(t, accounts.users, "ana")
}

func TestRegistrationForm_PasswordMismatch(t *testing.T) {
	accounts := newAccountStore()
	form := NewRegistrationForm(signup("ana", "", "s3cret-pass", "other-pass"))

	_, err := form.Save(context.Background(), accounts)
	require.Error(t, err)
	assert.Equal(t, "The two password fields didn't match.", form.Errors.Get("password2"))
	assert.Empty(t, accounts.users, "no account on mismatch")
}

func TestRegistrationForm_UsernameTaken(t *testing.T) {
	accounts := newAccountStore("ana")
	form := NewRegistrationForm(signup("ana", "", "s3cret-pass", "s3cret-pass"))

	ok, err := form.Validate(context.Background(), accounts)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "A user with that username already exists.", form.Errors.Get("username"))
}

func TestRegistrationForm_FieldRules(t *testing.T) {
	cases := []struct {
		name   string
		values url.Values
		field  string
	}{
		{"missing username", signup("", "", "s3cret-pass", "s3cret-pass"), "username"},
		{"bad username chars", signup("ana silva", "", "s3cret-pass", "s3cret-pass"), "username"},
		{"long username", signup(strings.Repeat("a", 151), "", "s3cret-pass", "s3cret-pass"), "username"},
		{"bad email", signup("ana", "not-an-email", "s3cret-pass", "s3cret-pass"), "email"},
		{"short password", signup("ana", "", "short", "short"), "password1"},
		{"password over bcrypt limit", signup("ana", "", strings.Repeat("p", 73), strings.Repeat("p", 73)), "password1"},
		{"multibyte password over limit", signup("ana", "", strings.Repeat("é", 37), strings.Repeat("é", 37)), "password1"},
		{"missing confirmation", signup("ana", "", "s3cret-pass", ""), "password2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := NewRegistrationForm(tc.values)
			ok, err := form.Validate(context.Background(), newAccountStore())
			require.NoError(t, err)
			assert.False(t, ok)
			assert.NotEmpty(t, form.Errors.Get(tc.field), "errors: %v", form.Errors)
		})
	}
}

func TestRegistrationForm_EmailOptional(t *testing.T) {
	form := NewRegistrationForm(signup("ana.s+1@crm", "", "s3cret-pass", "s3cret-pass"))
	ok, err := form.Validate(context.Background(), newAccountStore())
	require.NoError(t, err)
	assert.True(t, ok, "errors: %v", form.Errors)
}

func TestRegistrationForm_PasswordAtBcryptLimit(t *testing.T) {
	password := strings.Repeat("p", 72)
	form := NewRegistrationForm(signup("ana", "", password, password))
	ok, err := form.Validate(context.Background(), newAccountStore())
	require.NoError(t, err)
	assert.True(t, ok, "errors: %v", form.Errors)
}
