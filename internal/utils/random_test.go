package utils

import (
	"regexp"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var usernamePattern = regexp.MustCompile(`^[a-z]+[0-9]{1,3}$`)

func TestGenerateRandomChineseName(t *testing.T) {
	for i := 0; i < 100; i++ {
		name := GenerateRandomChineseName()
		n := utf8.RuneCountInString(name)
		assert.True(t, n == 2 || n == 3, "unexpected name %q", name)
	}
}

func TestGenerateUsernameFromChineseName(t *testing.T) {
	for i := 0; i < 100; i++ {
		username := GenerateUsernameFromChineseName(GenerateRandomChineseName())
		assert.Regexp(t, usernamePattern, username)
	}

	assert.Regexp(t, regexp.MustCompile(`^w[a-z]*l[a-z]*[0-9]{1,3}$`), GenerateUsernameFromChineseName("王磊"))
}

func TestGenerateRandomPassword(t *testing.T) {
	assert.Len(t, GenerateRandomPassword(16), 16)
	assert.Empty(t, GenerateRandomPassword(0))
}

func TestGenerateRandomAccount(t *testing.T) {
	in := GenerateRandomAccount("Secret123", "example.com")

	assert.Equal(t, "Secret123", in.Password)
	assert.Regexp(t, usernamePattern, in.Username)
	assert.Equal(t, in.Username+"@example.com", in.Email)
	require.NotEmpty(t, in.Name)
	assert.Equal(t, in.Position == nil, in.Department == nil)

	random := GenerateRandomAccount("", "example.com")
	assert.Len(t, random.Password, 12)
}
