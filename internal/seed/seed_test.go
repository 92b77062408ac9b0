package seed

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/oracle312/AuthService/internal/auth"
	"github.com/oracle312/AuthService/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSigner struct {
	mu     sync.Mutex
	inputs []auth.SignupInput
	taken  map[string]bool
	failOn string
	nextID int64
}

func newFakeSigner() *fakeSigner {
	return &fakeSigner{taken: make(map[string]bool)}
}

func (f *fakeSigner) Signup(_ context.Context, in auth.SignupInput) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if in.Username == f.failOn {
		return nil, errors.New("db down")
	}
	if f.taken[in.Username] || f.taken[in.Email] {
		return nil, domain.ErrDuplicateUser
	}
	f.taken[in.Username] = true
	f.taken[in.Email] = true
	f.inputs = append(f.inputs, in)
	f.nextID++
	return &domain.User{ID: f.nextID, Username: in.Username}, nil
}

const accountsCSV = `username,password,name,email,position,department
alice,Secret123,Alice A,alice@x.com,,
bob,pw,Bob,bob@x.com,Engineer,R&D
alice,other,Alice B,alice2@x.com,,
carol,,Carol,carol@x.com,,
`

func TestSeedFromCSV(t *testing.T) {
	s := newFakeSigner()

	n, err := SeedFromCSV(context.Background(), s, strings.NewReader(accountsCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, s.inputs, 2)
	assert.Equal(t, "alice", s.inputs[0].Username)
	assert.Nil(t, s.inputs[0].Position)
	assert.Nil(t, s.inputs[0].Department)

	require.NotNil(t, s.inputs[1].Position)
	assert.Equal(t, "Engineer", *s.inputs[1].Position)
	assert.Equal(t, "R&D", *s.inputs[1].Department)
}

func TestSeedFromCSV_ColumnOrder(t *testing.T) {
	s := newFakeSigner()
	data := "email,name,username,password,department,position\nalice@x.com,Alice A,alice,Secret123,Ops,Lead\n"

	n, err := SeedFromCSV(context.Background(), s, strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "alice@x.com", s.inputs[0].Email)
	assert.Equal(t, "Lead", *s.inputs[0].Position)
}

func TestSeedFromCSV_MissingColumn(t *testing.T) {
	_, err := SeedFromCSV(context.Background(), newFakeSigner(), strings.NewReader("username,password,name\n"))
	require.Error(t, err)
}

func TestSeedFromCSV_SignupError(t *testing.T) {
	s := newFakeSigner()
	s.failOn = "bob"

	n, err := SeedFromCSV(context.Background(), s, strings.NewReader(accountsCSV))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
	assert.Equal(t, 1, n)
}

func TestSeedRandom(t *testing.T) {
	s := newFakeSigner()

	n, err := SeedRandom(context.Background(), s, 20, "Secret123", "example.com")
	require.NoError(t, err)
	assert.Equal(t, len(s.inputs), n)
	assert.LessOrEqual(t, n, 20)
	for _, in := range s.inputs {
		assert.True(t, strings.HasSuffix(in.Email, "@example.com"))
		assert.Equal(t, "Secret123", in.Password)
	}
}
