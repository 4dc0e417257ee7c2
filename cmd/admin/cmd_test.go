package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/instituto-admin-api/internal/models"
)

type fakeUsers struct {
	saved []models.User
	err   error
}

func (f *fakeUsers) Upsert(ctx context.Context, user *models.User) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, *user)
	return nil
}

func setup(t *testing.T, password string) (*commandLine, *fakeUsers, *bytes.Buffer) {
	t.Helper()
	orig := readPasswordFunc
	readPasswordFunc = func(int) ([]byte, error) { return []byte(password), nil }
	t.Cleanup(func() { readPasswordFunc = orig })

	users := &fakeUsers{}
	out := &bytes.Buffer{}
	return &commandLine{users: users, out: out, logger: zap.NewNop()}, users, out
}

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
}

func Test_commandLine_usage(t *testing.T) {
	cli, users, _ := setup(t, "secreto")

	tests := []cliTest{
		{name: "no command", args: nil, wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "adduser: no email", args: []string{"adduser", "-name", "Ana"}, wantErr: errHelp},
		{name: "adduser: bad role", args: []string{"adduser", "-email", "ana@instituto.test", "-role", "root"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(append([]string{"admin"}, tt.args...))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Empty(t, users.saved)
}

func Test_commandLine_adduser(t *testing.T) {
	cli, users, out := setup(t, "secreto")

	err := cli.run([]string{"admin", "adduser", "-email", " Ana@Instituto.test ", "-name", "Ana Paz", "-role", "staff"})
	require.NoError(t, err)

	require.Len(t, users.saved, 1)
	saved := users.saved[0]
	assert.Equal(t, "ana@instituto.test", saved.Email)
	assert.Equal(t, "Ana Paz", saved.Name)
	assert.Equal(t, models.RoleStaff, saved.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.PasswordHash), []byte("secreto")))
	assert.Contains(t, out.String(), "user ana@instituto.test saved with role staff")
}

func Test_commandLine_adduserDefaultsAndErrors(t *testing.T) {
	cli, users, _ := setup(t, "secreto")

	require.NoError(t, cli.run([]string{"admin", "adduser", "-email", "root@instituto.test"}))
	require.Len(t, users.saved, 1)
	assert.Equal(t, models.RoleAdmin, users.saved[0].Role)
	assert.Equal(t, "root@instituto.test", users.saved[0].Name)

	users.err = errors.New("db down")
	assert.EqualError(t, cli.run([]string{"admin", "adduser", "-email", "root@instituto.test"}), "db down")
}

func Test_commandLine_emptyPassword(t *testing.T) {
	cli, users, _ := setup(t, "")

	err := cli.run([]string{"admin", "adduser", "-email", "ana@instituto.test"})
	assert.ErrorIs(t, err, errHelp)
	assert.Empty(t, users.saved)
}

func Test_commandLine_hash(t *testing.T) {
	cli, _, out := setup(t, "secreto")

	require.NoError(t, cli.run([]string{"admin", "hash"}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	hash := lines[len(lines)-1]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("secreto")))
}
