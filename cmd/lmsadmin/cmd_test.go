package main

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	inmemdb "github.com/TahsinShan/SAT-ar-Matha/app/database/inmem"
	"github.com/TahsinShan/SAT-ar-Matha/app/models"
	"github.com/TahsinShan/SAT-ar-Matha/app/routes/auth"
)

type cliTest struct {
	name       string
	args       []string // without program name
	pwd        string
	wantErr    error
	wantErrStr string
}

func setup(t *testing.T) (*commandLine, *inmemdb.DB, *[]string) {
	t.Helper()
	db := inmemdb.Open()
	var migrations []string
	cli := &commandLine{
		users:  db,
		hasher: auth.NewHasher(bcrypt.MinCost),
		migrate: func(command string, args ...string) error {
			switch command {
			case "up", "down", "status", "redo", "version":
				migrations = append(migrations, command)
				return nil
			case "up-to", "down-to":
				if len(args) == 0 {
					return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
				}
				migrations = append(migrations, command+" "+args[0])
				return nil
			}
			return fmt.Errorf("%q: no such command", command)
		},
		out: &bytes.Buffer{},
	}
	return cli, db, &migrations
}

func runTests(t *testing.T, cli *commandLine, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			readPasswordFunc = func(int) ([]byte, error) { return []byte(tt.pwd), nil }
			err := cli.run(append([]string{"lmsadmin"}, tt.args...))
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrStr)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _, migrations := setup(t)

	runTests(t, cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: `"lol": no such command`},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
	})
	assert.Equal(t, []string{"up", "down-to 1", "status"}, *migrations)
}

func Test_commandLine_createAdmin(t *testing.T) {
	cli, db, _ := setup(t)

	runTests(t, cli, []cliTest{
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no phone", args: []string{"createadmin"}, wantErr: errHelp},
		{name: "empty password", args: []string{"createadmin", "-phone", "0170000000"}, wantErr: errHelp},
		{name: "short password", args: []string{"createadmin", "-phone", "0170000000"}, pwd: "abc", wantErrStr: "at least 6"},
		{name: "ok", args: []string{"createadmin", "-phone", "0170000000", "-name", "Root"}, pwd: "s3cret!"},
		{name: "duplicate phone", args: []string{"createadmin", "-phone", "0170000000"}, pwd: "s3cret!", wantErrStr: "creating admin"},
	})

	usr, err := db.GetUserByPhone(context.Background(), "0170000000")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, usr.Role)
	assert.Equal(t, "Root", usr.Name)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte("s3cret!")))
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, db, _ := setup(t)
	ctx := context.Background()
	require.NoError(t, db.CreateUser(ctx, &models.User{Name: "Sam", Role: models.RoleStudent, Phone: "0180000000", PasswordHash: "x"}))

	runTests(t, cli, []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "empty password", args: []string{"resetpassword", "-phone", "0180000000"}, wantErr: errHelp},
		{name: "unknown user", args: []string{"resetpassword", "-phone", "0000"}, pwd: "newpass", wantErrStr: "user 0000"},
		{name: "ok", args: []string{"resetpassword", "-phone", "0180000000"}, pwd: "newpass"},
	})

	usr, err := db.GetUserByPhone(ctx, "0180000000")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte("newpass")))
}
