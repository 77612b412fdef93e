package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/TahsinShan/SAT-ar-Matha/app/database"
	"github.com/TahsinShan/SAT-ar-Matha/app/routes/auth"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	users   database.UserStore
	hasher  *auth.Hasher
	migrate func(command string, args ...string) error
	out     io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]                - run a goose command (up, down, status, redo, version...)")
	fmt.Fprintln(cli.out, "  createadmin -phone PHONE [-name NAME] - create an administrator, the password is prompted")
	fmt.Fprintln(cli.out, "  resetpassword -phone PHONE            - reset a user's password, the password is prompted")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createAdminCmd := flag.NewFlagSet("createadmin", flag.ContinueOnError)
	createAdminCmd.SetOutput(cli.out)
	createAdminPhone := createAdminCmd.String("phone", "", "The admin's phone number, used to log in.")
	createAdminName := createAdminCmd.String("name", "Administrator", "The admin's display name.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordCmd.SetOutput(cli.out)
	resetPasswordPhone := resetPasswordCmd.String("phone", "", "The user's phone number. The password will be prompted next.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2], args[3:]...)

	case "createadmin":
		if err := createAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createAdminPhone == "" {
			createAdminCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			createAdminCmd.Usage()
			return errHelp
		}
		usr, err := auth.CreateAdmin(context.Background(), cli.users, cli.hasher, *createAdminName, *createAdminPhone, pwd)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Admin %s created (id %d)\n", usr.Phone, usr.ID)
		return nil

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordPhone == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordPhone, pwd)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	return string(pwd), nil
}

func (cli *commandLine) resetPassword(phone, pwd string) error {
	ctx := context.Background()
	usr, err := cli.users.GetUserByPhone(ctx, phone)
	if err != nil {
		return errors.Wrapf(err, "user %s", phone)
	}
	hash, err := cli.hasher.HashPassword(pwd)
	if err != nil {
		return err
	}
	if err = cli.users.UpdateUserPassword(ctx, usr.ID, hash); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Password of %s updated\n", usr.Phone)
	return nil
}
