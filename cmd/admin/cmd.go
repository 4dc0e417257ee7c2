package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/noah-isme/instituto-admin-api/internal/models"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type userUpserter interface {
	Upsert(ctx context.Context, user *models.User) error
}

type commandLine struct {
	users  userUpserter
	out    io.Writer
	logger *zap.Logger
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  adduser -email EMAIL -name NAME [-role admin|staff] - create or update a back-office user")
	fmt.Fprintln(cli.out, "  hash - print the bcrypt hash of a password")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserCmd.SetOutput(cli.out)
	addUserEmail := addUserCmd.String("email", "", "The user's email. The password will be prompted next.")
	addUserName := addUserCmd.String("name", "", "Display name, also written on cash movements.")
	addUserRole := addUserCmd.String("role", string(models.RoleAdmin), "admin or staff")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		email := strings.ToLower(strings.TrimSpace(*addUserEmail))
		role := models.UserRole(strings.ToLower(strings.TrimSpace(*addUserRole)))
		if email == "" || (role != models.RoleAdmin && role != models.RoleStaff) {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		return cli.addUser(email, strings.TrimSpace(*addUserName), role, pwd)
	case "hash":
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		fmt.Fprintln(cli.out, string(hash))
		return nil
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
		return "", err
	}
	if len(pwd) == 0 {
		cli.printUsage()
		return "", errHelp
	}
	return string(pwd), nil
}
