package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/instituto-admin-api/internal/models"
)

// addUser creates the user or replaces the name, role and password of the
// one already registered under email.
func (cli *commandLine) addUser(email, name string, role models.UserRole, pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if name == "" {
		name = email
	}
	usr := &models.User{Email: email, Name: name, Role: role, PasswordHash: string(hash)}
	if err := cli.users.Upsert(context.Background(), usr); err != nil {
		return err
	}
	cli.logger.Info("user saved", zap.String("email", email), zap.String("role", string(role)))
	fmt.Fprintf(cli.out, "user %s saved with role %s\n", email, role)
	return nil
}
