package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pribylovaa/sqlchat/internal/config"
	"github.com/pribylovaa/sqlchat/internal/service"
)

// readPassword подменяется в тестах, чтобы не трогать терминал.
var readPassword = term.ReadPassword

// hashParams — параметры хэширования из окружения, когда --config не задан.
// Секреты сервиса для хэширования не нужны.
type hashParams struct {
	Argon2     config.Argon2Config
	BcryptCost int `env:"BCRYPT_COST" env-default:"10"`
}

func hashPasswordCmd(configPath *string) *cobra.Command {
	var legacy bool

	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Print a password hash for seeding users",
		Long: `Reads a password from the terminal (without echo) or from stdin
and prints its argon2id hash with the configured parameters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			authCfg, err := hashConfig(*configPath)
			if err != nil {
				return err
			}

			hasher, err := service.NewHasher(authCfg)
			if err != nil {
				return err
			}

			password, err := readSecret(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if utf8.RuneCountInString(password) < service.MinPasswordLen {
				return fmt.Errorf("password must be at least %d characters", service.MinPasswordLen)
			}

			hash := hasher.Hash
			if legacy {
				hash = hasher.HashBcrypt
			}

			encoded, err := hash(password)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), encoded)
			return nil
		},
	}

	cmd.Flags().BoolVar(&legacy, "bcrypt", false, "produce a legacy bcrypt hash")

	return cmd
}

func hashConfig(path string) (config.AuthConfig, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return config.AuthConfig{}, err
		}
		return cfg.Auth, nil
	}

	var p hashParams
	if err := cleanenv.ReadEnv(&p); err != nil {
		return config.AuthConfig{}, fmt.Errorf("failed to read hash params: %w", err)
	}

	return config.AuthConfig{Argon2: p.Argon2, BcryptCost: p.BcryptCost}, nil
}

// readSecret читает пароль без эха с терминала или первой строкой из потока.
func readSecret(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		pw, err := readPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read password: %w", err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}
