package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cswitch/internal/session"
)

var (
	loginPassword    string
	registerEmail    string
	registerPassword string
)

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(registerCmd)

	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password (prompted when omitted)")
	registerCmd.Flags().StringVarP(&registerEmail, "email", "e", "", "account email")
	registerCmd.Flags().StringVarP(&registerPassword, "password", "p", "", "account password (prompted when omitted)")
}

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in to the remote account service",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := initServices()
		if err != nil {
			return err
		}

		password := loginPassword
		if password == "" {
			if password, err = promptLine("Password: "); err != nil {
				return err
			}
		}

		resp, err := svc.client.Login(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		if err := saveSession(svc, resp.User.Username, resp.Token, resp.ExpiresIn); err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("✓ Logged in as %s", resp.User.Username)))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the cached remote login",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := initServices()
		if err != nil {
			return err
		}
		if !svc.session.Active() {
			fmt.Println(dimStyle.Render("not logged in"))
			return nil
		}
		if err := svc.session.Clear(); err != nil {
			return err
		}
		fmt.Println(successStyle.Render("✓ Logged out"))
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Register a remote account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := initServices()
		if err != nil {
			return err
		}

		password := registerPassword
		if password == "" {
			if password, err = promptLine("Password: "); err != nil {
				return err
			}
		}

		resp, err := svc.client.Register(cmd.Context(), args[0], registerEmail, password)
		if err != nil {
			return err
		}
		if err := saveSession(svc, resp.User.Username, resp.Token, resp.ExpiresIn); err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("✓ Registered and logged in as %s", resp.User.Username)))
		return nil
	},
}

func saveSession(svc *services, username, token string, expiresIn int64) error {
	s := &session.Session{Token: token, Username: username}
	if expiresIn > 0 {
		s.ExpiresAt = time.Now().Add(time.Duration(expiresIn) * time.Second)
	}
	return svc.session.Save(s)
}

func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("empty input")
	}
	return line, nil
}
