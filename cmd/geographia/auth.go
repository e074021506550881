package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"geographia/internal/api"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session token",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE:  runRegister,
}

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Recover a forgotten password by email code",
	RunE:  runRecover,
}

func init() {
	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password (prompted when empty)")
	loginCmd.Flags().Bool("remember", true, "keep the session after the client exits")

	registerCmd.Flags().String("first-name", "", "first name")
	registerCmd.Flags().String("last-name", "", "last name")
	registerCmd.Flags().String("email", "", "account email")
	registerCmd.Flags().String("password", "", "account password (prompted when empty)")
	registerCmd.Flags().String("birth-date", "", "birth date, YYYY-MM-DD")
	registerCmd.Flags().String("address", "", "city and province")

	recoverCmd.Flags().String("email", "", "account email")
	recoverCmd.Flags().String("code", "", "code received by email (prompted when empty)")
	recoverCmd.Flags().String("new-password", "", "new password (prompted when empty)")

	rootCmd.AddCommand(loginCmd, logoutCmd, registerCmd, recoverCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	remember, _ := cmd.Flags().GetBool("remember")

	if email, err = valueOr(email, "Email: ", false); err != nil {
		return err
	}
	if password, err = valueOr(password, "Contraseña: ", true); err != nil {
		return err
	}

	token, err := a.client.Login(cmd.Context(), email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := a.session.SaveToken(token, remember); err != nil {
		return err
	}
	a.log.WithField("remember", remember).Info("logged in")
	fmt.Fprintln(cmd.OutOrStdout(), "Sesión iniciada.")
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.session.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Sesión cerrada.")
	return nil
}

func runRegister(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	f := cmd.Flags()
	var reg api.Registration
	reg.FirstName, _ = f.GetString("first-name")
	reg.LastName, _ = f.GetString("last-name")
	reg.Email, _ = f.GetString("email")
	reg.Password, _ = f.GetString("password")
	reg.BirthDate, _ = f.GetString("birth-date")
	reg.Address, _ = f.GetString("address")

	if reg.Email, err = valueOr(reg.Email, "Email: ", false); err != nil {
		return err
	}
	if reg.Password, err = valueOr(reg.Password, "Contraseña: ", true); err != nil {
		return err
	}
	if reg.Address == "" {
		reg.Address = a.pipeline.ResolveDeviceAddress(cmd.Context(), a.geo).Label
	}

	if err := a.client.Register(cmd.Context(), reg); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Cuenta creada. Iniciá sesión con `geographia login`.")
	return nil
}

func runRecover(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	email, _ := cmd.Flags().GetString("email")
	code, _ := cmd.Flags().GetString("code")
	next, _ := cmd.Flags().GetString("new-password")

	if email, err = valueOr(email, "Email: ", false); err != nil {
		return err
	}
	token, err := a.client.RequestPasswordReset(ctx, email)
	if err != nil {
		return fmt.Errorf("request password reset: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Te enviamos un código por email.")

	if code, err = valueOr(code, "Código: ", false); err != nil {
		return err
	}
	if err := a.client.VerifyCode(ctx, token, code); err != nil {
		return fmt.Errorf("verify code: %w", err)
	}
	if next, err = valueOr(next, "Nueva contraseña: ", true); err != nil {
		return err
	}
	if err := a.client.ResetPassword(ctx, token, next); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Contraseña actualizada.")
	return nil
}
