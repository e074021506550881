package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"geographia/internal/api"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Show and edit the logged in account",
	RunE:  runAccountShow,
}

var privacyCmd = &cobra.Command{
	Use:   "privacy",
	Short: "Choose what other users see on your profile",
	RunE:  runPrivacy,
}

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change your password",
	RunE:  runPassword,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Edit your name, email and birth date",
	RunE:  runProfile,
}

var deleteAccountCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete your account",
	RunE:  runDeleteAccount,
}

func init() {
	privacyCmd.Flags().Bool("location", false, "show your city and province")
	privacyCmd.Flags().Bool("birth-date", false, "show your birth date")
	privacyCmd.Flags().Bool("email", false, "show your email")

	passwordCmd.Flags().String("current", "", "current password (prompted when empty)")
	passwordCmd.Flags().String("new", "", "new password (prompted when empty)")

	profileCmd.Flags().String("first-name", "", "first name")
	profileCmd.Flags().String("last-name", "", "last name")
	profileCmd.Flags().String("email", "", "email")
	profileCmd.Flags().String("birth-date", "", "birth date, YYYY-MM-DD")

	deleteAccountCmd.Flags().Bool("yes", false, "confirm the deletion")

	accountCmd.AddCommand(privacyCmd, passwordCmd, profileCmd, deleteAccountCmd)
	rootCmd.AddCommand(accountCmd)
}

func runAccountShow(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireLogin(); err != nil {
		return err
	}

	me, err := a.client.Me(cmd.Context())
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s <%s>\n", me.FullName(), me.Email)
	if me.Address != "" {
		fmt.Fprintln(out, me.Address)
	}
	if !me.BirthDate.IsZero() {
		fmt.Fprintln(out, me.BirthDate.Format("02/01/2006"))
	}
	fmt.Fprintf(out, "Visible: ubicación=%t fecha de nacimiento=%t email=%t\n", me.ShowLocation, me.ShowBirthDate, me.ShowEmail)
	return nil
}

func runPrivacy(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireLogin(); err != nil {
		return err
	}

	me, err := a.client.Me(cmd.Context())
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}
	p := api.Privacy{ShowLocation: me.ShowLocation, ShowBirthDate: me.ShowBirthDate, ShowEmail: me.ShowEmail}
	f := cmd.Flags()
	if f.Changed("location") {
		p.ShowLocation, _ = f.GetBool("location")
	}
	if f.Changed("birth-date") {
		p.ShowBirthDate, _ = f.GetBool("birth-date")
	}
	if f.Changed("email") {
		p.ShowEmail, _ = f.GetBool("email")
	}

	if err := a.client.UpdatePrivacy(cmd.Context(), p); err != nil {
		return fmt.Errorf("update privacy: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Privacidad actualizada.")
	return nil
}

func runPassword(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireLogin(); err != nil {
		return err
	}

	current, _ := cmd.Flags().GetString("current")
	next, _ := cmd.Flags().GetString("new")
	if current, err = valueOr(current, "Contraseña actual: ", true); err != nil {
		return err
	}
	if next, err = valueOr(next, "Nueva contraseña: ", true); err != nil {
		return err
	}

	if err := a.client.ChangePassword(cmd.Context(), current, next); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Contraseña actualizada.")
	return nil
}

func runProfile(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireLogin(); err != nil {
		return err
	}

	me, err := a.client.Me(cmd.Context())
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}
	update := api.ProfileUpdate{FirstName: me.FirstName, LastName: me.LastName, Email: me.Email}
	if !me.BirthDate.IsZero() {
		update.BirthDate = me.BirthDate.Format("2006-01-02")
	}
	f := cmd.Flags()
	for flag, field := range map[string]*string{
		"first-name": &update.FirstName,
		"last-name":  &update.LastName,
		"email":      &update.Email,
		"birth-date": &update.BirthDate,
	} {
		if f.Changed(flag) {
			*field, _ = f.GetString(flag)
		}
	}

	if err := a.client.UpdateProfile(cmd.Context(), update); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Perfil actualizado.")
	return nil
}

func runDeleteAccount(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireLogin(); err != nil {
		return err
	}
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		return errors.New("pass --yes to delete your account")
	}

	if err := a.client.DeleteAccount(cmd.Context()); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if err := a.session.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Cuenta eliminada.")
	return nil
}
