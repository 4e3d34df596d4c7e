package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"freequilt/internal/app/directory"
	"freequilt/internal/app/prefstore"
	"freequilt/internal/configs"
	"freequilt/internal/pkg/errs"
	"freequilt/internal/pkg/randx"
)

func newUserCmd(a *app) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage members of the site",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(_ *configs.AppConfig, store prefstore.Store) error {
				dir := directory.New(store, directory.Options{})
				users, err := dir.Users(cmd.Context())
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if len(users) == 0 {
					fmt.Fprintln(w, "No members registered.")
					return nil
				}

				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tUSERNAME\tNAME\tEMAIL\tLEVEL\tFAVORITES\tDOWNLOADS")
				for i := range users {
					u := &users[i]
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%d\n",
						u.ID, u.Username, u.FullName(), u.Email, u.SkillLevel,
						len(u.Favorites), u.Stats.PatternsDownloaded)
				}
				return tw.Flush()
			})
		},
	}

	var (
		in      directory.RegisterInput
		profile string
		skill   string
	)
	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Register a member, prompting for the password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if profile == "" {
				id, err := randx.ProfileID()
				if err != nil {
					return err
				}
				profile = id
			} else if !randx.IsValidProfileID(profile) {
				return fmt.Errorf("invalid profile id %q", profile)
			}

			w := cmd.OutOrStdout()
			password, err := promptPassword(w, "Password: ")
			if err != nil {
				return err
			}
			confirm, err := promptPassword(w, "Confirm password: ")
			if err != nil {
				return err
			}

			in.Password = password
			in.ConfirmPassword = confirm
			in.SkillLevel = directory.SkillLevel(skill)
			in.AgreeTerms = true

			return a.withStore(cmd.Context(), func(_ *configs.AppConfig, store prefstore.Store) error {
				dir := directory.New(store, directory.Options{})
				user, err := dir.Register(cmd.Context(), profile, in)

				var fields errs.FieldErrors
				if errors.As(err, &fields) {
					for _, name := range fields.Fields() {
						msg, _ := fields.Get(name)
						fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", name, msg)
					}
					return errors.New("registration rejected")
				}
				if err != nil {
					return err
				}

				fmt.Fprintf(w, "Registered %s (id %d), signed in on profile %s\n", user.Username, user.ID, profile)
				return nil
			})
		},
	}
	flags := registerCmd.Flags()
	flags.StringVar(&in.FirstName, "first-name", "", "First name")
	flags.StringVar(&in.LastName, "last-name", "", "Last name")
	flags.StringVar(&in.Email, "email", "", "Email address")
	flags.StringVar(&in.Username, "username", "", "Username, 3-20 letters or digits")
	flags.StringVar(&skill, "skill", string(directory.SkillBeginner), "Skill level: beginner, intermediate, advanced or expert")
	flags.BoolVar(&in.Newsletter, "newsletter", false, "Subscribe to the newsletter")
	flags.StringVar(&profile, "profile", "", "Profile to sign the member in on; a new one by default")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("username")

	userCmd.AddCommand(listCmd, registerCmd)
	return userCmd
}
