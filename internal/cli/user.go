package cli

import (
	"errors"
	"fmt"

	authRepo "github.com/fekuna/omnipos-stockroom/internal/auth/repository"
	authUC "github.com/fekuna/omnipos-stockroom/internal/auth/usecase"
	"github.com/fekuna/omnipos-stockroom/internal/model"
	"github.com/spf13/cobra"
)

type createUserOptions struct {
	username string
	password string
	role     string
}

// NewCreateUserCommand seeds accounts; the HTTP API has no user admin.
func NewCreateUserCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &createUserOptions{}

	cmd := &cobra.Command{
		Use:          "create-user",
		Short:        "Create a login account",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.username == "" || opts.password == "" {
				return errors.New("--username and --password are required")
			}
			db, err := rootOpts.openDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			uc := authUC.NewAuthUseCase(authRepo.NewPGRepository(db), 0, rootOpts.logger())
			u, err := uc.CreateUser(cmd.Context(), opts.username, opts.password, opts.role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s) id=%s\n", u.Username, u.Role, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.username, "username", "", "login name")
	cmd.Flags().StringVar(&opts.password, "password", "", "password (min 8 characters)")
	cmd.Flags().StringVar(&opts.role, "role", model.RoleStaff, "admin|manager|staff")
	return cmd
}
