package commands

import (
	"errors"
	"fmt"
	"strings"

	"go-jobboard-backend/internal/domain"

	"github.com/spf13/cobra"
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Register an identity as an administrator",
	Long: `Create the local user for an identity provider subject with the admin role.

Admins cannot self-register through the API; this is the only way to create one.`,
	RunE: runCreateAdmin,
}

var seedCompanyCmd = &cobra.Command{
	Use:   "seed-company",
	Short: "Create a company owned by an existing employer",
	RunE:  runSeedCompany,
}

func init() {
	createAdminCmd.Flags().String("id", "", "identity provider subject (required)")
	createAdminCmd.Flags().String("email", "", "email address (required)")
	createAdminCmd.Flags().String("name", "", "display name")
	_ = createAdminCmd.MarkFlagRequired("id")
	_ = createAdminCmd.MarkFlagRequired("email")

	seedCompanyCmd.Flags().String("name", "", "company name (required)")
	seedCompanyCmd.Flags().String("owner", "", "employer user id (required)")
	seedCompanyCmd.Flags().Bool("verified", false, "mark the company verified")
	_ = seedCompanyCmd.MarkFlagRequired("name")
	_ = seedCompanyCmd.MarkFlagRequired("owner")
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	id, _ := cmd.Flags().GetString("id")
	email, _ := cmd.Flags().GetString("email")
	name, _ := cmd.Flags().GetString("name")

	storage, err := openStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer storage.Close()

	user := &domain.User{
		ID:    id,
		Email: strings.ToLower(strings.TrimSpace(email)),
		Name:  name,
		Role:  domain.RoleAdmin,
	}
	if err := storage.Repos.Users.Create(cmd.Context(), user); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return fmt.Errorf("user %s already exists; roles are permanent", id)
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "admin %s created\n", id)
	return nil
}

func runSeedCompany(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	owner, _ := cmd.Flags().GetString("owner")
	verified, _ := cmd.Flags().GetBool("verified")

	storage, err := openStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer storage.Close()
	repos := storage.Repos
	ctx := cmd.Context()

	user, err := repos.Users.GetByID(ctx, owner)
	if err != nil {
		return fmt.Errorf("owner %s: %w", owner, err)
	}
	if user.Role != domain.RoleEmployer {
		return fmt.Errorf("owner %s is a %s, not an employer", owner, user.Role)
	}
	if user.CompanyID != nil {
		return fmt.Errorf("owner %s already belongs to company %d", owner, *user.CompanyID)
	}

	company := &domain.Company{
		Name:   strings.TrimSpace(name),
		Owners: []string{owner},
	}
	if err := repos.Companies.Create(ctx, company); err != nil {
		return err
	}
	if verified {
		if _, err := repos.Companies.VerifyIfUnverified(ctx, company.ID); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "company %d created\n", company.ID)
	return nil
}
