package cmd

import (
	"context"
	"fmt"
	"time"

	"example.com/freightline/services/settlement/config"
	"example.com/freightline/services/settlement/internal/auth"
	"example.com/freightline/services/settlement/internal/database"
	"example.com/freightline/services/settlement/internal/models"
	"example.com/freightline/services/settlement/internal/repository"

	"github.com/spf13/cobra"
)

var (
	userEmail     string
	userPassword  string
	userRole      string
	userFirstName string
	userLastName  string
)

// userCmd represents the user command
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
	Long:  `Create user accounts directly, including admin accounts that cannot self-register.`,
}

// createUserCmd represents the create command
var createUserCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	Long: `Create a user account with the given role:
  user:  can record line items on settlements
  staff: can additionally manage carriers and settlements
  admin: can mutate any record regardless of ownership`,
	Run: func(cmd *cobra.Command, args []string) {
		createUser()
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(createUserCmd)

	createUserCmd.Flags().StringVarP(&userEmail, "email", "e", "", "Email address (required)")
	createUserCmd.Flags().StringVarP(&userPassword, "password", "p", "", "Password (required)")
	createUserCmd.Flags().StringVarP(&userRole, "role", "r", "user", "Role (user, staff, admin)")
	createUserCmd.Flags().StringVar(&userFirstName, "first-name", "", "First name")
	createUserCmd.Flags().StringVar(&userLastName, "last-name", "", "Last name")
	createUserCmd.MarkFlagRequired("email")
	createUserCmd.MarkFlagRequired("password")
}

// createUser provisions an account directly against the database
func createUser() {
	role := models.Role(userRole)
	if role != models.RoleUser && role != models.RoleStaff && role != models.RoleAdmin {
		log.Fatalf("Invalid role %q. Must be user, staff, or admin.", userRole)
	}
	if len(userPassword) < 6 {
		log.Fatal("Password must be at least 6 characters")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	log.Info("Connecting to database...")
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := repository.NewRepository(db)

	hash, err := auth.HashPassword(userPassword)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		FirstName: userFirstName,
		LastName:  userLastName,
		Email:     userEmail,
		Role:      role,
		Password:  hash,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := repo.CreateUser(ctx, user); err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Println("User created")
	fmt.Printf("ID:    %s\n", user.ID)
	fmt.Printf("Email: %s\n", user.Email)
	fmt.Printf("Role:  %s\n", user.Role)
}
