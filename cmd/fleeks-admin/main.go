package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/Shiki0138/fleeksonline/config"
	"github.com/Shiki0138/fleeksonline/internal/bootstrap"
	"github.com/Shiki0138/fleeksonline/internal/data"
	"github.com/Shiki0138/fleeksonline/internal/devseed"
	domainauth "github.com/Shiki0138/fleeksonline/internal/domain/auth"
	"github.com/Shiki0138/fleeksonline/internal/domain/model"
	"github.com/Shiki0138/fleeksonline/internal/service"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
}

const defaultMigrationTimeout = 5 * time.Minute

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmdName)
		printUsage()
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run database migrations",
			run:         runMigrate,
		},
		"create-admin": {
			name:        "create-admin",
			description: "Create or promote a member profile with the admin role",
			run:         runCreateAdmin,
		},
		"set-role": {
			name:        "set-role",
			description: "Change the stored role of a member profile",
			run:         runSetRole,
		},
		"list-members": {
			name:        "list-members",
			description: "List member profiles",
			run:         runListMembers,
		},
		"notify": {
			name:        "notify",
			description: "Create a notification for a member",
			run:         runNotify,
		},
		"db-seed": {
			name:        "db-seed",
			description: "Seed development profiles and notifications",
			run:         runDBSeed,
		},
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: fleeks-admin <command> [flags]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "commands:")

	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stderr, 0, 4, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\t%s\n", name, cmds[name].description)
	}
	_ = w.Flush()
}

func runMigrate(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := connectDB(cmdCtx)
	if err != nil {
		return err
	}
	defer closeDB(cmdCtx, db)

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultMigrationTimeout)
	defer cancel()

	return bootstrap.RunMigrations(ctx, db, cmdCtx.Logger)
}

func runDBSeed(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("db-seed", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := connectDB(cmdCtx)
	if err != nil {
		return err
	}
	defer closeDB(cmdCtx, db)

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultMigrationTimeout)
	defer cancel()

	cmdCtx.Logger.Info("ensuring database migrations are current")
	if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
		return fmt.Errorf("run migrations: %w", migrateErr)
	}

	cmdCtx.Logger.Info("seeding development data")
	return devseed.Run(ctx, devseed.NewServices(db), cmdCtx.Logger)
}

func runCreateAdmin(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	userID := fs.String("user-id", "", "identity provider user id (required)")
	email := fs.String("email", "", "account email (required)")
	fullName := fs.String("full-name", "", "display name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == "" || *email == "" {
		fs.Usage()
		return fmt.Errorf("create-admin: -user-id and -email are required")
	}

	db, err := connectDB(cmdCtx)
	if err != nil {
		return err
	}
	defer closeDB(cmdCtx, db)

	repo := data.NewProfileRepo(db)
	profile, err := repo.Upsert(cmdCtx.Ctx, &model.UpsertProfileRequest{
		UserID:   *userID,
		Email:    *email,
		FullName: *fullName,
		Role:     domainauth.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	// Upsert keeps stored roles for existing rows; force admin explicitly.
	if profile.Role != domainauth.RoleAdmin {
		profile, err = repo.UpdateRole(cmdCtx.Ctx, profile.UserID, domainauth.RoleAdmin)
		if err != nil {
			return fmt.Errorf("promote profile: %w", err)
		}
	}

	cmdCtx.Logger.Info("admin profile ready",
		"user_id", profile.UserID, "email", profile.Email, "role", profile.Role)
	return nil
}

func runSetRole(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("set-role", flag.ContinueOnError)
	userID := fs.String("user-id", "", "identity provider user id (required)")
	roleStr := fs.String("role", "", "new role: admin, moderator, or user (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == "" || *roleStr == "" {
		fs.Usage()
		return fmt.Errorf("set-role: -user-id and -role are required")
	}

	role := domainauth.Role(*roleStr)
	if !role.Valid() || role == domainauth.RoleGuest {
		return fmt.Errorf("set-role: invalid role %q", *roleStr)
	}

	db, err := connectDB(cmdCtx)
	if err != nil {
		return err
	}
	defer closeDB(cmdCtx, db)

	profile, err := data.NewProfileRepo(db).UpdateRole(cmdCtx.Ctx, *userID, role)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}

	cmdCtx.Logger.Info("role updated",
		"user_id", profile.UserID, "email", profile.Email, "role", profile.Role)
	return nil
}

func runListMembers(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("list-members", flag.ContinueOnError)
	limit := fs.Int("limit", 50, "maximum rows to print")
	offset := fs.Int("offset", 0, "rows to skip")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := connectDB(cmdCtx)
	if err != nil {
		return err
	}
	defer closeDB(cmdCtx, db)

	profiles, err := data.NewProfileRepo(db).List(cmdCtx.Ctx, *limit, *offset)
	if err != nil {
		return fmt.Errorf("list profiles: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "USER ID\tEMAIL\tROLE\tMEMBERSHIP\tCREATED")
	for _, p := range profiles {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			p.UserID, p.Email, p.Role, p.Membership, p.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func runNotify(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("notify", flag.ContinueOnError)
	userID := fs.String("user-id", "", "recipient user id (required)")
	title := fs.String("title", "", "notification title (required)")
	payload := fs.String("payload", "", "optional JSON payload")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == "" || *title == "" {
		fs.Usage()
		return fmt.Errorf("notify: -user-id and -title are required")
	}

	var raw json.RawMessage
	if *payload != "" {
		if !json.Valid([]byte(*payload)) {
			return fmt.Errorf("notify: payload is not valid JSON")
		}
		raw = json.RawMessage(*payload)
	}

	db, err := connectDB(cmdCtx)
	if err != nil {
		return err
	}
	defer closeDB(cmdCtx, db)

	svc := service.NewNotificationService(service.NotificationServiceOptions{
		Repo:   data.NewNotificationRepo(db),
		Logger: cmdCtx.Logger,
	})
	n, err := svc.Create(cmdCtx.Ctx, &model.CreateNotificationRequest{
		UserID:  *userID,
		Title:   *title,
		Payload: raw,
	})
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	cmdCtx.Logger.Info("notification created", "id", n.ID, "user_id", n.UserID)
	return nil
}
