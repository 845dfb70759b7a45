// Command stratcom is the terminal front end for the stratcom jobs board.
// It wraps the typed API client: authentication, job CRUD, claiming, status
// transitions, PDF submission/download, and user administration.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/mediaxsd-commits/stratcomjobsapp/internal/client"
	"github.com/mediaxsd-commits/stratcomjobsapp/internal/config"
	"github.com/mediaxsd-commits/stratcomjobsapp/internal/core/domain"
	"github.com/mediaxsd-commits/stratcomjobsapp/pkg/logger"
)

const usage = `usage: stratcom <command> [flags]

  register                 create an account and log in
  login                    authenticate and store the token
  logout                   discard the stored token
  whoami                   show the authenticated user and token claims
  jobs list|get|create|update|delete|claim|status|submit|download
  users list|update|delete
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "stratcom:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load() // a missing .env is fine

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	var tokens client.TokenStore
	if cfg.TokenFile != "" {
		tokens = client.NewFileTokenStore(cfg.TokenFile)
	} else {
		tokens, err = client.DefaultFileTokenStore()
		if err != nil {
			return err
		}
	}

	c := client.New(client.Options{
		BaseURL:    cfg.BaseURL,
		Tokens:     tokens,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		Logger:     log,
	})

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("missing command")
	}

	switch os.Args[1] {
	case "register":
		return runRegister(ctx, c, os.Args[2:])
	case "login":
		return runLogin(ctx, c, os.Args[2:])
	case "logout":
		if err := c.Logout(); err != nil {
			return err
		}
		fmt.Println("logged out")
		return nil
	case "whoami":
		return runWhoami(ctx, c)
	case "jobs":
		return runJobs(ctx, c, os.Args[2:])
	case "users":
		return runUsers(ctx, c, os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", os.Args[1])
	}
}

func runRegister(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	_ = fs.Parse(args)

	user, err := c.Register(ctx, client.RegisterInput{Name: *name, Email: *email, Password: *password})
	if err != nil {
		return err
	}
	fmt.Printf("registered %s (%s), role %s\n", user.Name, user.Email, user.Role)
	return nil
}

func runLogin(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	_ = fs.Parse(args)

	user, err := c.Login(ctx, client.LoginInput{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	fmt.Printf("logged in as %s (%s)\n", user.Name, user.Role)
	return nil
}

func runWhoami(ctx context.Context, c *client.Client) error {
	user, err := c.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s <%s>  role=%s  id=%s\n", user.Name, user.Email, user.Role, user.ID)

	if info, err := c.TokenInfo(); err == nil && !info.ExpiresAt.IsZero() {
		fmt.Printf("token expires %s\n", info.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func runJobs(ctx context.Context, c *client.Client, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: stratcom jobs <list|get|create|update|delete|claim|status|submit|download>")
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "list":
		fs := flag.NewFlagSet("jobs list", flag.ExitOnError)
		status := fs.String("status", "", "filter by status")
		priority := fs.String("priority", "", "filter by priority")
		search := fs.String("search", "", "filter by title substring")
		_ = fs.Parse(rest)

		jobs, err := c.ListJobs(ctx, client.JobFilter{
			Status:   domain.JobStatus(*status),
			Priority: domain.JobPriority(*priority),
			Search:   *search,
		})
		if err != nil {
			return err
		}
		for _, j := range jobs {
			fmt.Printf("%-10s  %-9s  %-7s  $%8.2f  %s\n", j.ID, j.Status, j.Priority, j.Fee, j.Title)
		}
		fmt.Printf("%d job(s)\n", len(jobs))
		return nil

	case "get":
		fs := flag.NewFlagSet("jobs get", flag.ExitOnError)
		id := fs.String("id", "", "job id")
		_ = fs.Parse(rest)

		job, err := c.GetJob(ctx, *id)
		if err != nil {
			return err
		}
		return printJSON(job)

	case "create":
		fs := flag.NewFlagSet("jobs create", flag.ExitOnError)
		title := fs.String("title", "", "job title")
		desc := fs.String("desc", "", "job description")
		fee := fs.Float64("fee", 0, "fee in dollars")
		priority := fs.String("priority", "", "low|normal|high|urgent")
		_ = fs.Parse(rest)

		job, err := c.CreateJob(ctx, client.CreateJobInput{
			Title:       *title,
			Description: *desc,
			Fee:         *fee,
			Priority:    domain.JobPriority(*priority),
		})
		if err != nil {
			return err
		}
		fmt.Printf("created %s\n", job.ID)
		return nil

	case "update":
		fs := flag.NewFlagSet("jobs update", flag.ExitOnError)
		id := fs.String("id", "", "job id")
		title := fs.String("title", "", "job title")
		desc := fs.String("desc", "", "job description")
		fee := fs.Float64("fee", 0, "fee in dollars")
		priority := fs.String("priority", "", "low|normal|high|urgent")
		_ = fs.Parse(rest)

		job, err := c.UpdateJob(ctx, *id, client.UpdateJobInput{
			Title:       *title,
			Description: *desc,
			Fee:         *fee,
			Priority:    domain.JobPriority(*priority),
		})
		if err != nil {
			return err
		}
		fmt.Printf("updated %s\n", job.ID)
		return nil

	case "delete":
		fs := flag.NewFlagSet("jobs delete", flag.ExitOnError)
		id := fs.String("id", "", "job id")
		_ = fs.Parse(rest)

		if err := c.DeleteJob(ctx, *id); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", *id)
		return nil

	case "claim":
		fs := flag.NewFlagSet("jobs claim", flag.ExitOnError)
		id := fs.String("id", "", "job id")
		_ = fs.Parse(rest)

		job, err := c.ClaimJob(ctx, *id)
		if err != nil {
			return err
		}
		fmt.Printf("claimed %s (%s)\n", job.ID, job.Title)
		return nil

	case "status":
		fs := flag.NewFlagSet("jobs status", flag.ExitOnError)
		id := fs.String("id", "", "job id")
		status := fs.String("to", "", "target status")
		_ = fs.Parse(rest)

		next, err := domain.ParseStatus(*status)
		if err != nil {
			return err
		}
		// Fail fast on transitions the backend is known to refuse.
		current, err := c.GetJob(ctx, *id)
		if err != nil {
			return err
		}
		if !current.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.Status, next)
		}
		job, err := c.UpdateJobStatus(ctx, *id, next)
		if err != nil {
			return err
		}
		fmt.Printf("%s is now %s\n", job.ID, job.Status)
		return nil

	case "submit":
		fs := flag.NewFlagSet("jobs submit", flag.ExitOnError)
		id := fs.String("id", "", "job id")
		file := fs.String("file", "", "path to the PDF")
		_ = fs.Parse(rest)

		job, err := c.SubmitPDF(ctx, *id, *file)
		if err != nil {
			return err
		}
		fmt.Printf("submitted %s for %s\n", job.SubmissionName, job.ID)
		return nil

	case "download":
		fs := flag.NewFlagSet("jobs download", flag.ExitOnError)
		id := fs.String("id", "", "job id")
		out := fs.String("out", ".", "destination file or directory")
		_ = fs.Parse(rest)

		path, err := c.DownloadSubmission(ctx, *id, *out)
		if err != nil {
			return err
		}
		fmt.Printf("saved %s\n", path)
		return nil

	default:
		return fmt.Errorf("unknown jobs subcommand %q", sub)
	}
}

func runUsers(ctx context.Context, c *client.Client, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: stratcom users <list|update|delete>")
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "list":
		users, err := c.ListUsers(ctx)
		if err != nil {
			return err
		}
		for _, u := range users {
			fmt.Printf("%-10s  %-8s  %-24s  %s\n", u.ID, u.Role, u.Email, u.Name)
		}
		return nil

	case "update":
		fs := flag.NewFlagSet("users update", flag.ExitOnError)
		id := fs.String("id", "", "user id")
		name := fs.String("name", "", "display name")
		email := fs.String("email", "", "email address")
		role := fs.String("role", "", "admin|operator")
		_ = fs.Parse(rest)

		user, err := c.UpdateUser(ctx, *id, client.UpdateUserInput{Name: *name, Email: *email, Role: *role})
		if err != nil {
			return err
		}
		fmt.Printf("updated %s (%s)\n", user.ID, user.Role)
		return nil

	case "delete":
		fs := flag.NewFlagSet("users delete", flag.ExitOnError)
		id := fs.String("id", "", "user id")
		_ = fs.Parse(rest)

		if err := c.DeleteUser(ctx, *id); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", *id)
		return nil

	default:
		return fmt.Errorf("unknown users subcommand %q", sub)
	}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
