// taskctl is a command-line client for the taskboard API. The session
// token is cached in a local file, like the browser client kept it in
// localStorage, and is dropped on logout or any 401.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"taskboard/internal/client"
)

type config struct {
	API struct {
		URL string
	}
	Session struct {
		Path string
	}
}

func loadConfig() (config, error) {
	v := viper.New()
	v.SetEnvPrefix("TASKBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	home, _ := os.UserHomeDir()
	v.SetDefault("api.url", "http://localhost:8080")
	v.SetDefault("session.path", filepath.Join(home, ".taskboard", "session.json"))

	v.SetConfigName("taskctl")
	v.AddConfigPath(".")
	v.AddConfigPath(filepath.Join(home, ".taskboard"))
	_ = v.ReadInConfig() // optional file

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}

	session, err := client.LoadSession(cfg.Session.Path)
	if err != nil {
		log.Fatal(err)
	}
	api := client.New(cfg.API.URL, session)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, api, log, os.Args[1], os.Args[2:]); err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			// Server failures surface as a notice, never a stack trace.
			log.Error(apiErr.Message)
			os.Exit(1)
		}
		log.Fatal(err)
	}
}

func run(ctx context.Context, api *client.Client, log *logrus.Logger, cmd string, args []string) error {
	switch cmd {
	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		name := fs.String("name", "", "display name")
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password (min 6 characters)")
		_ = fs.Parse(args)

		res, err := api.Register(ctx, *name, *email, *password)
		if err != nil {
			return err
		}
		log.WithField("email", res.User.Email).Info("registered and signed in")
		return nil

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		res, err := api.Login(ctx, *email, *password)
		if err != nil {
			return err
		}
		log.WithField("email", res.User.Email).Info("signed in")
		return nil

	case "logout":
		if err := api.Logout(); err != nil {
			return err
		}
		log.Info("signed out")
		return nil

	case "me":
		user, err := api.Me(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s <%s>\nmember since %s\n", user.Name, user.Email, user.CreatedAt.Format("2006-01-02"))
		return nil

	case "list":
		fs := flag.NewFlagSet("list", flag.ExitOnError)
		status := fs.String("status", "", "filter: pending | in-progress | completed")
		priority := fs.String("priority", "", "filter: low | medium | high")
		tags := fs.String("tags", "", "filter: comma-separated tags, all must match")
		search := fs.String("search", "", "filter: substring of title or description")
		page := fs.Int("page", 1, "page number")
		limit := fs.Int("limit", 10, "tasks per page")
		_ = fs.Parse(args)

		list, err := api.ListTasks(ctx, client.TaskFilter{
			Status:   *status,
			Priority: *priority,
			Tags:     splitTags(*tags),
			Search:   *search,
			Page:     *page,
			Limit:    *limit,
		})
		if err != nil {
			return err
		}
		printTasks(list)
		return nil

	case "get":
		id, err := oneArg(args, "task id")
		if err != nil {
			return err
		}
		task, err := api.GetTask(ctx, id)
		if err != nil {
			return err
		}
		printTask(task)
		return nil

	case "add":
		fs := flag.NewFlagSet("add", flag.ExitOnError)
		title := fs.String("title", "", "task title")
		desc := fs.String("desc", "", "description")
		status := fs.String("status", "", "pending | in-progress | completed")
		priority := fs.String("priority", "", "low | medium | high")
		tags := fs.String("tags", "", "comma-separated tags")
		due := fs.String("due", "", "due date, YYYY-MM-DD")
		_ = fs.Parse(args)

		input, err := taskInput(title, desc, status, priority, *tags, *due)
		if err != nil {
			return err
		}
		task, err := api.CreateTask(ctx, input)
		if err != nil {
			return err
		}
		log.WithField("id", task.ID).Info("task created")
		return nil

	case "update":
		fs := flag.NewFlagSet("update", flag.ExitOnError)
		title := fs.String("title", "", "new title")
		desc := fs.String("desc", "", "new description")
		status := fs.String("status", "", "new status")
		priority := fs.String("priority", "", "new priority")
		tags := fs.String("tags", "", "replacement tags, comma-separated")
		due := fs.String("due", "", "new due date, YYYY-MM-DD")
		_ = fs.Parse(args)

		id, err := oneArg(fs.Args(), "task id")
		if err != nil {
			return err
		}
		input, err := taskInput(title, desc, status, priority, *tags, *due)
		if err != nil {
			return err
		}
		task, err := api.UpdateTask(ctx, id, input)
		if err != nil {
			return err
		}
		log.WithField("id", task.ID).Info("task updated")
		return nil

	case "done":
		id, err := oneArg(args, "task id")
		if err != nil {
			return err
		}
		completed := "completed"
		if _, err := api.UpdateTask(ctx, id, client.TaskInput{Status: &completed}); err != nil {
			return err
		}
		log.WithField("id", id).Info("task completed")
		return nil

	case "rm":
		id, err := oneArg(args, "task id")
		if err != nil {
			return err
		}
		if err := api.DeleteTask(ctx, id); err != nil {
			return err
		}
		log.WithField("id", id).Info("task deleted")
		return nil

	case "stats":
		stats, err := api.GetStats(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("total: %d\n", stats.TotalTasks)
		for _, s := range []string{"pending", "in-progress", "completed"} {
			fmt.Printf("  %-12s %d\n", s, stats.StatusCounts[s])
		}
		return nil

	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func taskInput(title, desc, status, priority *string, tags, due string) (client.TaskInput, error) {
	var input client.TaskInput
	if *title != "" {
		input.Title = title
	}
	if *desc != "" {
		input.Description = desc
	}
	if *status != "" {
		input.Status = status
	}
	if *priority != "" {
		input.Priority = priority
	}
	if tags != "" {
		input.Tags = splitTags(tags)
	}
	if due != "" {
		t, err := time.Parse("2006-01-02", due)
		if err != nil {
			return input, fmt.Errorf("invalid due date %q, want YYYY-MM-DD", due)
		}
		input.DueDate = &t
	}
	return input, nil
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

func oneArg(args []string, name string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "", fmt.Errorf("expected exactly one argument: %s", name)
	}
	return args[0], nil
}

func printTasks(list *client.TaskList) {
	if len(list.Tasks) == 0 {
		fmt.Println("no tasks")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tDUE\tTAGS")
	for _, t := range list.Tasks {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Title, t.Status, t.Priority, due, strings.Join(t.Tags, ","))
	}
	w.Flush()

	p := list.Pagination
	fmt.Printf("page %d of %d (%d tasks)\n", p.CurrentPage, p.TotalPages, p.TotalTasks)
}

func printTask(t *client.Task) {
	fmt.Printf("id:          %s\n", t.ID)
	fmt.Printf("title:       %s\n", t.Title)
	if t.Description != "" {
		fmt.Printf("description: %s\n", t.Description)
	}
	fmt.Printf("status:      %s\n", t.Status)
	fmt.Printf("priority:    %s\n", t.Priority)
	if len(t.Tags) > 0 {
		fmt.Printf("tags:        %s\n", strings.Join(t.Tags, ", "))
	}
	if t.DueDate != nil {
		fmt.Printf("due:         %s\n", t.DueDate.Format("2006-01-02"))
	}
	fmt.Printf("created:     %s\n", t.CreatedAt.Format(time.RFC3339))
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: taskctl <command> [flags]

commands:
  register  -name -email -password    create an account and sign in
  login     -email -password          sign in
  logout                              drop the cached session
  me                                  show the signed-in user
  list      [-status -priority -tags -search -page -limit]
  get       <id>
  add       -title [-desc -status -priority -tags -due]
  update    [flags] <id>
  done      <id>                      mark completed
  rm        <id>
  stats                               status counts

config: TASKBOARD_API_URL, TASKBOARD_SESSION_PATH or taskctl.yaml`)
}
