// seed wipes nothing; it inserts the demo user and five sample tasks
// through the regular usecases, so it works against either store.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"taskboard/config"
	"taskboard/internal/domain"
	"taskboard/internal/infrastructure/postgres"
	"taskboard/internal/infrastructure/sqlite"
	"taskboard/internal/repository"
	"taskboard/internal/usecase"
)

const (
	seedName     = "Test User"
	seedEmail    = "test@example.com"
	seedPassword = "test123"
)

type taskSpec struct {
	title       string
	description string
	status      domain.Status
	priority    domain.Priority
	tags        []string
	dueInDays   int // 0 = no due date
}

var tasks = []taskSpec{
	{"Complete project proposal", "Finish the project proposal document and send for review",
		domain.StatusCompleted, domain.PriorityHigh, []string{"work", "important"}, 2},
	{"Buy groceries", "Milk, eggs, bread, fruits and vegetables",
		domain.StatusPending, domain.PriorityMedium, []string{"personal", "shopping"}, 1},
	{"Learn React Hooks", "Complete the advanced React hooks tutorial",
		domain.StatusInProgress, domain.PriorityHigh, []string{"learning", "development"}, 7},
	{"Morning workout", "30 minutes of cardio and strength training",
		domain.StatusPending, domain.PriorityLow, []string{"health", "routine"}, 0},
	{"Team meeting preparation", "Prepare slides and agenda for weekly team meeting",
		domain.StatusPending, domain.PriorityMedium, []string{"work", "meeting"}, 1},
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var (
		userRepo repository.UserRepository
		taskRepo repository.TaskRepository
	)

	switch cfg.DatabaseDriver {
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer db.Close()
		userRepo = sqlite.NewUserRepository(db)
		taskRepo = sqlite.NewTaskRepository(db)
	default:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatalf("db: %v", err)
		}
		userRepo = postgres.NewUserRepository(pool)
		taskRepo = postgres.NewTaskRepository(pool)
	}

	authUsecase := usecase.NewAuthUsecase(userRepo, []byte(cfg.JWTSecret))
	taskUsecase := usecase.NewTaskUsecase(taskRepo)

	user, _, err := authUsecase.Register(ctx, seedName, seedEmail, seedPassword)
	if err != nil {
		if !errors.Is(err, domain.ErrEmailTaken) {
			log.Fatalf("create user: %v", err)
		}
		// Re-running against a seeded database: reuse the account.
		user, _, err = authUsecase.Login(ctx, seedEmail, seedPassword)
		if err != nil {
			log.Fatalf("login seed user: %v", err)
		}
	}

	var created int
	for _, spec := range tasks {
		var due *time.Time
		if spec.dueInDays > 0 {
			d := time.Now().AddDate(0, 0, spec.dueInDays)
			due = &d
		}

		_, err := taskUsecase.Create(ctx, usecase.CreateTaskInput{
			UserID:      user.ID,
			Title:       spec.title,
			Description: spec.description,
			Status:      spec.status,
			Priority:    spec.priority,
			Tags:        spec.tags,
			DueDate:     due,
		})
		if err != nil {
			log.Fatalf("create task %q: %v", spec.title, err)
		}
		created++
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  User:          %s / %s\n", seedEmail, seedPassword)
	fmt.Printf("  User ID:       %s\n", user.ID)
	fmt.Printf("  Tasks created: %d\n", created)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Printf("  curl -s -X POST http://localhost:8080/api/auth/login \\\n")
	fmt.Printf("    -H 'Content-Type: application/json' \\\n")
	fmt.Printf("    -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", seedEmail, seedPassword)
	fmt.Println()
	fmt.Println("  export JWT=eyJ...   # token from the response")
	fmt.Println("  curl -s 'http://localhost:8080/api/tasks?status=pending' -H \"Authorization: Bearer $JWT\"")
	fmt.Println("  curl -s http://localhost:8080/api/tasks/stats/overview -H \"Authorization: Bearer $JWT\"")
}
