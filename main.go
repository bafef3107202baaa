package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/example/user-crud-demo/modules/api"
	"github.com/example/user-crud-demo/modules/users"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Order matters: the api module depends on the users module.
	app.Register(users.NewModule())
	app.Register(api.NewModule())

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	log.Println("")
	log.Println("User management API started")
	log.Println("")
	log.Println("  Public endpoints:")
	log.Println("  POST   /users/       - Register a new user")
	log.Println("  GET    /users/{id}   - Get a user's public record")
	log.Println("  POST   /auth/token   - Exchange credentials for a token (form: username, password)")
	log.Println("  GET    /health       - Health check")
	log.Println("")
	log.Println("  Protected endpoints (require Bearer token):")
	log.Println("  GET    /users/       - List users (limit/offset pagination)")
	log.Println("  PUT    /users/{id}   - Update own record")
	log.Println("  DELETE /users/{id}   - Delete own record")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
