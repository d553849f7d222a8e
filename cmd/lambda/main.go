package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/go-extras/go-kit/must"

	"github.com/ikolcov/learnit/internal/app"
	"github.com/ikolcov/learnit/internal/auth"
	"github.com/ikolcov/learnit/internal/config"
	"github.com/ikolcov/learnit/internal/lambdahttp"
	"github.com/ikolcov/learnit/internal/logger"
	"github.com/ikolcov/learnit/internal/storage"
)

func main() {
	cfg := must.Must(config.Load(""))
	log := logger.New(os.Stdout, cfg.LogLevel)

	// the storage lives as long as the execution environment
	store := must.Must(storage.Open(context.Background(), cfg, log))

	a := app.New(app.AppConfig{ShutdownTimeout: cfg.ShutdownTimeout}, store, auth.NewVerifier(cfg.AccessTokenSecret), log)
	lambda.Start(lambdahttp.Handler(a.Handler()))
}
