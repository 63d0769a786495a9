package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"macrolens/internal/adapter/postgres"
	"macrolens/internal/config"
	"macrolens/internal/domain"
)

// Context is shared by all commands.
type Context struct {
	Config *config.Config
	Log    *zap.Logger
}

// CLI is the command-line grammar parsed by kong.
var CLI struct {
	Version kong.VersionFlag
	EnvFile string `help:"Optional .env file loaded before reading the environment." default:".env" name:"env-file"`

	Serve   ServeCmd   `cmd:"" help:"Run the HTTP API." default:"1"`
	Migrate MigrateCmd `cmd:"" help:"Create database tables and exit."`
	Targets TargetsCmd `cmd:"" help:"Print daily targets for the given biometrics."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("macrolens"),
		kong.Description("Nutrition tracking API: photo analysis, daily targets, summaries and streaks"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	if err := config.LoadDotEnv(CLI.EnvFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := ctx.Run(&Context{Config: cfg, Log: logger}); err != nil {
		logger.Error("command failed", zap.String("command", ctx.Command()), zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

// MigrateCmd applies the database schema.
type MigrateCmd struct{}

// Run opens the database, which applies the schema, and exits.
func (c *MigrateCmd) Run(ctx *Context) error {
	if ctx.Config.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	db, err := postgres.Open(ctx.Config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	defer func() { _ = db.Close() }()
	ctx.Log.Info("schema up to date")
	return nil
}

// TargetsCmd computes daily targets offline.
type TargetsCmd struct {
	Gender       string  `help:"male or female." required:"" enum:"male,female"`
	Activity     string  `help:"Activity level (sedentary, lightly_active, very_active)." default:"sedentary"`
	HeightUnit   string  `help:"metric (cm) or imperial (ft)." default:"metric" enum:"metric,imperial" name:"height-unit"`
	Height       float64 `help:"Height in cm, or feet when imperial." required:""`
	HeightInches float64 `help:"Extra inches when imperial." name:"height-inches"`
	WeightUnit   string  `help:"metric (kg) or imperial (lb)." default:"metric" enum:"metric,imperial" name:"weight-unit"`
	Weight       float64 `help:"Body weight." required:""`
	DOB          string  `help:"Date of birth (YYYY-MM-DD)." required:"" name:"dob"`
	Goal         string  `help:"Main goal (lose_weight, maintain_weight, gain_weight, build_muscle)." default:"maintain_weight"`
	Diet         string  `help:"Dietary preference." default:"no_restrictions"`
}

// Run prints the computed daily targets as JSON.
func (c *TargetsCmd) Run(ctx *Context) error {
	in := domain.TargetsInput{
		Gender:            c.Gender,
		ActivityLevel:     c.Activity,
		HeightUnit:        c.HeightUnit,
		HeightValue:       domain.NumberFrom(c.Height),
		WeightUnit:        c.WeightUnit,
		WeightValue:       domain.NumberFrom(c.Weight),
		DateOfBirth:       c.DOB,
		MainGoal:          c.Goal,
		DietaryPreference: c.Diet,
	}
	if c.HeightUnit == domain.UnitImperial {
		in.HeightInches = domain.NumberFrom(c.HeightInches)
	}
	b, err := domain.ParseBiometrics(in)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(domain.CalculateTargets(b, time.Now()))
}
