// Command playtest drives one scripted run of the default scene and,
// when an ingest endpoint is configured, submits the result the way the
// game's end screen does.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"rescuesim/internal/adapter/ingestclient"
	"rescuesim/internal/app/autopilot"
	"rescuesim/internal/domain/rescue"

	"github.com/caarlos0/env/v11"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

type config struct {
	Endpoint        string        `env:"RESCUESIM_INGEST_URL"`
	Email           string        `env:"RESCUESIM_EMAIL"`
	Password        string        `env:"RESCUESIM_PASSWORD"`
	Frame           time.Duration `env:"RESCUESIM_FRAME"            envDefault:"50ms"`
	Speed           float64       `env:"RESCUESIM_PILOT_SPEED"      envDefault:"4"`
	DurationSeconds int           `env:"RESCUESIM_DURATION_SECONDS" envDefault:"300"`
	Timeout         time.Duration `env:"RESCUESIM_INGEST_TIMEOUT"   envDefault:"10s"`
}

func loadConfig(args []string) (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("playtest", flag.ContinueOnError)
	fs.StringVar(&cfg.Endpoint, "endpoint", cfg.Endpoint, "ingest url, e.g. http://localhost:8080/api/ingest/session (empty skips submission)")
	fs.StringVar(&cfg.Email, "email", cfg.Email, "player email")
	fs.StringVar(&cfg.Password, "password", cfg.Password, "player password")
	fs.DurationVar(&cfg.Frame, "frame", cfg.Frame, "simulated frame duration")
	fs.Float64Var(&cfg.Speed, "speed", cfg.Speed, "autopilot speed in units per second")
	fs.IntVar(&cfg.DurationSeconds, "duration", cfg.DurationSeconds, "run length in seconds")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "ingest request timeout")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	if cfg.Frame <= 0 {
		return config{}, errors.New("frame must be positive")
	}
	if cfg.DurationSeconds <= 0 {
		return config{}, errors.New("duration must be positive")
	}
	if cfg.Endpoint != "" && (cfg.Email == "" || cfg.Password == "") {
		return config{}, errors.New("email and password are required when an endpoint is set")
	}
	return cfg, nil
}

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		hlog.Fatalf("load config: %v", err)
	}

	sum := play(cfg)
	out, _ := json.MarshalIndent(sum, "", "  ")
	fmt.Println(string(out))

	if cfg.Endpoint == "" {
		return
	}
	c, err := ingestclient.New(ingestclient.Config{Endpoint: cfg.Endpoint, Timeout: cfg.Timeout})
	if err != nil {
		hlog.Fatalf("ingest client: %v", err)
	}
	id, err := c.Submit(context.Background(), ingestclient.PayloadFromSummary(sum, cfg.Email, cfg.Password))
	if err != nil {
		hlog.Fatalf("submit session: %v", err)
	}
	hlog.Infof("submitted session %s", id)
}

func play(cfg config) rescue.Summary {
	runCfg := rescue.DefaultRunConfig()
	runCfg.DurationSeconds = cfg.DurationSeconds
	runCfg.OnTransition = func(snap rescue.EncounterSnapshot, from rescue.State) {
		hlog.Infof("encounter %s: %s -> %s", snap.ID, from, snap.State)
	}

	run := rescue.NewRun(runCfg)
	run.Outcomes().Subscribe(func(o rescue.Outcome) {
		hlog.Debugf("outcome saved=%d lost=%d", o.Saved, o.Lost)
	})
	run.OnEnd(func(reason rescue.EndReason) {
		hlog.Infof("run %s ended: %s", run.SessionID(), reason)
	})

	pilot := autopilot.New(run, autopilot.Config{Speed: cfg.Speed})
	maxFrames := int(time.Duration(cfg.DurationSeconds)*time.Second/cfg.Frame) + 1
	return autopilot.Play(run, pilot, cfg.Frame, maxFrames)
}
