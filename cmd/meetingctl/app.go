package main

import (
	"context"
	"time"

	"github.com/mgunville/obsidian-meetings/internal/calendar"
	"github.com/mgunville/obsidian-meetings/internal/capability"
	"github.com/mgunville/obsidian-meetings/internal/clock"
	"github.com/mgunville/obsidian-meetings/internal/config"
	"github.com/mgunville/obsidian-meetings/internal/ingest"
	"github.com/mgunville/obsidian-meetings/internal/orchestrator"
	"github.com/mgunville/obsidian-meetings/internal/pipeline"
	"github.com/mgunville/obsidian-meetings/internal/queue"
	"github.com/mgunville/obsidian-meetings/internal/runtimestate"
)

// App is the single place every subcommand's Run method reaches into for
// its wired collaborators, built once from the resolved Config. The only
// process-wide state is the set of paths resolved from environment
// variables at startup.
type App struct {
	Config *config.Config
	Clock  clock.Clock
	JSON   bool
}

// NewApp resolves cfg into a ready App.
func NewApp(cfg *config.Config, jsonMode bool) *App {
	return &App{Config: cfg, Clock: clock.System{}, JSON: jsonMode}
}

func (a *App) recorder() capability.Recorder {
	return capability.RecorderFor(a.Config.Tools.RecorderCommand)
}

func (a *App) transcriber() capability.Transcriber {
	return capability.TranscriberFor(a.Config.Tools.TranscriberCommand)
}

func (a *App) converter() capability.AudioConverter {
	return capability.AudioConverterFor(a.Config.Tools.ConverterCommand)
}

func (a *App) summarizer() capability.Summarizer {
	return capability.SummarizerFor(a.Config.Tools.SummarizerCommand)
}

func (a *App) stateStore() *runtimestate.Store {
	return runtimestate.New(a.Config.State.StateFile, a.Clock)
}

func (a *App) orchestrator() *orchestrator.Orchestrator {
	return orchestrator.New(a.stateStore(), a.recorder(), a.Clock)
}

func (a *App) queue() *queue.Queue {
	return queue.New(a.Config.State.ProcessQueueFile)
}

func (a *App) pipeline() *pipeline.Pipeline {
	return pipeline.New(
		pipeline.Config{VaultRoot: a.Config.Paths.VaultPath, RecordingsRoot: a.Config.Paths.RecordingsPath},
		a.transcriber(), a.summarizer(), a.converter(),
		a.Config.State.ProcessedJobsFile, a.Clock,
	)
}

func (a *App) calendarService() *calendar.Service {
	return &calendar.Service{
		Backends: []calendar.Backend{
			calendar.NewEventKitBackend(a.Config.Tools.EventKitCommand),
			calendar.NewJXABackend(a.Config.Tools.JXACommand),
			calendar.NewICalBuddyBackend(a.Config.Tools.ICalBuddyCommand),
		},
	}
}

// eventLookup adapts the calendar service into ingest.EventLookup: given a
// reference instant and window, fetch a generous [around-window,
// around+window] slice and let selector.NearestTo narrow it down.
func (a *App) eventLookup() ingest.EventLookup {
	svc := a.calendarService()
	return func(ctx context.Context, around time.Time, window time.Duration) ([]calendar.Event, error) {
		start := around.Add(-window)
		end := around.Add(window)
		res, err := svc.Resolve(ctx, &start, &end)
		if err != nil {
			return nil, err
		}
		return res.Events, nil
	}
}
