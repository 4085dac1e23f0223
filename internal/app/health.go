package app

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/LordOfPolls/BlackDwarf/internal/observability"
)

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) observability.HealthStatus {
	status := observability.HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	// Check parser
	if s.app.parser != nil {
		status.Components["parser"] = "ok"
	} else {
		status.Status = "degraded"
		status.Components["parser"] = "missing"
	}

	// Check formatter
	switch {
	case s.app.Opts.NoFormat:
		status.Components["formatter"] = "disabled"
	case len(s.app.Config.Format.Command) == 0:
		status.Status = "degraded"
		status.Components["formatter"] = "no command configured"
	default:
		if _, err := exec.LookPath(s.app.Config.Format.Command[0]); err != nil {
			status.Status = "degraded"
			status.Components["formatter"] = fmt.Sprintf("%s not found in PATH", s.app.Config.Format.Command[0])
		} else {
			status.Components["formatter"] = "ok"
		}
	}

	// Check history store
	if s.app.history != nil {
		status.Components["history"] = "ok"
	} else if s.app.Config.History.Path != "" {
		status.Status = "degraded"
		status.Components["history"] = "missing but enabled in config"
	}

	return status
}
