package extensions

import (
	"context"

	"github.com/RAZZKCODE/pdf-edit-print/scripting"
)

// ScriptRunner executes a user automation script at a chosen phase.
// The script sees whatever globals the scripting engine has registered.
type ScriptRunner struct {
	engine   scripting.Engine
	phase    Phase
	script   string
	priority int
}

func NewScriptRunner(engine scripting.Engine, phase Phase, script string) *ScriptRunner {
	return &ScriptRunner{
		engine:   engine,
		phase:    phase,
		script:   script,
		priority: 200,
	}
}

func (s *ScriptRunner) Name() string  { return "script-runner" }
func (s *ScriptRunner) Phase() Phase  { return s.phase }
func (s *ScriptRunner) Priority() int { return s.priority }

func (s *ScriptRunner) Execute(ctx context.Context, snap *Snapshot) error {
	if s.engine == nil || s.script == "" {
		return nil
	}
	_, err := s.engine.Execute(ctx, s.script)
	return err
}
