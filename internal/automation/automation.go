// Package automation plays scripted tours: a sequence of modes, each held
// for a while with the orbit on or off, for unattended displays.
package automation

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/san-kum/skyglow/internal/scene"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted tour.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Loop        bool           `yaml:"loop"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep switches to Mode, sets the orbit if Animate is given, then
// holds for Hold.
type ScenarioStep struct {
	Mode    string        `yaml:"mode"`
	Animate *bool         `yaml:"animate"`
	Hold    time.Duration `yaml:"hold"`
}

// Target is what a scenario drives; *app.App satisfies it.
type Target interface {
	SetMode(name string) error
	SetAnimating(on bool)
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (s *Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario %q: no steps", s.Name)
	}
	var total time.Duration
	for i, step := range s.Steps {
		if _, err := scene.ParseMode(step.Mode); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		if step.Hold < 0 {
			return fmt.Errorf("step %d: negative hold %s", i+1, step.Hold)
		}
		total += step.Hold
	}
	if s.Loop && total == 0 {
		return fmt.Errorf("scenario %q: looping with zero total hold", s.Name)
	}
	return nil
}

// RunScenario plays the steps in order, repeating if the scenario loops,
// until the steps run out or ctx ends.
func RunScenario(ctx context.Context, s *Scenario, target Target, log *zap.Logger) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if log == nil {
		log = zap.NewNop()
	}

	for pass := 1; ; pass++ {
		for i, step := range s.Steps {
			log.Debug("tour step",
				zap.String("scenario", s.Name),
				zap.Int("pass", pass),
				zap.Int("step", i+1),
				zap.String("mode", step.Mode))

			if err := target.SetMode(step.Mode); err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
			if step.Animate != nil {
				target.SetAnimating(*step.Animate)
			}
			if step.Hold == 0 {
				continue
			}

			t := time.NewTimer(step.Hold)
			select {
			case <-ctx.Done():
				t.Stop()
				return nil
			case <-t.C:
			}
		}
		if !s.Loop {
			return nil
		}
	}
}
