package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the log settings and every workspace.
func Validate(cfg *Config) error {
	if cfg == nil {
		return ErrNoWorkspace
	}

	if err := validate.Struct(cfg.Log); err != nil {
		return describe("log", err)
	}

	for _, name := range cfg.WorkspaceNames() {
		ws := cfg.Workspaces[name]
		if ws == nil {
			continue
		}
		if err := validate.Struct(ws); err != nil {
			return describe(fmt.Sprintf("workspace %q", name), err)
		}
	}
	return nil
}

func describe(scope string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %s: %w", scope, err)
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Workspace.")
		if fe.Param() != "" {
			problems = append(problems, fmt.Sprintf("%s must satisfy %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value()))
			continue
		}
		problems = append(problems, fmt.Sprintf("%s must satisfy %s (got %v)", field, fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("config: %s: invalid settings: %s", scope, strings.Join(problems, "; "))
}
