package seed

import (
	"fmt"
	"strconv"
	"strings"

	"contact-seeder/internal/common/errors"
	"contact-seeder/internal/common/validation"
)

// ResolveArgs reads [count] [className] from args. Missing values fall back to
// the configured defaults; extra values are ignored.
func ResolveArgs(args []string, cfg *Config) (*Input, error) {
	input := &Input{
		Count:     cfg.DefaultCount,
		ClassName: cfg.DefaultClassName,
	}

	if len(args) >= 1 {
		raw := strings.TrimSpace(args[0])
		count, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.NewInvalidArgumentError("count", fmt.Sprintf("%q is not an integer", args[0]))
		}
		input.Count = count
	}
	if len(args) >= 2 {
		input.ClassName = args[1]
	}
	if !validation.ValidateClassName(input.ClassName) {
		return nil, errors.NewInvalidArgumentError("className",
			fmt.Sprintf("%q must start with a letter and hold only letters, digits or '_'", input.ClassName))
	}

	result := validation.ValidateInput(map[string]interface{}{
		"count":     input.Count,
		"className": input.ClassName,
	}, GetInputSchema(cfg.MaxCount))
	if !result.Valid {
		field := "className"
		if result.HasErrors("count") {
			field = "count"
		}
		return nil, errors.NewInvalidArgumentError(field, result.String())
	}

	return input, nil
}
