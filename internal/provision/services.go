package provision

import (
	"context"
	"fmt"
)

// ServiceController restarts system services. Unlike package availability,
// a failed restart leaves the box in an unusable state and is fatal.
type ServiceController struct {
	runner Runner
}

// NewServiceController creates a ServiceController.
func NewServiceController(runner Runner) *ServiceController {
	return &ServiceController{runner: runner}
}

// Restart restarts the named service.
func (c *ServiceController) Restart(ctx context.Context, name string) error {
	if err := c.runner.Run(ctx, "service", name, "restart"); err != nil {
		return fmt.Errorf("restart %s: %w", name, err)
	}
	return nil
}
