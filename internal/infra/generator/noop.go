package generator

import (
	"context"
	"fmt"
	"time"

	"trendscribe/internal/config"
)

// Noop returns a fixed post without calling any API. It is meant for local
// runs and smoke tests.
type Noop struct {
	now func() time.Time
}

func NewNoop() *Noop {
	return &Noop{now: time.Now}
}

func (n *Noop) Name() string { return config.GeneratorNoop }

// Generate implements generate.Backend.
func (n *Noop) Generate(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf(`# Trend Report for %s

This post was produced by the noop generator. Configure GENERATOR_TYPE to
use a real backend.

Sources:
trendscribe noop generator`, n.now().Format("January 2, 2006")), nil
}
