package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendscribe/internal/domain/entity"
	workerPkg "trendscribe/internal/infra/worker"
)

type stubTrigger struct{}

func (stubTrigger) Trigger(context.Context) (*entity.Post, error) { return &entity.Post{ID: 1}, nil }

func TestNewEmbeddedScheduler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name    string
		mutate  func(*workerPkg.SchedulerConfig)
		wantNil bool
		wantErr string
	}{
		{name: "enabled", mutate: func(*workerPkg.SchedulerConfig) {}},
		{name: "disabled", mutate: func(c *workerPkg.SchedulerConfig) { c.Enabled = false }, wantNil: true},
		{name: "unknown timezone", mutate: func(c *workerPkg.SchedulerConfig) { c.Timezone = "Mars/Olympus" }, wantNil: true, wantErr: "timezone"},
		{name: "bad schedule", mutate: func(c *workerPkg.SchedulerConfig) { c.CronSchedule = "every tuesday" }, wantNil: true, wantErr: "cron"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := workerPkg.DefaultConfig()
			tt.mutate(&cfg)

			sched, err := newEmbeddedScheduler(cfg, stubTrigger{}, prometheus.NewRegistry(), logger)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantNil, sched == nil)
		})
	}
}
