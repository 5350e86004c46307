package cron

import (
	"context"
	"os"
	"testing"

	cronv3 "github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rankforge/seoportal/config"
	"github.com/rankforge/seoportal/interfaces"
	"github.com/rankforge/seoportal/internal/logger"
)

type stubPublicationService struct {
	runs int
}

func (s *stubPublicationService) RunSweep(ctx context.Context) (*interfaces.SweepResult, error) {
	s.runs++
	return &interfaces.SweepResult{}, nil
}

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

func newTestConfig() *config.Config {
	return &config.Config{
		AppConfig: &config.AppConfig{},
	}
}

func TestNewCronManager(t *testing.T) {
	cm := NewCronManager(newTestConfig(), getLogger(), nil, &stubPublicationService{})

	assert.NotNil(t, cm)
	assert.NotNil(t, cm.jobIDs)
	assert.NotNil(t, cm.jobLocks[GroupPublication])
}

func TestCronManager_RegisterJobs(t *testing.T) {
	os.Setenv("CRON_SCHEDULE_HEARTBEAT", "0 * * * * *")
	os.Setenv("CRON_SCHEDULE_PUBLISH_SWEEP", "0 */5 * * * *")
	defer os.Unsetenv("CRON_SCHEDULE_HEARTBEAT")
	defer os.Unsetenv("CRON_SCHEDULE_PUBLISH_SWEEP")

	cm := NewCronManager(newTestConfig(), getLogger(), nil, &stubPublicationService{})

	c := cronv3.New(cronv3.WithSeconds())
	cm.registerJobs(c)

	assert.Equal(t, 2, len(cm.jobIDs))
	assert.Contains(t, cm.jobIDs, "heartbeat")
	assert.Contains(t, cm.jobIDs, "publish_sweep")
}

func TestCronManager_RunPublishSweep(t *testing.T) {
	publication := &stubPublicationService{}
	cm := NewCronManager(newTestConfig(), getLogger(), nil, publication)

	cm.runPublishSweep()

	require.Equal(t, 1, publication.runs)
}

func TestCronManager_Stop(t *testing.T) {
	cm := NewCronManager(newTestConfig(), getLogger(), nil, &stubPublicationService{})

	c := cronv3.New()
	c.Start()
	cm.cron = c

	cm.Stop()

	select {
	case <-cm.stopCh:
		// channel closed as expected
	default:
		t.Error("Stop channel was not closed")
	}
}
