package indices

import (
	"context"
	"fmt"
	"planboard/client/es"
	"planboard/common"
	"planboard/domain"
	"sync"

	cron "github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Synchronizer rebuilds the project index from the store, one run at a time.
type Synchronizer struct {
	loader ProjectLoader

	lock    sync.Mutex
	running bool
}

func NewSynchronizer(loader ProjectLoader) *Synchronizer {
	return &Synchronizer{loader: loader}
}

// ScheduleNewSyncRun starts a full sync in the background, it returns false when a run is in progress.
func (s *Synchronizer) ScheduleNewSyncRun() bool {
	s.lock.Lock()
	if s.running {
		s.lock.Unlock()
		return false
	}
	s.running = true
	s.lock.Unlock()

	go func() {
		defer func() {
			s.lock.Lock()
			s.running = false
			s.lock.Unlock()
		}()
		if err := s.FullSync(context.Background()); err != nil {
			common.Log.WithError(err).Error("indices full sync failed")
		}
	}()
	return true
}

// FullSync drops the project index and indexes every project again, archived ones included.
func (s *Synchronizer) FullSync(ctx context.Context) (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			err = fmt.Errorf("error on indices full sync: %v", ret)
		}
	}()

	projects, err := s.loader.QueryProjects(ctx, &domain.ProjectQuery{Archived: domain.ArchiveStateAll})
	if err != nil {
		return err
	}
	if err := es.DropIndexFunc(ctx, ProjectIndexName); err != nil {
		return err
	}

	details := make([]domain.ProjectDetail, 0, len(projects))
	for _, p := range projects {
		detail, err := s.loader.DetailProject(ctx, p.ID)
		if err != nil {
			return err
		}
		details = append(details, *detail)
	}
	err = IndexProjects(ctx, details)
	common.Log.WithFields(logrus.Fields{"projects": len(details), "failed": err != nil}).Info("indices full sync finished")
	return err
}

// StartCron runs a full sync every night.
func (s *Synchronizer) StartCron() *cron.Cron {
	crontab := cron.New(cron.WithSeconds())
	if _, err := crontab.AddFunc("0 0 23 * * ?", func() { s.ScheduleNewSyncRun() }); err != nil {
		panic(err)
	}
	crontab.Start()
	return crontab
}
