package service

import (
	"github.com/wayfarerhq/wayfarer/core/config"
	"github.com/wayfarerhq/wayfarer/internal/generator"
	"github.com/wayfarerhq/wayfarer/internal/store"
)

type Services struct {
	stores  *store.Stores
	gen     generator.Generator
	tasks   TaskRunner
	jobsCfg config.JobsConfig
}

func NewServices(stores *store.Stores, gen generator.Generator, tasks TaskRunner, jobsCfg config.JobsConfig) *Services {
	return &Services{
		stores:  stores,
		gen:     gen,
		tasks:   tasks,
		jobsCfg: jobsCfg,
	}
}

func (s *Services) Jobs() JobService {
	return NewJobService(s.stores.Jobs(), s.gen, s.tasks, s.jobsCfg.MaxDurationDays)
}
