package session

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type purgeable interface {
	Purge() int
}

type purgeRecorder interface {
	RecordPurge(removed int)
}

// Purger periodically removes expired sessions from an in-process store.
type Purger struct {
	store  purgeable
	cron   *cron.Cron
	logger zerolog.Logger
	m      purgeRecorder
}

func NewPurger(store purgeable, schedule string, logger zerolog.Logger, m purgeRecorder) (*Purger, error) {
	p := &Purger{
		store:  store,
		cron:   cron.New(),
		logger: logger.With().Str("component", "SessionPurger").Logger(),
		m:      m,
	}

	if _, err := p.cron.AddFunc(schedule, p.RunOnce); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Purger) Start() {
	p.cron.Start()
	p.logger.Info().Msg("Session purger started")
}

// Stop waits for a running purge to finish.
func (p *Purger) Stop() {
	<-p.cron.Stop().Done()
	p.logger.Info().Msg("Session purger stopped")
}

func (p *Purger) RunOnce() {
	removed := p.store.Purge()
	p.m.RecordPurge(removed)
	p.logger.Debug().Int("removed", removed).Msg("expired sessions purged")
}
