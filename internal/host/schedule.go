package host

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// schedule enqueues a reload on every tick of spec. The returned func stops
// the scheduler and waits for a running job to finish.
func (h *Host) schedule(spec string) (stop func(), err error) {
	c := cron.New(cron.WithParser(cronParser))
	if _, err := c.AddFunc(spec, func() { h.enqueue(scheduled) }); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	c.Start()
	h.log.Debug().Str("schedule", spec).Msg("scheduled refresh enabled")
	return func() { <-c.Stop().Done() }, nil
}
