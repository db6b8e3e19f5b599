// Package schedule runs configured export jobs on cron schedules.
//
// Jobs come from the schedule.jobs configuration section; JobsFromConfig
// fills unset request fields from the export section. Every job run goes
// through the same export path as the CLI and is recorded with the
// "schedule" trigger.
package schedule
