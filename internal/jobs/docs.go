// Package jobs provides scheduled background tasks for the routing
// pipeline.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3:
//
// 1. EngineHealthJob - polls the engine fleet every 30 seconds and logs
// variants that are not serving.
//
// 2. GraphGenerationJob - triggers the full generation run on a
// configurable cron schedule (nightly by default), skipping the trigger
// with a log line when a run is already in flight.
//
// Jobs are managed through JobManager, which starts them together and
// stops already started jobs when a later one fails to start.
package jobs
