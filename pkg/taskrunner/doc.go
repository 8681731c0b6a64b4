// Package taskrunner executes an ordered list of titled tasks one after another.
// Each task may be omitted through its Enabled predicate or skipped through its
// Skip predicate; the first failing action aborts the run and no later task is
// evaluated. Progress is surfaced through a Reporter so callers can render it
// without the runner writing to any stream itself.
package taskrunner
