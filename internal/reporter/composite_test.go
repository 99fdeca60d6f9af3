package reporter

import "testing"

type spyReporter struct {
	NullReporter
	warnings []string
}

func (s *spyReporter) Warning(message string) {
	s.warnings = append(s.warnings, message)
}

func TestCompositeReporterFansOutToAll(t *testing.T) {
	a := &spyReporter{}
	b := &spyReporter{}
	c := NewCompositeReporter(a, b)

	c.Warning("low disk space")

	if len(a.warnings) != 1 || a.warnings[0] != "low disk space" {
		t.Errorf("first reporter did not receive the warning: %v", a.warnings)
	}
	if len(b.warnings) != 1 || b.warnings[0] != "low disk space" {
		t.Errorf("second reporter did not receive the warning: %v", b.warnings)
	}
}

func TestCompositeReporterEmptyIsNoop(t *testing.T) {
	c := NewCompositeReporter()
	// Should not panic with zero underlying reporters.
	c.Device(DeviceSummary{Kind: "cpu"})
	c.RunComplete(RunOutcome{})
	c.BatchComplete(BatchSummary{})
}

func TestCompositeReporterForwardsAllMethods(t *testing.T) {
	a := &spyReporter{}
	c := NewCompositeReporter(a)

	// Exercise every method once to confirm the fan-out wiring compiles
	// and runs for the full Reporter surface, not just Warning.
	c.Device(DeviceSummary{})
	c.ModelReady(ModelSummary{})
	c.SourceProbed(SourceSummary{})
	c.StageProgress(StageProgress{})
	c.ProcessingStarted(10)
	c.ProcessingProgress(ProgressSnapshot{})
	c.PostProcessComplete(PostProcessSummary{})
	c.RunComplete(RunOutcome{})
	c.Error(ReporterError{})
	c.BatchStarted(BatchStartInfo{})
	c.FileProgress(FileProgressContext{})
	c.BatchComplete(BatchSummary{})
	c.Verbose("v")
}
