package reporter

// CompositeReporter fans out every call to a list of reporters, e.g. so a
// run can print to the terminal and write to the log file at once.
type CompositeReporter struct {
	reporters []Reporter
}

// NewCompositeReporter returns a Reporter that forwards to all of rs.
func NewCompositeReporter(rs ...Reporter) *CompositeReporter {
	return &CompositeReporter{reporters: rs}
}

func (c *CompositeReporter) Device(s DeviceSummary) {
	for _, r := range c.reporters {
		r.Device(s)
	}
}

func (c *CompositeReporter) ModelReady(s ModelSummary) {
	for _, r := range c.reporters {
		r.ModelReady(s)
	}
}

func (c *CompositeReporter) SourceProbed(s SourceSummary) {
	for _, r := range c.reporters {
		r.SourceProbed(s)
	}
}

func (c *CompositeReporter) StageProgress(u StageProgress) {
	for _, r := range c.reporters {
		r.StageProgress(u)
	}
}

func (c *CompositeReporter) ProcessingStarted(total int) {
	for _, r := range c.reporters {
		r.ProcessingStarted(total)
	}
}

func (c *CompositeReporter) ProcessingProgress(p ProgressSnapshot) {
	for _, r := range c.reporters {
		r.ProcessingProgress(p)
	}
}

func (c *CompositeReporter) PostProcessComplete(s PostProcessSummary) {
	for _, r := range c.reporters {
		r.PostProcessComplete(s)
	}
}

func (c *CompositeReporter) RunComplete(s RunOutcome) {
	for _, r := range c.reporters {
		r.RunComplete(s)
	}
}

func (c *CompositeReporter) Warning(message string) {
	for _, r := range c.reporters {
		r.Warning(message)
	}
}

func (c *CompositeReporter) Error(err ReporterError) {
	for _, r := range c.reporters {
		r.Error(err)
	}
}

func (c *CompositeReporter) BatchStarted(info BatchStartInfo) {
	for _, r := range c.reporters {
		r.BatchStarted(info)
	}
}

func (c *CompositeReporter) FileProgress(ctx FileProgressContext) {
	for _, r := range c.reporters {
		r.FileProgress(ctx)
	}
}

func (c *CompositeReporter) BatchComplete(s BatchSummary) {
	for _, r := range c.reporters {
		r.BatchComplete(s)
	}
}

func (c *CompositeReporter) Verbose(message string) {
	for _, r := range c.reporters {
		r.Verbose(message)
	}
}
