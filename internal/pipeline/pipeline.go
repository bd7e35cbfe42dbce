package pipeline

// Processor is one stage of the compilation pipeline. A stage reads and
// mutates the context; it must tolerate a context that earlier stages have
// already marked as failed.
type Processor interface {
	Process(ctx *Context) *Context
}

// Pipeline runs a fixed sequence of stages over a context.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes every stage in order. Stages are not short-circuited on
// error so a single pass collects diagnostics from all of them.
func (p *Pipeline) Run(ctx *Context) *Context {
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}

// Default assembles the standard compilation pipeline: project config,
// native bindings, declaration resolution, function derivation.
func Default() *Pipeline {
	return New(
		&ConfigStage{},
		&BindStage{},
		&ResolveStage{},
		&DeriveStage{},
	)
}
