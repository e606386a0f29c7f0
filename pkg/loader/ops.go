package loader

import (
	"context"
	"fmt"

	"veridian-hq/covenant/pkg/container"
	"veridian-hq/covenant/pkg/dsl/eval"
	"veridian-hq/covenant/pkg/dsl/value"
)

// ops returns the loader's builtin operations. Their names form the
// bootstrap allow-list.
func (l *Loader) ops() eval.Registry {
	return eval.Registry{
		"resource":          l.opResource,
		"bootstrap":         l.opBootstrap,
		"register":          l.opRegister,
		"generate_checksum": l.opGenerateChecksum,
	}
}

// opResource loads a module through the filter and returns its proxy.
func (l *Loader) opResource(ctx context.Context, inv *eval.Invocation) (value.Value, error) {
	path, ok := inv.Arg(0).(value.Str)
	if !ok {
		return nil, fmt.Errorf("resource: path is %s, want str", inv.Arg(0).Kind())
	}
	proxy, err := l.Load(ctx, string(path))
	if err != nil {
		return nil, err
	}
	return &value.Module{Path: string(path), Attrs: proxy}, nil
}

// opBootstrap runs a production program and returns its bindings.
func (l *Loader) opBootstrap(ctx context.Context, inv *eval.Invocation) (value.Value, error) {
	path, ok := inv.Arg(0).(value.Str)
	if !ok {
		return nil, fmt.Errorf("bootstrap: path is %s, want str", inv.Arg(0).Kind())
	}
	return l.Run(ctx, string(path))
}

// opRegister installs a constructed service into the process-wide
// container: register(service: 'name', adapter: value).
func (l *Loader) opRegister(ctx context.Context, inv *eval.Invocation) (value.Value, error) {
	name := inv.Kwarg("service")
	adapter := inv.Kwarg("adapter")
	if name.Kind() == value.KindNil && len(inv.Args) >= 2 {
		name = inv.Arg(0)
		adapter = inv.Arg(1)
	}
	svcName, ok := name.(value.Str)
	if !ok {
		return nil, fmt.Errorf("register: service name is %s, want str", name.Kind())
	}
	if err := container.Default().Register(string(svcName), adapter); err != nil {
		return nil, err
	}
	l.logger.Info("service registered", "service", string(svcName))
	return value.Bool(true), nil
}

// opGenerateChecksum regenerates a module's contracts and reports the
// outcome. Test failures are reported in the result, not raised.
func (l *Loader) opGenerateChecksum(ctx context.Context, inv *eval.Invocation) (value.Value, error) {
	path, ok := inv.Arg(0).(value.Str)
	if !ok {
		return nil, fmt.Errorf("generate_checksum: path is %s, want str", inv.Arg(0).Kind())
	}

	report, saved, err := l.Regenerate(ctx, string(path))
	if err != nil {
		return nil, err
	}

	out := value.NewDict()
	out.Set("module", path)
	out.Set("saved", value.Bool(saved))
	out.Set("targets", value.Int(len(report.Results)))

	failures := &value.List{}
	for _, res := range report.Failed() {
		row := value.NewDict()
		row.Set("target", value.Str(res.Target))
		row.Set("expected", value.Str(res.Expected))
		row.Set("actual", value.Str(res.Actual))
		failures.Elements = append(failures.Elements, row)
	}
	out.Set("failures", failures)
	return out, nil
}
