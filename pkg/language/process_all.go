package language

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ProcessAll converts input for every descriptor in parallel, bounded by the
// processor's worker limit. Per-language failures are reported in the
// corresponding Output; the returned error is only set when ctx ends first.
// Outputs are in descriptor order.
func (p *Processor) ProcessAll(ctx context.Context, descriptors []*Descriptor, input []string) ([]*Output, error) {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(p.maxWorkers)

	outputs := make([]*Output, len(descriptors))

	for i, d := range descriptors {
		i, d := i, d
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				outputs[i] = &Output{Language: d.ID(), Err: err, Error: err.Error()}
				return err
			}

			// Process always returns an output, even alongside an error
			out, _ := p.Process(ctx, d, input)
			outputs[i] = out
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return outputs, err
	}

	return outputs, nil
}
