package rewrite

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ritzau/shadergraph/pkg/graph"
	"github.com/ritzau/shadergraph/pkg/logging"
)

// Job is one tree to convert. Jobs in a batch must not share trees.
type Job struct {
	Name    string
	Tree    *graph.Tree
	Surface *graph.Socket
}

// Result is the outcome of one Job.
type Result struct {
	Job    Job
	Node   *graph.Node
	Report *Report
	Err    error
}

// ConvertAll converts independent trees on up to workers goroutines. A
// failing job does not stop the others; its error is kept in its Result and
// joined into the returned error. Cancelling ctx stops jobs that have not
// started yet.
func (c *Converter) ConvertAll(ctx context.Context, jobs []Job, workers int) ([]Result, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]Result, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		g.Go(func() error {
			results[i].Job = job
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return err
			}
			// each job gets its own run id
			jctx := logging.WithRunID(gctx, logging.NewRunID())
			results[i].Node, results[i].Report, results[i].Err = c.Convert(jctx, job.Tree, job.Surface)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("batch interrupted: %w", err)
	}

	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Job.Name, res.Err))
		}
	}
	return results, errors.Join(errs...)
}
