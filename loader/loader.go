/*
 * loader.go, part of gonnp.
 *
 * Copyright 2023 Raul Mera <rmera{at}usachDOTcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 * goNNP is currently developed at the Universidad de Santiago de Chile
 * (USACH)
 *
 */

//Package loader feeds batches to a training loop. Worker goroutines
//prefetch samples from the store, run the preprocessing pipeline and
//assemble batches in parallel with whatever consumes them. When shuffling
//is on, batch order across workers is not the dataset order; within one
//batch, assembly is deterministic.
package loader

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	nnp "github.com/rmera/gonnp"
	"github.com/rmera/gonnp/batch"
	"github.com/rmera/gonnp/transform"
	"go.uber.org/zap"
)

// Source is the random-access dataset a loader reads from. *store.Store
// satisfies it.
type Source interface {
	Len() int
	Get(i int) (*nnp.Structure, nnp.Record, error)
}

// Loader prefetches, transforms and batches samples from a Source.
type Loader struct {
	src       Source
	indices   []int
	batchSize int
	workers   int
	pipeline  transform.Pipeline
	shuffle   bool
	rng       *rand.Rand
	log       *zap.Logger
	errmu     sync.Mutex
	err       error
}

// Option configures a Loader.
type Option func(*Loader)

// WithBatchSize sets the number of structures per batch. The default is 32.
func WithBatchSize(n int) Option {
	return func(L *Loader) { L.batchSize = n }
}

// WithWorkers sets the number of prefetching goroutines. The default is 1;
// with 1 worker and no shuffling, batches arrive in dataset order.
func WithWorkers(n int) Option {
	return func(L *Loader) { L.workers = n }
}

// WithTransforms sets the preprocessing pipeline applied to every sample
// before batching.
func WithTransforms(ts ...transform.Transform) Option {
	return func(L *Loader) { L.pipeline = transform.Pipeline(ts) }
}

// WithShuffle reshuffles the sample order before every epoch, seeded for
// reproducibility.
func WithShuffle(seed int64) Option {
	return func(L *Loader) {
		L.shuffle = true
		L.rng = rand.New(rand.NewSource(seed))
	}
}

// WithLogger sets a logger for per-epoch progress. The default is silent.
func WithLogger(log *zap.Logger) Option {
	return func(L *Loader) { L.log = log }
}

// New builds a loader over the given subset of source indices (all of the
// source, if indices is nil).
func New(src Source, indices []int, opts ...Option) (*Loader, error) {
	if indices == nil {
		indices = make([]int, src.Len())
		for i := range indices {
			indices[i] = i
		}
	}
	L := &Loader{src: src, indices: indices, batchSize: 32, workers: 1, log: zap.NewNop()}
	for _, opt := range opts {
		opt(L)
	}
	if L.batchSize <= 0 {
		return nil, Error{fmt.Sprintf("bad batch size %d", L.batchSize), []string{"New"}, true}
	}
	if L.workers <= 0 {
		return nil, Error{fmt.Sprintf("bad worker count %d", L.workers), []string{"New"}, true}
	}
	return L, nil
}

// Len returns the number of batches per epoch.
func (L *Loader) Len() int {
	return (len(L.indices) + L.batchSize - 1) / L.batchSize
}

// Epoch starts one pass over the dataset and returns the channel the
// batches arrive on. The channel is closed when the epoch is done or the
// context is canceled; after it closes, Err reports the first failure, if
// any. Batches are delivered as workers finish them, so their order is not
// guaranteed to match the (possibly shuffled) sample order.
func (L *Loader) Epoch(ctx context.Context) <-chan nnp.Record {
	order := append([]int{}, L.indices...)
	if L.shuffle {
		L.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}
	nbatch := L.Len()
	jobs := make(chan []int, nbatch)
	for b := 0; b < nbatch; b++ {
		hi := (b + 1) * L.batchSize
		if hi > len(order) {
			hi = len(order)
		}
		jobs <- order[b*L.batchSize : hi]
	}
	close(jobs)
	out := make(chan nnp.Record, L.workers)
	var wg sync.WaitGroup
	L.errmu.Lock()
	L.err = nil
	L.errmu.Unlock()
	for w := 0; w < L.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				b, err := L.assemble(idx)
				if err != nil {
					L.fail(err)
					return
				}
				select {
				case out <- b:
				case <-ctx.Done():
					L.fail(ctx.Err())
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(out)
		L.log.Debug("epoch done", zap.Int("batches", nbatch))
	}()
	return out
}

//assemble fetches, transforms and merges one batch worth of samples.
//Within a batch the sample order is exactly the order of the index slice.
func (L *Loader) assemble(idx []int) (nnp.Record, error) {
	recs := make([]nnp.Record, len(idx))
	for k, i := range idx {
		_, rec, err := L.src.Get(i)
		if err != nil {
			return nil, errDecorate(err, "assemble")
		}
		if L.pipeline != nil {
			rec, err = L.pipeline.Apply(rec)
			if err != nil {
				return nil, errDecorate(err, "assemble")
			}
		}
		recs[k] = rec
	}
	b, err := batch.Assemble(recs)
	if err != nil {
		return nil, errDecorate(err, "assemble")
	}
	return b, nil
}

func (L *Loader) fail(err error) {
	L.errmu.Lock()
	if L.err == nil {
		L.err = err
	}
	L.errmu.Unlock()
}

// Err returns the first error of the last epoch, or nil. It is only
// meaningful after the epoch's channel has closed.
func (L *Loader) Err() error {
	L.errmu.Lock()
	defer L.errmu.Unlock()
	return L.err
}

//Errors

//errDecorate asserts that the error implements nnp.Error and decorates it
//with the caller's name before returning it.
func errDecorate(err error, caller string) error {
	err2 := err.(nnp.Error)
	err2.Decorate(caller)
	return err2
}

//Error is the general structure for loader errors. It fulfills nnp.Error.
type Error struct {
	message  string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("loader error: %s", err.message)
}

//Decorate adds new information to the error.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//Critical returns true if the error is critical, false otherwise.
func (err Error) Critical() bool { return err.critical }
