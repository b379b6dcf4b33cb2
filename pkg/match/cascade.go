package match

import (
	"math"

	"github.com/agentstation/crossmap/pkg/normalize"
	"github.com/agentstation/crossmap/pkg/score"
	"github.com/agentstation/crossmap/pkg/tabular"
)

// rowOutcome is the result of running the cascade for one master row. The
// surviving candidate pool is kept whole so claim resolution can fall
// through to the next unclaimed survivor.
type rowOutcome struct {
	// survivors holds target positions still eligible after the last
	// step, in discovery order. Empty means the row found no candidates.
	survivors []int

	// algorithms records, per surviving position, the algorithm whose
	// verdict kept it in the final step. Index-bucket adoptions count as
	// exact.
	algorithms map[int]score.Algorithm

	// total and steps accumulate the per-step score contributions; the
	// final score is their rounded mean.
	total float64
	steps int
}

func (o *rowOutcome) score() int {
	if o.steps == 0 {
		return 0
	}
	s := int(math.Round(o.total / float64(o.steps)))
	if s > 100 {
		s = 100
	}
	return s
}

// cascader evaluates the key-pair cascade for master rows. It reads only
// the config, the scorer chain, and the pre-built index, so a single
// cascader is shared by all workers.
type cascader struct {
	cfg    *Config
	chain  []score.Scorer
	index  *Index
	target *tabular.Dataset

	// lookupEligible gates the first-step index shortcut, scanEligible
	// the fallback to a full scan when the bucket comes up empty.
	lookupEligible bool
	scanEligible   bool
}

func newCascader(cfg *Config, index *Index, target *tabular.Dataset) *cascader {
	return &cascader{
		cfg:            cfg,
		chain:          score.ForAlgorithms(cfg.Algorithms, cfg.Threshold),
		index:          index,
		target:         target,
		lookupEligible: cfg.enabled(score.AlgorithmExact) || cfg.enabled(score.AlgorithmLevenshtein),
		scanEligible:   cfg.enabled(score.AlgorithmLevenshtein) || cfg.enabled(score.AlgorithmPhonetic),
	}
}

// evaluate runs the cascade for one master row. Each key pair narrows the
// candidate pool; an empty pool stops the cascade immediately.
func (c *cascader) evaluate(master tabular.Row) rowOutcome {
	out := rowOutcome{algorithms: make(map[int]score.Algorithm)}

	var pool []int
	unconstrained := true

	for stepIdx, kp := range c.cfg.KeyPairs {
		left := normalize.Value(master.Value(kp.Master), c.cfg.Normalize)

		// The index shortcut applies only while nothing has narrowed
		// the pool, which is only possible on the first key pair.
		if stepIdx == 0 && unconstrained {
			if c.lookupEligible {
				if bucket := c.index.Lookup(kp.Target, left); len(bucket) > 0 {
					pool = bucket
					unconstrained = false
					for _, pos := range pool {
						out.algorithms[pos] = score.AlgorithmExact
					}
					out.total += score.ExactScore
					out.steps++
					continue
				}
			}
			if !c.scanEligible {
				return rowOutcome{}
			}
		}

		survivors, stepMean := c.scan(pool, unconstrained, kp.Target, left, out.algorithms)
		if len(survivors) == 0 {
			return rowOutcome{}
		}
		pool = survivors
		unconstrained = false
		out.total += stepMean
		out.steps++
	}

	out.survivors = pool
	return out
}

// scan applies the scorer chain to every candidate for one key pair. It
// returns the surviving positions in order and the mean of their verdict
// scores, which is the step's single contribution to the accumulated total.
func (c *cascader) scan(pool []int, unconstrained bool, targetCol, left string, algorithms map[int]score.Algorithm) ([]int, float64) {
	n := len(pool)
	if unconstrained {
		n = c.target.Len()
	}

	var survivors []int
	sum := 0
	for i := 0; i < n; i++ {
		pos := i
		if !unconstrained {
			pos = pool[i]
		}
		right := normalize.Value(c.target.Row(pos).Value(targetCol), c.cfg.Normalize)
		v, alg, ok := score.First(c.chain, left, right)
		if !ok {
			delete(algorithms, pos)
			continue
		}
		survivors = append(survivors, pos)
		algorithms[pos] = alg
		sum += v
	}
	if len(survivors) == 0 {
		return nil, 0
	}
	return survivors, float64(sum) / float64(len(survivors))
}
