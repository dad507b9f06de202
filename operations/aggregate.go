package operations

import (
	"github.com/pkg/errors"

	"github.com/lightcrest/beacon-chain/primitives"
)

// AggregateForForkchoice merges every unaggregated attestation sharing a
// data root into the pool's best-known aggregate for that key and stages
// the result in the forkchoice bucket, mirroring the teacher's
// batchForkChoiceAtts sweep (beacon-chain/operations/attestations/prepare_forkchoice.go),
// run here synchronously rather than on a ticking goroutine since the
// orchestrator is single-writer and calls this itself at tick boundaries.
func (p *Pool) AggregateForForkchoice() error {
	p.mu.Lock()
	buckets := make(map[attKey][]*primitives.Attestation, len(p.unaggregated))
	for k, atts := range p.unaggregated {
		buckets[k] = append([]*primitives.Attestation{}, atts...)
	}
	for k, agg := range p.aggregated {
		buckets[k] = append(buckets[k], agg)
	}
	p.mu.Unlock()

	for k, atts := range buckets {
		merged, err := aggregateAttestations(atts)
		if err != nil {
			return errors.Wrap(err, "could not aggregate attestations")
		}
		p.mu.Lock()
		p.forkchoiceAtts[k] = merged
		delete(p.unaggregated, k)
		p.mu.Unlock()
	}
	return nil
}

// aggregateAttestations folds every attestation in atts (which must share
// the same attestation data) into one attestation whose aggregation bits
// are the union of the inputs'. Signatures are not re-aggregated here; the
// caller is expected to have already verified each input's signature and
// this is called only on the fork-choice path, which trusts bit-union
// weight accounting rather than re-deriving a combined BLS signature.
func aggregateAttestations(atts []*primitives.Attestation) (*primitives.Attestation, error) {
	if len(atts) == 0 {
		return nil, errors.New("no attestations to aggregate")
	}
	bits := atts[0].AggregationBits
	for _, a := range atts[1:] {
		if a.AggregationBits.Len() != bits.Len() {
			return nil, errors.New("mismatched aggregation bit lengths")
		}
		bits = bits.Or(a.AggregationBits)
	}
	return &primitives.Attestation{
		Data:            atts[0].Data,
		Signature:       atts[0].Signature,
		AggregationBits: bits,
	}, nil
}
