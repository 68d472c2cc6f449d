// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package grants

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vestry-labs/vestry/builtin/reverts"
	"github.com/vestry-labs/vestry/builtin/slots"
	"github.com/vestry-labs/vestry/vestry"
)

var (
	slotGrants        = vestry.BytesToBytes32([]byte("grants"))
	slotGrantsCounter = vestry.BytesToBytes32([]byte("grants-counter"))

	ErrExistingGrant = reverts.New("grants: grant already exists")
	ErrNoGrant       = reverts.New("grants: no grant")
	ErrInvalidGrant  = reverts.New("grants: invalid grant")
)

// Service stores at most one live grant per recipient.
type Service struct {
	grants  *slots.Mapping[vestry.Address, *Grant]
	counter *slots.Uint256
}

func New(sctx *slots.Context) *Service {
	return &Service{
		grants:  slots.NewMapping[vestry.Address, *Grant](sctx, slotGrants),
		counter: slots.NewUint256(sctx, slotGrantsCounter),
	}
}

// Get returns the grant of recipient, or an empty grant when there is none.
func (s *Service) Get(recipient vestry.Address) (*Grant, error) {
	g, err := s.grants.Get(recipient)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get grant")
	}
	return g.normalize(), nil
}

// Create stores a new grant for recipient.
func (s *Service) Create(recipient vestry.Address, grant *Grant) error {
	if grant.IsEmpty() || grant.Created > grant.Cliff || grant.Cliff > grant.Expiration {
		return ErrInvalidGrant
	}
	existing, err := s.Get(recipient)
	if err != nil {
		return err
	}
	if !existing.IsEmpty() {
		return ErrExistingGrant
	}
	if err := s.grants.Set(recipient, grant.Copy()); err != nil {
		return errors.Wrap(err, "failed to set grant")
	}
	return s.counter.Add(big.NewInt(1))
}

// Rebind updates the delegation bookkeeping of a live grant.
// Economic fields are never touched.
func (s *Service) Rebind(recipient, delegatee vestry.Address, votingPower *big.Int) error {
	g, err := s.Get(recipient)
	if err != nil {
		return err
	}
	if g.IsEmpty() {
		return ErrNoGrant
	}
	g.Delegatee = delegatee
	g.LatestVotingPower = new(big.Int).Set(votingPower)
	if err := s.grants.Set(recipient, g); err != nil {
		return errors.Wrap(err, "failed to update grant")
	}
	return nil
}

// Delete removes the grant of recipient.
func (s *Service) Delete(recipient vestry.Address) error {
	g, err := s.Get(recipient)
	if err != nil {
		return err
	}
	if g.IsEmpty() {
		return ErrNoGrant
	}
	s.grants.Delete(recipient)
	return s.counter.Sub(big.NewInt(1))
}

// Count returns the number of live grants.
func (s *Service) Count() (uint64, error) {
	n, err := s.counter.Get()
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}
