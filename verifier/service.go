package verifier

import (
	"context"
	"time"

	"github.com/consensys/gnark/logger"
	"github.com/stacked-drg/porep-verifier/stacked"
	"github.com/stacked-drg/porep-verifier/store"
	"golang.org/x/xerrors"
)

var (
	ErrRoundExpired   = xerrors.New("round has expired")
	ErrProverMismatch = xerrors.New("prover id is not bound to the submitting user")
	ErrProofRejected  = xerrors.New("proof rejected")
)

// VerifyRequest addresses registered parameters by porep id, sector size and
// api version.
type VerifyRequest struct {
	Proof      []byte
	Inputs     stacked.PublicInputs
	PoRepID    [32]byte
	SectorSize stacked.SupportedSize
	APIVersion stacked.APIVersion
	ProverID   [32]byte
	SectorID   uint64
	Ticket     [32]byte
}

func (r VerifyRequest) Key() ([32]byte, error) {
	return stacked.PoRepKey(r.PoRepID, r.SectorSize, r.APIVersion)
}

// Service verifies proofs against the parameter registry and credits
// accepted submissions in the ledger.
type Service struct {
	params *store.Params
	ledger *store.Ledger
	orch   *Orchestrator

	Now func() time.Time
}

func NewService(params *store.Params, ledger *store.Ledger, orch *Orchestrator) *Service {
	return &Service{
		params: params,
		ledger: ledger,
		orch:   orch,
		Now:    time.Now,
	}
}

// SetParams registers vp for the given sector size and opens a round that
// accepts submissions for duration. A bundle is only left registered when
// its round opened.
func (s *Service) SetParams(ctx context.Context, size stacked.SupportedSize, vp stacked.VerifierParams, duration time.Duration) (store.Round, error) {
	if !size.Valid() {
		return store.Round{}, configErr("sector size", xerrors.Errorf("unsupported sector size %d", int(size)))
	}
	if _, err := stacked.Setup(vp.SetupParams); err != nil {
		return store.Round{}, configErr("setup params", err)
	}
	if len(vp.VerifyingKey) == 0 {
		return store.Round{}, configErr("empty verifying key", nil)
	}
	if got := vp.SetupParams.SectorBytes(); got != uint64(size.Bytes()) {
		return store.Round{}, configErr("sector size", xerrors.Errorf("%d nodes do not make a %s sector", vp.SetupParams.Nodes, size))
	}
	key, err := vp.Key()
	if err != nil {
		return store.Round{}, configErr("porep key", err)
	}
	if _, err := ParseVerifyingKey(vp.VerifyingKey); err != nil {
		return store.Round{}, err
	}

	prev, err := s.params.Get(ctx, key)
	replacing := err == nil
	if err != nil && !xerrors.Is(err, store.ErrNotFound) {
		return store.Round{}, xerrors.Errorf("failed to read verifier params: %w", err)
	}
	if err := s.params.Put(ctx, key, vp); err != nil {
		return store.Round{}, xerrors.Errorf("failed to store verifier params: %w", err)
	}

	log := logger.Logger()
	round, err := s.ledger.OpenRound(ctx, vp.SetupParams.PoRepID, s.Now(), duration)
	if err != nil {
		var rerr error
		if replacing {
			rerr = s.params.Put(ctx, key, prev)
		} else {
			rerr = s.params.Delete(ctx, key)
		}
		if rerr != nil {
			log.Error().Err(rerr).Hex("porep_key", key[:]).Msg("failed to roll back verifier params")
		}
		return store.Round{}, xerrors.Errorf("failed to open round: %w", err)
	}
	log.Info().Int64("round", round.Number).Hex("porep_key", key[:]).Msg("registered verifier params")
	return round, nil
}

func (s *Service) Params(ctx context.Context, key [32]byte) (stacked.VerifierParams, error) {
	return s.params.Get(ctx, key)
}

func (s *Service) VerifyProof(ctx context.Context, req VerifyRequest) (Outcome, error) {
	key, err := req.Key()
	if err != nil {
		return Outcome{}, configErr("porep key", err)
	}
	vp, err := s.params.Get(ctx, key)
	if err != nil {
		if xerrors.Is(err, store.ErrNotFound) {
			return Outcome{}, configErr("no verifier params registered", err)
		}
		return Outcome{}, err
	}
	return s.orch.Verify(ctx, Request{
		Params:   vp,
		Key:      key,
		Proof:    req.Proof,
		Inputs:   req.Inputs,
		PoRepID:  req.PoRepID,
		ProverID: req.ProverID,
		SectorID: req.SectorID,
		Ticket:   req.Ticket,
	})
}

// SubmitProof verifies a proof on behalf of user for the active round and
// returns the user's reward total.
func (s *Service) SubmitProof(ctx context.Context, user string, req VerifyRequest) (int64, error) {
	round, err := s.ledger.ActiveRound(ctx)
	if err != nil {
		return 0, err
	}
	if round.Expired(s.Now()) {
		return 0, xerrors.Errorf("round %d: %w", round.Number, ErrRoundExpired)
	}
	if req.ProverID != stacked.ProverIDFromAccount(user) {
		return 0, ErrProverMismatch
	}
	submitted, err := s.ledger.Submitted(ctx, user, round.Number)
	if err != nil {
		return 0, err
	}
	if submitted {
		return 0, store.ErrAlreadySubmitted
	}

	out, err := s.VerifyProof(ctx, req)
	if err != nil {
		return 0, err
	}
	if !out.Verdict() {
		return 0, ErrProofRejected
	}

	if err := s.ledger.MarkSubmitted(ctx, user, round.Number); err != nil {
		return 0, err
	}
	return s.ledger.AddReward(ctx, user)
}

func (s *Service) ActiveRound(ctx context.Context) (store.Round, error) {
	return s.ledger.ActiveRound(ctx)
}

func (s *Service) Reward(ctx context.Context, user string) (int64, error) {
	return s.ledger.Reward(ctx, user)
}

func (s *Service) Users(ctx context.Context, limit int, after string) ([]string, error) {
	return s.ledger.Users(ctx, limit, after)
}
