package store

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/namespace"
	"github.com/ipfs/go-datastore/query"
	"golang.org/x/xerrors"
)

var (
	ErrRoundExists      = xerrors.New("round already exists")
	ErrNoRound          = xerrors.New("no round opened")
	ErrAlreadySubmitted = xerrors.New("already submitted a proof this round")
)

// Round is a submission window. Proofs for it are accepted until Expires.
type Round struct {
	Number  int64    `json:"number"`
	Expires int64    `json:"time_expire"`
	PoRepID [32]byte `json:"porep_id"`
}

func (r Round) Expired(now time.Time) bool {
	return r.Expires < now.Unix()
}

var (
	currentRoundKey = datastore.NewKey("/current_round")
	roundsPrefix    = datastore.NewKey("/rounds")
	submittedPrefix = datastore.NewKey("/submitted")
	rewardsPrefix   = datastore.NewKey("/rewards")
)

// Ledger tracks rounds, per round submissions and rewards per user.
type Ledger struct {
	ds datastore.Datastore
	lk sync.Mutex
}

func NewLedger(ds datastore.Datastore) *Ledger {
	return &Ledger{ds: namespace.Wrap(ds, datastore.NewKey("/ledger"))}
}

func userKey(user string) string {
	return hex.EncodeToString([]byte(user))
}

func (l *Ledger) getInt(ctx context.Context, k datastore.Key, def int64) (int64, error) {
	b, err := l.ds.Get(ctx, k)
	if xerrors.Is(err, datastore.ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(string(b), 10, 64)
}

func (l *Ledger) putInt(ctx context.Context, k datastore.Key, v int64) error {
	return l.ds.Put(ctx, k, []byte(strconv.FormatInt(v, 10)))
}

// CurrentRound is the number the next opened round will get. Rounds are
// numbered from 1.
func (l *Ledger) CurrentRound(ctx context.Context) (int64, error) {
	return l.getInt(ctx, currentRoundKey, 1)
}

func (l *Ledger) OpenRound(ctx context.Context, porepID [32]byte, now time.Time, duration time.Duration) (Round, error) {
	l.lk.Lock()
	defer l.lk.Unlock()

	current, err := l.CurrentRound(ctx)
	if err != nil {
		return Round{}, err
	}
	k := roundsPrefix.ChildString(strconv.FormatInt(current, 10))
	has, err := l.ds.Has(ctx, k)
	if err != nil {
		return Round{}, err
	}
	if has {
		return Round{}, xerrors.Errorf("round %d: %w", current, ErrRoundExists)
	}

	r := Round{Number: current, Expires: now.Add(duration).Unix(), PoRepID: porepID}
	b, err := json.Marshal(r)
	if err != nil {
		return Round{}, err
	}
	if err := l.ds.Put(ctx, k, b); err != nil {
		return Round{}, err
	}
	if err := l.putInt(ctx, currentRoundKey, current+1); err != nil {
		return Round{}, err
	}
	return r, nil
}

func (l *Ledger) Round(ctx context.Context, number int64) (Round, error) {
	b, err := l.ds.Get(ctx, roundsPrefix.ChildString(strconv.FormatInt(number, 10)))
	if err != nil {
		return Round{}, xerrors.Errorf("round %d: %w", number, err)
	}
	var r Round
	if err := json.Unmarshal(b, &r); err != nil {
		return Round{}, xerrors.Errorf("failed to decode round %d: %w", number, err)
	}
	return r, nil
}

// ActiveRound is the most recently opened round.
func (l *Ledger) ActiveRound(ctx context.Context) (Round, error) {
	current, err := l.CurrentRound(ctx)
	if err != nil {
		return Round{}, err
	}
	if current <= 1 {
		return Round{}, ErrNoRound
	}
	return l.Round(ctx, current-1)
}

// MarkSubmitted records the single submission user gets per round.
func (l *Ledger) MarkSubmitted(ctx context.Context, user string, round int64) error {
	l.lk.Lock()
	defer l.lk.Unlock()

	k := submittedPrefix.ChildString(userKey(user)).ChildString(strconv.FormatInt(round, 10))
	has, err := l.ds.Has(ctx, k)
	if err != nil {
		return err
	}
	if has {
		return ErrAlreadySubmitted
	}
	return l.ds.Put(ctx, k, []byte{1})
}

func (l *Ledger) Submitted(ctx context.Context, user string, round int64) (bool, error) {
	return l.ds.Has(ctx, submittedPrefix.ChildString(userKey(user)).ChildString(strconv.FormatInt(round, 10)))
}

// AddReward credits user with one accepted proof and returns the new total.
func (l *Ledger) AddReward(ctx context.Context, user string) (int64, error) {
	l.lk.Lock()
	defer l.lk.Unlock()

	k := rewardsPrefix.ChildString(userKey(user))
	v, err := l.getInt(ctx, k, 0)
	if err != nil {
		return 0, err
	}
	v++
	return v, l.putInt(ctx, k, v)
}

func (l *Ledger) Reward(ctx context.Context, user string) (int64, error) {
	return l.getInt(ctx, rewardsPrefix.ChildString(userKey(user)), 0)
}

// Users lists rewarded users in ascending order, starting after the given
// user when it is not empty.
func (l *Ledger) Users(ctx context.Context, limit int, after string) ([]string, error) {
	res, err := l.ds.Query(ctx, query.Query{Prefix: rewardsPrefix.String(), KeysOnly: true})
	if err != nil {
		return nil, err
	}
	entries, err := res.Rest()
	if err != nil {
		return nil, err
	}
	users := make([]string, 0, len(entries))
	for _, e := range entries {
		name := strings.TrimPrefix(e.Key, rewardsPrefix.String()+"/")
		b, err := hex.DecodeString(name)
		if err != nil {
			return nil, xerrors.Errorf("malformed reward key %q", e.Key)
		}
		users = append(users, string(b))
	}
	sort.Strings(users)

	out := make([]string, 0, limit)
	for _, u := range users {
		if after != "" && u <= after {
			continue
		}
		if len(out) >= limit {
			break
		}
		out = append(out, u)
	}
	return out, nil
}
