package oracle

import (
	"encoding/binary"
	"encoding/json"
	"sort"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
)

const (
	// ObservationsSize is the capacity of a pair's observation buffer.
	ObservationsSize = 3000

	codespace = "pairoracle"
)

var (
	ErrBufferEmpty         = errors.Register(codespace, 2, "Buffer is empty")
	ErrObservationTooOld   = errors.Register(codespace, 3, "Requested observation is too old")
	ErrInvalidObservation  = errors.Register(codespace, 4, "invalid observation")
	ErrCorruptedBufferData = errors.Register(codespace, 5, "corrupted observation buffer")
)

var (
	stateKey     = []byte{0x01}
	precommitKey = []byte{0x02}
	entryPrefix  = []byte{0x03}
)

// Observation is the price of asset 1 in asset 0 traded during the block at Ts, and the simple
// moving average of all retained observations including it.
type Observation struct {
	Ts       uint64         `json:"ts"`
	Price    math.LegacyDec `json:"price"`
	PriceSMA math.LegacyDec `json:"price_sma"`
}

// Precommit aggregates the volume of the trades of one block until the next block closes it.
type Precommit struct {
	Amount0 math.LegacyDec `json:"amount0"`
	Amount1 math.LegacyDec `json:"amount1"`
	Ts      uint64         `json:"ts"`
}

type bufferState struct {
	// Head is the physical index of the next write.
	Head uint32 `json:"head"`
	Len  uint32 `json:"len"`
}

// Buffer is a fixed-capacity ring of observations kept in store, oldest overwritten first.
// The store is expected to be a prefix store owned by one pair.
type Buffer struct {
	store    storetypes.KVStore
	capacity uint32
}

// NewBuffer returns a buffer of the given capacity over store.
func NewBuffer(store storetypes.KVStore, capacity uint32) Buffer {
	if capacity == 0 {
		capacity = ObservationsSize
	}
	return Buffer{store: store, capacity: capacity}
}

func entryKey(i uint32) []byte {
	key := make([]byte, len(entryPrefix)+4)
	copy(key, entryPrefix)
	binary.BigEndian.PutUint32(key[len(entryPrefix):], i)
	return key
}

func (b Buffer) state() (bufferState, error) {
	var st bufferState
	bz := b.store.Get(stateKey)
	if bz == nil {
		return st, nil
	}
	if err := json.Unmarshal(bz, &st); err != nil {
		return st, ErrCorruptedBufferData.Wrap(err.Error())
	}
	return st, nil
}

func (b Buffer) setState(st bufferState) error {
	bz, err := json.Marshal(st)
	if err != nil {
		return err
	}
	b.store.Set(stateKey, bz)
	return nil
}

func (b Buffer) physical(st bufferState, i uint32) uint32 {
	oldest := (st.Head + b.capacity - st.Len) % b.capacity
	return (oldest + i) % b.capacity
}

func (b Buffer) read(idx uint32) (Observation, error) {
	var obs Observation
	bz := b.store.Get(entryKey(idx))
	if bz == nil {
		return obs, ErrCorruptedBufferData.Wrapf("missing entry %d", idx)
	}
	if err := json.Unmarshal(bz, &obs); err != nil {
		return obs, ErrCorruptedBufferData.Wrap(err.Error())
	}
	return obs, nil
}

// Len returns the number of retained observations.
func (b Buffer) Len() (uint32, error) {
	st, err := b.state()
	return st.Len, err
}

// At returns the i-th retained observation, 0 being the oldest.
func (b Buffer) At(i uint32) (Observation, error) {
	st, err := b.state()
	if err != nil {
		return Observation{}, err
	}
	if i >= st.Len {
		return Observation{}, ErrInvalidObservation.Wrapf("index %d out of %d", i, st.Len)
	}
	return b.read(b.physical(st, i))
}

// Latest returns the most recent observation.
func (b Buffer) Latest() (Observation, bool, error) {
	st, err := b.state()
	if err != nil || st.Len == 0 {
		return Observation{}, false, err
	}
	obs, err := b.read(b.physical(st, st.Len-1))
	return obs, err == nil, err
}

// Push appends an observation of price at ts and updates the moving average. Observations must
// be pushed in time order.
func (b Buffer) Push(ts uint64, price math.LegacyDec) (Observation, error) {
	st, err := b.state()
	if err != nil {
		return Observation{}, err
	}
	if !price.IsPositive() {
		return Observation{}, ErrInvalidObservation.Wrapf("price %s", price)
	}

	obs := Observation{Ts: ts, Price: price, PriceSMA: price}
	if st.Len > 0 {
		last, err := b.read(b.physical(st, st.Len-1))
		if err != nil {
			return Observation{}, err
		}
		if ts < last.Ts {
			return Observation{}, ErrInvalidObservation.Wrapf("timestamp %d precedes %d", ts, last.Ts)
		}
		if st.Len < b.capacity {
			obs.PriceSMA = last.PriceSMA.MulInt64(int64(st.Len)).Add(price).QuoInt64(int64(st.Len + 1))
		} else {
			oldest, err := b.read(st.Head)
			if err != nil {
				return Observation{}, err
			}
			obs.PriceSMA = last.PriceSMA.Add(price.Sub(oldest.Price).QuoInt64(int64(b.capacity)))
		}
	}

	bz, err := json.Marshal(obs)
	if err != nil {
		return Observation{}, err
	}
	b.store.Set(entryKey(st.Head), bz)
	st.Head = (st.Head + 1) % b.capacity
	if st.Len < b.capacity {
		st.Len++
	}
	return obs, b.setState(st)
}

// Accumulate records the volumes of a trade executed at now. Trades of one block are summed in a
// precommit; the first trade of a later block closes it into an observation. It reports whether
// an observation was pushed.
func (b Buffer) Accumulate(amount0, amount1 math.LegacyDec, now uint64) (bool, error) {
	pc, found, err := b.precommit()
	if err != nil {
		return false, err
	}
	pushed := false
	switch {
	case found && pc.Ts == now:
		pc.Amount0 = pc.Amount0.Add(amount0)
		pc.Amount1 = pc.Amount1.Add(amount1)
	case found:
		if pc.Amount0.IsPositive() && pc.Amount1.IsPositive() {
			if _, err := b.Push(pc.Ts, pc.Amount0.QuoTruncate(pc.Amount1)); err != nil {
				return false, err
			}
			pushed = true
		}
		pc = Precommit{Amount0: amount0, Amount1: amount1, Ts: now}
	default:
		pc = Precommit{Amount0: amount0, Amount1: amount1, Ts: now}
	}

	bz, err := json.Marshal(pc)
	if err != nil {
		return false, err
	}
	b.store.Set(precommitKey, bz)
	return pushed, nil
}

func (b Buffer) precommit() (Precommit, bool, error) {
	var pc Precommit
	bz := b.store.Get(precommitKey)
	if bz == nil {
		return pc, false, nil
	}
	if err := json.Unmarshal(bz, &pc); err != nil {
		return pc, false, ErrCorruptedBufferData.Wrap(err.Error())
	}
	return pc, true, nil
}

// Lookup returns the observation as of secondsAgo before now. Between two observations the price
// and its average are linearly interpolated; past the newest one the newest is returned.
func (b Buffer) Lookup(now, secondsAgo uint64) (Observation, error) {
	st, err := b.state()
	if err != nil {
		return Observation{}, err
	}
	if st.Len == 0 {
		return Observation{}, ErrBufferEmpty
	}
	if secondsAgo > now {
		return Observation{}, ErrObservationTooOld
	}
	target := now - secondsAgo

	newest, err := b.read(b.physical(st, st.Len-1))
	if err != nil {
		return Observation{}, err
	}
	if target >= newest.Ts {
		newest.Ts = target
		return newest, nil
	}
	oldest, err := b.read(b.physical(st, 0))
	if err != nil {
		return Observation{}, err
	}
	if target < oldest.Ts {
		return Observation{}, ErrObservationTooOld
	}

	// smallest i whose ts is past target; entries i-1 and i bracket it
	var readErr error
	i := sort.Search(int(st.Len), func(i int) bool {
		obs, err := b.read(b.physical(st, uint32(i)))
		if err != nil {
			readErr = err
			return true
		}
		return obs.Ts > target
	})
	if readErr != nil {
		return Observation{}, readErr
	}
	left, err := b.read(b.physical(st, uint32(i-1)))
	if err != nil {
		return Observation{}, err
	}
	if left.Ts == target {
		return left, nil
	}
	right, err := b.read(b.physical(st, uint32(i)))
	if err != nil {
		return Observation{}, err
	}
	ratio := math.LegacyNewDec(int64(target - left.Ts)).QuoTruncate(math.LegacyNewDec(int64(right.Ts - left.Ts)))
	return Observation{
		Ts:       target,
		Price:    interpolate(left.Price, right.Price, ratio),
		PriceSMA: interpolate(left.PriceSMA, right.PriceSMA, ratio),
	}, nil
}

func interpolate(from, to, ratio math.LegacyDec) math.LegacyDec {
	return from.Add(to.Sub(from).MulTruncate(ratio))
}
