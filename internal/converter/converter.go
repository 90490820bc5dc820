package converter

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"fxconvert/internal/adapters"
	"fxconvert/internal/domain"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

const (
	DefaultSource = "USD"
	DefaultTarget = "EUR"
)

var (
	ErrNotReady     = errors.New("exchange rates are not loaded")
	ErrNotRetryable = errors.New("rates can only be refetched after a failed load")
	ErrDisposed     = errors.New("converter is disposed")
)

// State is a copy of everything a converter holds. Converted is nil until a conversion
// has been computed.
type State struct {
	Phase     Phase
	Error     string
	Amount    Amount
	Source    string
	Target    string
	Converted *float64
	Rates     domain.RateTable
	Base      string
	UpdatedAt string
}

// Converter owns the state of one conversion session. Every mutation recomputes the
// converted amount. All methods are safe for concurrent use.
type Converter struct {
	source adapters.RatesSource
	clock  clockwork.Clock
	log    logrus.FieldLogger

	mu       sync.Mutex
	state    State
	mounted  bool
	disposed bool
	fetchSeq uint64
	cancel   context.CancelFunc
	done     chan struct{}
}

type Option func(*Converter)

func WithClock(clock clockwork.Clock) Option {
	return func(c *Converter) { c.clock = clock }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Converter) { c.log = log }
}

func New(source adapters.RatesSource, opts ...Option) *Converter {
	c := &Converter{
		source: source,
		clock:  clockwork.NewRealClock(),
		log:    logrus.StandardLogger(),
		state: State{
			Phase:  PhaseLoading,
			Amount: Amount{Value: 1},
			Source: DefaultSource,
			Target: DefaultTarget,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mount issues the initial rates fetch. Only the first call fetches; later calls return the
// channel of the fetch already issued. The channel is closed once the fetch has resolved.
func (c *Converter) Mount(ctx context.Context) <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mounted || c.disposed {
		if c.done == nil {
			return closedChan()
		}
		c.log.Debug("Converter already mounted")
		return c.done
	}
	c.mounted = true
	return c.fetchLocked(ctx)
}

// Retry refetches the rates after a failed load.
func (c *Converter) Retry(ctx context.Context) (<-chan struct{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return nil, ErrDisposed
	}
	if c.state.Phase != PhaseError {
		return nil, ErrNotRetryable
	}
	c.state.Phase = PhaseLoading
	c.state.Error = ""
	return c.fetchLocked(ctx), nil
}

// Dispose abandons the outstanding fetch. A result arriving afterwards is dropped.
func (c *Converter) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return
	}
	c.disposed = true
	if c.cancel != nil {
		c.cancel()
	}
}

func (c *Converter) Disposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

func (c *Converter) fetchLocked(ctx context.Context) <-chan struct{} {
	fetchCtx, cancel := context.WithCancel(ctx)
	c.fetchSeq++
	seq := c.fetchSeq
	c.cancel = cancel
	done := make(chan struct{})
	c.done = done

	go func() {
		defer close(done)
		defer cancel()
		snapshot, err := c.source.FetchRates(fetchCtx)
		c.applyFetch(seq, snapshot, err)
	}()
	return done
}

func (c *Converter) applyFetch(seq uint64, snapshot domain.RateSnapshot, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed || seq != c.fetchSeq {
		c.log.Debug("Dropping rates fetched for a disposed converter")
		return
	}

	if err != nil {
		c.log.WithError(err).WithField("url", c.source.BaseURL()).Error("Error fetching rates")
		c.state.Phase = PhaseError
		c.state.Error = fmt.Sprintf("API Error: %s. URL: %s", err.Error(), c.source.BaseURL())
		return
	}

	c.state.Rates = snapshot.Rates.Clone()
	c.state.Base = snapshot.Base
	c.state.UpdatedAt = snapshot.UpdatedAt
	c.selectDefaultsLocked()
	c.recomputeLocked()
	c.state.Phase = PhaseReady
	c.log.WithField("currencies", len(snapshot.Rates)).Info("Exchange rates loaded")
}

// selectDefaultsLocked keeps the current selections that exist in the table and replaces
// the others with the first available codes. A replaced source never leaves both sides on
// the same code while the table has a second one.
func (c *Converter) selectDefaultsLocked() {
	codes := c.state.Rates.Codes()
	if len(codes) == 0 {
		return
	}
	_, sourceOK := c.state.Rates[c.state.Source]
	if !sourceOK {
		c.state.Source = codes[0]
	}
	_, targetOK := c.state.Rates[c.state.Target]
	if !targetOK || (!sourceOK && c.state.Target == c.state.Source) {
		idx := slices.IndexFunc(codes, func(code string) bool { return code != c.state.Source })
		if idx < 0 {
			idx = 0
		}
		c.state.Target = codes[idx]
	}
}

// recomputeLocked leaves the previous converted value in place when the conversion can't
// be computed.
func (c *Converter) recomputeLocked() {
	if len(c.state.Rates) == 0 || c.state.Amount.Empty {
		return
	}
	if v, ok := ComputeConversion(c.state.Amount.Value, c.state.Source, c.state.Target, c.state.Rates); ok {
		c.state.Converted = &v
	}
}

// SetAmountText applies raw amount input and reports whether it was accepted. Rejected input
// leaves the previous amount unchanged.
func (c *Converter) SetAmountText(raw string) bool {
	amount, ok := ParseAmount(raw)
	if !ok {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Amount = amount
	c.recomputeLocked()
	return true
}

func (c *Converter) SetSource(code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkCodeLocked(code); err != nil {
		return err
	}
	c.state.Source = code
	c.recomputeLocked()
	return nil
}

func (c *Converter) SetTarget(code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkCodeLocked(code); err != nil {
		return err
	}
	c.state.Target = code
	c.recomputeLocked()
	return nil
}

func (c *Converter) checkCodeLocked(code string) error {
	if c.state.Phase != PhaseReady {
		return ErrNotReady
	}
	if _, ok := c.state.Rates[code]; !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownCurrency, code)
	}
	return nil
}

// Switch swaps source and target in one step.
func (c *Converter) Switch() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase != PhaseReady {
		return ErrNotReady
	}
	swapped := domain.RatePair{Base: c.state.Source, Quote: c.state.Target}.Reversed()
	c.state.Source, c.state.Target = swapped.Base, swapped.Quote
	c.recomputeLocked()
	return nil
}

func (c *Converter) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Converter) stateLocked() State {
	s := c.state
	s.Rates = c.state.Rates.Clone()
	if c.state.Converted != nil {
		v := *c.state.Converted
		s.Converted = &v
	}
	return s
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
