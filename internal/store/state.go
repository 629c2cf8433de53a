// Package store holds the dashboard's view state: the selected categories,
// the records fetched for them, and the loading / error flags.
//
// State transitions are expressed as a pure reducer (Reduce) over explicit
// actions. The Store type drives the reducer, performs the fetches and
// notifies subscribers.
package store

import (
	"slices"

	"github.com/seenimoa/disciplineviz/pkg/models"
)

// Phase is the coarse lifecycle of the dashboard.
type Phase string

const (
	PhaseInitializing Phase = "initializing"
	PhaseLoading      Phase = "loading"
	PhaseReady        Phase = "ready"
	PhaseErrored      Phase = "errored"
)

// State is the complete view state. The zero value is not useful; start
// from NewState.
type State struct {
	Selected []models.Category                    `json:"selected"`
	Data     map[models.Category][]models.Record `json:"data"`
	Loading  bool                                 `json:"loading"`
	Err      string                               `json:"error,omitempty"`
	Phase    Phase                                `json:"phase"`

	// pending maps a category to the token of its in-flight fetch.
	pending map[models.Category]uint64
	// batch is the token of the in-flight LoadAll, 0 when none.
	batch uint64
}

// NewState returns the startup state: every category selected, no data.
func NewState() State {
	return State{
		Selected: models.AllCategories(),
		Data:     map[models.Category][]models.Record{},
		Phase:    PhaseInitializing,
		pending:  map[models.Category]uint64{},
	}
}

// IsSelected reports whether c is in the selection set.
func (s State) IsSelected(c models.Category) bool {
	return slices.Contains(s.Selected, c)
}

// Pending reports whether a fetch for c is in flight.
func (s State) Pending(c models.Category) bool {
	_, ok := s.pending[c]
	return ok
}

// PendingToken returns the token of the in-flight fetch for c, or 0.
func (s State) PendingToken(c models.Category) uint64 {
	return s.pending[c]
}

// BatchToken returns the token of the in-flight LoadAll, or 0.
func (s State) BatchToken() uint64 { return s.batch }

// Clone returns a deep copy of s. Record maps are copied too, so callers
// may hand the result to renderers freely.
func (s State) Clone() State {
	out := s
	out.Selected = slices.Clone(s.Selected)
	if out.Selected == nil {
		out.Selected = []models.Category{}
	}
	out.Data = make(map[models.Category][]models.Record, len(s.Data))
	for c, recs := range s.Data {
		out.Data[c] = models.CloneRecords(recs)
	}
	out.pending = make(map[models.Category]uint64, len(s.pending))
	for c, tok := range s.pending {
		out.pending[c] = tok
	}
	return out
}

// Action is a state transition input.
type Action interface {
	action()
}

// Deselected removes a category from the selection and drops its data.
// Any pending fetch for the category is invalidated.
type Deselected struct {
	Category models.Category
}

// FetchStarted marks a single-category fetch as in flight. A newer token
// supersedes an older one for the same category.
type FetchStarted struct {
	Category models.Category
	Token    uint64
}

// FetchSucceeded delivers the records of a single-category fetch.
type FetchSucceeded struct {
	Category models.Category
	Records  []models.Record
	Token    uint64
}

// FetchFailed reports a failed single-category fetch.
type FetchFailed struct {
	Category models.Category
	Err      string
	Token    uint64
}

// Cleared empties the selection and the data map.
type Cleared struct{}

// LoadAllStarted marks a full load as in flight and reselects every
// category.
type LoadAllStarted struct {
	Token uint64
}

// LoadAllSucceeded delivers the results of every category in the batch.
type LoadAllSucceeded struct {
	Data  map[models.Category][]models.Record
	Token uint64
}

// LoadAllFailed reports that at least one fetch of the batch failed. No
// partial results are applied.
type LoadAllFailed struct {
	Err   string
	Token uint64
}

func (Deselected) action()       {}
func (FetchStarted) action()     {}
func (FetchSucceeded) action()   {}
func (FetchFailed) action()      {}
func (Cleared) action()          {}
func (LoadAllStarted) action()   {}
func (LoadAllSucceeded) action() {}
func (LoadAllFailed) action()    {}

// Reduce applies a to s and returns the resulting state. s is not modified.
// Results carrying a token that is no longer current are ignored.
func Reduce(s State, a Action) State {
	next := s.shallowCopy()

	switch a := a.(type) {
	case Deselected:
		next.Selected = slices.DeleteFunc(next.Selected, func(c models.Category) bool { return c == a.Category })
		delete(next.Data, a.Category)
		delete(next.pending, a.Category)

	case FetchStarted:
		next.Err = ""
		next.pending[a.Category] = a.Token

	case FetchSucceeded:
		if tok, ok := next.pending[a.Category]; !ok || tok != a.Token {
			return s
		}
		delete(next.pending, a.Category)
		if !slices.Contains(next.Selected, a.Category) {
			next.Selected = append(next.Selected, a.Category)
		}
		next.Data[a.Category] = a.Records

	case FetchFailed:
		if tok, ok := next.pending[a.Category]; !ok || tok != a.Token {
			return s
		}
		delete(next.pending, a.Category)
		next.Err = a.Err

	case Cleared:
		next.Selected = []models.Category{}
		next.Data = map[models.Category][]models.Record{}
		next.pending = map[models.Category]uint64{}
		next.batch = 0

	case LoadAllStarted:
		// A reload restores the full selection; categories deselected
		// before the batch settles are dropped from its results.
		next.Err = ""
		next.batch = a.Token
		next.Selected = models.AllCategories()

	case LoadAllSucceeded:
		if next.batch == 0 || next.batch != a.Token {
			return s
		}
		next.batch = 0
		data := make(map[models.Category][]models.Record, len(a.Data))
		for _, c := range next.Selected {
			if recs, ok := a.Data[c]; ok {
				data[c] = recs
			}
		}
		next.Data = data

	case LoadAllFailed:
		if next.batch == 0 || next.batch != a.Token {
			return s
		}
		next.batch = 0
		next.Err = a.Err

	default:
		return s
	}

	next.Loading = len(next.pending) > 0 || next.batch != 0
	switch {
	case next.Loading:
		next.Phase = PhaseLoading
	case next.Err != "":
		next.Phase = PhaseErrored
	default:
		next.Phase = PhaseReady
	}
	return next
}

// shallowCopy copies the containers of s so the reducer never writes into
// the caller's maps or slices. Record slices are shared; they are treated
// as immutable once stored.
func (s State) shallowCopy() State {
	out := s
	out.Selected = slices.Clone(s.Selected)
	if out.Selected == nil {
		out.Selected = []models.Category{}
	}
	out.Data = make(map[models.Category][]models.Record, len(s.Data))
	for c, recs := range s.Data {
		out.Data[c] = recs
	}
	out.pending = make(map[models.Category]uint64, len(s.pending))
	for c, tok := range s.pending {
		out.pending[c] = tok
	}
	return out
}
